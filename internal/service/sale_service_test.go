package service

import (
	"testing"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSale(t *testing.T, db *gorm.DB) *model.Sale {
	t.Helper()
	buyer := testutil.User(t, db, "buyer-"+uuid.NewString()[:8]+"@example.com", "Secret1!")
	pay := testutil.Create(t, db, &model.PayMethod{Name: "Cash " + uuid.NewString()[:4]})
	delivery := testutil.Create(t, db, &model.DeliveryMethod{Name: "Courier " + uuid.NewString()[:4], Price: decimal.NewFromInt(15)})
	return testutil.Create(t, db, &model.Sale{UserID: buyer.ID, PayMethodID: pay.ID, DeliveryMethodID: delivery.ID})
}

func TestSaleTotals(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	carpet := cat.Carpet(t, db, "Mat Yaris", 100)
	sale := newSale(t, db)
	s := NewSaleServices(db)

	line, err := s.SaleDetails.Create(&CreateSaleDetailRequest{SaleID: sale.ID, CarpetID: carpet.ID, Quantity: 2}, "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(line.PartialPrice))

	opt, err := s.SaleDetailOptions.Create(&CreateSaleDetailOptionRequest{
		SaleDetailID:          line.ID,
		CustomOptionDetailIDs: []uuid.UUID{cat.Details[0].ID, cat.Details[1].ID},
	}, "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30).Equal(opt.TotalPrice))

	got, err := s.Sales.Get(sale.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(245).Equal(got.TotalPrice), got.TotalPrice.String())

	opt, err = s.SaleDetailOptions.Update(opt.ID, &UpdateSaleDetailOptionRequest{
		RemoveCustomOptionDetailIDs: []uuid.UUID{cat.Details[1].ID},
	}, "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(opt.TotalPrice))
}

func TestSaleDefaultsToCaller(t *testing.T) {
	db := testutil.NewDB(t)
	caller := testutil.User(t, db, "ana@example.com", "Secret1!")
	pay := testutil.Create(t, db, &model.PayMethod{Name: "Card"})
	delivery := testutil.Create(t, db, &model.DeliveryMethod{Name: "Pickup", Price: decimal.Zero})
	s := NewSaleServices(db)

	sale, err := s.Sales.Create(&CreateSaleRequest{PayMethodID: pay.ID, DeliveryMethodID: delivery.ID}, caller.ID.String())
	require.NoError(t, err)
	assert.Equal(t, caller.ID, sale.UserID)
	assert.False(t, sale.Date.IsZero())

	_, err = s.Sales.Create(&CreateSaleRequest{PayMethodID: uuid.New(), DeliveryMethodID: delivery.ID}, caller.ID.String())
	requireCode(t, err, apperror.CodeNotFound, "pay_method_id")

	err = s.PayMethods.Delete(pay.ID, "")
	requireCode(t, err, apperror.CodeIntegrity, "id")
}

func TestSaleDeleteRemovesLines(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	carpet := cat.Carpet(t, db, "Mat Yaris", 100)
	sale := newSale(t, db)
	s := NewSaleServices(db)

	line, err := s.SaleDetails.Create(&CreateSaleDetailRequest{SaleID: sale.ID, CarpetID: carpet.ID, Quantity: 1}, "")
	require.NoError(t, err)
	_, err = s.SaleDetailOptions.Create(&CreateSaleDetailOptionRequest{
		SaleDetailID: line.ID, CustomOptionDetailIDs: []uuid.UUID{cat.Details[0].ID},
	}, "")
	require.NoError(t, err)

	require.NoError(t, s.Sales.Delete(sale.ID, ""))
	assert.Zero(t, testutil.Count[model.SaleDetail](t, db))
	assert.Zero(t, testutil.Count[model.SaleDetailOption](t, db))
	var links int64
	require.NoError(t, db.Table("sale_detail_option_details").Count(&links).Error)
	assert.Zero(t, links)
}

func TestCartOptionLinksMustExist(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	carpet := cat.Carpet(t, db, "Mat Yaris", 50)
	user := testutil.User(t, db, "ana@example.com", "Secret1!")
	s := NewCartServices(db)

	cart, err := s.Carts.Create(&CreateShoppingCartRequest{}, user.ID.String())
	require.NoError(t, err)
	item, err := s.Items.Create(&CreateShoppingCartItemRequest{ShoppingCartID: cart.ID, CarpetID: carpet.ID, Quantity: 3}, "")
	require.NoError(t, err)

	_, err = s.ItemOptions.Create(&CreateCartItemOptionRequest{
		ShoppingCartItemID:    item.ID,
		CustomOptionDetailIDs: []uuid.UUID{cat.Details[0].ID, uuid.New()},
	}, "")
	requireCode(t, err, apperror.CodeNotFound, "custom_option_detail_ids")
	assert.Zero(t, testutil.Count[model.ShoppingCartItemOption](t, db))

	_, err = s.ItemOptions.Create(&CreateCartItemOptionRequest{
		ShoppingCartItemID:    item.ID,
		CustomOptionDetailIDs: []uuid.UUID{cat.Details[1].ID},
	}, "")
	require.NoError(t, err)

	got, err := s.Carts.Get(cart.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(170).Equal(got.TotalPrice), got.TotalPrice.String())
}

func TestCartNeedsAnOwner(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewCartServices(db)

	_, err := s.Carts.Create(&CreateShoppingCartRequest{}, "")
	requireCode(t, err, apperror.CodeInvalidInput, "user_id")

	missing := uuid.New()
	_, err = s.Carts.Create(&CreateShoppingCartRequest{UserID: &missing}, "")
	requireCode(t, err, apperror.CodeNotFound, "user_id")
}
