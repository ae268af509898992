package service

import (
	"sync"
	"testing"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/testutil"
	"go-carpet-shop/internal/valuation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Type, Action string
	Payload      interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Publish(eventType, action string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{eventType, action, payload})
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func requireCode(t *testing.T, err error, code apperror.Code, field string) {
	t.Helper()
	require.Error(t, err)
	first := apperror.As(err).First()
	assert.Equal(t, code, first.Code, err.Error())
	assert.Equal(t, field, first.Field, err.Error())
}

func newItemRequest(name string, tag valuation.Tag) *CreateInventoryItemRequest {
	return &CreateInventoryItemRequest{Name: name, Stock: ptr(5), Type: tag}
}

func carpetRequest(cat *testutil.Catalog, item *Ref[CreateInventoryItemRequest]) *CreateCarpetRequest {
	return &CreateCarpetRequest{
		ImageLink:     "https://img.example.com/mat.png",
		Price:         ptr(decimal.NewFromInt(100)),
		Category:      &Ref[CreateProductCategoryRequest]{ID: &cat.Category.ID},
		CarModel:      &Ref[CreateCarModelRequest]{ID: &cat.CarModel.ID},
		Material:      &Ref[CreateInventoryItemRequest]{ID: &cat.Material.ID},
		InventoryItem: item,
	}
}

func TestCarpetCreateWithInlineRows(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	events := &recorder{}
	svc := NewProductServices(db, events).Carpets

	req := carpetRequest(cat, &Ref[CreateInventoryItemRequest]{New: newItemRequest("Mat Corolla", valuation.TagMaterial)})
	req.Category = &Ref[CreateProductCategoryRequest]{New: &CreateProductCategoryRequest{Name: "Economy", Discount: 5}}
	req.CustomOptionIDs = []uuid.UUID{cat.Option.ID}

	c, err := svc.Create(req, "")
	require.NoError(t, err)
	assert.Equal(t, "Economy", c.Category.Name)
	assert.Equal(t, "Mat Corolla", c.InventoryItem.Name)
	assert.Equal(t, cat.Material.ID, c.MaterialID)
	require.Len(t, c.CustomOptions, 1)
	assert.Equal(t, []string{"inventory_item_created"}, events.actions())
}

func TestCarpetCreateRollsBackOnDuplicateItem(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	testutil.Item(t, db, "Mat Corolla", valuation.TagMaterial, 3)
	svc := NewProductServices(db, NopNotifier).Carpets

	req := carpetRequest(cat, &Ref[CreateInventoryItemRequest]{New: newItemRequest("Mat Corolla", valuation.TagMaterial)})
	req.Category = &Ref[CreateProductCategoryRequest]{New: &CreateProductCategoryRequest{Name: "Economy"}}

	_, err := svc.Create(req, "")
	requireCode(t, err, apperror.CodeIntegrity, "inventory_item.name")

	assert.Zero(t, testutil.Count[model.Carpet](t, db))
	assert.Zero(t, testutil.Count[model.ProductCategory](t, db, "name = ?", "Economy"))
}

func TestCarpetCreateRejectsAmbiguousRef(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	svc := NewProductServices(db, NopNotifier).Carpets

	both := carpetRequest(cat, &Ref[CreateInventoryItemRequest]{New: newItemRequest("Mat One", valuation.TagMaterial)})
	both.Category.New = &CreateProductCategoryRequest{Name: "Economy"}
	_, err := svc.Create(both, "")
	requireCode(t, err, apperror.CodeInvalidInput, "category")

	neither := carpetRequest(cat, &Ref[CreateInventoryItemRequest]{})
	_, err = svc.Create(neither, "")
	requireCode(t, err, apperror.CodeInvalidInput, "inventory_item")

	assert.Zero(t, testutil.Count[model.Carpet](t, db))
}

func TestCarpetCreateRequiresRawMaterial(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	notRaw := testutil.Item(t, db, "Finished Mat", valuation.TagMaterial, 3)
	svc := NewProductServices(db, NopNotifier).Carpets

	req := carpetRequest(cat, &Ref[CreateInventoryItemRequest]{New: newItemRequest("Mat Civic", valuation.TagMaterial)})
	req.Material = &Ref[CreateInventoryItemRequest]{ID: &notRaw.ID}

	_, err := svc.Create(req, "")
	requireCode(t, err, apperror.CodeValidation, "material")
	assert.Zero(t, testutil.Count[model.InventoryItem](t, db, "name = ?", "Mat Civic"))
}

func TestCarpetCreateRejectsOwnedItem(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	existing := cat.Carpet(t, db, "Mat Yaris", 80)
	svc := NewProductServices(db, NopNotifier).Carpets

	_, err := svc.Create(carpetRequest(cat, &Ref[CreateInventoryItemRequest]{ID: &existing.InventoryItemID}), "")
	requireCode(t, err, apperror.CodeIntegrity, "inventory_item")
	assert.EqualValues(t, 1, testutil.Count[model.Carpet](t, db))
}

func TestCarpetUpdatePatchesItemAndOptions(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	c := cat.Carpet(t, db, "Mat Yaris", 80)
	events := &recorder{}
	svc := NewProductServices(db, events).Carpets

	out, err := svc.Update(c.ID, &UpdateCarpetRequest{
		Price:              ptr(decimal.NewFromInt(95)),
		InventoryItem:      &UpdateInventoryItemRequest{Stock: ptr(0)},
		AddCustomOptionIDs: []uuid.UUID{cat.Option.ID},
	}, "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(95).Equal(out.Price))
	assert.Equal(t, 0, out.InventoryItem.Stock)
	assert.Len(t, out.CustomOptions, 1)
	assert.Equal(t, []string{"inventory_item_updated"}, events.actions())

	out, err = svc.Update(c.ID, &UpdateCarpetRequest{RemoveCustomOptionIDs: []uuid.UUID{cat.Option.ID}}, "")
	require.NoError(t, err)
	assert.Empty(t, out.CustomOptions)

	_, err = svc.Update(c.ID, &UpdateCarpetRequest{InventoryItem: &UpdateInventoryItemRequest{Stock: ptr(-1)}}, "")
	requireCode(t, err, apperror.CodeValidation, "inventory_item.stock")
}

func TestCarpetUpdateResolvesRefs(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	c := cat.Carpet(t, db, "Mat Yaris", 80)
	notRaw := testutil.Item(t, db, "Finished Mat", valuation.TagMaterial, 3)
	svc := NewProductServices(db, NopNotifier).Carpets

	out, err := svc.Update(c.ID, &UpdateCarpetRequest{
		Category: &Ref[CreateProductCategoryRequest]{New: &CreateProductCategoryRequest{Name: "budget  line", Discount: 15}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Budget Line", out.Category.Name)
	assert.NotEqual(t, cat.Category.ID, out.CategoryID)
	rebound := out.CategoryID

	_, err = svc.Update(c.ID, &UpdateCarpetRequest{
		Category: &Ref[CreateProductCategoryRequest]{
			ID:  &cat.Category.ID,
			New: &CreateProductCategoryRequest{Name: "Economy"},
		},
	}, "")
	requireCode(t, err, apperror.CodeInvalidInput, "category")

	_, err = svc.Update(c.ID, &UpdateCarpetRequest{
		Material: &Ref[CreateInventoryItemRequest]{ID: &notRaw.ID},
	}, "")
	requireCode(t, err, apperror.CodeValidation, "material")

	missing := uuid.New()
	_, err = svc.Update(c.ID, &UpdateCarpetRequest{
		Price:    ptr(decimal.NewFromInt(1)),
		CarModel: &Ref[CreateCarModelRequest]{ID: &missing},
	}, "")
	requireCode(t, err, apperror.CodeNotFound, "car_model")

	after, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, rebound, after.CategoryID)
	assert.Equal(t, cat.Material.ID, after.MaterialID)
	assert.Equal(t, cat.CarModel.ID, after.CarModelID)
	assert.True(t, decimal.NewFromInt(80).Equal(after.Price))
	assert.Zero(t, testutil.Count[model.ProductCategory](t, db, "name = ?", "Economy"))
}

func TestCarpetDeleteRemovesItem(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	c := cat.Carpet(t, db, "Mat Yaris", 80)
	require.NoError(t, db.Model(c).Association("CustomOptions").Append(cat.Option))
	events := &recorder{}
	svc := NewProductServices(db, events).Carpets

	require.NoError(t, svc.Delete(c.ID, ""))
	assert.Zero(t, testutil.Count[model.Carpet](t, db))
	assert.Zero(t, testutil.Count[model.InventoryItem](t, db, "id = ?", c.InventoryItemID))
	var links int64
	require.NoError(t, db.Table("carpet_custom_options").Count(&links).Error)
	assert.Zero(t, links)
	assert.Equal(t, []string{"inventory_item_deleted"}, events.actions())
}

func TestCarpetDeleteKeepsCarpetWhenItemIsGuarded(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	c := cat.Carpet(t, db, "Mat Yaris", 80)

	// A supplier offer pins the carpet's own item.
	require.NoError(t, db.Model(&model.InventoryItem{}).Where("id = ?", c.InventoryItemID).
		Update("type", valuation.TagRawMaterial).Error)
	sup := testutil.Supplier(t, db, "acme@example.com")
	testutil.Create(t, db, &model.MaterialBySupplier{RawMaterialID: c.InventoryItemID, SupplierID: sup.ID, Price: decimal.NewFromInt(3)})

	svc := NewProductServices(db, NopNotifier).Carpets
	err := svc.Delete(c.ID, "")
	requireCode(t, err, apperror.CodeIntegrity, "id")

	assert.EqualValues(t, 1, testutil.Count[model.Carpet](t, db, "id = ?", c.ID))
	assert.EqualValues(t, 1, testutil.Count[model.InventoryItem](t, db, "id = ?", c.InventoryItemID))
}

func TestCarpetDeleteBlockedBySale(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	c := cat.Carpet(t, db, "Mat Yaris", 80)
	sale := newSale(t, db)
	testutil.Create(t, db, &model.SaleDetail{SaleID: sale.ID, CarpetID: c.ID, Quantity: 1})

	err := NewProductServices(db, NopNotifier).Carpets.Delete(c.ID, "")
	requireCode(t, err, apperror.CodeIntegrity, "id")
	assert.EqualValues(t, 1, testutil.Count[model.Carpet](t, db))
}
