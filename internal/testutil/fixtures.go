package testutil

import (
	"testing"
	"time"

	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/valuation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Create inserts v as-is, skipping associations.
func Create[T any](t *testing.T, db *gorm.DB, v *T) *T {
	t.Helper()
	require.NoError(t, db.Omit(clause.Associations).Create(v).Error)
	return v
}

// Count returns the number of rows of T matching the optional condition.
func Count[T any](t *testing.T, db *gorm.DB, conds ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(new(T))
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func Address(t *testing.T, db *gorm.DB) *model.Address {
	t.Helper()
	loc := Create(t, db, &model.Locality{Name: "Centro " + suffix()})
	nb := Create(t, db, &model.Neighborhood{Name: "Norte", LocalityID: loc.ID})
	return Create(t, db, &model.Address{Details: "Calle 1 #100", NeighborhoodID: nb.ID})
}

func Item(t *testing.T, db *gorm.DB, name string, tag valuation.Tag, stock int) *model.InventoryItem {
	t.Helper()
	return Create(t, db, &model.InventoryItem{Name: name, Type: tag, Stock: stock})
}

// Catalog holds the reference rows a carpet needs.
type Catalog struct {
	Category *model.ProductCategory
	CarModel *model.CarModel
	Material *model.InventoryItem
	Option   *model.CustomOption
	Details  []*model.CustomOptionDetail
}

func NewCatalog(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()
	s := suffix()
	ct := Create(t, db, &model.CarType{Name: "Sedan " + s})
	mk := Create(t, db, &model.CarMake{Name: "Toyota " + s})
	c := &Catalog{
		Category: Create(t, db, &model.ProductCategory{Name: "Premium " + s, Discount: 10}),
		CarModel: Create(t, db, &model.CarModel{Name: "Corolla " + s, Year: 2020, CarTypeID: ct.ID, CarMakeID: mk.ID}),
		Material: Item(t, db, "Rubber "+s, valuation.TagRawMaterial, 100),
		Option:   Create(t, db, &model.CustomOption{Name: "Color " + s}),
	}
	for i, price := range []int64{10, 20} {
		c.Details = append(c.Details, Create(t, db, &model.CustomOptionDetail{
			Name:           []string{"Red", "Blue"}[i],
			Price:          decimal.NewFromInt(price),
			CustomOptionID: c.Option.ID,
		}))
	}
	return c
}

// Carpet inserts a carpet with its own MAT inventory item.
func (c *Catalog) Carpet(t *testing.T, db *gorm.DB, name string, price int64) *model.Carpet {
	t.Helper()
	item := Item(t, db, name, valuation.TagMaterial, 20)
	return Create(t, db, &model.Carpet{
		ImageLink:       "https://img.example.com/" + item.ID.String() + ".png",
		Price:           decimal.NewFromInt(price),
		CategoryID:      c.Category.ID,
		CarModelID:      c.CarModel.ID,
		InventoryItemID: item.ID,
		MaterialID:      c.Material.ID,
	})
}

func Supplier(t *testing.T, db *gorm.DB, email string) *model.Supplier {
	t.Helper()
	addr := Address(t, db)
	return Create(t, db, &model.Supplier{Name: "Acme", Email: email, Phone: "5551234567", AddressID: addr.ID})
}

func Order(t *testing.T, db *gorm.DB, status model.OrderStatus) *model.MaterialOrder {
	t.Helper()
	return Create(t, db, &model.MaterialOrder{Status: status, DeliveryDate: time.Now().AddDate(0, 0, 7)})
}

// User inserts an active user with the given password and groups.
func User(t *testing.T, db *gorm.DB, email, password string, groups ...*model.Group) *model.User {
	t.Helper()
	u := &model.User{Email: email, FirstName: "Test", LastName: "User", Phone: "5551234567", IsActive: true}
	require.NoError(t, u.SetPassword(password))
	Create(t, db, u)
	for _, g := range groups {
		require.NoError(t, db.Model(u).Association("Groups").Append(g))
	}
	return u
}

// Group inserts a group holding the given permission codes, creating them as needed.
func Group(t *testing.T, db *gorm.DB, name string, codes ...string) *model.Group {
	t.Helper()
	g := Create(t, db, &model.Group{Name: name})
	for _, code := range codes {
		p := model.Permission{Code: code}
		require.NoError(t, db.Where(model.Permission{Code: code}).FirstOrCreate(&p).Error)
		require.NoError(t, db.Model(g).Association("Permissions").Append(&p))
	}
	return g
}

var seq int

func suffix() string {
	seq++
	return string(rune('A'+seq%26)) + string(rune('a'+(seq/26)%26))
}
