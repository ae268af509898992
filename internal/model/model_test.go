package model

import (
	"testing"

	"go-carpet-shop/internal/valuation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanBecome(OrderDelivered))
	assert.True(t, OrderPending.CanBecome(OrderCancelled))
	assert.True(t, OrderDelivered.CanBecome(OrderDelivered))
	assert.False(t, OrderDelivered.CanBecome(OrderPending))
	assert.False(t, OrderCancelled.CanBecome(OrderDelivered))
	assert.False(t, OrderPending.Terminal())
	assert.True(t, OrderCancelled.Terminal())
}

func TestSaleValuateAddsDeliverySurcharge(t *testing.T) {
	carpet := &Carpet{Price: decimal.NewFromInt(100)}
	option := SaleDetailOption{CustomOptionDetails: []CustomOptionDetail{
		{Price: decimal.NewFromInt(10)},
		{Price: decimal.NewFromInt(20)},
	}}
	sale := Sale{
		DeliveryMethod: &DeliveryMethod{Price: decimal.NewFromInt(15)},
		Details: []SaleDetail{
			{Carpet: carpet, Quantity: 3, Options: []SaleDetailOption{option}},
			{Carpet: carpet, Quantity: 1},
		},
	}
	sale.Valuate()

	assert.True(t, sale.Details[0].PartialPrice.Equal(decimal.NewFromInt(330)))
	assert.True(t, sale.Details[1].PartialPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, sale.TotalPrice.Equal(decimal.NewFromInt(445)), sale.TotalPrice.String())
}

func TestCartAndOrderValuateHaveNoSurcharge(t *testing.T) {
	cart := ShoppingCart{Items: []ShoppingCartItem{
		{Carpet: &Carpet{Price: decimal.NewFromInt(50)}, Quantity: 2},
	}}
	cart.Valuate()
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromInt(100)))

	order := MaterialOrder{Details: []OrderDetail{
		{MaterialBySupplier: &MaterialBySupplier{Price: decimal.RequireFromString("2.50")}, Quantity: 4},
	}}
	order.Valuate()
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(10)))
}

func TestInventoryItemValuate(t *testing.T) {
	item := InventoryItem{Type: valuation.TagRawMaterial, Stock: 30}
	item.Valuate()
	assert.Equal(t, valuation.StatusLowStock, item.Status)
}

func TestDefaultPermissionsCatalogue(t *testing.T) {
	perms := DefaultPermissions()
	codes := map[string]bool{}
	for _, p := range perms {
		assert.False(t, codes[p.Code], "duplicate %s", p.Code)
		codes[p.Code] = true
	}
	assert.True(t, codes["add_locality"])
	assert.True(t, codes["view_inventoryitem"])
	assert.True(t, codes["delete_shoppingcartitemoption"])

	assert.Len(t, DefaultGroupPermissions(GroupAdmin), len(perms))

	client := DefaultGroupPermissions(GroupClient)
	assert.Contains(t, client, "add_address")
	assert.Contains(t, client, "view_locality")
	assert.NotContains(t, client, "delete_address")
	assert.NotContains(t, client, "add_carpet")
}

func TestUserHasPermission(t *testing.T) {
	u := User{Groups: []Group{{Name: GroupSalesAssistant, Permissions: []Permission{{Code: "view_sale"}}}}}
	assert.True(t, u.HasPermission("view_sale"))
	assert.False(t, u.HasPermission("add_sale"))
	assert.Equal(t, []string{"view_sale"}, u.PermissionCodes())

	u.IsSuperuser = true
	assert.True(t, u.HasPermission("add_sale"))
}
