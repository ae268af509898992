package model

import (
	"go-carpet-shop/internal/valuation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShoppingCart struct {
	BaseModel
	UserID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User              `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Items      []ShoppingCartItem `gorm:"foreignKey:ShoppingCartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	TotalPrice decimal.Decimal    `gorm:"-" json:"total_price"`
}

// Valuate fills the derived prices. Carts carry no delivery surcharge.
func (c *ShoppingCart) Valuate() {
	lines := make([]decimal.Decimal, len(c.Items))
	for i := range c.Items {
		c.Items[i].Valuate()
		lines[i] = c.Items[i].PartialPrice
	}
	c.TotalPrice = valuation.Total(lines, decimal.Zero)
}

type ShoppingCartItem struct {
	BaseModel
	ShoppingCartID uuid.UUID                `gorm:"type:uuid;not null;index" json:"shopping_cart_id"`
	CarpetID       uuid.UUID                `gorm:"type:uuid;not null;index" json:"carpet_id"`
	Carpet         *Carpet                  `gorm:"constraint:OnDelete:CASCADE" json:"carpet,omitempty"`
	Quantity       int                      `gorm:"not null" json:"quantity"`
	Options        []ShoppingCartItemOption `gorm:"foreignKey:ShoppingCartItemID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	PartialPrice   decimal.Decimal          `gorm:"-" json:"partial_price"`
}

func (i *ShoppingCartItem) Valuate() {
	if i.Carpet == nil {
		return
	}
	opts := make([]decimal.Decimal, len(i.Options))
	for n := range i.Options {
		i.Options[n].Valuate()
		opts[n] = i.Options[n].TotalPrice
	}
	i.PartialPrice = valuation.LinePrice(i.Quantity, i.Carpet.Price, opts...)
}

type ShoppingCartItemOption struct {
	BaseModel
	ShoppingCartItemID  uuid.UUID            `gorm:"type:uuid;not null;index" json:"shopping_cart_item_id"`
	CustomOptionDetails []CustomOptionDetail `gorm:"many2many:cart_item_option_details" json:"custom_option_details"`
	TotalPrice          decimal.Decimal      `gorm:"-" json:"total_price"`
}

func (o *ShoppingCartItemOption) Valuate() {
	o.TotalPrice = optionDetailsTotal(o.CustomOptionDetails)
}
