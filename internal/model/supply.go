package model

import (
	"time"

	"go-carpet-shop/internal/valuation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Supplier struct {
	BaseModel
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Email     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"type:varchar(20);not null" json:"phone"`
	AddressID uuid.UUID `gorm:"type:uuid;not null;index" json:"address_id"`
	Address   *Address  `gorm:"constraint:OnDelete:RESTRICT" json:"address,omitempty"`
}

// MaterialBySupplier is a supplier's priced offer for a RAW inventory item.
type MaterialBySupplier struct {
	BaseModel
	RawMaterialID uuid.UUID       `gorm:"type:uuid;not null;index" json:"raw_material_id"`
	RawMaterial   *InventoryItem  `gorm:"constraint:OnDelete:RESTRICT" json:"raw_material,omitempty"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier      *Supplier       `gorm:"constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PEN"
	OrderDelivered OrderStatus = "DEL"
	OrderCancelled OrderStatus = "CAN"
)

// Terminal reports whether no further change is allowed on the order or its lines.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanBecome reports whether the order may move from s to next.
func (s OrderStatus) CanBecome(next OrderStatus) bool {
	if s == next {
		return true
	}
	return s == OrderPending && next.Terminal()
}

type MaterialOrder struct {
	BaseModel
	Status       OrderStatus     `gorm:"type:varchar(3);not null;default:PEN;index" json:"status"`
	DeliveryDate time.Time       `gorm:"type:date;not null" json:"delivery_date"`
	Details      []OrderDetail   `gorm:"foreignKey:MaterialOrderID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
	TotalPrice   decimal.Decimal `gorm:"-" json:"total_price"`
}

// Valuate fills the derived prices. Details and their offers must be preloaded.
func (o *MaterialOrder) Valuate() {
	lines := make([]decimal.Decimal, len(o.Details))
	for i := range o.Details {
		o.Details[i].Valuate()
		lines[i] = o.Details[i].PartialPrice
	}
	o.TotalPrice = valuation.Total(lines, decimal.Zero)
}

type OrderDetail struct {
	BaseModel
	MaterialOrderID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"material_order_id"`
	MaterialBySupplierID uuid.UUID           `gorm:"type:uuid;not null;index" json:"material_by_supplier_id"`
	MaterialBySupplier   *MaterialBySupplier `gorm:"constraint:OnDelete:RESTRICT" json:"material_by_supplier,omitempty"`
	Quantity             int                 `gorm:"not null" json:"quantity"`
	PartialPrice         decimal.Decimal     `gorm:"-" json:"partial_price"`
}

func (d *OrderDetail) Valuate() {
	if d.MaterialBySupplier == nil {
		return
	}
	d.PartialPrice = valuation.LinePrice(d.Quantity, d.MaterialBySupplier.Price)
}
