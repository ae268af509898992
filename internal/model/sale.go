package model

import (
	"time"

	"go-carpet-shop/internal/valuation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayMethod struct {
	BaseModel
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

// DeliveryMethod.Price is added to the total of every sale that uses it.
type DeliveryMethod struct {
	BaseModel
	Name  string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

type Sale struct {
	BaseModel
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User           `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	PayMethodID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"pay_method_id"`
	PayMethod        *PayMethod      `gorm:"constraint:OnDelete:RESTRICT" json:"pay_method,omitempty"`
	DeliveryMethodID uuid.UUID       `gorm:"type:uuid;not null;index" json:"delivery_method_id"`
	DeliveryMethod   *DeliveryMethod `gorm:"constraint:OnDelete:RESTRICT" json:"delivery_method,omitempty"`
	Date             time.Time       `gorm:"not null;index" json:"date"`
	Details          []SaleDetail    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
	TotalPrice       decimal.Decimal `gorm:"-" json:"total_price"`
}

// Valuate fills the derived prices. Details, their carpets and options, and the
// delivery method must be preloaded.
func (s *Sale) Valuate() {
	lines := make([]decimal.Decimal, len(s.Details))
	for i := range s.Details {
		s.Details[i].Valuate()
		lines[i] = s.Details[i].PartialPrice
	}
	surcharge := decimal.Zero
	if s.DeliveryMethod != nil {
		surcharge = s.DeliveryMethod.Price
	}
	s.TotalPrice = valuation.Total(lines, surcharge)
}

type SaleDetail struct {
	BaseModel
	SaleID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"sale_id"`
	CarpetID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"carpet_id"`
	Carpet       *Carpet            `gorm:"constraint:OnDelete:RESTRICT" json:"carpet,omitempty"`
	Quantity     int                `gorm:"not null" json:"quantity"`
	Options      []SaleDetailOption `gorm:"foreignKey:SaleDetailID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	PartialPrice decimal.Decimal    `gorm:"-" json:"partial_price"`
}

func (d *SaleDetail) Valuate() {
	if d.Carpet == nil {
		return
	}
	opts := make([]decimal.Decimal, len(d.Options))
	for i := range d.Options {
		d.Options[i].Valuate()
		opts[i] = d.Options[i].TotalPrice
	}
	d.PartialPrice = valuation.LinePrice(d.Quantity, d.Carpet.Price, opts...)
}

// SaleDetailOption groups the option details chosen for one sale line.
type SaleDetailOption struct {
	BaseModel
	SaleDetailID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"sale_detail_id"`
	CustomOptionDetails []CustomOptionDetail `gorm:"many2many:sale_detail_option_details" json:"custom_option_details"`
	TotalPrice          decimal.Decimal      `gorm:"-" json:"total_price"`
}

func (o *SaleDetailOption) Valuate() {
	o.TotalPrice = optionDetailsTotal(o.CustomOptionDetails)
}

func optionDetailsTotal(details []CustomOptionDetail) decimal.Decimal {
	prices := make([]decimal.Decimal, len(details))
	for i, d := range details {
		prices[i] = d.Price
	}
	return valuation.Total(prices, decimal.Zero)
}
