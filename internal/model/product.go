package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CarType struct {
	BaseModel
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

type CarMake struct {
	BaseModel
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

// CarModel is unique on (name, year).
type CarModel struct {
	BaseModel
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_car_model_name_year" json:"name"`
	Year      int       `gorm:"not null;uniqueIndex:idx_car_model_name_year" json:"year"`
	CarTypeID uuid.UUID `gorm:"type:uuid;not null;index" json:"type_id"`
	CarType   *CarType  `gorm:"constraint:OnDelete:RESTRICT" json:"type,omitempty"`
	CarMakeID uuid.UUID `gorm:"type:uuid;not null;index" json:"make_id"`
	CarMake   *CarMake  `gorm:"constraint:OnDelete:RESTRICT" json:"make,omitempty"`
}

// ProductCategory carries a discount percentage. It is informational and not
// applied to carpet prices.
type ProductCategory struct {
	BaseModel
	Name     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Discount int    `gorm:"not null;default:0" json:"discount"`
}

type CustomOption struct {
	BaseModel
	Name        string               `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Required    bool                 `gorm:"not null;default:false" json:"required"`
	Description string               `gorm:"type:text" json:"description"`
	Details     []CustomOptionDetail `gorm:"foreignKey:CustomOptionID" json:"details,omitempty"`
}

// CustomOptionDetail is a priced variant of an option, unique by name within it.
type CustomOptionDetail struct {
	BaseModel
	Name           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_option_detail_name" json:"name"`
	ImageURL       string          `gorm:"type:varchar(255)" json:"image_url"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CustomOptionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_option_detail_name" json:"custom_option_id"`
	CustomOption   *CustomOption   `gorm:"constraint:OnDelete:RESTRICT" json:"custom_option,omitempty"`
}

// Carpet is the sellable product. It owns exactly one inventory item and is
// made from a RAW inventory item.
type Carpet struct {
	BaseModel
	ImageLink       string           `gorm:"type:varchar(255);not null" json:"image_link"`
	Price           decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"category_id"`
	Category        *ProductCategory `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	CarModelID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"car_model_id"`
	CarModel        *CarModel        `gorm:"constraint:OnDelete:RESTRICT" json:"car_model,omitempty"`
	InventoryItemID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"inventory_item_id"`
	InventoryItem   *InventoryItem   `gorm:"constraint:OnDelete:RESTRICT" json:"inventory_item,omitempty"`
	MaterialID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"material_id"`
	Material        *InventoryItem   `gorm:"constraint:OnDelete:RESTRICT" json:"material,omitempty"`
	CustomOptions   []CustomOption   `gorm:"many2many:carpet_custom_options" json:"custom_options,omitempty"`
}
