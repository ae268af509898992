package model

import (
	"go-carpet-shop/internal/valuation"

	"gorm.io/gorm"
)

// InventoryItem is a stock row. Status is derived from Type and Stock on every
// load and save and is never stored.
type InventoryItem struct {
	BaseModel
	Name        string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Stock       int              `gorm:"not null" json:"stock"`
	Type        valuation.Tag    `gorm:"type:varchar(3);not null;index" json:"type"`
	Status      valuation.Status `gorm:"-" json:"status"`
}

func (i *InventoryItem) Valuate() {
	i.Status = valuation.StatusOf(i.Type, i.Stock)
}

func (i *InventoryItem) AfterFind(tx *gorm.DB) error {
	i.Valuate()
	return nil
}

func (i *InventoryItem) AfterSave(tx *gorm.DB) error {
	i.Valuate()
	return nil
}
