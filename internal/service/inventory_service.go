package service

import (
	"fmt"
	"strings"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/internal/valuation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateInventoryItemRequest struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description"`
	Stock       *int          `json:"stock" validate:"required,gte=0"`
	Type        valuation.Tag `json:"type" validate:"required,oneof=MAT RAW CUS"`
}

type UpdateInventoryItemRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Stock       *int           `json:"stock" validate:"omitempty,gte=0"`
	Type        *valuation.Tag `json:"type" validate:"omitempty,oneof=MAT RAW CUS"`
}

type InventoryService = CRUD[model.InventoryItem, CreateInventoryItemRequest, UpdateInventoryItemRequest]

var inventorySpec = query.Spec{
	Fields: map[string]query.Field{
		"name":        {Column: "name", Kind: query.String, Lookups: query.Text},
		"description": {Column: "description", Kind: query.String, Lookups: query.Text},
		"stock":       {Column: "stock", Kind: query.Int, Lookups: query.Range},
		"type":        {Column: "type", Kind: query.String, Lookups: query.Ref},
		"created_at":  {Column: "created_at", Kind: query.Time, Lookups: query.Dates},
	},
	Custom: map[string]query.Custom{
		"status": statusFilter,
	},
}

// statusFilter restricts items to a derived status using the same thresholds as
// valuation.StatusOf.
func statusFilter(db *gorm.DB, value string) (*gorm.DB, error) {
	st, err := valuation.ParseStatus(value)
	if err != nil {
		return nil, err
	}
	cond, args := valuation.StatusCondition(st, "type", "stock")
	return db.Where(cond, args...), nil
}

func newInventoryCRUD(db *gorm.DB, notifier Notifier) *crud[model.InventoryItem, CreateInventoryItemRequest, UpdateInventoryItemRequest] {
	s := newCRUD[model.InventoryItem, CreateInventoryItemRequest, UpdateInventoryItemRequest](db, "InventoryItem", inventorySpec)
	s.build = func(tx *gorm.DB, req *CreateInventoryItemRequest, actor string) (*model.InventoryItem, error) {
		n, err := productName("name", req.Name)
		if err != nil {
			return nil, err
		}
		return &model.InventoryItem{
			Name:        n,
			Description: strings.TrimSpace(req.Description),
			Stock:       *req.Stock,
			Type:        req.Type,
		}, nil
	}
	s.patch = func(tx *gorm.DB, v *model.InventoryItem, req *UpdateInventoryItemRequest) error {
		if req.Name != nil {
			n, err := productName("name", *req.Name)
			if err != nil {
				return err
			}
			v.Name = n
		}
		if req.Description != nil {
			v.Description = strings.TrimSpace(*req.Description)
		}
		if req.Stock != nil {
			v.Stock = *req.Stock
		}
		if req.Type != nil && *req.Type != v.Type {
			if err := checkRetag(tx, v, *req.Type); err != nil {
				return err
			}
			v.Type = *req.Type
		}
		return nil
	}
	s.guards = []repository.Guard{
		repository.Restrict(&model.Carpet{}, "inventory_item_id", "carpets"),
		repository.Restrict(&model.Carpet{}, "material_id", "carpets using it as material"),
		repository.Restrict(&model.MaterialBySupplier{}, "raw_material_id", "supplier offers"),
	}
	s.committed = func(action string, v *model.InventoryItem) {
		notifier.Publish("stock_update", "inventory_item_"+action, stockPayload(v))
	}
	return s
}

func NewInventoryService(db *gorm.DB, notifier Notifier) InventoryService {
	return newInventoryCRUD(db, notifier)
}

// checkRetag keeps the RAW rule intact: an item still used as a material or
// offered by a supplier cannot stop being RAW.
func checkRetag(tx *gorm.DB, v *model.InventoryItem, next valuation.Tag) error {
	if v.Type != valuation.TagRawMaterial || next == valuation.TagRawMaterial {
		return nil
	}
	err := repository.CheckRestrict(tx, "InventoryItem", v.ID,
		repository.Restrict(&model.Carpet{}, "material_id", "carpets using it as material"),
		repository.Restrict(&model.MaterialBySupplier{}, "raw_material_id", "supplier offers"),
	)
	if err != nil {
		msg := apperror.As(err).First().Message
		return apperror.Validation("type", fmt.Sprintf("cannot change type from RAW: %s", msg))
	}
	return nil
}

// requireRaw is the cross-entity rule for material references.
func requireRaw(tx *gorm.DB, field string, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := repository.NewRepo[model.InventoryItem](tx, "InventoryItem").Get(field, id)
	if err != nil {
		return nil, err
	}
	if item.Type != valuation.TagRawMaterial {
		return nil, apperror.Validation(field, "material must be an inventory item of type RAW")
	}
	return item, nil
}

func stockPayload(v *model.InventoryItem) map[string]interface{} {
	return map[string]interface{}{
		"id":     v.ID,
		"name":   v.Name,
		"type":   v.Type,
		"stock":  v.Stock,
		"status": v.Status,
	}
}
