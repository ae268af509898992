package service

import (
	"strings"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateCarpetRequest struct {
	ImageLink       string                             `json:"image_link" validate:"required,url"`
	Price           *decimal.Decimal                   `json:"price" validate:"required,gte=0"`
	Category        *Ref[CreateProductCategoryRequest] `json:"category" validate:"required"`
	CarModel        *Ref[CreateCarModelRequest]        `json:"car_model" validate:"required"`
	Material        *Ref[CreateInventoryItemRequest]   `json:"material" validate:"required"`
	InventoryItem   *Ref[CreateInventoryItemRequest]   `json:"inventory_item" validate:"required"`
	CustomOptionIDs []uuid.UUID                        `json:"custom_option_ids"`
}

type UpdateCarpetRequest struct {
	ImageLink             *string                            `json:"image_link" validate:"omitempty,url"`
	Price                 *decimal.Decimal                   `json:"price" validate:"omitempty,gte=0"`
	Category              *Ref[CreateProductCategoryRequest] `json:"category"`
	CarModel              *Ref[CreateCarModelRequest]        `json:"car_model"`
	Material              *Ref[CreateInventoryItemRequest]   `json:"material"`
	InventoryItem         *UpdateInventoryItemRequest        `json:"inventory_item"`
	AddCustomOptionIDs    []uuid.UUID                        `json:"add_custom_option_ids"`
	RemoveCustomOptionIDs []uuid.UUID                        `json:"remove_custom_option_ids"`
}

type CarpetService = CRUD[model.Carpet, CreateCarpetRequest, UpdateCarpetRequest]

var carpetSpec = query.Spec{Fields: map[string]query.Field{
	"image_link": {Column: "image_link", Kind: query.String, Lookups: query.Text},
	"price":      {Column: "price", Kind: query.Decimal, Lookups: query.Numeric},
	"category":   {Column: "category_id", Kind: query.UUID, Lookups: query.Ref},
	"car_model":  {Column: "car_model_id", Kind: query.UUID, Lookups: query.Ref},
	"material":   {Column: "material_id", Kind: query.UUID, Lookups: query.Ref},
	"created_at": {Column: "created_at", Kind: query.Time, Lookups: query.Dates},
}}

var carpetPreloads = []string{"Category", "CarModel.CarType", "CarModel.CarMake", "InventoryItem", "Material", "CustomOptions"}

type inventoryCRUD = crud[model.InventoryItem, CreateInventoryItemRequest, UpdateInventoryItemRequest]

// carpetService orchestrates the carpet aggregate: its own inventory item, the
// category and car model it may create inline, and its option links. Reads and
// the guarded delete of the row itself come from the embedded crud.
type carpetService struct {
	*crud[model.Carpet, CreateCarpetRequest, UpdateCarpetRequest]

	categories *categoryCRUD
	carModels  *carModelCRUD
	inventory  *inventoryCRUD
	notifier   Notifier
}

func newCarpetService(db *gorm.DB, categories *categoryCRUD, carModels *carModelCRUD, inventory *inventoryCRUD, notifier Notifier) *carpetService {
	s := &carpetService{
		crud:       newCRUD[model.Carpet, CreateCarpetRequest, UpdateCarpetRequest](db, "Carpet", carpetSpec, carpetPreloads...),
		categories: categories,
		carModels:  carModels,
		inventory:  inventory,
		notifier:   notifier,
	}
	s.guards = []repository.Guard{repository.Restrict(&model.SaleDetail{}, "carpet_id", "sale lines")}
	s.beforeDel = s.detach
	return s
}

func (s *carpetService) Create(req *CreateCarpetRequest, actor string) (*model.Carpet, error) {
	var created *model.Carpet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := apperror.Check(req); err != nil {
			return err
		}
		categoryID, err := resolve(tx, "category", req.Category, s.categories, actor)
		if err != nil {
			return err
		}
		carModelID, err := resolve(tx, "car_model", req.CarModel, s.carModels, actor)
		if err != nil {
			return err
		}
		materialID, err := resolve(tx, "material", req.Material, s.inventory, actor)
		if err != nil {
			return err
		}
		if _, err := requireRaw(tx, "material", materialID); err != nil {
			return err
		}
		itemID, err := s.ownItem(tx, req.InventoryItem, actor)
		if err != nil {
			return err
		}
		if itemID == materialID {
			return apperror.Validation("inventory_item", "must differ from the material")
		}

		c := &model.Carpet{
			ImageLink:       strings.TrimSpace(req.ImageLink),
			Price:           *req.Price,
			CategoryID:      categoryID,
			CarModelID:      carModelID,
			InventoryItemID: itemID,
			MaterialID:      materialID,
		}
		stamp(c, actor)
		if err := s.repo.WithTx(tx).Create(c); err != nil {
			return err
		}
		if err := s.linkOptions(tx, c, req.CustomOptionIDs, "custom_option_ids"); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	out, err := s.Get(created.ID)
	if err != nil {
		return nil, err
	}
	s.publishItem("created", out.InventoryItem)
	return out, nil
}

// ownItem resolves the carpet's stock row. An existing item may be attached only
// while no other carpet owns it.
func (s *carpetService) ownItem(tx *gorm.DB, ref *Ref[CreateInventoryItemRequest], actor string) (uuid.UUID, error) {
	id, err := resolve(tx, "inventory_item", ref, s.inventory, actor)
	if err != nil {
		return uuid.Nil, err
	}
	if ref.ID == nil {
		return id, nil
	}
	var n int64
	if err := tx.Model(&model.Carpet{}).Where("inventory_item_id = ?", id).Count(&n).Error; err != nil {
		return uuid.Nil, apperror.FromDB(err, "Carpet")
	}
	if n > 0 {
		return uuid.Nil, apperror.Integrity("inventory_item", "inventory item is already bound to another carpet")
	}
	return id, nil
}

func (s *carpetService) Update(id uuid.UUID, req *UpdateCarpetRequest, actor string) (*model.Carpet, error) {
	touched := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if !validator.HasAnyField(req) {
			return apperror.Invalid("", "At least one field required")
		}
		if err := apperror.Check(req); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		c, err := repo.FindByID(id)
		if err != nil {
			return err
		}
		if req.ImageLink != nil {
			c.ImageLink = strings.TrimSpace(*req.ImageLink)
		}
		if req.Price != nil {
			c.Price = *req.Price
		}
		if req.Category != nil {
			if c.CategoryID, err = resolve(tx, "category", req.Category, s.categories, actor); err != nil {
				return err
			}
		}
		if req.CarModel != nil {
			if c.CarModelID, err = resolve(tx, "car_model", req.CarModel, s.carModels, actor); err != nil {
				return err
			}
		}
		if req.Material != nil {
			if c.MaterialID, err = resolve(tx, "material", req.Material, s.inventory, actor); err != nil {
				return err
			}
			if _, err := requireRaw(tx, "material", c.MaterialID); err != nil {
				return err
			}
			if c.MaterialID == c.InventoryItemID {
				return apperror.Validation("material", "must differ from the carpet's inventory item")
			}
		}
		if req.InventoryItem != nil {
			if _, err := s.inventory.updateTx(tx, c.InventoryItemID, req.InventoryItem, actor); err != nil {
				return nest("inventory_item", err)
			}
			touched = true
		}
		stamp(c, actor)
		if err := repo.Save(c); err != nil {
			return err
		}
		if err := s.linkOptions(tx, c, req.AddCustomOptionIDs, "add_custom_option_ids"); err != nil {
			return err
		}
		return s.unlinkOptions(tx, c, req.RemoveCustomOptionIDs, "remove_custom_option_ids")
	})
	if err != nil {
		return nil, err
	}
	out, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if touched {
		s.publishItem("updated", out.InventoryItem)
	}
	return out, nil
}

// Delete removes the carpet and then its inventory item as one unit; a guard on
// either side keeps both rows.
func (s *carpetService) Delete(id uuid.UUID, actor string) error {
	var item *model.InventoryItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.deleteTx(tx, id)
		if err != nil {
			return err
		}
		item, err = s.inventory.deleteTx(tx, c.InventoryItemID)
		return err
	})
	if err != nil {
		return err
	}
	s.publishItem("deleted", item)
	return nil
}

// detach checks the sale guard first, then drops the option links and the cart
// lines that still point at the carpet.
func (s *carpetService) detach(tx *gorm.DB, c *model.Carpet) error {
	if err := repository.CheckRestrict(tx, "Carpet", c.ID, s.guards...); err != nil {
		return err
	}
	if err := tx.Model(c).Association("CustomOptions").Clear(); err != nil {
		return apperror.FromDB(err, "Carpet")
	}
	return purgeCartItems(tx, "carpet_id", c.ID)
}

func (s *carpetService) linkOptions(tx *gorm.DB, c *model.Carpet, ids []uuid.UUID, field string) error {
	if len(ids) == 0 {
		return nil
	}
	opts, err := repository.NewRepo[model.CustomOption](tx, "CustomOption").GetMany(field, ids)
	if err != nil {
		return err
	}
	if err := tx.Model(c).Omit("CustomOptions.*").Association("CustomOptions").Append(opts); err != nil {
		return apperror.FromDB(err, "Carpet")
	}
	return nil
}

func (s *carpetService) unlinkOptions(tx *gorm.DB, c *model.Carpet, ids []uuid.UUID, field string) error {
	if len(ids) == 0 {
		return nil
	}
	opts, err := repository.NewRepo[model.CustomOption](tx, "CustomOption").GetMany(field, ids)
	if err != nil {
		return err
	}
	if err := tx.Model(c).Association("CustomOptions").Delete(opts); err != nil {
		return apperror.FromDB(err, "Carpet")
	}
	return nil
}

func (s *carpetService) publishItem(action string, item *model.InventoryItem) {
	if item == nil {
		return
	}
	s.notifier.Publish("stock_update", "inventory_item_"+action, stockPayload(item))
}
