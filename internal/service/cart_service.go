package service

import (
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateShoppingCartRequest defaults UserID to the caller.
type CreateShoppingCartRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

type UpdateShoppingCartRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

type CreateShoppingCartItemRequest struct {
	ShoppingCartID uuid.UUID `json:"shopping_cart_id" validate:"uuid_required"`
	CarpetID       uuid.UUID `json:"carpet_id" validate:"uuid_required"`
	Quantity       int       `json:"quantity" validate:"required,gte=1"`
}

type UpdateShoppingCartItemRequest struct {
	ShoppingCartID *uuid.UUID `json:"shopping_cart_id"`
	CarpetID       *uuid.UUID `json:"carpet_id"`
	Quantity       *int       `json:"quantity" validate:"omitempty,gte=1"`
}

type CreateCartItemOptionRequest struct {
	ShoppingCartItemID    uuid.UUID   `json:"shopping_cart_item_id" validate:"uuid_required"`
	CustomOptionDetailIDs []uuid.UUID `json:"custom_option_detail_ids"`
}

type UpdateCartItemOptionRequest struct {
	ShoppingCartItemID          *uuid.UUID  `json:"shopping_cart_item_id"`
	AddCustomOptionDetailIDs    []uuid.UUID `json:"add_custom_option_detail_ids"`
	RemoveCustomOptionDetailIDs []uuid.UUID `json:"remove_custom_option_detail_ids"`
}

type (
	ShoppingCartService     = CRUD[model.ShoppingCart, CreateShoppingCartRequest, UpdateShoppingCartRequest]
	ShoppingCartItemService = CRUD[model.ShoppingCartItem, CreateShoppingCartItemRequest, UpdateShoppingCartItemRequest]
	CartItemOptionService   = CRUD[model.ShoppingCartItemOption, CreateCartItemOptionRequest, UpdateCartItemOptionRequest]
)

// CartServices groups the services of the shopping carts app.
type CartServices struct {
	Carts       ShoppingCartService
	Items       ShoppingCartItemService
	ItemOptions CartItemOptionService
}

var (
	cartSpec = query.Spec{Fields: map[string]query.Field{
		"user":       {Column: "user_id", Kind: query.UUID, Lookups: query.Ref},
		"created_at": {Column: "created_at", Kind: query.Time, Lookups: query.Dates},
	}}
	cartItemSpec = query.Spec{Fields: map[string]query.Field{
		"shopping_cart": {Column: "shopping_cart_id", Kind: query.UUID, Lookups: query.Ref},
		"carpet":        {Column: "carpet_id", Kind: query.UUID, Lookups: query.Ref},
		"quantity":      {Column: "quantity", Kind: query.Int, Lookups: query.Range},
	}}
	cartItemOptionSpec = query.Spec{Fields: map[string]query.Field{
		"shopping_cart_item": {Column: "shopping_cart_item_id", Kind: query.UUID, Lookups: query.Ref},
	}}
)

func NewCartServices(db *gorm.DB) *CartServices {
	carts := newCRUD[model.ShoppingCart, CreateShoppingCartRequest, UpdateShoppingCartRequest](db, "ShoppingCart", cartSpec,
		"Items.Carpet", "Items.Options.CustomOptionDetails")
	carts.build = func(tx *gorm.DB, req *CreateShoppingCartRequest, actor string) (*model.ShoppingCart, error) {
		userID, err := owner(tx, req.UserID, actor)
		if err != nil {
			return nil, err
		}
		return &model.ShoppingCart{UserID: userID}, nil
	}
	carts.patch = func(tx *gorm.DB, v *model.ShoppingCart, req *UpdateShoppingCartRequest) error {
		if _, err := repository.NewRepo[model.User](tx, "User").Get("user_id", *req.UserID); err != nil {
			return err
		}
		v.UserID, v.User = *req.UserID, nil
		return nil
	}
	carts.beforeDel = func(tx *gorm.DB, v *model.ShoppingCart) error {
		return cartLines.purge(tx, "shopping_cart_id", v.ID)
	}

	items := newCRUD[model.ShoppingCartItem, CreateShoppingCartItemRequest, UpdateShoppingCartItemRequest](db, "ShoppingCartItem", cartItemSpec,
		"Carpet", "Options.CustomOptionDetails")
	items.build = func(tx *gorm.DB, req *CreateShoppingCartItemRequest, actor string) (*model.ShoppingCartItem, error) {
		if _, err := repository.NewRepo[model.ShoppingCart](tx, "ShoppingCart").Get("shopping_cart_id", req.ShoppingCartID); err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.Carpet](tx, "Carpet").Get("carpet_id", req.CarpetID); err != nil {
			return nil, err
		}
		return &model.ShoppingCartItem{ShoppingCartID: req.ShoppingCartID, CarpetID: req.CarpetID, Quantity: req.Quantity}, nil
	}
	items.patch = func(tx *gorm.DB, v *model.ShoppingCartItem, req *UpdateShoppingCartItemRequest) error {
		if req.ShoppingCartID != nil {
			if _, err := repository.NewRepo[model.ShoppingCart](tx, "ShoppingCart").Get("shopping_cart_id", *req.ShoppingCartID); err != nil {
				return err
			}
			v.ShoppingCartID = *req.ShoppingCartID
		}
		if req.CarpetID != nil {
			if _, err := repository.NewRepo[model.Carpet](tx, "Carpet").Get("carpet_id", *req.CarpetID); err != nil {
				return err
			}
			v.CarpetID, v.Carpet = *req.CarpetID, nil
		}
		if req.Quantity != nil {
			v.Quantity = *req.Quantity
		}
		return nil
	}
	items.beforeDel = func(tx *gorm.DB, v *model.ShoppingCartItem) error {
		return cartLines.purgeOptions(tx, []uuid.UUID{v.ID})
	}

	options := newCRUD[model.ShoppingCartItemOption, CreateCartItemOptionRequest, UpdateCartItemOptionRequest](db, "ShoppingCartItemOption", cartItemOptionSpec,
		"CustomOptionDetails")
	options.build = func(tx *gorm.DB, req *CreateCartItemOptionRequest, actor string) (*model.ShoppingCartItemOption, error) {
		if _, err := repository.NewRepo[model.ShoppingCartItem](tx, "ShoppingCartItem").Get("shopping_cart_item_id", req.ShoppingCartItemID); err != nil {
			return nil, err
		}
		return &model.ShoppingCartItemOption{ShoppingCartItemID: req.ShoppingCartItemID}, nil
	}
	options.afterCreate = func(tx *gorm.DB, v *model.ShoppingCartItemOption, req *CreateCartItemOptionRequest) error {
		return linkDetails(tx, v, req.CustomOptionDetailIDs, "custom_option_detail_ids")
	}
	options.patch = func(tx *gorm.DB, v *model.ShoppingCartItemOption, req *UpdateCartItemOptionRequest) error {
		if req.ShoppingCartItemID != nil {
			if _, err := repository.NewRepo[model.ShoppingCartItem](tx, "ShoppingCartItem").Get("shopping_cart_item_id", *req.ShoppingCartItemID); err != nil {
				return err
			}
			v.ShoppingCartItemID = *req.ShoppingCartItemID
		}
		return nil
	}
	options.afterUpdate = func(tx *gorm.DB, v *model.ShoppingCartItemOption, req *UpdateCartItemOptionRequest) error {
		if err := linkDetails(tx, v, req.AddCustomOptionDetailIDs, "add_custom_option_detail_ids"); err != nil {
			return err
		}
		return unlinkDetails(tx, v, req.RemoveCustomOptionDetailIDs, "remove_custom_option_detail_ids")
	}
	options.beforeDel = func(tx *gorm.DB, v *model.ShoppingCartItemOption) error {
		return clearDetails(tx, v)
	}

	return &CartServices{Carts: carts, Items: items, ItemOptions: options}
}
