package service

import (
	"time"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreatePayMethodRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdatePayMethodRequest struct {
	Name *string `json:"name"`
}

type CreateDeliveryMethodRequest struct {
	Name  string           `json:"name" validate:"required"`
	Price *decimal.Decimal `json:"price" validate:"required,gte=0"`
}

type UpdateDeliveryMethodRequest struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
}

// CreateSaleRequest defaults UserID to the caller.
type CreateSaleRequest struct {
	UserID           *uuid.UUID `json:"user_id"`
	PayMethodID      uuid.UUID  `json:"pay_method_id" validate:"uuid_required"`
	DeliveryMethodID uuid.UUID  `json:"delivery_method_id" validate:"uuid_required"`
}

type UpdateSaleRequest struct {
	UserID           *uuid.UUID `json:"user_id"`
	PayMethodID      *uuid.UUID `json:"pay_method_id"`
	DeliveryMethodID *uuid.UUID `json:"delivery_method_id"`
}

type CreateSaleDetailRequest struct {
	SaleID   uuid.UUID `json:"sale_id" validate:"uuid_required"`
	CarpetID uuid.UUID `json:"carpet_id" validate:"uuid_required"`
	Quantity int       `json:"quantity" validate:"required,gte=1"`
}

type UpdateSaleDetailRequest struct {
	SaleID   *uuid.UUID `json:"sale_id"`
	CarpetID *uuid.UUID `json:"carpet_id"`
	Quantity *int       `json:"quantity" validate:"omitempty,gte=1"`
}

type CreateSaleDetailOptionRequest struct {
	SaleDetailID          uuid.UUID   `json:"sale_detail_id" validate:"uuid_required"`
	CustomOptionDetailIDs []uuid.UUID `json:"custom_option_detail_ids"`
}

type UpdateSaleDetailOptionRequest struct {
	SaleDetailID                *uuid.UUID  `json:"sale_detail_id"`
	AddCustomOptionDetailIDs    []uuid.UUID `json:"add_custom_option_detail_ids"`
	RemoveCustomOptionDetailIDs []uuid.UUID `json:"remove_custom_option_detail_ids"`
}

type (
	PayMethodService        = CRUD[model.PayMethod, CreatePayMethodRequest, UpdatePayMethodRequest]
	DeliveryMethodService   = CRUD[model.DeliveryMethod, CreateDeliveryMethodRequest, UpdateDeliveryMethodRequest]
	SaleService             = CRUD[model.Sale, CreateSaleRequest, UpdateSaleRequest]
	SaleDetailService       = CRUD[model.SaleDetail, CreateSaleDetailRequest, UpdateSaleDetailRequest]
	SaleDetailOptionService = CRUD[model.SaleDetailOption, CreateSaleDetailOptionRequest, UpdateSaleDetailOptionRequest]
)

// SaleServices groups the services of the sales app.
type SaleServices struct {
	PayMethods        PayMethodService
	DeliveryMethods   DeliveryMethodService
	Sales             SaleService
	SaleDetails       SaleDetailService
	SaleDetailOptions SaleDetailOptionService
}

var (
	deliveryMethodSpec = query.Spec{Fields: map[string]query.Field{
		"name":  {Column: "name", Kind: query.String, Lookups: query.Text},
		"price": {Column: "price", Kind: query.Decimal, Lookups: query.Range},
	}}
	saleSpec = query.Spec{Fields: map[string]query.Field{
		"user":            {Column: "user_id", Kind: query.UUID, Lookups: query.Ref},
		"pay_method":      {Column: "pay_method_id", Kind: query.UUID, Lookups: query.Ref},
		"delivery_method": {Column: "delivery_method_id", Kind: query.UUID, Lookups: query.Ref},
		"date":            {Column: "date", Kind: query.Time, Lookups: query.Dates},
	}, Order: "date DESC, id ASC"}
	saleDetailSpec = query.Spec{Fields: map[string]query.Field{
		"sale":     {Column: "sale_id", Kind: query.UUID, Lookups: query.Ref},
		"carpet":   {Column: "carpet_id", Kind: query.UUID, Lookups: query.Ref},
		"quantity": {Column: "quantity", Kind: query.Int, Lookups: query.Range},
	}}
	saleDetailOptionSpec = query.Spec{Fields: map[string]query.Field{
		"sale_detail": {Column: "sale_detail_id", Kind: query.UUID, Lookups: query.Ref},
	}}
)

// lineTables names the tables behind a container's lines, their option rows and
// the option-detail links, so whole subtrees can be removed explicitly.
type lineTables struct {
	lines, options string
	optionFK       string
	links, linkFK  string
}

var (
	saleLines = lineTables{
		lines: "sale_details", options: "sale_detail_options", optionFK: "sale_detail_id",
		links: "sale_detail_option_details", linkFK: "sale_detail_option_id",
	}
	cartLines = lineTables{
		lines: "shopping_cart_items", options: "shopping_cart_item_options", optionFK: "shopping_cart_item_id",
		links: "cart_item_option_details", linkFK: "shopping_cart_item_option_id",
	}
)

// purge deletes every line whose column equals value, with its options.
func (t lineTables) purge(tx *gorm.DB, column string, value uuid.UUID) error {
	var ids []uuid.UUID
	if err := tx.Table(t.lines).Where(column+" = ?", value).Pluck("id", &ids).Error; err != nil {
		return apperror.FromDB(err, t.lines)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := t.purgeOptions(tx, ids); err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM "+t.lines+" WHERE id IN ?", ids).Error; err != nil {
		return apperror.FromDB(err, t.lines)
	}
	return nil
}

// purgeOptions deletes the option rows of the given lines and their links.
func (t lineTables) purgeOptions(tx *gorm.DB, lineIDs []uuid.UUID) error {
	var ids []uuid.UUID
	if err := tx.Table(t.options).Where(t.optionFK+" IN ?", lineIDs).Pluck("id", &ids).Error; err != nil {
		return apperror.FromDB(err, t.options)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM "+t.links+" WHERE "+t.linkFK+" IN ?", ids).Error; err != nil {
		return apperror.FromDB(err, t.links)
	}
	if err := tx.Exec("DELETE FROM "+t.options+" WHERE id IN ?", ids).Error; err != nil {
		return apperror.FromDB(err, t.options)
	}
	return nil
}

func purgeCartItems(tx *gorm.DB, column string, value uuid.UUID) error {
	return cartLines.purge(tx, column, value)
}

func NewSaleServices(db *gorm.DB) *SaleServices {
	payMethods := newNamedCRUD[model.PayMethod, CreatePayMethodRequest, UpdatePayMethodRequest](db, "PayMethod",
		func(r *CreatePayMethodRequest) string { return r.Name },
		func(r *UpdatePayMethodRequest) *string { return r.Name },
		func(v *model.PayMethod) *string { return &v.Name },
	)
	payMethods.guards = []repository.Guard{repository.Restrict(&model.Sale{}, "pay_method_id", "sales")}

	deliveryMethods := newCRUD[model.DeliveryMethod, CreateDeliveryMethodRequest, UpdateDeliveryMethodRequest](db, "DeliveryMethod", deliveryMethodSpec)
	deliveryMethods.build = func(tx *gorm.DB, req *CreateDeliveryMethodRequest, actor string) (*model.DeliveryMethod, error) {
		n, err := productName("name", req.Name)
		if err != nil {
			return nil, err
		}
		return &model.DeliveryMethod{Name: n, Price: *req.Price}, nil
	}
	deliveryMethods.patch = func(tx *gorm.DB, v *model.DeliveryMethod, req *UpdateDeliveryMethodRequest) error {
		if req.Name != nil {
			n, err := productName("name", *req.Name)
			if err != nil {
				return err
			}
			v.Name = n
		}
		if req.Price != nil {
			v.Price = *req.Price
		}
		return nil
	}
	deliveryMethods.guards = []repository.Guard{repository.Restrict(&model.Sale{}, "delivery_method_id", "sales")}

	return &SaleServices{
		PayMethods:        payMethods,
		DeliveryMethods:   deliveryMethods,
		Sales:             newSaleCRUD(db),
		SaleDetails:       newSaleDetailCRUD(db),
		SaleDetailOptions: newSaleDetailOptionCRUD(db),
	}
}

func newSaleCRUD(db *gorm.DB) *crud[model.Sale, CreateSaleRequest, UpdateSaleRequest] {
	s := newCRUD[model.Sale, CreateSaleRequest, UpdateSaleRequest](db, "Sale", saleSpec,
		"PayMethod", "DeliveryMethod", "Details.Carpet", "Details.Options.CustomOptionDetails")
	s.build = func(tx *gorm.DB, req *CreateSaleRequest, actor string) (*model.Sale, error) {
		userID, err := owner(tx, req.UserID, actor)
		if err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.PayMethod](tx, "PayMethod").Get("pay_method_id", req.PayMethodID); err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.DeliveryMethod](tx, "DeliveryMethod").Get("delivery_method_id", req.DeliveryMethodID); err != nil {
			return nil, err
		}
		return &model.Sale{
			UserID:           userID,
			PayMethodID:      req.PayMethodID,
			DeliveryMethodID: req.DeliveryMethodID,
			Date:             time.Now(),
		}, nil
	}
	s.patch = func(tx *gorm.DB, v *model.Sale, req *UpdateSaleRequest) error {
		if req.UserID != nil {
			if _, err := repository.NewRepo[model.User](tx, "User").Get("user_id", *req.UserID); err != nil {
				return err
			}
			v.UserID, v.User = *req.UserID, nil
		}
		if req.PayMethodID != nil {
			if _, err := repository.NewRepo[model.PayMethod](tx, "PayMethod").Get("pay_method_id", *req.PayMethodID); err != nil {
				return err
			}
			v.PayMethodID, v.PayMethod = *req.PayMethodID, nil
		}
		if req.DeliveryMethodID != nil {
			if _, err := repository.NewRepo[model.DeliveryMethod](tx, "DeliveryMethod").Get("delivery_method_id", *req.DeliveryMethodID); err != nil {
				return err
			}
			v.DeliveryMethodID, v.DeliveryMethod = *req.DeliveryMethodID, nil
		}
		return nil
	}
	s.beforeDel = func(tx *gorm.DB, v *model.Sale) error {
		return saleLines.purge(tx, "sale_id", v.ID)
	}
	return s
}

// owner resolves the user a sale or cart belongs to, defaulting to the caller.
func owner(tx *gorm.DB, userID *uuid.UUID, actor string) (uuid.UUID, error) {
	id := uuid.Nil
	if userID != nil {
		id = *userID
	} else {
		var err error
		if id, err = actorID("user_id", actor); err != nil {
			return uuid.Nil, err
		}
	}
	if _, err := repository.NewRepo[model.User](tx, "User").Get("user_id", id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func newSaleDetailCRUD(db *gorm.DB) *crud[model.SaleDetail, CreateSaleDetailRequest, UpdateSaleDetailRequest] {
	s := newCRUD[model.SaleDetail, CreateSaleDetailRequest, UpdateSaleDetailRequest](db, "SaleDetail", saleDetailSpec,
		"Carpet", "Options.CustomOptionDetails")
	s.build = func(tx *gorm.DB, req *CreateSaleDetailRequest, actor string) (*model.SaleDetail, error) {
		if _, err := repository.NewRepo[model.Sale](tx, "Sale").Get("sale_id", req.SaleID); err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.Carpet](tx, "Carpet").Get("carpet_id", req.CarpetID); err != nil {
			return nil, err
		}
		return &model.SaleDetail{SaleID: req.SaleID, CarpetID: req.CarpetID, Quantity: req.Quantity}, nil
	}
	s.patch = func(tx *gorm.DB, v *model.SaleDetail, req *UpdateSaleDetailRequest) error {
		if req.SaleID != nil {
			if _, err := repository.NewRepo[model.Sale](tx, "Sale").Get("sale_id", *req.SaleID); err != nil {
				return err
			}
			v.SaleID = *req.SaleID
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
	s.beforeDel = func(tx *gorm.DB, v *model.SaleDetail) error {
		return saleLines.purgeOptions(tx, []uuid.UUID{v.ID})
	}
	return s
}

func newSaleDetailOptionCRUD(db *gorm.DB) *crud[model.SaleDetailOption, CreateSaleDetailOptionRequest, UpdateSaleDetailOptionRequest] {
	s := newCRUD[model.SaleDetailOption, CreateSaleDetailOptionRequest, UpdateSaleDetailOptionRequest](db, "SaleDetailOption", saleDetailOptionSpec,
		"CustomOptionDetails")
	s.build = func(tx *gorm.DB, req *CreateSaleDetailOptionRequest, actor string) (*model.SaleDetailOption, error) {
		if _, err := repository.NewRepo[model.SaleDetail](tx, "SaleDetail").Get("sale_detail_id", req.SaleDetailID); err != nil {
			return nil, err
		}
		return &model.SaleDetailOption{SaleDetailID: req.SaleDetailID}, nil
	}
	s.afterCreate = func(tx *gorm.DB, v *model.SaleDetailOption, req *CreateSaleDetailOptionRequest) error {
		return linkDetails(tx, v, req.CustomOptionDetailIDs, "custom_option_detail_ids")
	}
	s.patch = func(tx *gorm.DB, v *model.SaleDetailOption, req *UpdateSaleDetailOptionRequest) error {
		if req.SaleDetailID != nil {
			if _, err := repository.NewRepo[model.SaleDetail](tx, "SaleDetail").Get("sale_detail_id", *req.SaleDetailID); err != nil {
				return err
			}
			v.SaleDetailID = *req.SaleDetailID
		}
		return nil
	}
	s.afterUpdate = func(tx *gorm.DB, v *model.SaleDetailOption, req *UpdateSaleDetailOptionRequest) error {
		if err := linkDetails(tx, v, req.AddCustomOptionDetailIDs, "add_custom_option_detail_ids"); err != nil {
			return err
		}
		return unlinkDetails(tx, v, req.RemoveCustomOptionDetailIDs, "remove_custom_option_detail_ids")
	}
	s.beforeDel = func(tx *gorm.DB, v *model.SaleDetailOption) error {
		return clearDetails(tx, v)
	}
	return s
}

// linkDetails attaches option details to a sale or cart option row; owner must
// have a CustomOptionDetails many2many field.
func linkDetails(tx *gorm.DB, owner interface{}, ids []uuid.UUID, field string) error {
	if len(ids) == 0 {
		return nil
	}
	details, err := repository.NewRepo[model.CustomOptionDetail](tx, "CustomOptionDetail").GetMany(field, ids)
	if err != nil {
		return err
	}
	if err := tx.Model(owner).Omit("CustomOptionDetails.*").Association("CustomOptionDetails").Append(details); err != nil {
		return apperror.FromDB(err, "CustomOptionDetail")
	}
	return nil
}

func unlinkDetails(tx *gorm.DB, owner interface{}, ids []uuid.UUID, field string) error {
	if len(ids) == 0 {
		return nil
	}
	details, err := repository.NewRepo[model.CustomOptionDetail](tx, "CustomOptionDetail").GetMany(field, ids)
	if err != nil {
		return err
	}
	if err := tx.Model(owner).Association("CustomOptionDetails").Delete(details); err != nil {
		return apperror.FromDB(err, "CustomOptionDetail")
	}
	return nil
}

func clearDetails(tx *gorm.DB, owner interface{}) error {
	if err := tx.Model(owner).Association("CustomOptionDetails").Clear(); err != nil {
		return apperror.FromDB(err, "CustomOptionDetail")
	}
	return nil
}
