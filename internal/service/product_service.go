package service

import (
	"strings"

	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateCarTypeRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateCarTypeRequest struct {
	Name *string `json:"name"`
}

type CreateCarMakeRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateCarMakeRequest struct {
	Name *string `json:"name"`
}

type CreateCarModelRequest struct {
	Name   string    `json:"name" validate:"required"`
	Year   int       `json:"year" validate:"required"`
	TypeID uuid.UUID `json:"type_id" validate:"uuid_required"`
	MakeID uuid.UUID `json:"make_id" validate:"uuid_required"`
}

type UpdateCarModelRequest struct {
	Name   *string    `json:"name"`
	Year   *int       `json:"year"`
	TypeID *uuid.UUID `json:"type_id"`
	MakeID *uuid.UUID `json:"make_id"`
}

type CreateProductCategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	Discount int    `json:"discount" validate:"gte=0,lte=100"`
}

type UpdateProductCategoryRequest struct {
	Name     *string `json:"name"`
	Discount *int    `json:"discount" validate:"omitempty,gte=0,lte=100"`
}

type CreateCustomOptionRequest struct {
	Name        string `json:"name" validate:"required"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

type UpdateCustomOptionRequest struct {
	Name        *string `json:"name"`
	Required    *bool   `json:"required"`
	Description *string `json:"description"`
}

type CreateCustomOptionDetailRequest struct {
	Name           string           `json:"name" validate:"required"`
	ImageURL       string           `json:"image_url" validate:"required,url"`
	Price          *decimal.Decimal `json:"price" validate:"required,gte=0"`
	CustomOptionID uuid.UUID        `json:"custom_option_id" validate:"uuid_required"`
}

type UpdateCustomOptionDetailRequest struct {
	Name           *string          `json:"name"`
	ImageURL       *string          `json:"image_url" validate:"omitempty,url"`
	Price          *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	CustomOptionID *uuid.UUID       `json:"custom_option_id"`
}

type (
	CarTypeService            = CRUD[model.CarType, CreateCarTypeRequest, UpdateCarTypeRequest]
	CarMakeService            = CRUD[model.CarMake, CreateCarMakeRequest, UpdateCarMakeRequest]
	CarModelService           = CRUD[model.CarModel, CreateCarModelRequest, UpdateCarModelRequest]
	ProductCategoryService    = CRUD[model.ProductCategory, CreateProductCategoryRequest, UpdateProductCategoryRequest]
	CustomOptionService       = CRUD[model.CustomOption, CreateCustomOptionRequest, UpdateCustomOptionRequest]
	CustomOptionDetailService = CRUD[model.CustomOptionDetail, CreateCustomOptionDetailRequest, UpdateCustomOptionDetailRequest]
)

// ProductServices groups the services of the products app.
type ProductServices struct {
	CarTypes            CarTypeService
	CarMakes            CarMakeService
	CarModels           CarModelService
	Categories          ProductCategoryService
	CustomOptions       CustomOptionService
	CustomOptionDetails CustomOptionDetailService
	Carpets             CarpetService
}

var (
	nameSpec = query.Spec{Fields: map[string]query.Field{
		"name": {Column: "name", Kind: query.String, Lookups: query.Text},
	}}
	carModelSpec = query.Spec{Fields: map[string]query.Field{
		"name": {Column: "name", Kind: query.String, Lookups: query.Text},
		"year": {Column: "year", Kind: query.Int, Lookups: query.Numeric},
		"type": {Column: "car_type_id", Kind: query.UUID, Lookups: query.Ref},
		"make": {Column: "car_make_id", Kind: query.UUID, Lookups: query.Ref},
	}}
	categorySpec = query.Spec{Fields: map[string]query.Field{
		"name":     {Column: "name", Kind: query.String, Lookups: query.Text},
		"discount": {Column: "discount", Kind: query.Int, Lookups: query.Numeric},
	}}
	customOptionSpec = query.Spec{Fields: map[string]query.Field{
		"name":     {Column: "name", Kind: query.String, Lookups: query.Text},
		"required": {Column: "required", Kind: query.Bool, Lookups: query.Ref},
	}}
	customOptionDetailSpec = query.Spec{Fields: map[string]query.Field{
		"name":          {Column: "name", Kind: query.String, Lookups: query.Text},
		"image_url":     {Column: "image_url", Kind: query.String, Lookups: query.Text},
		"price":         {Column: "price", Kind: query.Decimal, Lookups: query.Numeric},
		"custom_option": {Column: "custom_option_id", Kind: query.UUID, Lookups: query.Ref},
	}}
)

func NewProductServices(db *gorm.DB, notifier Notifier) *ProductServices {
	carTypes := newNamedCRUD[model.CarType, CreateCarTypeRequest, UpdateCarTypeRequest](db, "CarType",
		func(r *CreateCarTypeRequest) string { return r.Name },
		func(r *UpdateCarTypeRequest) *string { return r.Name },
		func(v *model.CarType) *string { return &v.Name },
	)
	carTypes.guards = []repository.Guard{repository.Restrict(&model.CarModel{}, "car_type_id", "car models")}

	carMakes := newNamedCRUD[model.CarMake, CreateCarMakeRequest, UpdateCarMakeRequest](db, "CarMake",
		func(r *CreateCarMakeRequest) string { return r.Name },
		func(r *UpdateCarMakeRequest) *string { return r.Name },
		func(v *model.CarMake) *string { return &v.Name },
	)
	carMakes.guards = []repository.Guard{repository.Restrict(&model.CarModel{}, "car_make_id", "car models")}

	carModels := newCarModelCRUD(db)
	categories := newCategoryCRUD(db)

	options := newCRUD[model.CustomOption, CreateCustomOptionRequest, UpdateCustomOptionRequest](db, "CustomOption", customOptionSpec, "Details")
	options.build = func(tx *gorm.DB, req *CreateCustomOptionRequest, actor string) (*model.CustomOption, error) {
		n, err := productName("name", req.Name)
		if err != nil {
			return nil, err
		}
		return &model.CustomOption{Name: n, Required: req.Required, Description: strings.TrimSpace(req.Description)}, nil
	}
	options.patch = func(tx *gorm.DB, v *model.CustomOption, req *UpdateCustomOptionRequest) error {
		if req.Name != nil {
			n, err := productName("name", *req.Name)
			if err != nil {
				return err
			}
			v.Name = n
		}
		if req.Required != nil {
			v.Required = *req.Required
		}
		if req.Description != nil {
			v.Description = strings.TrimSpace(*req.Description)
		}
		return nil
	}
	options.guards = []repository.Guard{
		repository.Restrict(&model.CustomOptionDetail{}, "custom_option_id", "option details"),
		repository.RestrictTable("carpet_custom_options", "custom_option_id", "carpets"),
	}

	details := newCRUD[model.CustomOptionDetail, CreateCustomOptionDetailRequest, UpdateCustomOptionDetailRequest](db, "CustomOptionDetail", customOptionDetailSpec, "CustomOption")
	details.build = func(tx *gorm.DB, req *CreateCustomOptionDetailRequest, actor string) (*model.CustomOptionDetail, error) {
		n, err := productName("name", req.Name)
		if err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.CustomOption](tx, "CustomOption").Get("custom_option_id", req.CustomOptionID); err != nil {
			return nil, err
		}
		return &model.CustomOptionDetail{
			Name:           n,
			ImageURL:       strings.TrimSpace(req.ImageURL),
			Price:          *req.Price,
			CustomOptionID: req.CustomOptionID,
		}, nil
	}
	details.patch = func(tx *gorm.DB, v *model.CustomOptionDetail, req *UpdateCustomOptionDetailRequest) error {
		if req.Name != nil {
			n, err := productName("name", *req.Name)
			if err != nil {
				return err
			}
			v.Name = n
		}
		if req.ImageURL != nil {
			v.ImageURL = strings.TrimSpace(*req.ImageURL)
		}
		if req.Price != nil {
			v.Price = *req.Price
		}
		if req.CustomOptionID != nil {
			if _, err := repository.NewRepo[model.CustomOption](tx, "CustomOption").Get("custom_option_id", *req.CustomOptionID); err != nil {
				return err
			}
			v.CustomOptionID = *req.CustomOptionID
			v.CustomOption = nil
		}
		return nil
	}
	details.guards = []repository.Guard{
		repository.RestrictTable("sale_detail_option_details", "custom_option_detail_id", "sale options"),
		repository.RestrictTable("cart_item_option_details", "custom_option_detail_id", "cart options"),
	}

	inventory := newInventoryCRUD(db, notifier)

	return &ProductServices{
		CarTypes:            carTypes,
		CarMakes:            carMakes,
		CarModels:           carModels,
		Categories:          categories,
		CustomOptions:       options,
		CustomOptionDetails: details,
		Carpets:             newCarpetService(db, categories, carModels, inventory, notifier),
	}
}

// newNamedCRUD covers reference entities whose only field is a unique name.
func newNamedCRUD[T any, C any, U any](db *gorm.DB, entity string,
	createName func(*C) string, updateName func(*U) *string, field func(*T) *string,
) *crud[T, C, U] {
	s := newCRUD[T, C, U](db, entity, nameSpec)
	s.build = func(tx *gorm.DB, req *C, actor string) (*T, error) {
		n, err := productName("name", createName(req))
		if err != nil {
			return nil, err
		}
		v := new(T)
		*field(v) = n
		return v, nil
	}
	s.patch = func(tx *gorm.DB, v *T, req *U) error {
		n, err := productName("name", *updateName(req))
		if err != nil {
			return err
		}
		*field(v) = n
		return nil
	}
	return s
}

type carModelCRUD = crud[model.CarModel, CreateCarModelRequest, UpdateCarModelRequest]

func newCarModelCRUD(db *gorm.DB) *carModelCRUD {
	s := newCRUD[model.CarModel, CreateCarModelRequest, UpdateCarModelRequest](db, "CarModel", carModelSpec, "CarType", "CarMake")
	s.build = func(tx *gorm.DB, req *CreateCarModelRequest, actor string) (*model.CarModel, error) {
		n, err := productName("name", req.Name)
		if err != nil {
			return nil, err
		}
		if err := checkYear(req.Year); err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.CarType](tx, "CarType").Get("type_id", req.TypeID); err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.CarMake](tx, "CarMake").Get("make_id", req.MakeID); err != nil {
			return nil, err
		}
		return &model.CarModel{Name: n, Year: req.Year, CarTypeID: req.TypeID, CarMakeID: req.MakeID}, nil
	}
	s.patch = func(tx *gorm.DB, v *model.CarModel, req *UpdateCarModelRequest) error {
		if req.Name != nil {
			n, err := productName("name", *req.Name)
			if err != nil {
				return err
			}
			v.Name = n
		}
		if req.Year != nil {
			if err := checkYear(*req.Year); err != nil {
				return err
			}
			v.Year = *req.Year
		}
		if req.TypeID != nil {
			if _, err := repository.NewRepo[model.CarType](tx, "CarType").Get("type_id", *req.TypeID); err != nil {
				return err
			}
			v.CarTypeID, v.CarType = *req.TypeID, nil
		}
		if req.MakeID != nil {
			if _, err := repository.NewRepo[model.CarMake](tx, "CarMake").Get("make_id", *req.MakeID); err != nil {
				return err
			}
			v.CarMakeID, v.CarMake = *req.MakeID, nil
		}
		return nil
	}
	s.guards = []repository.Guard{repository.Restrict(&model.Carpet{}, "car_model_id", "carpets")}
	return s
}

type categoryCRUD = crud[model.ProductCategory, CreateProductCategoryRequest, UpdateProductCategoryRequest]

func newCategoryCRUD(db *gorm.DB) *categoryCRUD {
	s := newCRUD[model.ProductCategory, CreateProductCategoryRequest, UpdateProductCategoryRequest](db, "ProductCategory", categorySpec)
	s.build = func(tx *gorm.DB, req *CreateProductCategoryRequest, actor string) (*model.ProductCategory, error) {
		n, err := productName("name", req.Name)
		if err != nil {
			return nil, err
		}
		return &model.ProductCategory{Name: n, Discount: req.Discount}, nil
	}
	s.patch = func(tx *gorm.DB, v *model.ProductCategory, req *UpdateProductCategoryRequest) error {
		if req.Name != nil {
			n, err := productName("name", *req.Name)
			if err != nil {
				return err
			}
			v.Name = n
		}
		if req.Discount != nil {
			v.Discount = *req.Discount
		}
		return nil
	}
	s.guards = []repository.Guard{repository.Restrict(&model.Carpet{}, "category_id", "carpets")}
	return s
}
