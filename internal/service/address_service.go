package service

import (
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateLocalityRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateLocalityRequest struct {
	Name *string `json:"name"`
}

type CreateNeighborhoodRequest struct {
	Name       string    `json:"name" validate:"required"`
	LocalityID uuid.UUID `json:"locality_id" validate:"uuid_required"`
}

type UpdateNeighborhoodRequest struct {
	Name       *string    `json:"name"`
	LocalityID *uuid.UUID `json:"locality_id"`
}

type CreateAddressRequest struct {
	Details        string    `json:"details" validate:"required,max=60"`
	NeighborhoodID uuid.UUID `json:"neighborhood_id" validate:"uuid_required"`
}

type UpdateAddressRequest struct {
	Details        *string    `json:"details" validate:"omitempty,max=60"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id"`
}

type (
	LocalityService     = CRUD[model.Locality, CreateLocalityRequest, UpdateLocalityRequest]
	NeighborhoodService = CRUD[model.Neighborhood, CreateNeighborhoodRequest, UpdateNeighborhoodRequest]
	AddressService      = CRUD[model.Address, CreateAddressRequest, UpdateAddressRequest]
)

// AddressServices groups the services of the addresses app.
type AddressServices struct {
	Localities    LocalityService
	Neighborhoods NeighborhoodService
	Addresses     AddressService

	addresses *crud[model.Address, CreateAddressRequest, UpdateAddressRequest]
}

var (
	localitySpec = query.Spec{Fields: map[string]query.Field{
		"name": {Column: "name", Kind: query.String, Lookups: query.Text},
	}}
	neighborhoodSpec = query.Spec{Fields: map[string]query.Field{
		"name":     {Column: "name", Kind: query.String, Lookups: query.Text},
		"locality": {Column: "locality_id", Kind: query.UUID, Lookups: query.Ref},
	}}
	addressSpec = query.Spec{Fields: map[string]query.Field{
		"details":      {Column: "details", Kind: query.String, Lookups: query.Text},
		"neighborhood": {Column: "neighborhood_id", Kind: query.UUID, Lookups: query.Ref},
	}}
)

func NewAddressServices(db *gorm.DB) *AddressServices {
	localities := newCRUD[model.Locality, CreateLocalityRequest, UpdateLocalityRequest](db, "Locality", localitySpec)
	localities.build = func(tx *gorm.DB, req *CreateLocalityRequest, actor string) (*model.Locality, error) {
		n, err := plainName("name", req.Name)
		if err != nil {
			return nil, err
		}
		return &model.Locality{Name: n}, nil
	}
	localities.patch = func(tx *gorm.DB, v *model.Locality, req *UpdateLocalityRequest) error {
		n, err := plainName("name", *req.Name)
		if err != nil {
			return err
		}
		v.Name = n
		return nil
	}
	localities.guards = []repository.Guard{
		repository.Restrict(&model.Neighborhood{}, "locality_id", "neighborhoods"),
	}

	neighborhoods := newCRUD[model.Neighborhood, CreateNeighborhoodRequest, UpdateNeighborhoodRequest](db, "Neighborhood", neighborhoodSpec, "Locality")
	neighborhoods.build = func(tx *gorm.DB, req *CreateNeighborhoodRequest, actor string) (*model.Neighborhood, error) {
		n, err := plainName("name", req.Name)
		if err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.Locality](tx, "Locality").Get("locality_id", req.LocalityID); err != nil {
			return nil, err
		}
		return &model.Neighborhood{Name: n, LocalityID: req.LocalityID}, nil
	}
	neighborhoods.patch = func(tx *gorm.DB, v *model.Neighborhood, req *UpdateNeighborhoodRequest) error {
		if req.Name != nil {
			n, err := plainName("name", *req.Name)
			if err != nil {
				return err
			}
			v.Name = n
		}
		if req.LocalityID != nil {
			if _, err := repository.NewRepo[model.Locality](tx, "Locality").Get("locality_id", *req.LocalityID); err != nil {
				return err
			}
			v.LocalityID = *req.LocalityID
			v.Locality = nil
		}
		return nil
	}
	neighborhoods.guards = []repository.Guard{
		repository.Restrict(&model.Address{}, "neighborhood_id", "addresses"),
	}

	addresses := newCRUD[model.Address, CreateAddressRequest, UpdateAddressRequest](db, "Address", addressSpec, "Neighborhood.Locality")
	addresses.build = buildAddress
	addresses.patch = patchAddress
	addresses.guards = []repository.Guard{
		repository.Restrict(&model.Supplier{}, "address_id", "suppliers"),
		repository.Restrict(&model.User{}, "address_id", "users"),
	}

	return &AddressServices{
		Localities:    localities,
		Neighborhoods: neighborhoods,
		Addresses:     addresses,
		addresses:     addresses,
	}
}

func buildAddress(tx *gorm.DB, req *CreateAddressRequest, actor string) (*model.Address, error) {
	details, err := text("details", req.Details, 60)
	if err != nil {
		return nil, err
	}
	if _, err := repository.NewRepo[model.Neighborhood](tx, "Neighborhood").Get("neighborhood_id", req.NeighborhoodID); err != nil {
		return nil, err
	}
	return &model.Address{Details: details, NeighborhoodID: req.NeighborhoodID}, nil
}

func patchAddress(tx *gorm.DB, v *model.Address, req *UpdateAddressRequest) error {
	if req.Details != nil {
		details, err := text("details", *req.Details, 60)
		if err != nil {
			return err
		}
		v.Details = details
	}
	if req.NeighborhoodID != nil {
		if _, err := repository.NewRepo[model.Neighborhood](tx, "Neighborhood").Get("neighborhood_id", *req.NeighborhoodID); err != nil {
			return err
		}
		v.NeighborhoodID = *req.NeighborhoodID
		v.Neighborhood = nil
	}
	return nil
}
