package handler

import "go-carpet-shop/internal/service"

// ProductModule serves the vehicle catalogue, categories, options and carpets.
type ProductModule struct {
	services *service.ProductServices
}

func NewProductModule(s *service.ProductServices) *ProductModule {
	return &ProductModule{services: s}
}

func (m *ProductModule) Register(r *Router) {
	Resource(r, "/car-types", "CarType", m.services.CarTypes)
	Resource(r, "/car-makes", "CarMake", m.services.CarMakes)
	Resource(r, "/car-models", "CarModel", m.services.CarModels)
	Resource(r, "/product-categories", "ProductCategory", m.services.Categories)
	Resource(r, "/custom-options", "CustomOption", m.services.CustomOptions)
	Resource(r, "/custom-option-details", "CustomOptionDetail", m.services.CustomOptionDetails)
	Resource(r, "/carpets", "Carpet", m.services.Carpets)
}
