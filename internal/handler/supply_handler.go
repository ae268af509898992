package handler

import "go-carpet-shop/internal/service"

type SupplyModule struct {
	services *service.SupplyServices
}

func NewSupplyModule(s *service.SupplyServices) *SupplyModule {
	return &SupplyModule{services: s}
}

func (m *SupplyModule) Register(r *Router) {
	Resource(r, "/suppliers", "Supplier", m.services.Suppliers)
	Resource(r, "/materials-by-supplier", "MaterialBySupplier", m.services.MaterialBySuppliers)
	Resource(r, "/material-orders", "MaterialOrder", m.services.MaterialOrders)
	Resource(r, "/order-details", "OrderDetail", m.services.OrderDetails)
}
