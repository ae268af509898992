package handler

import "go-carpet-shop/internal/service"

// SaleModule serves payment and delivery methods, sales and their lines.
type SaleModule struct {
	services *service.SaleServices
}

func NewSaleModule(s *service.SaleServices) *SaleModule {
	return &SaleModule{services: s}
}

func (m *SaleModule) Register(r *Router) {
	Resource(r, "/pay-methods", "PayMethod", m.services.PayMethods)
	Resource(r, "/delivery-methods", "DeliveryMethod", m.services.DeliveryMethods)
	Resource(r, "/sales", "Sale", m.services.Sales)
	Resource(r, "/sale-details", "SaleDetail", m.services.SaleDetails)
	Resource(r, "/sale-detail-options", "SaleDetailOption", m.services.SaleDetailOptions)
}
