package handler

import "go-carpet-shop/internal/service"

// InventoryModule serves inventory items. Stock changes are broadcast by the
// service, so the routes are plain CRUD.
type InventoryModule struct {
	service service.InventoryService
}

func NewInventoryModule(s service.InventoryService) *InventoryModule {
	return &InventoryModule{service: s}
}

func (m *InventoryModule) Register(r *Router) {
	Resource(r, "/inventory-items", "InventoryItem", m.service)
}
