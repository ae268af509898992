package handler

import "go-carpet-shop/internal/service"

// AddressModule serves localities, neighborhoods and addresses.
type AddressModule struct {
	services *service.AddressServices
}

func NewAddressModule(s *service.AddressServices) *AddressModule {
	return &AddressModule{services: s}
}

func (m *AddressModule) Register(r *Router) {
	Resource(r, "/localities", "Locality", m.services.Localities)
	Resource(r, "/neighborhoods", "Neighborhood", m.services.Neighborhoods)
	Resource(r, "/addresses", "Address", m.services.Addresses)
}
