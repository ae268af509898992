package handler

import "go-carpet-shop/internal/service"

type CartModule struct {
	services *service.CartServices
}

func NewCartModule(s *service.CartServices) *CartModule {
	return &CartModule{services: s}
}

func (m *CartModule) Register(r *Router) {
	Resource(r, "/shopping-carts", "ShoppingCart", m.services.Carts)
	Resource(r, "/shopping-cart-items", "ShoppingCartItem", m.services.Items)
	Resource(r, "/shopping-cart-item-options", "ShoppingCartItemOption", m.services.ItemOptions)
}
