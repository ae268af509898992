package model

// All lists every persisted model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Permission{}, &Group{},
		&Locality{}, &Neighborhood{}, &Address{},
		&User{},
		&InventoryItem{},
		&CarType{}, &CarMake{}, &CarModel{}, &ProductCategory{},
		&CustomOption{}, &CustomOptionDetail{}, &Carpet{},
		&Supplier{}, &MaterialBySupplier{}, &MaterialOrder{}, &OrderDetail{},
		&PayMethod{}, &DeliveryMethod{}, &Sale{}, &SaleDetail{}, &SaleDetailOption{},
		&ShoppingCart{}, &ShoppingCartItem{}, &ShoppingCartItemOption{},
	}
}
