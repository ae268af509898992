package model

import "strings"

// Permission is a named capability, "<action>_<entity>" (e.g. "add_locality").
type Permission struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(150)" json:"name"`
	App  string `gorm:"type:varchar(50);index" json:"app"`
}

// Group bundles permissions and is assigned to users.
type Group struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:group_permissions;" json:"permissions,omitempty"`
}

const (
	ActionView   = "view"
	ActionAdd    = "add"
	ActionChange = "change"
	ActionDelete = "delete"
)

var AllActions = []string{ActionView, ActionAdd, ActionChange, ActionDelete}

// Group names
const (
	GroupAdmin             = "Admin"
	GroupInventoryManager  = "Inventory Manager"
	GroupProductionManager = "Production Manager"
	GroupSalesAssistant    = "Sales Assistant"
	GroupClient            = "Client"
)

// PermissionCode builds "<action>_<entity>" with the entity lower-cased.
func PermissionCode(action, entity string) string {
	return action + "_" + strings.ToLower(entity)
}

// Apps maps each app to the entities whose permissions it owns.
var Apps = []struct {
	Name     string
	Entities []string
}{
	{"addresses", []string{"Locality", "Neighborhood", "Address"}},
	{"inventories", []string{"InventoryItem"}},
	{"products", []string{"CarType", "CarMake", "CarModel", "ProductCategory", "CustomOption", "CustomOptionDetail", "Carpet"}},
	{"supply_chains", []string{"Supplier", "MaterialBySupplier", "MaterialOrder", "OrderDetail"}},
	{"sales", []string{"PayMethod", "DeliveryMethod", "Sale", "SaleDetail", "SaleDetailOption"}},
	{"shopping_carts", []string{"ShoppingCart", "ShoppingCartItem", "ShoppingCartItemOption"}},
	{"users", []string{"User", "Group", "Permission"}},
}

// DefaultPermissions returns the full permission catalogue.
func DefaultPermissions() []Permission {
	var perms []Permission
	for _, app := range Apps {
		for _, entity := range app.Entities {
			for _, action := range AllActions {
				perms = append(perms, Permission{
					Code: PermissionCode(action, entity),
					Name: "Can " + action + " " + strings.ToLower(entity),
					App:  app.Name,
				})
			}
		}
	}
	return perms
}

type grant struct {
	entities []string
	actions  []string
}

func (g grant) codes() []string {
	var out []string
	for _, e := range g.entities {
		for _, a := range g.actions {
			out = append(out, PermissionCode(a, e))
		}
	}
	return out
}

var supplyChain = grant{[]string{"Supplier", "MaterialBySupplier", "MaterialOrder", "OrderDetail"}, AllActions}

var defaultGroupGrants = map[string][]grant{
	GroupInventoryManager: {
		{[]string{"InventoryItem"}, AllActions},
		{[]string{"CarType", "CarMake", "CarModel", "ProductCategory", "Carpet"}, AllActions},
		supplyChain,
	},
	GroupProductionManager: {
		{[]string{"Locality", "Neighborhood", "Address"}, AllActions},
		supplyChain,
	},
	GroupSalesAssistant: {
		{[]string{"Sale", "SaleDetail", "SaleDetailOption"}, AllActions},
	},
	GroupClient: {
		{[]string{"Address"}, []string{ActionAdd, ActionChange}},
		{[]string{"Locality", "Neighborhood"}, []string{ActionView}},
		{[]string{"ShoppingCart", "ShoppingCartItem", "ShoppingCartItemOption"}, AllActions},
		{[]string{"PayMethod", "DeliveryMethod", "Sale", "SaleDetail", "SaleDetailOption"}, AllActions},
	},
}

// DefaultGroupNames lists the seeded groups, Admin first.
var DefaultGroupNames = []string{GroupAdmin, GroupInventoryManager, GroupProductionManager, GroupSalesAssistant, GroupClient}

// DefaultGroupPermissions returns the permission codes of a seeded group. Admin
// receives the whole catalogue.
func DefaultGroupPermissions(group string) []string {
	if group == GroupAdmin {
		all := DefaultPermissions()
		codes := make([]string, len(all))
		for i, p := range all {
			codes[i] = p.Code
		}
		return codes
	}
	var codes []string
	for _, g := range defaultGroupGrants[group] {
		codes = append(codes, g.codes()...)
	}
	return codes
}
