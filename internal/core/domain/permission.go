package domain

import "fmt"

// Module groups permissions by back-office area.
type Module string

const (
	ModuleSales     Module = "sales"
	ModuleInventory Module = "inventory"
	ModuleReports   Module = "reports"
	ModuleUsers     Module = "users"
	ModuleSettings  Module = "settings"
)

// Permission names.
const (
	PermViewSales       = "view_sales"
	PermCreateSale      = "create_sale"
	PermManageInventory = "manage_inventory"
	PermViewReports     = "view_reports"
	PermManageUsers     = "manage_users"
	PermManageSettings  = "manage_settings"
)

// Permission is a named capability tagged with the module it belongs to.
type Permission struct {
	Name        string `json:"name"`
	Module      Module `json:"module"`
	Description string `json:"description,omitempty"`
}

var catalog = map[string]Permission{
	PermViewSales:       {Name: PermViewSales, Module: ModuleSales, Description: "View sales history"},
	PermCreateSale:      {Name: PermCreateSale, Module: ModuleSales, Description: "Ring up sales"},
	PermManageInventory: {Name: PermManageInventory, Module: ModuleInventory, Description: "Create and edit products and stock"},
	PermViewReports:     {Name: PermViewReports, Module: ModuleReports, Description: "View store reports"},
	PermManageUsers:     {Name: PermManageUsers, Module: ModuleUsers, Description: "Manage staff and roles"},
	PermManageSettings:  {Name: PermManageSettings, Module: ModuleSettings, Description: "Change store settings"},
}

// AllPermissions returns the full catalog in a stable order.
func AllPermissions() []Permission {
	names := []string{
		PermViewSales, PermCreateSale, PermManageInventory,
		PermViewReports, PermManageUsers, PermManageSettings,
	}
	out := make([]Permission, 0, len(names))
	for _, n := range names {
		out = append(out, catalog[n])
	}
	return out
}

// NormalizePermissions resolves names against the catalog, dropping
// duplicates. Unknown names fail with ErrInvalidInput.
func NormalizePermissions(names []string) ([]Permission, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]Permission, 0, len(names))
	for _, n := range names {
		p, ok := catalog[n]
		if !ok {
			return nil, fmt.Errorf("%w: unknown permission %q", ErrInvalidInput, n)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// PermissionSet is a name-keyed view over a role's permissions.
type PermissionSet map[string]Permission

// NewPermissionSet indexes perms by name.
func NewPermissionSet(perms []Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p.Name] = p
	}
	return set
}

// Has reports whether name is in the set.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}
