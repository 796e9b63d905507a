package domain

import "time"

// Role is a store-scoped bundle of permissions assigned to staff members.
type Role struct {
	ID          string       `json:"id"`
	StoreID     string       `json:"store_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions"`
	IsDefault   bool         `json:"is_default"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PermissionSet indexes the role's permissions by name.
func (r *Role) PermissionSet() PermissionSet {
	return NewPermissionSet(r.Permissions)
}

// Allows reports whether the role grants the named permission.
func (r *Role) Allows(permission string) bool {
	return r.PermissionSet().Has(permission)
}

// DefaultRoles returns the roles every new store starts with. They are
// marked IsDefault and cannot be deleted.
func DefaultRoles(storeID string, now time.Time) []*Role {
	return []*Role{
		{
			StoreID:     storeID,
			Name:        "Manager",
			Description: "Full access to the store",
			Permissions: AllPermissions(),
			IsDefault:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			StoreID:     storeID,
			Name:        "Cashier",
			Description: "Point-of-sale access",
			Permissions: []Permission{catalog[PermViewSales], catalog[PermCreateSale]},
			IsDefault:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
