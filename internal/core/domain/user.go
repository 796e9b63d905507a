package domain

import "time"

// PrincipalKind distinguishes the two kinds of authenticated actor.
type PrincipalKind string

const (
	PrincipalOwner PrincipalKind = "owner"
	PrincipalStaff PrincipalKind = "staff"
)

// Principal is the identity resolved from a bearer token. StoreID and RoleID
// are only set for staff.
type Principal struct {
	ID      string        `json:"id"`
	Kind    PrincipalKind `json:"kind"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	StoreID string        `json:"store_id,omitempty"`
	RoleID  string        `json:"role_id,omitempty"`
}

// IsOwner reports whether p is a store owner.
func (p *Principal) IsOwner() bool { return p != nil && p.Kind == PrincipalOwner }

// IsStaff reports whether p is a staff member.
func (p *Principal) IsStaff() bool { return p != nil && p.Kind == PrincipalStaff }

// Owner is the account that owns stores and holds the subscription.
type Owner struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	EmailVerified       bool      `json:"is_email_verified"`
	VerificationToken   string    `json:"-"`
	VerificationExpires time.Time `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Principal returns the owner as an authenticated principal.
func (o *Owner) Principal() *Principal {
	return &Principal{ID: o.ID, Kind: PrincipalOwner, Name: o.Name, Email: o.Email}
}

// StaffStatus is the mutable activation state of a staff account.
type StaffStatus string

const (
	StaffActive   StaffStatus = "active"
	StaffInactive StaffStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s StaffStatus) Valid() bool {
	return s == StaffActive || s == StaffInactive
}

// Staff is an employee account bound to exactly one store and one role.
type Staff struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	StoreID      string      `json:"store_id"`
	RoleID       string      `json:"role_id"`
	Status       StaffStatus `json:"status"`
	LastLogin    *time.Time  `json:"last_login,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Principal returns the staff member as an authenticated principal.
func (s *Staff) Principal() *Principal {
	return &Principal{
		ID:      s.ID,
		Kind:    PrincipalStaff,
		Name:    s.Name,
		Email:   s.Email,
		StoreID: s.StoreID,
		RoleID:  s.RoleID,
	}
}
