package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/possuite/backoffice/internal/core/domain"
)

// RegisterInput carries a new owner's sign-up data.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService defines owner and staff account use cases.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Owner, error)
	Login(ctx context.Context, email, password string) (string, *domain.Owner, error)
	VerifyEmail(ctx context.Context, token string) (*domain.Owner, error)
	ResendVerification(ctx context.Context, email string) error
	StaffLogin(ctx context.Context, email, password string) (string, *domain.Staff, error)
}

// SubscribeInput is a client's request to move onto a plan.
type SubscribeInput struct {
	OwnerID   string
	PlanID    string
	Payment   PaymentInput
	AutoRenew bool
}

// StoreUsage is the per-store part of a usage summary.
type StoreUsage struct {
	StoreID   string
	StoreName string
	Products  domain.ResourceUsage
	Staff     domain.ResourceUsage
}

// UsageSummary reports how much of the active plan an owner consumes.
type UsageSummary struct {
	Plan     *domain.Plan
	Stores   domain.ResourceUsage
	PerStore []StoreUsage
}

// SubscriptionService defines plan and subscription use cases.
type SubscriptionService interface {
	Plans(ctx context.Context) ([]*domain.Plan, error)
	Current(ctx context.Context, ownerID string) (*domain.UserSubscription, error)
	Subscribe(ctx context.Context, input SubscribeInput) (*domain.UserSubscription, error)
	Cancel(ctx context.Context, ownerID string) error
	Usage(ctx context.Context, ownerID string) (*UsageSummary, error)
}

// CreateStoreInput carries the fields of a new store.
type CreateStoreInput struct {
	OwnerID string
	Name    string
	Address string
	Phone   string
}

// UpdateStoreInput carries a partial store update.
type UpdateStoreInput struct {
	StoreID  string
	Name     *string
	Address  *string
	Phone    *string
	Settings domain.StoreSettingsPatch
}

// StoreService defines store use cases.
type StoreService interface {
	Create(ctx context.Context, input CreateStoreInput) (*domain.Store, error)
	Get(ctx context.Context, storeID string) (*domain.Store, error)
	ListFor(ctx context.Context, p *domain.Principal) ([]*domain.Store, error)
	Update(ctx context.Context, input UpdateStoreInput) (*domain.Store, error)
	Delete(ctx context.Context, storeID string) error
}

// RoleInput carries the editable fields of a role.
type RoleInput struct {
	StoreID     string
	Name        string
	Description string
	Permissions []string
}

// RoleService defines store-role use cases.
type RoleService interface {
	List(ctx context.Context, storeID string) ([]*domain.Role, error)
	Create(ctx context.Context, input RoleInput) (*domain.Role, error)
	Update(ctx context.Context, roleID string, input RoleInput) (*domain.Role, error)
	Delete(ctx context.Context, storeID, roleID string) error
}

// CreateStaffInput carries a new staff account.
type CreateStaffInput struct {
	StoreID  string
	Name     string
	Email    string
	Password string
	RoleID   string
}

// UpdateStaffInput carries a partial staff update.
type UpdateStaffInput struct {
	StoreID  string
	StaffID  string
	Name     *string
	RoleID   *string
	Status   *domain.StaffStatus
	Password *string
}

// StaffService defines staff-account use cases.
type StaffService interface {
	List(ctx context.Context, storeID string) ([]*domain.Staff, error)
	Create(ctx context.Context, input CreateStaffInput) (*domain.Staff, error)
	Update(ctx context.Context, input UpdateStaffInput) (*domain.Staff, error)
	Delete(ctx context.Context, storeID, staffID string) error
}

// CreateProductInput carries a new product.
type CreateProductInput struct {
	StoreID string
	Name    string
	SKU     string
	Price   decimal.Decimal
	Stock   int64
}

// ProductService defines product use cases.
type ProductService interface {
	List(ctx context.Context, storeID string) ([]*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, storeID, productID string) error
}

// StockLevel buckets a product by the store's stock thresholds.
type StockLevel string

const (
	StockOK         StockLevel = "ok"
	StockLow        StockLevel = "low"
	StockCritical   StockLevel = "critical"
	StockOutOfStock StockLevel = "out_of_stock"
)

// ProductStock is one row of the inventory report.
type ProductStock struct {
	ProductID string
	Name      string
	SKU       string
	Stock     int64
	Value     decimal.Decimal
	Level     StockLevel
	Reorder   bool
}

// AdvancedReport summarizes a store's inventory.
type AdvancedReport struct {
	StoreID        string
	GeneratedAt    time.Time
	Currency       string
	ProductCount   int64
	StaffCount     int64
	TotalUnits     int64
	InventoryValue decimal.Decimal
	// TaxOnValue is InventoryValue times the store tax rate.
	TaxOnValue decimal.Decimal
	Levels     map[StockLevel]int64
	Items      []ProductStock
}

// ReportService defines reporting use cases.
type ReportService interface {
	Advanced(ctx context.Context, storeID string) (*AdvancedReport, error)
}
