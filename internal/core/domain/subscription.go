package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanName identifies a subscription tier.
type PlanName string

const (
	PlanFree    PlanName = "free"
	PlanBasic   PlanName = "basic"
	PlanPremium PlanName = "premium"
)

// BillingCycle controls the length of a subscription period.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// Plan features.
const (
	FeatureUnlimitedProducts = "unlimited_products"
	FeatureUnlimitedStaff    = "unlimited_staff"
	FeatureAdvancedReports   = "advanced_reports"
	FeatureInventoryAlerts   = "inventory_alerts"
	FeatureMultipleStores    = "multiple_stores"
	FeatureCustomRoles       = "custom_roles"
	FeatureAPIAccess         = "api_access"
	FeaturePrioritySupport   = "priority_support"
	FeatureBasicReports      = "basic_reports"
	FeatureBasicInventory    = "basic_inventory"
)

// ResourceKind is a quota-limited resource.
type ResourceKind string

const (
	ResourceProducts ResourceKind = "products"
	ResourceStaff    ResourceKind = "staff"
	ResourceStores   ResourceKind = "stores"
)

// Valid reports whether k is a known resource kind.
func (k ResourceKind) Valid() bool {
	switch k {
	case ResourceProducts, ResourceStaff, ResourceStores:
		return true
	}
	return false
}

// Plan is a subscription tier with fixed quotas and a feature list.
type Plan struct {
	ID           string          `json:"id"`
	Name         PlanName        `json:"name"`
	Features     []string        `json:"features"`
	MaxProducts  int64           `json:"max_products"`
	MaxStaff     int64           `json:"max_staff"`
	MaxStores    int64           `json:"max_stores"`
	Price        decimal.Decimal `json:"price"`
	BillingCycle BillingCycle    `json:"billing_cycle"`
}

// Quota returns the plan's exclusive upper bound for kind.
func (p *Plan) Quota(kind ResourceKind) (int64, bool) {
	switch kind {
	case ResourceProducts:
		return p.MaxProducts, true
	case ResourceStaff:
		return p.MaxStaff, true
	case ResourceStores:
		return p.MaxStores, true
	}
	return 0, false
}

// HasFeature reports whether the plan includes feature.
func (p *Plan) HasFeature(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// IsFree reports whether granting the plan needs no payment.
func (p *Plan) IsFree() bool {
	return !p.Price.IsPositive()
}

// PeriodEnd returns the end of a billing period starting at start.
func (p *Plan) PeriodEnd(start time.Time) time.Time {
	if p.BillingCycle == BillingYearly {
		return start.AddDate(0, 12, 0)
	}
	return start.AddDate(0, 1, 0)
}

// WithinQuota is the limit rule: quota is exclusive, so a resource may be
// created while current < quota.
func WithinQuota(current, quota int64) bool {
	return current < quota
}

// DefaultPlans returns the seed catalog of subscription tiers.
func DefaultPlans() []*Plan {
	return []*Plan{
		{
			Name:         PlanFree,
			Features:     []string{FeatureBasicReports, FeatureBasicInventory},
			MaxProducts:  10,
			MaxStaff:     2,
			MaxStores:    1,
			Price:        decimal.Zero,
			BillingCycle: BillingMonthly,
		},
		{
			Name:         PlanBasic,
			Features:     []string{FeatureUnlimitedProducts, FeatureInventoryAlerts, FeatureAdvancedReports},
			MaxProducts:  100,
			MaxStaff:     5,
			MaxStores:    2,
			Price:        decimal.NewFromInt(29),
			BillingCycle: BillingMonthly,
		},
		{
			Name: PlanPremium,
			Features: []string{
				FeatureUnlimitedProducts, FeatureUnlimitedStaff, FeatureAdvancedReports,
				FeatureInventoryAlerts, FeatureMultipleStores, FeatureCustomRoles,
				FeatureAPIAccess, FeaturePrioritySupport,
			},
			MaxProducts:  999999,
			MaxStaff:     999999,
			MaxStores:    999999,
			Price:        decimal.NewFromInt(99),
			BillingCycle: BillingMonthly,
		},
	}
}

// SubscriptionStatus is the lifecycle state of a user subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// PaymentMethod is how a subscription was paid for.
type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "card"
	PaymentPayPal  PaymentMethod = "paypal"
	PaymentFree    PaymentMethod = "free"
	PaymentEWallet PaymentMethod = "ewallet"
	PaymentGCash   PaymentMethod = "gcash"
	PaymentMaya    PaymentMethod = "maya"
	PaymentGrabPay PaymentMethod = "grab_pay"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentPayPal, PaymentFree, PaymentEWallet, PaymentGCash, PaymentMaya, PaymentGrabPay:
		return true
	}
	return false
}

// UserSubscription links an owner to a plan for a validity window.
type UserSubscription struct {
	ID               string             `json:"id"`
	OwnerID          string             `json:"owner_id"`
	PlanID           string             `json:"plan_id"`
	Plan             *Plan              `json:"plan,omitempty"`
	Status           SubscriptionStatus `json:"status"`
	StartDate        time.Time          `json:"start_date"`
	EndDate          time.Time          `json:"end_date"`
	AutoRenew        bool               `json:"auto_renew"`
	PaymentMethod    PaymentMethod      `json:"payment_method,omitempty"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ActiveAt reports whether the subscription grants access at t. An active
// record whose end date has passed no longer does, even before the expiry
// job flips its status.
func (s *UserSubscription) ActiveAt(t time.Time) bool {
	return s != nil && s.Status == SubscriptionActive && t.Before(s.EndDate)
}

// upgradeThreshold is the usage ratio at which a tenant is nudged to upgrade.
const upgradeThreshold = 0.9

// ResourceUsage reports consumption of one quota.
type ResourceUsage struct {
	Limit      int64   `json:"limit"`
	Current    int64   `json:"current"`
	Remaining  int64   `json:"remaining"`
	Percentage float64 `json:"percentage"`
	NearLimit  bool    `json:"near_limit"`
}

// NewResourceUsage computes remaining capacity and the usage ratio, both
// clamped to the quota.
func NewResourceUsage(current, limit int64) ResourceUsage {
	u := ResourceUsage{Limit: limit, Current: current}
	if limit <= 0 {
		u.Percentage = 100
		u.NearLimit = true
		return u
	}
	if current < limit {
		u.Remaining = limit - current
	}
	u.Percentage = min(100, float64(current)/float64(limit)*100)
	u.NearLimit = u.Percentage >= upgradeThreshold*100
	return u
}
