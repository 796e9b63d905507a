package ports

import (
	"context"
	"time"

	"github.com/possuite/backoffice/internal/core/domain"
)

// PlanRepository defines persistence for the plan catalog.
type PlanRepository interface {
	List(ctx context.Context) ([]*domain.Plan, error)
	FindByID(ctx context.Context, id string) (*domain.Plan, error)
	// Upsert inserts or replaces the plan with the same name.
	Upsert(ctx context.Context, plan *domain.Plan) (*domain.Plan, error)
}

// SubscriptionRepository defines persistence for user subscriptions.
//
// Implementations must guarantee at most one active record per owner; Create
// returns domain.ErrConflict when another active record already exists.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.UserSubscription) (*domain.UserSubscription, error)
	FindActiveByOwner(ctx context.Context, ownerID string) (*domain.UserSubscription, error)
	// CancelActive moves every active record of the owner to cancelled and
	// disables auto-renew. It returns the number of records changed.
	CancelActive(ctx context.Context, ownerID string) (int64, error)
	// ExpireEnded moves active records whose end date is before now to
	// expired and returns the affected owner ids.
	ExpireEnded(ctx context.Context, now time.Time) ([]string, error)
}

// UsageKey identifies one tenant-scoped resource counter.
type UsageKey struct {
	Kind    domain.ResourceKind
	ScopeID string // store id for products/staff, owner id for stores
}

// UsageRepository holds the serializing counters behind exact quota
// enforcement.
type UsageRepository interface {
	// Reserve atomically increments the counter when it is below quota and
	// fails with domain.ErrLimitExceeded otherwise. current seeds a counter
	// that does not exist yet.
	Reserve(ctx context.Context, key UsageKey, current, quota int64) error
	// Release gives a slot back; it never takes the counter below zero.
	Release(ctx context.Context, key UsageKey) error
	// Reset drops the counter so the next Reserve reseeds it.
	Reset(ctx context.Context, key UsageKey) error
}

// ResourceCounter returns live resource counts.
type ResourceCounter interface {
	CountProducts(ctx context.Context, storeID string) (int64, error)
	CountStaff(ctx context.Context, storeID string) (int64, error)
	CountStores(ctx context.Context, ownerID string) (int64, error)
}

// SubscriptionCache caches an owner's active subscription (with its plan).
// A hit with a nil subscription means the owner is known to have none.
type SubscriptionCache interface {
	Get(ctx context.Context, ownerID string) (sub *domain.UserSubscription, hit bool, err error)
	// Set overwrites the entry. Writers use it after changing the owner's
	// subscription.
	Set(ctx context.Context, ownerID string, sub *domain.UserSubscription) error
	// Fill stores sub only when no entry exists, so a read that raced a
	// write cannot replace the writer's entry with stale data.
	Fill(ctx context.Context, ownerID string, sub *domain.UserSubscription) error
	Invalidate(ctx context.Context, ownerID string) error
}
