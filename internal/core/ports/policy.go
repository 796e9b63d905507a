package ports

import (
	"context"

	"github.com/possuite/backoffice/internal/core/domain"
)

// TokenCodec signs and verifies bearer tokens carrying a principal id.
type TokenCodec interface {
	Issue(principalID string) (string, error)
	// Parse returns the principal id of a valid, unexpired token.
	Parse(token string) (string, error)
}

// Authenticator resolves a bearer token to exactly one principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

// Authorizer decides whether a principal may act on a store.
type Authorizer interface {
	// Authorize returns nil when p holds permission on storeID.
	Authorize(ctx context.Context, p *domain.Principal, permission, storeID string) error
	// AuthorizeStore checks store scoping only.
	AuthorizeStore(ctx context.Context, p *domain.Principal, storeID string) error
}

// Limiter gates resource creation and plan features on the tenant's active
// subscription.
type Limiter interface {
	CheckResourceLimit(ctx context.Context, ownerID string, kind domain.ResourceKind, currentCount int64) error
	CheckFeatureAccess(ctx context.Context, ownerID, feature string) error
	// ActiveSubscription returns the owner's subscription granting access now.
	ActiveSubscription(ctx context.Context, ownerID string) (*domain.UserSubscription, error)
}

// TenantResolver maps a store to the owner whose subscription governs it.
type TenantResolver interface {
	OwnerOf(ctx context.Context, storeID string) (string, error)
}
