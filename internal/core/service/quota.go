package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// quotaGuard enforces plan quotas exactly: the limiter decides on the live
// count, then a counter reservation serializes concurrent creators.
type quotaGuard struct {
	limiter ports.Limiter
	usage   ports.UsageRepository
	log     zerolog.Logger
}

// reserve claims one slot of kind in scopeID for ownerID. The returned
// release func must be called if the resource is not created.
func (g quotaGuard) reserve(ctx context.Context, ownerID string, key ports.UsageKey, current int64) (func(), error) {
	if err := g.limiter.CheckResourceLimit(ctx, ownerID, key.Kind, current); err != nil {
		return nil, err
	}
	sub, err := g.limiter.ActiveSubscription(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	quota, _ := sub.Plan.Quota(key.Kind)
	if err := g.usage.Reserve(ctx, key, current, quota); err != nil {
		return nil, fmt.Errorf("reserve %s: %w", key.Kind, err)
	}
	return func() {
		if err := g.usage.Release(context.WithoutCancel(ctx), key); err != nil {
			g.log.Warn().Err(err).
				Str("kind", string(key.Kind)).
				Str("scope_id", key.ScopeID).
				Msg("counter release failed")
		}
	}, nil
}

func (g quotaGuard) release(ctx context.Context, key ports.UsageKey) error {
	return g.usage.Release(ctx, key)
}

func productKey(storeID string) ports.UsageKey {
	return ports.UsageKey{Kind: domain.ResourceProducts, ScopeID: storeID}
}

func staffKey(storeID string) ports.UsageKey {
	return ports.UsageKey{Kind: domain.ResourceStaff, ScopeID: storeID}
}

func storeKey(ownerID string) ports.UsageKey {
	return ports.UsageKey{Kind: domain.ResourceStores, ScopeID: ownerID}
}

func (g quotaGuard) reset(ctx context.Context, key ports.UsageKey) error {
	return g.usage.Reset(ctx, key)
}
