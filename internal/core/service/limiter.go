package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// SubscriptionLimiter gates resource creation and features on the owner's
// active plan.
type SubscriptionLimiter struct {
	subs  ports.SubscriptionRepository
	plans ports.PlanRepository
	cache ports.SubscriptionCache
	log   zerolog.Logger
	now   func() time.Time
}

// NewSubscriptionLimiter returns a limiter. cache may be nil.
func NewSubscriptionLimiter(subs ports.SubscriptionRepository, plans ports.PlanRepository, cache ports.SubscriptionCache, log zerolog.Logger) *SubscriptionLimiter {
	return &SubscriptionLimiter{subs: subs, plans: plans, cache: cache, log: log, now: time.Now}
}

// CheckResourceLimit allows creation iff currentCount is below the plan quota
// for kind.
func (l *SubscriptionLimiter) CheckResourceLimit(ctx context.Context, ownerID string, kind domain.ResourceKind, currentCount int64) error {
	sub, err := l.ActiveSubscription(ctx, ownerID)
	if err != nil {
		return err
	}
	quota, ok := sub.Plan.Quota(kind)
	if !ok {
		return domain.ErrForbidden
	}
	if !domain.WithinQuota(currentCount, quota) {
		return domain.ErrLimitExceeded
	}
	return nil
}

// CheckFeatureAccess allows iff the active plan lists feature.
func (l *SubscriptionLimiter) CheckFeatureAccess(ctx context.Context, ownerID, feature string) error {
	sub, err := l.ActiveSubscription(ctx, ownerID)
	if err != nil {
		return err
	}
	if !sub.Plan.HasFeature(feature) {
		return domain.ErrFeatureUnavailable
	}
	return nil
}

// ActiveSubscription returns the owner's subscription with its plan loaded.
// A missing, ended or unreadable subscription is ErrSubscriptionRequired.
func (l *SubscriptionLimiter) ActiveSubscription(ctx context.Context, ownerID string) (*domain.UserSubscription, error) {
	if ownerID == "" {
		return nil, domain.ErrSubscriptionRequired
	}

	sub, err := l.lookup(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, domain.ErrSubscriptionNotFound) {
			l.log.Warn().Err(err).Str("owner_id", ownerID).Msg("subscription lookup failed")
		}
		return nil, domain.ErrSubscriptionRequired
	}
	if !sub.ActiveAt(l.now()) || sub.Plan == nil {
		return nil, domain.ErrSubscriptionRequired
	}
	return sub, nil
}

func (l *SubscriptionLimiter) lookup(ctx context.Context, ownerID string) (*domain.UserSubscription, error) {
	if l.cache != nil {
		sub, hit, err := l.cache.Get(ctx, ownerID)
		if err != nil {
			l.log.Debug().Err(err).Str("owner_id", ownerID).Msg("subscription cache read failed")
		} else if hit {
			if sub == nil {
				return nil, domain.ErrSubscriptionNotFound
			}
			return sub, nil
		}
	}

	sub, err := l.subs.FindActiveByOwner(ctx, ownerID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		l.store(ctx, ownerID, nil)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if sub.Plan == nil {
		plan, err := l.plans.FindByID(ctx, sub.PlanID)
		if err != nil {
			return nil, err
		}
		sub.Plan = plan
	}
	l.store(ctx, ownerID, sub)
	return sub, nil
}

func (l *SubscriptionLimiter) store(ctx context.Context, ownerID string, sub *domain.UserSubscription) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Fill(ctx, ownerID, sub); err != nil {
		l.log.Debug().Err(err).Str("owner_id", ownerID).Msg("subscription cache write failed")
	}
}

// refresh overwrites the cached subscription after a change. A nil sub
// caches the owner as having none.
func refresh(ctx context.Context, cache ports.SubscriptionCache, log zerolog.Logger, ownerID string, sub *domain.UserSubscription) {
	if cache == nil {
		return
	}
	if err := cache.Set(ctx, ownerID, sub); err != nil {
		log.Warn().Err(err).Str("owner_id", ownerID).Msg("subscription cache refresh failed")
		invalidate(ctx, cache, log, ownerID)
	}
}

// invalidate drops the cached subscription after a change. Failures are
// logged; the cache TTL bounds staleness.
func invalidate(ctx context.Context, cache ports.SubscriptionCache, log zerolog.Logger, ownerID string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, ownerID); err != nil {
		log.Warn().Err(err).Str("owner_id", ownerID).Msg("subscription cache invalidation failed")
	}
}
