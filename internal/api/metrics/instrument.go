package metrics

import (
	"context"
	"errors"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// Authenticator records rejected tokens.
type Authenticator struct {
	ports.Authenticator
}

func InstrumentAuthenticator(next ports.Authenticator) *Authenticator {
	return &Authenticator{Authenticator: next}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	p, err := a.Authenticator.Authenticate(ctx, token)
	if err != nil {
		AuthFailuresTotal.Inc()
	}
	return p, err
}

// Authorizer records every permission decision.
type Authorizer struct {
	ports.Authorizer
}

func InstrumentAuthorizer(next ports.Authorizer) *Authorizer {
	return &Authorizer{Authorizer: next}
}

func (a *Authorizer) Authorize(ctx context.Context, p *domain.Principal, permission, storeID string) error {
	err := a.Authorizer.Authorize(ctx, p, permission, storeID)
	kind := "unknown"
	if p != nil {
		kind = string(p.Kind)
	}
	AuthzDecisionsTotal.WithLabelValues(kind, decision(err)).Inc()
	return err
}

// Limiter records quota and feature checks.
type Limiter struct {
	ports.Limiter
}

func InstrumentLimiter(next ports.Limiter) *Limiter {
	return &Limiter{Limiter: next}
}

func (l *Limiter) CheckResourceLimit(ctx context.Context, ownerID string, kind domain.ResourceKind, currentCount int64) error {
	err := l.Limiter.CheckResourceLimit(ctx, ownerID, kind, currentCount)
	LimitChecksTotal.WithLabelValues(string(kind), limitResult(err)).Inc()
	return err
}

func (l *Limiter) CheckFeatureAccess(ctx context.Context, ownerID, feature string) error {
	err := l.Limiter.CheckFeatureAccess(ctx, ownerID, feature)
	FeatureChecksTotal.WithLabelValues(feature, limitResult(err)).Inc()
	return err
}

// Subscriptions records grants and cancellations.
type Subscriptions struct {
	ports.SubscriptionService
}

func InstrumentSubscriptions(next ports.SubscriptionService) *Subscriptions {
	return &Subscriptions{SubscriptionService: next}
}

func (s *Subscriptions) Subscribe(ctx context.Context, in ports.SubscribeInput) (*domain.UserSubscription, error) {
	sub, err := s.SubscriptionService.Subscribe(ctx, in)
	if err == nil && sub != nil {
		plan := "unknown"
		if sub.Plan != nil {
			plan = string(sub.Plan.Name)
		}
		SubscriptionsGrantedTotal.WithLabelValues(plan).Inc()
	}
	return sub, err
}

func (s *Subscriptions) Cancel(ctx context.Context, ownerID string) error {
	err := s.SubscriptionService.Cancel(ctx, ownerID)
	if err == nil {
		SubscriptionsCancelledTotal.Inc()
	}
	return err
}

func decision(err error) string {
	if err == nil {
		return "allow"
	}
	return "deny"
}

func limitResult(err error) string {
	switch {
	case err == nil:
		return "allow"
	case errors.Is(err, domain.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, domain.ErrFeatureUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrSubscriptionRequired):
		return "no_subscription"
	default:
		return "error"
	}
}
