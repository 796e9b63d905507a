package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// maxGrantAttempts bounds the cancel-then-insert loop when concurrent grants
// for the same owner collide on the single-active constraint.
const maxGrantAttempts = 5

// GrantInput describes a plan grant that needs no further verification.
type GrantInput struct {
	OwnerID   string
	Plan      *domain.Plan
	Payment   ports.PaymentInput
	AutoRenew bool
}

// SubscriptionService manages plans and the owner's subscription lifecycle.
type SubscriptionService struct {
	plans    ports.PlanRepository
	subs     ports.SubscriptionRepository
	stores   ports.StoreRepository
	counter  ports.ResourceCounter
	limiter  ports.Limiter
	payments ports.PaymentVerifier
	cache    ports.SubscriptionCache
	log      zerolog.Logger
	now      func() time.Time
}

func NewSubscriptionService(
	plans ports.PlanRepository,
	subs ports.SubscriptionRepository,
	stores ports.StoreRepository,
	counter ports.ResourceCounter,
	limiter ports.Limiter,
	payments ports.PaymentVerifier,
	cache ports.SubscriptionCache,
	log zerolog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		plans:    plans,
		subs:     subs,
		stores:   stores,
		counter:  counter,
		limiter:  limiter,
		payments: payments,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

func (s *SubscriptionService) Plans(ctx context.Context) ([]*domain.Plan, error) {
	return s.plans.List(ctx)
}

// Current returns the subscription granting access right now.
func (s *SubscriptionService) Current(ctx context.Context, ownerID string) (*domain.UserSubscription, error) {
	sub, err := s.limiter.ActiveSubscription(ctx, ownerID)
	if errors.Is(err, domain.ErrSubscriptionRequired) {
		return nil, domain.ErrSubscriptionNotFound
	}
	return sub, err
}

// Subscribe verifies payment for paid plans and then grants the plan.
func (s *SubscriptionService) Subscribe(ctx context.Context, in ports.SubscribeInput) (*domain.UserSubscription, error) {
	if in.OwnerID == "" || in.PlanID == "" {
		return nil, domain.ErrInvalidInput
	}
	plan, err := s.plans.FindByID(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}

	payment := in.Payment
	if plan.IsFree() {
		if payment.Method == "" {
			payment.Method = domain.PaymentFree
		}
	} else {
		if payment.Method == domain.PaymentFree {
			return nil, domain.ErrPaymentRequired
		}
		if s.payments == nil {
			return nil, domain.ErrPaymentRequired
		}
		if err := s.payments.Verify(ctx, in.OwnerID, plan, payment); err != nil {
			if errors.Is(err, domain.ErrPaymentRequired) {
				s.log.Warn().Err(err).Str("owner_id", in.OwnerID).Str("plan", string(plan.Name)).Msg("payment rejected")
				return nil, err
			}
			return nil, fmt.Errorf("verify payment: %w", err)
		}
	}
	if !payment.Method.Valid() {
		return nil, domain.ErrInvalidInput
	}

	sub, err := s.Grant(ctx, GrantInput{
		OwnerID:   in.OwnerID,
		Plan:      plan,
		Payment:   payment,
		AutoRenew: in.AutoRenew,
	})
	if err != nil && !plan.IsFree() {
		if rerr := s.payments.Release(context.WithoutCancel(ctx), in.OwnerID, payment); rerr != nil {
			s.log.Error().Err(rerr).
				Str("owner_id", in.OwnerID).
				Str("reference", payment.Reference).
				Msg("payment release failed after grant error")
		}
	}
	return sub, err
}

// Grant makes plan the owner's only active subscription. Any previous active
// subscription is cancelled. Callers are responsible for payment.
func (s *SubscriptionService) Grant(ctx context.Context, in GrantInput) (*domain.UserSubscription, error) {
	if in.OwnerID == "" || in.Plan == nil {
		return nil, domain.ErrInvalidInput
	}
	for attempt := 1; attempt <= maxGrantAttempts; attempt++ {
		cancelled, err := s.subs.CancelActive(ctx, in.OwnerID)
		if err != nil {
			invalidate(ctx, s.cache, s.log, in.OwnerID)
			return nil, fmt.Errorf("grant plan: %w", err)
		}

		now := s.now().UTC()
		sub := &domain.UserSubscription{
			OwnerID:          in.OwnerID,
			PlanID:           in.Plan.ID,
			Status:           domain.SubscriptionActive,
			StartDate:        now,
			EndDate:          in.Plan.PeriodEnd(now),
			AutoRenew:        in.AutoRenew,
			PaymentMethod:    in.Payment.Method,
			PaymentReference: in.Payment.Reference,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		created, err := s.subs.Create(ctx, sub)
		if errors.Is(err, domain.ErrConflict) {
			s.log.Debug().Str("owner_id", in.OwnerID).Int("attempt", attempt).Msg("concurrent grant, retrying")
			continue
		}
		if err != nil {
			invalidate(ctx, s.cache, s.log, in.OwnerID)
			return nil, fmt.Errorf("grant plan: %w", err)
		}

		created.Plan = in.Plan
		refresh(ctx, s.cache, s.log, in.OwnerID, created)
		s.log.Info().
			Str("owner_id", in.OwnerID).
			Str("plan", string(in.Plan.Name)).
			Int64("cancelled", cancelled).
			Time("end_date", created.EndDate).
			Msg("plan granted")
		return created, nil
	}
	invalidate(ctx, s.cache, s.log, in.OwnerID)
	return nil, domain.ErrConflict
}

// Cancel ends the owner's active subscription.
func (s *SubscriptionService) Cancel(ctx context.Context, ownerID string) error {
	n, err := s.subs.CancelActive(ctx, ownerID)
	if err != nil {
		invalidate(ctx, s.cache, s.log, ownerID)
		return fmt.Errorf("cancel subscription: %w", err)
	}
	refresh(ctx, s.cache, s.log, ownerID, nil)
	if n == 0 {
		return domain.ErrSubscriptionNotFound
	}
	s.log.Info().Str("owner_id", ownerID).Msg("subscription cancelled")
	return nil
}

// Usage reports quota consumption across the owner's stores.
func (s *SubscriptionService) Usage(ctx context.Context, ownerID string) (*ports.UsageSummary, error) {
	sub, err := s.limiter.ActiveSubscription(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	stores, err := s.stores.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("usage: %w", err)
	}

	var storeCount int64
	perStore := make([]ports.StoreUsage, len(stores))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.counter.CountStores(gctx, ownerID)
		storeCount = n
		return err
	})
	for i, st := range stores {
		perStore[i].StoreID = st.ID
		perStore[i].StoreName = st.Name
		g.Go(func() error {
			n, err := s.counter.CountProducts(gctx, st.ID)
			perStore[i].Products = domain.NewResourceUsage(n, sub.Plan.MaxProducts)
			return err
		})
		g.Go(func() error {
			n, err := s.counter.CountStaff(gctx, st.ID)
			perStore[i].Staff = domain.NewResourceUsage(n, sub.Plan.MaxStaff)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("usage: %w", err)
	}

	return &ports.UsageSummary{
		Plan:     sub.Plan,
		Stores:   domain.NewResourceUsage(storeCount, sub.Plan.MaxStores),
		PerStore: perStore,
	}, nil
}

// ExpireDue flips every active subscription past its end date to expired
// and returns how many owners were affected.
func (s *SubscriptionService) ExpireDue(ctx context.Context) (int, error) {
	owners, err := s.subs.ExpireEnded(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	for _, id := range owners {
		invalidate(ctx, s.cache, s.log, id)
	}
	s.log.Info().Int("expired", len(owners)).Msg("expired ended subscriptions")
	return len(owners), nil
}

// SeedPlans upserts the default plan catalog.
func (s *SubscriptionService) SeedPlans(ctx context.Context) ([]*domain.Plan, error) {
	defaults := domain.DefaultPlans()
	seeded := make([]*domain.Plan, 0, len(defaults))
	for _, p := range defaults {
		saved, err := s.plans.Upsert(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("seed plan %s: %w", p.Name, err)
		}
		seeded = append(seeded, saved)
	}
	s.log.Info().Int("plans", len(seeded)).Msg("subscription plans seeded")
	return seeded, nil
}
