package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// StoreRepos groups the collections a store owns.
type StoreRepos struct {
	Stores   ports.StoreRepository
	Roles    ports.RoleRepository
	Staff    ports.StaffRepository
	Products ports.ProductRepository
	Usage    ports.UsageRepository
	Counter  ports.ResourceCounter
}

// StoreService manages stores, their default roles and the deletion cascade.
type StoreService struct {
	repos StoreRepos
	quota quotaGuard
	log   zerolog.Logger
	now   func() time.Time
}

func NewStoreService(repos StoreRepos, limiter ports.Limiter, log zerolog.Logger) *StoreService {
	return &StoreService{
		repos: repos,
		quota: quotaGuard{limiter: limiter, usage: repos.Usage, log: log},
		log:   log,
		now:   time.Now,
	}
}

// Create adds a store within the owner's store quota and seeds its default
// roles.
func (s *StoreService) Create(ctx context.Context, in ports.CreateStoreInput) (*domain.Store, error) {
	name := strings.TrimSpace(in.Name)
	if in.OwnerID == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}

	current, err := s.repos.Counter.CountStores(ctx, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	release, err := s.quota.reserve(ctx, in.OwnerID, storeKey(in.OwnerID), current)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repos.Stores.Create(ctx, &domain.Store{
		OwnerID:   in.OwnerID,
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		Phone:     strings.TrimSpace(in.Phone),
		Settings:  domain.DefaultStoreSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		release()
		return nil, fmt.Errorf("create store: %w", err)
	}

	for _, role := range domain.DefaultRoles(created.ID, now) {
		if _, err := s.repos.Roles.Create(ctx, role); err != nil {
			s.log.Error().Err(err).Str("store_id", created.ID).Msg("seeding default roles failed, rolling back store")
			if _, derr := s.repos.Roles.DeleteByStore(ctx, created.ID); derr != nil {
				s.log.Error().Err(derr).Str("store_id", created.ID).Msg("role rollback failed")
			}
			if derr := s.repos.Stores.Delete(ctx, created.ID); derr != nil {
				s.log.Error().Err(derr).Str("store_id", created.ID).Msg("store rollback failed")
			}
			release()
			return nil, fmt.Errorf("seed default roles: %w", err)
		}
	}

	s.log.Info().Str("owner_id", in.OwnerID).Str("store_id", created.ID).Msg("store created")
	return created, nil
}

func (s *StoreService) Get(ctx context.Context, storeID string) (*domain.Store, error) {
	return s.repos.Stores.FindByID(ctx, storeID)
}

// OwnerOf returns the owner whose subscription governs storeID.
func (s *StoreService) OwnerOf(ctx context.Context, storeID string) (string, error) {
	store, err := s.repos.Stores.FindByID(ctx, storeID)
	if err != nil {
		return "", err
	}
	return store.OwnerID, nil
}

// ListFor returns the stores visible to p: every owned store for owners, the
// assigned store for staff.
func (s *StoreService) ListFor(ctx context.Context, p *domain.Principal) ([]*domain.Store, error) {
	switch {
	case p.IsOwner():
		return s.repos.Stores.ListByOwner(ctx, p.ID)
	case p.IsStaff():
		store, err := s.repos.Stores.FindByID(ctx, p.StoreID)
		if err != nil {
			return nil, err
		}
		return []*domain.Store{store}, nil
	}
	return nil, domain.ErrForbidden
}

func (s *StoreService) Update(ctx context.Context, in ports.UpdateStoreInput) (*domain.Store, error) {
	store, err := s.repos.Stores.FindByID(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		store.Name = name
	}
	if in.Address != nil {
		store.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		store.Phone = strings.TrimSpace(*in.Phone)
	}
	in.Settings.Apply(&store.Settings)
	if !domain.ValidTaxRate(store.Settings.TaxRate) {
		return nil, fmt.Errorf("tax_rate must be a fraction between 0 and 1 with at most %d decimal places: %w",
			domain.TaxRateScale, domain.ErrInvalidInput)
	}
	store.UpdatedAt = s.now().UTC()

	if err := s.repos.Stores.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}
	return store, nil
}

// Delete removes the store together with its roles, staff, products and
// usage counters, then frees the owner's store slot.
func (s *StoreService) Delete(ctx context.Context, storeID string) error {
	store, err := s.repos.Stores.FindByID(ctx, storeID)
	if err != nil {
		return err
	}

	staff, err := s.repos.Staff.DeleteByStore(ctx, storeID)
	if err != nil {
		return fmt.Errorf("delete store staff: %w", err)
	}
	roles, err := s.repos.Roles.DeleteByStore(ctx, storeID)
	if err != nil {
		return fmt.Errorf("delete store roles: %w", err)
	}
	products, err := s.repos.Products.DeleteByStore(ctx, storeID)
	if err != nil {
		return fmt.Errorf("delete store products: %w", err)
	}
	for _, key := range []ports.UsageKey{productKey(storeID), staffKey(storeID)} {
		if err := s.quota.reset(ctx, key); err != nil {
			return fmt.Errorf("reset %s counter: %w", key.Kind, err)
		}
	}
	if err := s.repos.Stores.Delete(ctx, storeID); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if err := s.quota.release(ctx, storeKey(store.OwnerID)); err != nil {
		s.log.Warn().Err(err).Str("owner_id", store.OwnerID).Msg("store counter release failed")
	}

	s.log.Info().
		Str("store_id", storeID).
		Str("owner_id", store.OwnerID).
		Int64("staff", staff).
		Int64("roles", roles).
		Int64("products", products).
		Msg("store deleted")
	return nil
}
