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

// StaffService manages staff accounts within the store's staff quota.
type StaffService struct {
	staff   ports.StaffRepository
	roles   ports.RoleRepository
	stores  ports.StoreRepository
	counter ports.ResourceCounter
	quota   quotaGuard
	log     zerolog.Logger
	now     func() time.Time
}

func NewStaffService(repos StoreRepos, limiter ports.Limiter, log zerolog.Logger) *StaffService {
	return &StaffService{
		staff:   repos.Staff,
		roles:   repos.Roles,
		stores:  repos.Stores,
		counter: repos.Counter,
		quota:   quotaGuard{limiter: limiter, usage: repos.Usage, log: log},
		log:     log,
		now:     time.Now,
	}
}

func (s *StaffService) List(ctx context.Context, storeID string) ([]*domain.Staff, error) {
	return s.staff.ListByStore(ctx, storeID)
}

func (s *StaffService) Create(ctx context.Context, in ports.CreateStaffInput) (*domain.Staff, error) {
	name := strings.TrimSpace(in.Name)
	email, err := normalizeEmail(in.Email)
	if err != nil || name == "" || in.Password == "" || in.StoreID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := s.checkRole(ctx, in.StoreID, in.RoleID); err != nil {
		return nil, err
	}
	store, err := s.stores.FindByID(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	current, err := s.counter.CountStaff(ctx, in.StoreID)
	if err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}
	release, err := s.quota.reserve(ctx, store.OwnerID, staffKey(in.StoreID), current)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.staff.Create(ctx, &domain.Staff{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		StoreID:      in.StoreID,
		RoleID:       in.RoleID,
		Status:       domain.StaffActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		release()
		return nil, err
	}
	s.log.Info().Str("store_id", in.StoreID).Str("staff_id", created.ID).Msg("staff created")
	return created, nil
}

func (s *StaffService) Update(ctx context.Context, in ports.UpdateStaffInput) (*domain.Staff, error) {
	member, err := s.storeStaff(ctx, in.StoreID, in.StaffID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		member.Name = name
	}
	if in.RoleID != nil && *in.RoleID != member.RoleID {
		if err := s.checkRole(ctx, member.StoreID, *in.RoleID); err != nil {
			return nil, err
		}
		member.RoleID = *in.RoleID
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, domain.ErrInvalidInput
		}
		member.Status = *in.Status
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		member.PasswordHash = hash
	}
	member.UpdatedAt = s.now().UTC()

	if err := s.staff.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("update staff: %w", err)
	}
	return member, nil
}

func (s *StaffService) Delete(ctx context.Context, storeID, staffID string) error {
	if _, err := s.storeStaff(ctx, storeID, staffID); err != nil {
		return err
	}
	if err := s.staff.Delete(ctx, staffID); err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if err := s.quota.release(ctx, staffKey(storeID)); err != nil {
		s.log.Warn().Err(err).Str("store_id", storeID).Msg("staff counter release failed")
	}
	s.log.Info().Str("store_id", storeID).Str("staff_id", staffID).Msg("staff deleted")
	return nil
}

// checkRole requires roleID to name a role of storeID.
func (s *StaffService) checkRole(ctx context.Context, storeID, roleID string) error {
	if roleID == "" {
		return domain.ErrInvalidInput
	}
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role.StoreID != storeID {
		return fmt.Errorf("role belongs to another store: %w", domain.ErrInvalidInput)
	}
	return nil
}

func (s *StaffService) storeStaff(ctx context.Context, storeID, staffID string) (*domain.Staff, error) {
	member, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if member.StoreID != storeID {
		return nil, domain.ErrStaffNotFound
	}
	return member, nil
}
