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

// RoleService manages store roles.
type RoleService struct {
	roles   ports.RoleRepository
	staff   ports.StaffRepository
	stores  ports.StoreRepository
	limiter ports.Limiter
	log     zerolog.Logger
	now     func() time.Time
}

func NewRoleService(roles ports.RoleRepository, staff ports.StaffRepository, stores ports.StoreRepository, limiter ports.Limiter, log zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, staff: staff, stores: stores, limiter: limiter, log: log, now: time.Now}
}

func (s *RoleService) List(ctx context.Context, storeID string) ([]*domain.Role, error) {
	return s.roles.ListByStore(ctx, storeID)
}

// Create adds a custom role. Custom roles are a plan feature of the store
// owner's subscription.
func (s *RoleService) Create(ctx context.Context, in ports.RoleInput) (*domain.Role, error) {
	name := strings.TrimSpace(in.Name)
	if in.StoreID == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	perms, err := domain.NormalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}

	store, err := s.stores.FindByID(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.CheckFeatureAccess(ctx, store.OwnerID, domain.FeatureCustomRoles); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.roles.Create(ctx, &domain.Role{
		StoreID:     in.StoreID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.log.Info().Str("store_id", in.StoreID).Str("role_id", created.ID).Msg("role created")
	return created, nil
}

// Update replaces the role's name, description and permissions. Staff holding
// the role see the change on their next request.
func (s *RoleService) Update(ctx context.Context, roleID string, in ports.RoleInput) (*domain.Role, error) {
	role, err := s.storeRole(ctx, in.StoreID, roleID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		role.Name = name
	}
	if in.Description != "" {
		role.Description = strings.TrimSpace(in.Description)
	}
	if in.Permissions != nil {
		perms, err := domain.NormalizePermissions(in.Permissions)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
	}
	role.UpdatedAt = s.now().UTC()

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return role, nil
}

// Delete removes a custom role that no staff member holds.
func (s *RoleService) Delete(ctx context.Context, storeID, roleID string) error {
	role, err := s.storeRole(ctx, storeID, roleID)
	if err != nil {
		return err
	}
	if role.IsDefault {
		return fmt.Errorf("delete default role %q: %w", role.Name, domain.ErrInvalidOperation)
	}
	assigned, err := s.staff.CountByRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if assigned > 0 {
		return fmt.Errorf("role assigned to %d staff: %w", assigned, domain.ErrConflict)
	}
	if err := s.roles.Delete(ctx, roleID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	s.log.Info().Str("store_id", storeID).Str("role_id", roleID).Msg("role deleted")
	return nil
}

// storeRole loads a role and hides roles of other stores.
func (s *RoleService) storeRole(ctx context.Context, storeID, roleID string) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.StoreID != storeID {
		return nil, domain.ErrRoleNotFound
	}
	return role, nil
}
