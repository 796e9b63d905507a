package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// Authorizer combines store scoping with role permission membership. Every
// uncertain outcome is a denial.
type Authorizer struct {
	stores ports.StoreRepository
	roles  ports.RoleRepository
	log    zerolog.Logger
}

func NewAuthorizer(stores ports.StoreRepository, roles ports.RoleRepository, log zerolog.Logger) *Authorizer {
	return &Authorizer{stores: stores, roles: roles, log: log}
}

// Authorize allows owners on the stores they own and staff on their own store
// when the role, read fresh on every call, grants permission.
func (a *Authorizer) Authorize(ctx context.Context, p *domain.Principal, permission, storeID string) error {
	if err := a.AuthorizeStore(ctx, p, storeID); err != nil {
		return err
	}
	if p.IsOwner() {
		return nil
	}

	if p.RoleID == "" || permission == "" {
		return domain.ErrForbidden
	}
	role, err := a.roles.FindByID(ctx, p.RoleID)
	if err != nil {
		if !domain.IsNotFound(err) {
			a.log.Warn().Err(err).Str("role_id", p.RoleID).Msg("role lookup failed")
		}
		return domain.ErrForbidden
	}
	if role.StoreID != storeID || !role.Allows(permission) {
		return domain.ErrForbidden
	}
	return nil
}

// AuthorizeStore checks store scoping only.
func (a *Authorizer) AuthorizeStore(ctx context.Context, p *domain.Principal, storeID string) error {
	if p == nil || storeID == "" {
		return domain.ErrForbidden
	}

	switch p.Kind {
	case domain.PrincipalOwner:
		store, err := a.stores.FindByID(ctx, storeID)
		if err != nil {
			if !domain.IsNotFound(err) {
				a.log.Warn().Err(err).Str("store_id", storeID).Msg("store lookup failed")
			}
			return domain.ErrForbidden
		}
		if !store.OwnedBy(p.ID) {
			return domain.ErrForbidden
		}
		return nil
	case domain.PrincipalStaff:
		if p.StoreID != storeID {
			return domain.ErrForbidden
		}
		return nil
	}
	return domain.ErrForbidden
}
