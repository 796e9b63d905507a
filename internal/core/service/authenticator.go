package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// Authenticator resolves bearer tokens to principals. Owners are looked up
// first, then staff; anything else is unauthenticated.
type Authenticator struct {
	tokens ports.TokenCodec
	owners ports.OwnerRepository
	staff  ports.StaffRepository
	log    zerolog.Logger
}

func NewAuthenticator(tokens ports.TokenCodec, owners ports.OwnerRepository, staff ports.StaffRepository, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, owners: owners, staff: staff, log: log}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	id, err := a.tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	owner, err := a.owners.FindByID(ctx, id)
	switch {
	case err == nil:
		return owner.Principal(), nil
	case !errors.Is(err, domain.ErrOwnerNotFound):
		a.log.Warn().Err(err).Str("principal_id", id).Msg("owner lookup failed")
		return nil, domain.ErrUnauthenticated
	}

	member, err := a.staff.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrStaffNotFound) {
			a.log.Warn().Err(err).Str("principal_id", id).Msg("staff lookup failed")
		}
		return nil, domain.ErrUnauthenticated
	}
	if member.Status != domain.StaffActive {
		return nil, domain.ErrUnauthenticated
	}
	return member.Principal(), nil
}
