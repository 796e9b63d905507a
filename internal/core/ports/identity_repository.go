package ports

import (
	"context"
	"time"

	"github.com/possuite/backoffice/internal/core/domain"
)

// OwnerRepository defines persistence for owner accounts.
type OwnerRepository interface {
	Create(ctx context.Context, owner *domain.Owner) (*domain.Owner, error)
	FindByID(ctx context.Context, id string) (*domain.Owner, error)
	FindByEmail(ctx context.Context, email string) (*domain.Owner, error)
	// FindByVerificationToken only matches tokens that expire after now.
	FindByVerificationToken(ctx context.Context, token string, now time.Time) (*domain.Owner, error)
	Update(ctx context.Context, owner *domain.Owner) error
}

// StaffRepository defines persistence for staff accounts.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.Staff) (*domain.Staff, error)
	FindByID(ctx context.Context, id string) (*domain.Staff, error)
	FindByEmail(ctx context.Context, email string) (*domain.Staff, error)
	ListByStore(ctx context.Context, storeID string) ([]*domain.Staff, error)
	Update(ctx context.Context, staff *domain.Staff) error
	Delete(ctx context.Context, id string) error
	DeleteByStore(ctx context.Context, storeID string) (int64, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
}
