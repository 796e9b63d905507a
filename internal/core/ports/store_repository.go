package ports

import (
	"context"

	"github.com/possuite/backoffice/internal/core/domain"
)

// StoreRepository defines persistence for stores.
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) (*domain.Store, error)
	FindByID(ctx context.Context, id string) (*domain.Store, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Store, error)
	Update(ctx context.Context, store *domain.Store) error
	Delete(ctx context.Context, id string) error
}

// RoleRepository defines persistence for store roles.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	ListByStore(ctx context.Context, storeID string) ([]*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
	DeleteByStore(ctx context.Context, storeID string) (int64, error)
}

// ProductRepository defines persistence for store products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListByStore(ctx context.Context, storeID string) ([]*domain.Product, error)
	Delete(ctx context.Context, id string) error
	DeleteByStore(ctx context.Context, storeID string) (int64, error)
}
