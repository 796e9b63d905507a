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

// ProductService manages a store's catalog within the product quota.
type ProductService struct {
	products ports.ProductRepository
	stores   ports.StoreRepository
	counter  ports.ResourceCounter
	quota    quotaGuard
	log      zerolog.Logger
	now      func() time.Time
}

func NewProductService(repos StoreRepos, limiter ports.Limiter, log zerolog.Logger) *ProductService {
	return &ProductService{
		products: repos.Products,
		stores:   repos.Stores,
		counter:  repos.Counter,
		quota:    quotaGuard{limiter: limiter, usage: repos.Usage, log: log},
		log:      log,
		now:      time.Now,
	}
}

func (s *ProductService) List(ctx context.Context, storeID string) ([]*domain.Product, error) {
	return s.products.ListByStore(ctx, storeID)
}

func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if in.StoreID == "" || name == "" || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidPrice(in.Price) {
		return nil, fmt.Errorf("price must be between 0 and 10^12 with at most %d decimal places: %w",
			domain.PriceScale, domain.ErrInvalidInput)
	}
	store, err := s.stores.FindByID(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}

	current, err := s.counter.CountProducts(ctx, in.StoreID)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	release, err := s.quota.reserve(ctx, store.OwnerID, productKey(in.StoreID), current)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.products.Create(ctx, &domain.Product{
		StoreID:   in.StoreID,
		Name:      name,
		SKU:       strings.TrimSpace(in.SKU),
		Price:     in.Price,
		Stock:     in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		release()
		return nil, err
	}
	s.log.Info().Str("store_id", in.StoreID).Str("product_id", created.ID).Msg("product created")
	return created, nil
}

func (s *ProductService) Delete(ctx context.Context, storeID, productID string) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.StoreID != storeID {
		return domain.ErrProductNotFound
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if err := s.quota.release(ctx, productKey(storeID)); err != nil {
		s.log.Warn().Err(err).Str("store_id", storeID).Msg("product counter release failed")
	}
	return nil
}
