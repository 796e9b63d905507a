package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

func TestProductService_QuotaExact(t *testing.T) {
	f := newFixture()
	f.grant("owner_a", domain.PlanFree)
	store := f.addStore("owner_a", "Shop")
	svc := NewProductService(f.repos, f.limiter, zerolog.Nop())

	const attempts = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), ports.CreateProductInput{
				StoreID: store.ID, Name: "Soda", Price: decimal.RequireFromString("1.50"), Stock: 4,
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrLimitExceeded) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 10 {
		t.Fatalf("expected exactly 10 products on free plan, got %d", created)
	}
	if n, _ := f.repos.Counter.CountProducts(context.Background(), store.ID); n != 10 {
		t.Fatalf("expected 10 stored products, got %d", n)
	}
}

func TestProductService_Validation(t *testing.T) {
	f := newFixture()
	f.grant("owner_a", domain.PlanFree)
	store := f.addStore("owner_a", "Shop")
	svc := NewProductService(f.repos, f.limiter, zerolog.Nop())

	cases := map[string]ports.CreateProductInput{
		"no name":        {StoreID: store.ID, Price: decimal.NewFromInt(1)},
		"negative price": {StoreID: store.ID, Name: "x", Price: decimal.NewFromInt(-1)},
		"sub-cent price": {StoreID: store.ID, Name: "x", Price: decimal.RequireFromString("1.999")},
		"huge exponent":  {StoreID: store.ID, Name: "x", Price: decimal.RequireFromString("1e7000")},
		"over 10^12":     {StoreID: store.ID, Name: "x", Price: decimal.New(1, 12)},
		"negative stock": {StoreID: store.ID, Name: "x", Stock: -1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if _, err := svc.Create(context.Background(), ports.CreateProductInput{StoreID: "missing", Name: "x"}); !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}

func TestProductService_DeleteReleasesSlot(t *testing.T) {
	f := newFixture()
	f.grant("owner_a", domain.PlanFree)
	store := f.addStore("owner_a", "Shop")
	svc := NewProductService(f.repos, f.limiter, zerolog.Nop())

	var last *domain.Product
	for range 10 {
		p, err := svc.Create(context.Background(), ports.CreateProductInput{StoreID: store.ID, Name: "x"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		last = p
	}
	if err := svc.Delete(context.Background(), store.ID, last.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Create(context.Background(), ports.CreateProductInput{StoreID: store.ID, Name: "y"}); err != nil {
		t.Fatalf("expected freed slot reusable, got %v", err)
	}
}
