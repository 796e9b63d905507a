package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// ReportService builds inventory reports from a store's catalog.
type ReportService struct {
	stores   ports.StoreRepository
	products ports.ProductRepository
	counter  ports.ResourceCounter
	now      func() time.Time
}

func NewReportService(repos StoreRepos) *ReportService {
	return &ReportService{stores: repos.Stores, products: repos.Products, counter: repos.Counter, now: time.Now}
}

func (s *ReportService) Advanced(ctx context.Context, storeID string) (*ports.AdvancedReport, error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var (
		products []*domain.Product
		staff    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.ListByStore(gctx, storeID)
		return err
	})
	g.Go(func() error {
		var err error
		staff, err = s.counter.CountStaff(gctx, storeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("advanced report: %w", err)
	}

	report := &ports.AdvancedReport{
		StoreID:        storeID,
		GeneratedAt:    s.now().UTC(),
		Currency:       store.Settings.Currency,
		ProductCount:   int64(len(products)),
		StaffCount:     staff,
		InventoryValue: decimal.Zero,
		Levels:         make(map[ports.StockLevel]int64),
		Items:          make([]ports.ProductStock, 0, len(products)),
	}
	for _, p := range products {
		value := p.StockValue()
		level := stockLevel(p.Stock, store.Settings)
		report.TotalUnits += p.Stock
		report.InventoryValue = report.InventoryValue.Add(value)
		report.Levels[level]++
		report.Items = append(report.Items, ports.ProductStock{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Stock:     p.Stock,
			Value:     value,
			Level:     level,
			Reorder:   p.Stock <= store.Settings.ReorderPoint,
		})
	}
	report.TaxOnValue = report.InventoryValue.Mul(store.Settings.TaxRate).Round(2)
	return report, nil
}

// stockLevel buckets stock by the store thresholds, most severe first.
func stockLevel(stock int64, s domain.StoreSettings) ports.StockLevel {
	switch {
	case stock <= s.OutOfStockThreshold:
		return ports.StockOutOfStock
	case stock <= s.CriticalStockThreshold:
		return ports.StockCritical
	case stock <= s.LowStockThreshold:
		return ports.StockLow
	}
	return ports.StockOK
}
