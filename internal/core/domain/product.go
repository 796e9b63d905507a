package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item in a store's catalog.
type Product struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockValue is price times units on hand.
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(p.Stock))
}

// PriceScale is the number of decimal places a catalog price may carry.
const PriceScale = 2

var maxPrice = decimal.New(1, 12)

// ValidPrice reports whether p is non-negative, below 10^12 and has no more
// than PriceScale decimal places.
func ValidPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThan(maxPrice) && p.Equal(p.Round(PriceScale))
}
