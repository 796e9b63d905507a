package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreSettings holds the operational knobs of a store.
type StoreSettings struct {
	LowStockThreshold      int64           `json:"low_stock_threshold"`
	OutOfStockThreshold    int64           `json:"out_of_stock_threshold"`
	CriticalStockThreshold int64           `json:"critical_stock_threshold"`
	EnableStockAlerts      bool            `json:"enable_stock_alerts"`
	EnableNotifications    bool            `json:"enable_notifications"`
	AutomaticReorder       bool            `json:"automatic_reorder"`
	ReorderPoint           int64           `json:"reorder_point"`
	TaxRate                decimal.Decimal `json:"tax_rate"`
	Currency               string          `json:"currency"`
	TimeZone               string          `json:"time_zone"`
	QRCodeImageURL         string          `json:"qr_code_image_url"`
	ReceiptFooter          string          `json:"receipt_footer"`
}

// DefaultStoreSettings returns the settings a new store starts with.
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		LowStockThreshold:      10,
		OutOfStockThreshold:    0,
		CriticalStockThreshold: 5,
		EnableStockAlerts:      true,
		EnableNotifications:    true,
		AutomaticReorder:       false,
		ReorderPoint:           5,
		TaxRate:                decimal.Zero,
		Currency:               "USD",
		TimeZone:               "UTC",
	}
}

// TaxRateScale is the number of decimal places a tax rate may carry.
const TaxRateScale = 4

// ValidTaxRate reports whether r is a fraction in [0, 1] with no more than
// TaxRateScale decimal places. 0.12 is 12%.
func ValidTaxRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(1)) && r.Equal(r.Round(TaxRateScale))
}

// StoreSettingsPatch carries a partial settings update; nil fields are left
// untouched.
type StoreSettingsPatch struct {
	LowStockThreshold      *int64
	OutOfStockThreshold    *int64
	CriticalStockThreshold *int64
	EnableStockAlerts      *bool
	EnableNotifications    *bool
	AutomaticReorder       *bool
	ReorderPoint           *int64
	TaxRate                *decimal.Decimal
	Currency               *string
	TimeZone               *string
	QRCodeImageURL         *string
	ReceiptFooter          *string
}

// Apply merges p into s.
func (p StoreSettingsPatch) Apply(s *StoreSettings) {
	if p.LowStockThreshold != nil {
		s.LowStockThreshold = *p.LowStockThreshold
	}
	if p.OutOfStockThreshold != nil {
		s.OutOfStockThreshold = *p.OutOfStockThreshold
	}
	if p.CriticalStockThreshold != nil {
		s.CriticalStockThreshold = *p.CriticalStockThreshold
	}
	if p.EnableStockAlerts != nil {
		s.EnableStockAlerts = *p.EnableStockAlerts
	}
	if p.EnableNotifications != nil {
		s.EnableNotifications = *p.EnableNotifications
	}
	if p.AutomaticReorder != nil {
		s.AutomaticReorder = *p.AutomaticReorder
	}
	if p.ReorderPoint != nil {
		s.ReorderPoint = *p.ReorderPoint
	}
	if p.TaxRate != nil {
		s.TaxRate = *p.TaxRate
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.TimeZone != nil {
		s.TimeZone = *p.TimeZone
	}
	if p.QRCodeImageURL != nil {
		s.QRCodeImageURL = *p.QRCodeImageURL
	}
	if p.ReceiptFooter != nil {
		s.ReceiptFooter = *p.ReceiptFooter
	}
}

// Store is a tenant's physical or logical shop.
type Store struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Name      string        `json:"name"`
	Address   string        `json:"address"`
	Phone     string        `json:"phone"`
	Settings  StoreSettings `json:"settings"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// OwnedBy reports whether ownerID owns the store.
func (s *Store) OwnedBy(ownerID string) bool {
	return s != nil && ownerID != "" && s.OwnerID == ownerID
}
