package handler

import (
	"github.com/shopspring/decimal"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

type createStoreRequest struct {
	Name    string `json:"name"    validate:"required,max=120"`
	Address string `json:"address" validate:"max=255"`
	Phone   string `json:"phone"   validate:"max=32"`
}

type storeSettingsRequest struct {
	LowStockThreshold      *int64           `json:"low_stock_threshold"      validate:"omitempty,gte=0"`
	OutOfStockThreshold    *int64           `json:"out_of_stock_threshold"   validate:"omitempty,gte=0"`
	CriticalStockThreshold *int64           `json:"critical_stock_threshold" validate:"omitempty,gte=0"`
	EnableStockAlerts      *bool            `json:"enable_stock_alerts"`
	EnableNotifications    *bool            `json:"enable_notifications"`
	AutomaticReorder       *bool            `json:"automatic_reorder"`
	ReorderPoint           *int64           `json:"reorder_point"            validate:"omitempty,gte=0"`
	TaxRate                *decimal.Decimal `json:"tax_rate"`
	Currency               *string          `json:"currency"                 validate:"omitempty,len=3"`
	TimeZone               *string          `json:"time_zone"                validate:"omitempty,max=64"`
	QRCodeImageURL         *string          `json:"qr_code_image_url"        validate:"omitempty,url"`
	ReceiptFooter          *string          `json:"receipt_footer"           validate:"omitempty,max=500"`
}

type updateStoreRequest struct {
	Name     *string               `json:"name"    validate:"omitempty,min=1,max=120"`
	Address  *string               `json:"address" validate:"omitempty,max=255"`
	Phone    *string               `json:"phone"   validate:"omitempty,max=32"`
	Settings *storeSettingsRequest `json:"settings"`
}

func (r updateStoreRequest) toInput(storeID string) ports.UpdateStoreInput {
	in := ports.UpdateStoreInput{
		StoreID: storeID,
		Name:    r.Name,
		Address: r.Address,
		Phone:   r.Phone,
	}
	if s := r.Settings; s != nil {
		in.Settings = domain.StoreSettingsPatch{
			LowStockThreshold:      s.LowStockThreshold,
			OutOfStockThreshold:    s.OutOfStockThreshold,
			CriticalStockThreshold: s.CriticalStockThreshold,
			EnableStockAlerts:      s.EnableStockAlerts,
			EnableNotifications:    s.EnableNotifications,
			AutomaticReorder:       s.AutomaticReorder,
			ReorderPoint:           s.ReorderPoint,
			TaxRate:                s.TaxRate,
			Currency:               s.Currency,
			TimeZone:               s.TimeZone,
			QRCodeImageURL:         s.QRCodeImageURL,
			ReceiptFooter:          s.ReceiptFooter,
		}
	}
	return in
}

type storesResponse struct {
	Stores []*domain.Store `json:"stores"`
}

type roleRequest struct {
	Name        string   `json:"name"        validate:"required,max=60"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required"`
}

type rolesResponse struct {
	Roles []*domain.Role `json:"roles"`
}

type createStaffRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	RoleID   string `json:"role_id"  validate:"required"`
}

type updateStaffRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=1,max=100"`
	RoleID   *string `json:"role_id"  validate:"omitempty,min=1"`
	Status   *string `json:"status"   validate:"omitempty,oneof=active inactive"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type staffListResponse struct {
	Staff []*domain.Staff `json:"staff"`
}

type createProductRequest struct {
	Name  string          `json:"name"  validate:"required,max=200"`
	SKU   string          `json:"sku"   validate:"max=64"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock" validate:"gte=0"`
}

type productsResponse struct {
	Products []*domain.Product `json:"products"`
}

type productStockResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Stock     int64           `json:"stock"`
	Value     decimal.Decimal `json:"value"`
	Level     string          `json:"level"`
	Reorder   bool            `json:"reorder"`
}

type advancedReportResponse struct {
	StoreID        string                 `json:"store_id"`
	GeneratedAt    string                 `json:"generated_at"`
	Currency       string                 `json:"currency"`
	ProductCount   int64                  `json:"product_count"`
	StaffCount     int64                  `json:"staff_count"`
	TotalUnits     int64                  `json:"total_units"`
	InventoryValue decimal.Decimal        `json:"inventory_value"`
	TaxOnValue     decimal.Decimal        `json:"tax_on_value"`
	Levels         map[string]int64       `json:"levels"`
	Items          []productStockResponse `json:"items"`
}

func toAdvancedReportResponse(r *ports.AdvancedReport) advancedReportResponse {
	resp := advancedReportResponse{
		StoreID:        r.StoreID,
		GeneratedAt:    r.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Currency:       r.Currency,
		ProductCount:   r.ProductCount,
		StaffCount:     r.StaffCount,
		TotalUnits:     r.TotalUnits,
		InventoryValue: r.InventoryValue,
		TaxOnValue:     r.TaxOnValue,
		Levels:         make(map[string]int64, len(r.Levels)),
		Items:          make([]productStockResponse, 0, len(r.Items)),
	}
	for level, n := range r.Levels {
		resp.Levels[string(level)] = n
	}
	for _, it := range r.Items {
		resp.Items = append(resp.Items, productStockResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			Stock:     it.Stock,
			Value:     it.Value,
			Level:     string(it.Level),
			Reorder:   it.Reorder,
		})
	}
	return resp
}
