package handler

import (
	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

type subscribeRequest struct {
	PlanID           string `json:"plan_id"           validate:"required"`
	PaymentMethod    string `json:"payment_method"    validate:"omitempty,oneof=card paypal free ewallet gcash maya grab_pay"`
	PaymentReference string `json:"payment_reference" validate:"max=128"`
	AutoRenew        bool   `json:"auto_renew"`
}

type plansResponse struct {
	Plans []*domain.Plan `json:"plans"`
}

type storeUsageResponse struct {
	StoreID   string               `json:"store_id"`
	StoreName string               `json:"store_name"`
	Products  domain.ResourceUsage `json:"products"`
	Staff     domain.ResourceUsage `json:"staff"`
}

type usageResponse struct {
	Plan     *domain.Plan         `json:"plan"`
	Stores   domain.ResourceUsage `json:"stores"`
	PerStore []storeUsageResponse `json:"per_store"`
}

func toUsageResponse(u *ports.UsageSummary) usageResponse {
	resp := usageResponse{
		Plan:     u.Plan,
		Stores:   u.Stores,
		PerStore: make([]storeUsageResponse, 0, len(u.PerStore)),
	}
	for _, s := range u.PerStore {
		resp.PerStore = append(resp.PerStore, storeUsageResponse{
			StoreID:   s.StoreID,
			StoreName: s.StoreName,
			Products:  s.Products,
			Staff:     s.Staff,
		})
	}
	return resp
}
