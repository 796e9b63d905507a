package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/possuite/backoffice/internal/api/middleware"
	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

type stubSubscriptionService struct {
	subscribed ports.SubscribeInput
	cancelled  string
	err        error
}

func (s *stubSubscriptionService) Plans(context.Context) ([]*domain.Plan, error) {
	return domain.DefaultPlans(), nil
}

func (s *stubSubscriptionService) Current(_ context.Context, ownerID string) (*domain.UserSubscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.UserSubscription{OwnerID: ownerID, Status: domain.SubscriptionActive}, nil
}

func (s *stubSubscriptionService) Subscribe(_ context.Context, in ports.SubscribeInput) (*domain.UserSubscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.subscribed = in
	return &domain.UserSubscription{OwnerID: in.OwnerID, PlanID: in.PlanID, Status: domain.SubscriptionActive}, nil
}

func (s *stubSubscriptionService) Cancel(_ context.Context, ownerID string) error {
	s.cancelled = ownerID
	return s.err
}

func (s *stubSubscriptionService) Usage(_ context.Context, ownerID string) (*ports.UsageSummary, error) {
	return &ports.UsageSummary{
		Stores: domain.NewResourceUsage(1, 1),
		PerStore: []ports.StoreUsage{
			{StoreID: "store_1", StoreName: "Main", Products: domain.NewResourceUsage(9, 10), Staff: domain.NewResourceUsage(0, 2)},
		},
	}, nil
}

var ownerPrincipal = &domain.Principal{ID: "owner_1", Kind: domain.PrincipalOwner}

func TestSubscriptionHandler_Plans(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/subscriptions", "")

	if err := NewSubscriptionHandler(&stubSubscriptionService{}).Plans(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	plans, ok := decode(t, rec)["plans"].([]any)
	if !ok || len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %v", plans)
	}
}

func TestSubscriptionHandler_Subscribe(t *testing.T) {
	svc := &stubSubscriptionService{}
	c, rec := newJSONContext(http.MethodPost, "/api/subscriptions/subscribe",
		`{"plan_id":"plan_basic","payment_method":"gcash","payment_reference":"09171234567","auto_renew":true}`)
	middleware.SetPrincipal(c, ownerPrincipal)

	if err := NewSubscriptionHandler(svc).Subscribe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	in := svc.subscribed
	if in.OwnerID != "owner_1" || in.PlanID != "plan_basic" || in.Payment.Method != domain.PaymentGCash || !in.AutoRenew {
		t.Fatalf("unexpected subscribe input: %+v", in)
	}
}

func TestSubscriptionHandler_SubscribeRejectsStaff(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/api/subscriptions/subscribe", `{"plan_id":"plan_basic"}`)
	middleware.SetPrincipal(c, &domain.Principal{ID: "s", Kind: domain.PrincipalStaff})

	if err := NewSubscriptionHandler(&stubSubscriptionService{}).Subscribe(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubscriptionHandler_SubscribeUnknownMethod(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/api/subscriptions/subscribe", `{"plan_id":"plan_basic","payment_method":"barter"}`)
	middleware.SetPrincipal(c, ownerPrincipal)

	if err := NewSubscriptionHandler(&stubSubscriptionService{}).Subscribe(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubscriptionHandler_CurrentNotFound(t *testing.T) {
	c, _ := newJSONContext(http.MethodGet, "/api/subscriptions/current", "")
	middleware.SetPrincipal(c, ownerPrincipal)

	err := NewSubscriptionHandler(&stubSubscriptionService{err: domain.ErrSubscriptionNotFound}).Current(c)
	if !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	svc := &stubSubscriptionService{}
	c, rec := newJSONContext(http.MethodPost, "/api/subscriptions/cancel", "")
	middleware.SetPrincipal(c, ownerPrincipal)

	if err := NewSubscriptionHandler(svc).Cancel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || svc.cancelled != "owner_1" {
		t.Fatalf("expected cancel for owner_1, got %d %q", rec.Code, svc.cancelled)
	}
}

func TestSubscriptionHandler_Usage(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/subscriptions/usage", "")
	middleware.SetPrincipal(c, ownerPrincipal)

	if err := NewSubscriptionHandler(&stubSubscriptionService{}).Usage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	perStore, ok := resp["per_store"].([]any)
	if !ok || len(perStore) != 1 {
		t.Fatalf("expected one store row, got %+v", resp)
	}
	products := perStore[0].(map[string]any)["products"].(map[string]any)
	if products["remaining"] != float64(1) || products["near_limit"] != true {
		t.Fatalf("unexpected product usage: %+v", products)
	}
}
