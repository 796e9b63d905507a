package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/api/handler"
	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

type tokenTable map[string]*domain.Principal

func (t tokenTable) Authenticate(_ context.Context, token string) (*domain.Principal, error) {
	if p, ok := t[token]; ok {
		return p, nil
	}
	return nil, domain.ErrUnauthenticated
}

// storeScope allows owners on their stores and staff on their store with the
// listed permissions.
type storeScope struct {
	owners map[string]string
	perms  map[string][]string
}

func (s storeScope) AuthorizeStore(_ context.Context, p *domain.Principal, storeID string) error {
	switch {
	case p.IsOwner() && s.owners[storeID] == p.ID:
		return nil
	case p.IsStaff() && p.StoreID == storeID:
		return nil
	}
	return domain.ErrForbidden
}

func (s storeScope) Authorize(ctx context.Context, p *domain.Principal, permission, storeID string) error {
	if err := s.AuthorizeStore(ctx, p, storeID); err != nil {
		return err
	}
	if p.IsOwner() {
		return nil
	}
	for _, have := range s.perms[p.ID] {
		if have == permission {
			return nil
		}
	}
	return domain.ErrForbidden
}

func (s storeScope) OwnerOf(_ context.Context, storeID string) (string, error) {
	if owner, ok := s.owners[storeID]; ok {
		return owner, nil
	}
	return "", domain.ErrStoreNotFound
}

type planFeatures map[string][]string

func (f planFeatures) CheckResourceLimit(context.Context, string, domain.ResourceKind, int64) error {
	return nil
}

func (f planFeatures) CheckFeatureAccess(_ context.Context, ownerID, feature string) error {
	for _, have := range f[ownerID] {
		if have == feature {
			return nil
		}
	}
	return domain.ErrFeatureUnavailable
}

func (f planFeatures) ActiveSubscription(context.Context, string) (*domain.UserSubscription, error) {
	return nil, domain.ErrSubscriptionRequired
}

type storeLookup struct{ ports.StoreService }

func (storeLookup) Get(_ context.Context, storeID string) (*domain.Store, error) {
	return &domain.Store{ID: storeID, Name: "Main"}, nil
}

type emptyReports struct{}

func (emptyReports) Advanced(_ context.Context, storeID string) (*ports.AdvancedReport, error) {
	return &ports.AdvancedReport{StoreID: storeID}, nil
}

func newTestRouter() http.Handler {
	scope := storeScope{
		owners: map[string]string{"store_a": "owner_a", "store_b": "owner_b"},
		perms:  map[string][]string{"cashier": {domain.PermViewSales, domain.PermViewReports}},
	}
	return NewRouter(Deps{
		Stores:  storeLookup{},
		Reports: emptyReports{},
		Authenticator: tokenTable{
			"owner-a": {ID: "owner_a", Kind: domain.PrincipalOwner},
			"owner-b": {ID: "owner_b", Kind: domain.PrincipalOwner},
			"cashier": {ID: "cashier", Kind: domain.PrincipalStaff, StoreID: "store_a", RoleID: "r1"},
		},
		Authorizer: scope,
		Tenants:    scope,
		Limiter:    planFeatures{"owner_b": {domain.FeatureAdvancedReports}},
		Health:     map[string]handler.DependencyCheck{},
		Registry:   prometheus.NewRegistry(),
		Log:        zerolog.Nop(),
	})
}

func do(t *testing.T, h http.Handler, method, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body
}

func TestRouter_PolicyOutcomes(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		code   string
	}{
		{"no token", http.MethodGet, "/api/stores/store_a", "", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"bad token", http.MethodGet, "/api/stores/store_a", "forged", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"owner on own store", http.MethodGet, "/api/stores/store_a", "owner-a", http.StatusOK, ""},
		{"owner on foreign store", http.MethodGet, "/api/stores/store_b", "owner-a", http.StatusForbidden, "FORBIDDEN"},
		{"staff on own store", http.MethodGet, "/api/stores/store_a", "cashier", http.StatusOK, ""},
		{"staff on other store", http.MethodGet, "/api/stores/store_b", "cashier", http.StatusForbidden, "FORBIDDEN"},
		{"staff without permission", http.MethodGet, "/api/stores/store_a/staff", "cashier", http.StatusForbidden, "FORBIDDEN"},
		{"staff cannot delete store", http.MethodDelete, "/api/stores/store_a", "cashier", http.StatusForbidden, "FORBIDDEN"},
		{"staff cannot subscribe", http.MethodPost, "/api/subscriptions/subscribe", "cashier", http.StatusForbidden, "FORBIDDEN"},
		{"report without feature", http.MethodGet, "/api/stores/store_a/reports/advanced", "cashier", http.StatusForbidden, "FEATURE_UNAVAILABLE"},
		{"report with feature", http.MethodGet, "/api/stores/store_b/reports/advanced", "owner-b", http.StatusOK, ""},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, r, tc.method, tc.path, tc.token)
			if status != tc.status {
				t.Fatalf("status = %d, want %d (body %v)", status, tc.status, body)
			}
			if tc.code != "" && body["code"] != tc.code {
				t.Fatalf("code = %v, want %s", body["code"], tc.code)
			}
		})
	}
}

func TestRouter_OpsEndpoints(t *testing.T) {
	r := newTestRouter()

	if status, _ := do(t, r, http.MethodGet, "/health", ""); status != http.StatusOK {
		t.Fatalf("health: %d", status)
	}
	if status, _ := do(t, r, http.MethodGet, "/health/ready", ""); status != http.StatusOK {
		t.Fatalf("ready: %d", status)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}
