package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{domain.ErrEmailNotVerified, http.StatusUnauthorized, "EMAIL_NOT_VERIFIED"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("products: %w", domain.ErrLimitExceeded), http.StatusForbidden, "LIMIT_EXCEEDED"},
		{domain.ErrFeatureUnavailable, http.StatusForbidden, "FEATURE_UNAVAILABLE"},
		{domain.ErrSubscriptionRequired, http.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED"},
		{domain.ErrPaymentRequired, http.StatusPaymentRequired, "PAYMENT_REQUIRED"},
		{domain.ErrStoreNotFound, http.StatusNotFound, "STORE_NOT_FOUND"},
		{domain.ErrSubscriptionNotFound, http.StatusNotFound, "SUBSCRIPTION_NOT_FOUND"},
		{fmt.Errorf("%w: default role", domain.ErrInvalidOperation), http.StatusConflict, "INVALID_OPERATION"},
		{domain.ErrOwnerExists, http.StatusConflict, "OWNER_EXISTS"},
		{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{domain.ErrInvalidToken, http.StatusBadRequest, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		status, body := renderError(t, tc.err)
		if status != tc.status || body.Code != tc.code {
			t.Errorf("%v: got %d/%s, want %d/%s", tc.err, status, body.Code, tc.status, tc.code)
		}
	}
}

func TestErrorHandler_DetailOnlyForSafeErrors(t *testing.T) {
	_, body := renderError(t, fmt.Errorf("%w: name is required", domain.ErrInvalidInput))
	if body.Error != "invalid input: name is required" {
		t.Errorf("expected wrapped detail, got %q", body.Error)
	}

	_, body = renderError(t, fmt.Errorf("owner lookup for x@y: %w", domain.ErrForbidden))
	if body.Error != domain.ErrForbidden.Error() {
		t.Errorf("forbidden must not leak detail, got %q", body.Error)
	}
}

func TestErrorHandler_UnknownIs500(t *testing.T) {
	status, body := renderError(t, errors.New("mongo: connection refused"))
	if status != http.StatusInternalServerError || body.Error != "internal server error" {
		t.Fatalf("got %d %+v", status, body)
	}
	status, body = renderError(t, fmt.Errorf("verify payment: %w", errors.New("payment ledger claim: dial tcp 10.0.0.5:6379: connect: connection refused")))
	if status != http.StatusInternalServerError || body.Code != "INTERNAL" || body.Error != "internal server error" {
		t.Fatalf("payment backend outage: got %d %+v", status, body)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	status, body := renderError(t, echo.NewHTTPError(http.StatusNotFound, "Not Found"))
	if status != http.StatusNotFound || body.Code != "NOT_FOUND" {
		t.Fatalf("got %d %+v", status, body)
	}
}
