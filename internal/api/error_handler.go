package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
	// detail exposes the wrapped message instead of the sentinel text.
	detail bool
}

// errorTable is checked in order; the first errors.Is match wins.
var errorTable = []errorMapping{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED", false},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", false},
	{domain.ErrEmailNotVerified, http.StatusUnauthorized, "EMAIL_NOT_VERIFIED", false},
	{domain.ErrLimitExceeded, http.StatusForbidden, "LIMIT_EXCEEDED", false},
	{domain.ErrFeatureUnavailable, http.StatusForbidden, "FEATURE_UNAVAILABLE", false},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", false},
	{domain.ErrSubscriptionRequired, http.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED", false},
	{domain.ErrPaymentRequired, http.StatusPaymentRequired, "PAYMENT_REQUIRED", true},
	{domain.ErrOwnerNotFound, http.StatusNotFound, "OWNER_NOT_FOUND", false},
	{domain.ErrStaffNotFound, http.StatusNotFound, "STAFF_NOT_FOUND", false},
	{domain.ErrRoleNotFound, http.StatusNotFound, "ROLE_NOT_FOUND", false},
	{domain.ErrStoreNotFound, http.StatusNotFound, "STORE_NOT_FOUND", false},
	{domain.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND", false},
	{domain.ErrPlanNotFound, http.StatusNotFound, "PLAN_NOT_FOUND", false},
	{domain.ErrSubscriptionNotFound, http.StatusNotFound, "SUBSCRIPTION_NOT_FOUND", false},
	{domain.ErrOwnerExists, http.StatusConflict, "OWNER_EXISTS", false},
	{domain.ErrStaffExists, http.StatusConflict, "STAFF_EXISTS", false},
	{domain.ErrInvalidOperation, http.StatusConflict, "INVALID_OPERATION", true},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT", true},
	{domain.ErrInvalidToken, http.StatusBadRequest, "INVALID_TOKEN", false},
	{domain.ErrAlreadyVerified, http.StatusBadRequest, "ALREADY_VERIFIED", false},
	{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", true},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and logs anything unexpected without leaking it.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Code: httpCode(he.Code)}
	}

	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			msg := m.target.Error()
			if m.detail {
				msg = err.Error()
			}
			return m.status, errorResponse{Error: msg, Code: m.code}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL"}
}

func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return "ERROR"
}
