package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/api/middleware"
	"github.com/possuite/backoffice/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Auth middleware. A route
// mounted without Auth fails closed.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.Principal(c)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

// ctxOwner is ctxPrincipal restricted to owners.
func ctxOwner(c echo.Context) (*domain.Principal, error) {
	p, err := ctxPrincipal(c)
	if err != nil {
		return nil, err
	}
	if !p.IsOwner() {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
