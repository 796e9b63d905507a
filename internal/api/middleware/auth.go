package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

const principalKey = "principal"

// Auth resolves the bearer token to a principal and stores it on the context.
func Auth(authn ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrUnauthenticated
			}

			p, err := authn.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// Principal returns the principal set by Auth, or nil.
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

// SetPrincipal stores p on the context. Used by tests and by Auth.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}
