package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// StoreParam is the route parameter carrying the store id.
const StoreParam = "storeId"

// RequireOwner admits owners only.
func RequireOwner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !Principal(c).IsOwner() {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireStoreAccess admits principals scoped to the :storeId store.
func RequireStoreAccess(authz ports.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authz.AuthorizeStore(c.Request().Context(), Principal(c), c.Param(StoreParam)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireStoreOwner admits only the owner of the :storeId store.
func RequireStoreOwner(authz ports.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if !p.IsOwner() {
				return domain.ErrForbidden
			}
			if err := authz.AuthorizeStore(c.Request().Context(), p, c.Param(StoreParam)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequirePermission admits principals holding permission on the :storeId store.
func RequirePermission(authz ports.Authorizer, permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authz.Authorize(c.Request().Context(), Principal(c), permission, c.Param(StoreParam)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireFeature admits requests whose store owner's plan includes feature.
// It must run after a store-scoping middleware.
func RequireFeature(limiter ports.Limiter, tenants ports.TenantResolver, feature string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ownerID, err := tenants.OwnerOf(ctx, c.Param(StoreParam))
			if err != nil {
				return err
			}
			if err := limiter.CheckFeatureAccess(ctx, ownerID, feature); err != nil {
				return err
			}
			return next(c)
		}
	}
}
