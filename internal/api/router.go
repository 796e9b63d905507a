package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/possuite/backoffice/docs"
	"github.com/possuite/backoffice/internal/api/handler"
	"github.com/possuite/backoffice/internal/api/middleware"
	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from. Callers wrap the
// policy components with the metrics decorators before passing them in.
type Deps struct {
	Auth          ports.AuthService
	Subscriptions ports.SubscriptionService
	Stores        ports.StoreService
	Roles         ports.RoleService
	Staff         ports.StaffService
	Products      ports.ProductService
	Reports       ports.ReportService

	Authenticator ports.Authenticator
	Authorizer    ports.Authorizer
	Limiter       ports.Limiter
	Tenants       ports.TenantResolver

	Health map[string]handler.DependencyCheck

	// Registry receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "backoffice",
		Registerer: registerer(d.Registry),
	}))

	// --- Policy ---
	authn := middleware.Auth(d.Authenticator)
	authz := d.Authorizer
	limiter := d.Limiter
	owner := middleware.RequireOwner()
	can := func(permission string) echo.MiddlewareFunc {
		return middleware.RequirePermission(authz, permission)
	}
	feature := func(name string) echo.MiddlewareFunc {
		return middleware.RequireFeature(limiter, d.Tenants, name)
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	subHandler := handler.NewSubscriptionHandler(d.Subscriptions)
	storeHandler := handler.NewStoreHandler(d.Stores)
	roleHandler := handler.NewRoleHandler(d.Roles)
	staffHandler := handler.NewStaffHandler(d.Staff)
	productHandler := handler.NewProductHandler(d.Products, d.Reports)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/verify-email/:token", authHandler.VerifyEmail)
	api.POST("/auth/resend-verification", authHandler.ResendVerification)
	api.GET("/auth/profile", authHandler.Profile, authn)
	api.POST("/staff/login", authHandler.StaffLogin)

	// --- Subscription routes ---
	api.GET("/subscriptions", subHandler.Plans)
	api.GET("/subscriptions/current", subHandler.Current, authn, owner)
	api.POST("/subscriptions/subscribe", subHandler.Subscribe, authn, owner)
	api.POST("/subscriptions/cancel", subHandler.Cancel, authn, owner)
	api.GET("/subscriptions/usage", subHandler.Usage, authn, owner)

	// --- Store routes ---
	api.POST("/stores", storeHandler.Create, authn, owner)
	api.GET("/stores", storeHandler.List, authn)
	api.GET("/stores/:storeId", storeHandler.Get, authn, middleware.RequireStoreAccess(authz))
	api.PUT("/stores/:storeId", storeHandler.Update, authn, can(domain.PermManageSettings))
	api.DELETE("/stores/:storeId", storeHandler.Delete, authn, middleware.RequireStoreOwner(authz))

	api.GET("/stores/:storeId/roles", roleHandler.List, authn, can(domain.PermManageUsers))
	api.POST("/stores/:storeId/roles", roleHandler.Create, authn, can(domain.PermManageUsers), feature(domain.FeatureCustomRoles))
	api.PUT("/stores/:storeId/roles/:roleId", roleHandler.Update, authn, can(domain.PermManageUsers))
	api.DELETE("/stores/:storeId/roles/:roleId", roleHandler.Delete, authn, can(domain.PermManageUsers))

	api.GET("/stores/:storeId/staff", staffHandler.List, authn, can(domain.PermManageUsers))
	api.POST("/stores/:storeId/staff", staffHandler.Create, authn, can(domain.PermManageUsers))
	api.PUT("/stores/:storeId/staff/:staffId", staffHandler.Update, authn, can(domain.PermManageUsers))
	api.DELETE("/stores/:storeId/staff/:staffId", staffHandler.Delete, authn, can(domain.PermManageUsers))

	api.GET("/stores/:storeId/products", productHandler.List, authn, middleware.RequireStoreAccess(authz))
	api.POST("/stores/:storeId/products", productHandler.Create, authn, can(domain.PermManageInventory))
	api.DELETE("/stores/:storeId/products/:productId", productHandler.Delete, authn, can(domain.PermManageInventory))

	api.GET("/stores/:storeId/reports/advanced", productHandler.AdvancedReport,
		authn, can(domain.PermViewReports), feature(domain.FeatureAdvancedReports))

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(d.Health).Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer(d.Registry)}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func gatherer(r *prometheus.Registry) prometheus.Gatherer {
	if r == nil {
		return prometheus.DefaultGatherer
	}
	return r
}
