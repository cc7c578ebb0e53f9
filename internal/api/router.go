package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/pulsepr/storefront/internal/api/docs"
	"github.com/pulsepr/storefront/internal/api/handler"
	"github.com/pulsepr/storefront/internal/api/middleware"
	"github.com/pulsepr/storefront/internal/core/domain"
)

// Deps are the orchestrators and adapters the console exposes.
type Deps struct {
	Sessions  handler.SessionManager
	Catalog   handler.CatalogBrowser
	Cart      handler.CartManager
	Checkout  handler.CheckoutRunner
	Widgets   handler.WidgetOptionsSource
	History   handler.AttemptHistory
	Account   handler.AccountManager
	Admin     handler.AdminManager
	Feed      handler.NotificationFeed
	Nav       handler.ViewTracker
	Readiness map[string]handler.Check

	// Swagger mounts /swagger/*.
	Swagger bool
	// Registerer receives the HTTP middleware metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
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
	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront_console",
		Registerer: reg,
	}))

	// --- Health probes & metrics (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	if d.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	v1 := e.Group("/v1")
	requireSession := middleware.RequireSession(d.Sessions)

	// --- Session ---
	sessions := handler.NewSessionHandler(d.Sessions)
	v1.GET("/session", sessions.Get)
	v1.POST("/session/login", sessions.Login)
	v1.POST("/session/register", sessions.Register)
	v1.POST("/session/logout", sessions.Logout)

	// --- Catalog (public) ---
	catalog := handler.NewCatalogHandler(d.Catalog)
	v1.GET("/products", catalog.List)
	v1.GET("/products/:id", catalog.Get)
	// quick add answers anonymous callers itself: it notifies and redirects to login
	v1.POST("/products/:id/quick-add", catalog.QuickAdd)

	// --- Cart ---
	cart := handler.NewCartHandler(d.Cart)
	v1.GET("/cart", cart.Get)
	v1.POST("/cart/items", cart.Add)
	v1.PUT("/cart/items/:itemId", cart.Update)
	v1.DELETE("/cart/items/:itemId", cart.Remove)

	// --- Checkout ---
	checkout := handler.NewCheckoutHandler(d.Checkout, d.Widgets, d.History, d.Sessions)
	cg := v1.Group("/checkout", requireSession)
	cg.POST("", checkout.Begin)
	cg.GET("/current", checkout.Current)
	cg.GET("/history", checkout.History)
	cg.GET("/:id", checkout.Get)
	cg.POST("/:id/events", checkout.Event)

	// --- Account ---
	account := handler.NewAccountHandler(d.Account)
	ag := v1.Group("/account", requireSession)
	ag.GET("/orders", account.Orders)
	ag.GET("/designs", account.Designs)
	ag.POST("/designs", account.UploadDesign)
	ag.GET("/designs/:id", account.Design)
	ag.DELETE("/designs/:id", account.DeleteDesign)

	// --- Admin ---
	admin := handler.NewAdminHandler(d.Admin)
	adm := v1.Group("/admin", requireSession, middleware.RBAC(domain.RoleAdmin))
	adm.GET("/products", admin.Products)
	adm.POST("/products", admin.AddProduct)
	adm.POST("/products/images", admin.UploadImages)
	adm.PUT("/products/:id", admin.UpdateProduct)
	adm.DELETE("/products/:id", admin.DeleteProduct)
	adm.GET("/orders", admin.Orders)
	adm.PATCH("/orders/:id/status", admin.UpdateOrderStatus)
	adm.GET("/users", admin.Users)
	adm.GET("/stats", admin.Stats)
	adm.GET("/offers", admin.Offers)
	adm.POST("/offers", admin.CreateOffer)
	adm.POST("/offers/apply", admin.ApplyOffer)
	adm.GET("/designs", admin.Designs)
	adm.PATCH("/designs/:id/status", admin.UpdateDesignStatus)
	adm.POST("/designs/:id/draft", admin.DesignDraft)

	// --- UI state ---
	ui := handler.NewUIHandler(d.Feed, d.Nav)
	v1.GET("/notifications", ui.Notifications)
	v1.DELETE("/notifications", ui.DrainNotifications)
	v1.GET("/view", ui.View)
	v1.PUT("/view", ui.SetView)

	return e
}

// requestLogger writes one zerolog line per request.
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
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
