// Package mockapi is an in-memory emulator of the storefront REST backend.
// It speaks the same routes and payloads as the real service, issues HS256
// tokens, prices orders and checks payment signatures, so the storefront can
// be run and tested end to end without external services.
package mockapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// Config configures the emulator.
type Config struct {
	JWTSecret     string
	PaymentSecret string
	AdminEmail    string
	AdminPassword string
	TokenTTL      time.Duration
	// Seed loads the demo catalog.
	Seed bool
}

type Server struct {
	cfg   Config
	store *store
	e     *echo.Echo
	log   zerolog.Logger
}

// New builds the emulator. An admin account is always created when
// AdminEmail is set.
func New(cfg Config, log zerolog.Logger) (*Server, error) {
	cfg.TokenTTL = tokenTTL(cfg.TokenTTL)
	s := &Server{cfg: cfg, store: newStore(), log: log}

	if cfg.AdminEmail != "" {
		s.store.mu.Lock()
		_, err := s.createAccount("Admin", cfg.AdminEmail, cfg.AdminPassword, domain.RoleAdmin)
		s.store.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	if cfg.Seed {
		s.seed()
	}

	s.e = s.routes()
	return s, nil
}

// Handler serves the backend API.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(s.log)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	// --- Auth ---
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)
	api.GET("/auth/orders", s.myOrders, s.authenticate)

	// --- Products (public) ---
	api.GET("/products", s.listProducts)
	api.GET("/products/search", s.searchProducts)
	api.GET("/products/category/:category", s.productsByCategory)
	api.GET("/products/:id", s.getProduct)

	// --- Cart ---
	cart := api.Group("/cart", s.authenticate)
	cart.GET("", s.getCart)
	cart.POST("", s.addToCart)
	cart.PUT("", s.updateCart)
	cart.DELETE("/:itemId", s.removeFromCart)

	// --- Payment ---
	pay := api.Group("/payment", s.authenticate)
	pay.POST("/create-order", s.createOrder)
	pay.POST("/verify", s.verifyPayment)

	// --- Designs ---
	designs := api.Group("/designs", s.authenticate)
	designs.POST("/upload", s.uploadDesign)
	designs.GET("/my-designs", s.myDesigns)
	designs.GET("/:id", s.getDesign)
	designs.DELETE("/:id", s.deleteDesign)

	// --- Admin ---
	adm := api.Group("/admin", s.authenticate, adminOnly)
	adm.GET("/products", s.adminProducts)
	adm.POST("/product/add", s.addProduct)
	adm.PUT("/product/update/:id", s.updateProduct)
	adm.DELETE("/product/delete/:id", s.deleteProduct)
	adm.POST("/product/upload-image", s.uploadImages)
	adm.GET("/orders", s.adminOrders)
	adm.PATCH("/order/status/:id", s.updateOrderStatus)
	adm.GET("/users", s.adminUsers)
	adm.GET("/stats", s.adminStats)
	adm.GET("/offers", s.adminOffers)
	adm.POST("/offers", s.createOffer)
	adm.POST("/offers/apply", s.applyOffer)
	adm.GET("/designs", s.adminDesigns)
	adm.PATCH("/designs/:id/status", s.updateDesignStatus)

	return e
}
