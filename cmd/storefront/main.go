// Command storefront runs the PULSEPR storefront client as a local console API.
//
//	@title			PULSEPR Storefront Console
//	@version		1.0
//	@description	Session, cart, checkout, account and back-office orchestration over the PULSEPR REST backend.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/api"
	"github.com/pulsepr/storefront/internal/api/handler"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/core/service"
	"github.com/pulsepr/storefront/internal/infrastructure/backend"
	"github.com/pulsepr/storefront/internal/infrastructure/config"
	"github.com/pulsepr/storefront/internal/infrastructure/db/mongo"
	"github.com/pulsepr/storefront/internal/infrastructure/db/redis"
	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
	"github.com/pulsepr/storefront/internal/infrastructure/navigation"
	"github.com/pulsepr/storefront/internal/infrastructure/notify"
	"github.com/pulsepr/storefront/internal/infrastructure/queue"
	"github.com/pulsepr/storefront/internal/infrastructure/storage"
	"github.com/pulsepr/storefront/internal/infrastructure/widget"
	"github.com/pulsepr/storefront/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	journalWorkers  = 4
)

// attemptStore is a journal that can also be queried.
type attemptStore interface {
	ports.AttemptJournal
	handler.AttemptHistory
}

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "storefront"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	readiness := map[string]handler.Check{}

	// --- Redis (session storage and verification guard) ---
	var guard ports.VerificationGuard = storage.NewMemoryGuard()
	var sessions ports.SessionStorage
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		guard = redis.NewVerificationGuard(rdb)
		if cfg.Session.Store == config.StoreRedis {
			sessions = redis.NewSessionStore(rdb, cfg.Session.Profile)
		}
		readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	switch cfg.Session.Store {
	case config.StoreFile:
		sessions = storage.NewFileStorage(cfg.Session.File)
	case config.StoreMemory:
		sessions = storage.NewMemoryStorage()
	}

	// --- MongoDB (checkout attempt journal) ---
	var attempts attemptStore = storage.NewMemoryJournal()
	if cfg.Mongo.URI != "" {
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "pulsepr-storefront"})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongodb disconnect failed")
			}
		}()
		attempts = mongo.NewAttemptJournal(db)
		readiness["mongodb"] = mongo.NewPinger(client).Ping
	}
	journal := queue.NewJournalDispatcher(journalWorkers, attempts, logger.Component("journal"))
	journal.Start(ctx)

	// --- Gateway & backend adapters ---
	client, err := gateway.New(cfg.APIURL, gateway.WithLogger(logger.Component("gateway")))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid API_URL")
	}
	be := backend.New(client)
	readiness["backend"] = func(ctx context.Context) error {
		return client.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/products"}, nil)
	}

	// --- UI adapters ---
	nav := navigation.New(ports.ViewHome, logger.Component("navigator"))
	feed := notify.NewCenter(0, logger.Component("notify"))
	widgets := widget.NewHosted(cfg.PaymentKeyID, logger.Component("widget"))
	if cfg.PaymentKeyID == "" {
		log.Warn().Msg("PAYMENT_KEY_ID is not set, checkout cannot open the payment widget")
	}

	// --- Orchestrators ---
	session := service.NewSessionService(be.Auth, sessions, feed, logger.Component("session"))
	cart := service.NewCartService(be.Cart, session, feed, logger.Component("cart"))
	session.Subscribe(cart.OnSessionChange)
	client.Use(gateway.BearerAuth(session), gateway.UnauthorizedRedirect(session, nav, gateway.DefaultLoginViews, logger.Component("gateway")))

	catalog := service.NewCatalogService(be.Catalog, cart, session, nav, feed, logger.Component("catalog"))
	checkout := service.NewCheckoutService(service.CheckoutDeps{
		Payments: be.Payment,
		Cart:     cart,
		Session:  session,
		Widget:   widgets,
		Guard:    guard,
		Journal:  journal,
		Nav:      nav,
		Notifier: feed,
	}, logger.Component("checkout"))
	session.Subscribe(checkout.OnSessionChange)
	account := service.NewAccountService(be.Account, session, feed, logger.Component("account"))
	admin := service.NewAdminService(be.Admin, session, feed, logger.Component("admin"))

	session.Restore(ctx)

	e := api.NewRouter(api.Deps{
		Sessions:  session,
		Catalog:   catalog,
		Cart:      cart,
		Checkout:  checkout,
		Widgets:   widgets,
		History:   attempts,
		Account:   account,
		Admin:     admin,
		Feed:      feed,
		Nav:       nav,
		Readiness: readiness,
		Swagger:   cfg.IsDevelopment(),
		Log:       logger.Component("console"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("api_url", cfg.APIURL).Str("session_store", cfg.Session.Store).Msg("storefront console starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	shutdown(srv, journal, log)
}

// shutdown stops the console first so no new attempts reach the journal,
// then drains the journal workers.
func shutdown(srv *http.Server, journal *queue.JournalDispatcher, log zerolog.Logger) {
	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	journal.Close()
	log.Info().Msg("storefront exited")
}
