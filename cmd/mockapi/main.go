// Command mockapi serves an in-memory PULSEPR backend for local development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsepr/storefront/internal/infrastructure/config"
	"github.com/pulsepr/storefront/internal/mockapi"
	"github.com/pulsepr/storefront/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "mockapi"})

	srv, err := mockapi.New(mockapi.Config{
		JWTSecret:     cfg.MockAPI.JWTSecret,
		PaymentSecret: cfg.MockAPI.PaymentSecret,
		AdminEmail:    cfg.MockAPI.AdminEmail,
		AdminPassword: cfg.MockAPI.AdminPassword,
		TokenTTL:      cfg.MockAPI.TokenTTL,
		Seed:          cfg.MockAPI.Seed,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build backend emulator")
	}

	httpSrv := &http.Server{
		Addr:         ":" + cfg.MockAPI.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.MockAPI.Port).Str("admin", cfg.MockAPI.AdminEmail).Msg("backend emulator starting")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}
