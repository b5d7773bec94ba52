package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaplamahesh/outreach/internal/app"
	"github.com/aaplamahesh/outreach/internal/config"
	"github.com/aaplamahesh/outreach/internal/handler"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/middleware"
	"github.com/aaplamahesh/outreach/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", handler.Version).Msg("starting outreach server")

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer a.Close()

	status := a.Dispatch.ProviderStatus()
	if status.Active == "" {
		log.Warn().Msg("no email provider is configured; form submissions will fail")
	} else {
		log.Info().Str("primary", status.Active).Str("fallback", status.Fallback).Msg("email providers ready")
	}
	if cfg.Site.AdminEmail == "" {
		log.Warn().Msg("site.admin_email is empty; notifications have no recipient")
	}
	if !a.Admin.Enabled() {
		log.Warn().Msg("admin API disabled: set security.admin.password_hash and token_secret")
	}

	// Rate limiter: shared through Redis when available
	var limiter middleware.Limiter = middleware.NewMemoryLimiter()
	if a.Redis != nil {
		limiter = middleware.NewRedisLimiter(a.Redis)
	}

	checks := map[string]handler.Checker{}
	if a.DB != nil {
		checks["postgres"] = a.DB
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis
	}

	// Initialize handlers
	h := handler.New(handler.Services{
		Forms:     a.Forms,
		Dispatch:  a.Dispatch,
		Campaigns: a.Campaigns,
		Contacts:  a.Contacts,
		Admin:     a.Admin,
		Audit:     a.Audit,
	}, a.Bundle, a.Metrics, checks, log)

	// Initialize middleware
	mw := middleware.New(limiter, log, cfg, a.Metrics)

	// Set up router
	r := router.New(h, mw, cfg, a.Tokens)

	// Create HTTP server. Campaign sends are sequential, so writes get a long deadline.
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Bool("tls", cfg.Server.TLS.Enabled).Msg("HTTP server listening")
		var err error
		if cfg.Server.TLS.Enabled {
			err = srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
