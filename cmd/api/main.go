package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/salesdash/internal/cache"
	"github.com/MrJamesThe3rd/salesdash/internal/config"
	salesdashHttp "github.com/MrJamesThe3rd/salesdash/internal/http"
	healthHandler "github.com/MrJamesThe3rd/salesdash/internal/http/health"
	productHandler "github.com/MrJamesThe3rd/salesdash/internal/http/product"
	"github.com/MrJamesThe3rd/salesdash/internal/logger"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction/backend"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Level, cfg.Log.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	scheme, err := transaction.SchemeByName(cfg.Chart.Scheme)
	if err != nil {
		slog.Error("failed to select chart scheme", "error", err)
		os.Exit(1)
	}

	opts := []transaction.Option{transaction.WithScheme(scheme)}

	if cfg.Redis.Addr != "" {
		c, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			// Caching is optional; serve straight from the store.
			slog.Warn("redis unavailable, caching disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer c.Close()
			opts = append(opts, transaction.WithCache(c))
		}
	}

	var (
		transactionService = transaction.NewService(repo, opts...)
		productH           = productHandler.NewHandler(transactionService, cfg.Server.Timeout)
		healthH            = healthHandler.NewHandler(version, map[string]healthHandler.Pinger{"store": repo})
	)

	router := salesdashHttp.New(productH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr, "backend", cfg.Store.Backend, "scheme", scheme.Name)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
