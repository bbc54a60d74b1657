package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/salesdash/internal/config"
	"github.com/MrJamesThe3rd/salesdash/internal/logger"
	"github.com/MrJamesThe3rd/salesdash/internal/seed"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction/backend"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Level, cfg.Log.JSON)

	source := flag.String("source", cfg.Seed.Source, "dataset URL or path to a .json/.csv file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	n, err := seed.NewLoader(store).Load(ctx, *source)
	if err != nil {
		slog.Error("failed to seed transactions", "source", *source, "error", err)
		closeStore()
		os.Exit(1)
	}

	slog.Info("seed complete", "backend", cfg.Store.Backend, "transactions", n)
}
