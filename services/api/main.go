package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kaisel-labs/basin-dashboard/internal/insights"
	"github.com/kaisel-labs/basin-dashboard/internal/logging"
	"github.com/kaisel-labs/basin-dashboard/internal/render"
	"github.com/kaisel-labs/basin-dashboard/internal/source"
	"github.com/kaisel-labs/basin-dashboard/services/api/config"
	"github.com/kaisel-labs/basin-dashboard/services/api/db"
	httpserver "github.com/kaisel-labs/basin-dashboard/services/api/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("logging error: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog, err := insights.Default()
	if err != nil {
		zap.L().Fatal("insights catalogue error", zap.Error(err))
	}

	var data httpserver.Provider
	switch cfg.DataBackend {
	case config.BackendPostgres:
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			zap.L().Fatal("db connection error", zap.Error(err))
		}
		defer store.Close()
		data = store
	default:
		src, err := source.Open(cfg.DataSource, source.HTTPOptions{Timeout: cfg.FetchTimeout})
		if err != nil {
			zap.L().Fatal("data source error", zap.Error(err))
		}
		// One fetch timeout per retry attempt.
		data = source.NewLoader(src, cfg.CacheTTL).WithTimeout(3 * cfg.FetchTimeout)
	}

	srv := httpserver.New(cfg, data, catalog, render.NewPNGSurface(cfg.ChartWidth, cfg.ChartHeight))
	defer func() { _ = srv.Close() }()

	zap.L().Info("REST API listening",
		zap.String("addr", cfg.ListenAddr()),
		zap.String("backend", cfg.DataBackend),
	)

	if err := srv.Run(ctx); err != nil {
		zap.L().Fatal("server error", zap.Error(err))
	}
}
