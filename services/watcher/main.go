package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kaisel-labs/basin-dashboard/internal/logging"
	"github.com/kaisel-labs/basin-dashboard/internal/source"
	"github.com/kaisel-labs/basin-dashboard/services/watcher/internal/config"
	"github.com/kaisel-labs/basin-dashboard/services/watcher/internal/db"
	"github.com/kaisel-labs/basin-dashboard/services/watcher/internal/models"
	"github.com/kaisel-labs/basin-dashboard/services/watcher/internal/utils"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("watcher failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+10*time.Second)
	defer cancel()

	src, err := source.Open(cfg.DataSource, source.HTTPOptions{Timeout: cfg.RequestTimeout})
	if err != nil {
		return err
	}

	res := source.NewLoader(src, 0).WithTimeout(cfg.RequestTimeout + 10*time.Second).Load(ctx)
	switch res.Status {
	case source.StatusFetchFailed:
		return eris.Wrap(res.Err, "watcher: load dataset")
	case source.StatusEmpty:
		zap.L().Info("dataset is empty, nothing to ingest", zap.String("source", res.Source))
		return nil
	}
	zap.L().Info("fetched dataset",
		zap.String("source", res.Source),
		zap.Int("records", len(res.Records)),
		zap.Int("warnings", len(res.Warnings)),
	)

	rows := utils.BuildRecordRows(res.Records, res.Source)

	if cfg.DatabaseURL == "" {
		logDryRun(rows)
		return nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return eris.Wrap(err, "watcher: connect")
	}
	defer pool.Close()

	if !cfg.DryRun {
		if err := db.EnsureSchema(ctx, pool); err != nil {
			return err
		}
	}

	existing, err := db.FetchExisting(ctx, pool)
	if err != nil {
		return err
	}

	pending := utils.FilterChangedRecords(rows, existing, cfg.ValueEpsilon)
	if len(pending) == 0 {
		zap.L().Info("no new or changed records", zap.Int("stored", len(existing)))
		return nil
	}

	zap.L().Info("prepared records", zap.Int("pending", len(pending)), zap.Bool("dry_run", cfg.DryRun))

	if cfg.DryRun {
		logDryRun(pending)
		return nil
	}

	if err := db.UpsertRecords(ctx, pool, pending); err != nil {
		return err
	}

	zap.L().Info("upserted records", zap.Int("count", len(pending)))
	return nil
}

func logDryRun(rows []models.RecordRow) {
	for _, r := range rows {
		zap.L().Info("dry-run: would upsert", zap.String("row", utils.RowString(r)))
	}
}
