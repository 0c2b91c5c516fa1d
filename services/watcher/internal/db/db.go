package db

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/kaisel-labs/basin-dashboard/services/watcher/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Pool is the subset of pgxpool.Pool the watcher uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// EnsureSchema creates the quality schema and records table if missing.
func EnsureSchema(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return eris.Wrap(err, "db: ensure schema")
	}
	return nil
}

const fetchExistingSQL = `
SELECT date, measure, status, basins_monitored, proportion
FROM quality.records`

// missingRelation reports whether err means the schema or table does not
// exist yet.
func missingRelation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "42P01" || pgErr.Code == "3F000" // undefined_table, invalid_schema_name
}

// FetchExisting loads every stored record keyed by (date, measure, status).
// A database without the records table has nothing stored.
func FetchExisting(ctx context.Context, pool Pool) (map[models.RecordKey]models.StoredRecord, error) {
	rows, err := pool.Query(ctx, fetchExistingSQL)
	if missingRelation(err) {
		return map[models.RecordKey]models.StoredRecord{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "db: fetch existing records")
	}
	defer rows.Close()

	result := make(map[models.RecordKey]models.StoredRecord)
	for rows.Next() {
		var key models.RecordKey
		var stored models.StoredRecord
		if err := rows.Scan(&key.Date, &key.Measure, &key.Status, &stored.BasinsMonitored, &stored.Proportion); err != nil {
			return nil, eris.Wrap(err, "db: scan existing record")
		}
		result[key] = stored
	}
	if err := rows.Err(); err != nil {
		if missingRelation(err) {
			return map[models.RecordKey]models.StoredRecord{}, nil
		}
		return nil, eris.Wrap(err, "db: iterate existing records")
	}
	return result, nil
}

const upsertRecordSQL = `INSERT INTO quality.records (date, measure, status, basins_monitored, proportion, source, ingested_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
ON CONFLICT (date, measure, status) DO UPDATE
SET basins_monitored = EXCLUDED.basins_monitored,
    proportion = EXCLUDED.proportion,
    source = EXCLUDED.source,
    updated_at = NOW()`

// UpsertRecords writes rows in one batch, in slice order.
func UpsertRecords(ctx context.Context, pool Pool, rows []models.RecordRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(upsertRecordSQL, r.Key.Date, r.Key.Measure, r.Key.Status, r.BasinsMonitored, r.Proportion, r.Source)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for _, r := range rows {
		if _, err := res.Exec(); err != nil {
			return eris.Wrapf(err, "db: upsert %s/%s/%s", r.Key.Date, r.Key.Measure, r.Key.Status)
		}
	}

	return nil
}
