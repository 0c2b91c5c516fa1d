package db

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/kaisel-labs/basin-dashboard/internal/source"
	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
)

// Pool is the subset of pgxpool.Pool the store uses.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store wraps database access helpers.
type Store struct {
	pool Pool
	now  func() time.Time
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "db: connect")
	}
	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const listRecordsSQL = `
    SELECT date, measure, status, basins_monitored, proportion
    FROM quality.records
    ORDER BY seq
`

// ListRecords returns ingested records in first-ingest order.
func (s *Store) ListRecords(ctx context.Context) ([]waterquality.Record, error) {
	rows, err := s.pool.Query(ctx, listRecordsSQL)
	if err != nil {
		return nil, eris.Wrap(err, "db: list records")
	}
	defer rows.Close()

	records := make([]waterquality.Record, 0)
	for rows.Next() {
		var r waterquality.Record
		if err := rows.Scan(&r.Date, &r.Measure, &r.Status, &r.BasinsMonitored, &r.Proportion); err != nil {
			return nil, eris.Wrap(err, "db: scan record")
		}
		r.Line = len(records) + 1
		r.Fields = map[string]string{
			waterquality.FieldDate:            r.Date,
			waterquality.FieldMeasure:         r.Measure,
			waterquality.FieldStatus:          r.Status,
			waterquality.FieldBasinsMonitored: strconv.Itoa(r.BasinsMonitored),
			waterquality.FieldProportion:      strconv.FormatFloat(r.Proportion, 'f', -1, 64),
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "db: iterate records")
	}
	return records, nil
}

// Load reads the stored records as a dataset load result. A query failure
// becomes a fetch-failed result.
func (s *Store) Load(ctx context.Context) source.Result {
	at := s.now()
	records, err := s.ListRecords(ctx)
	if err != nil {
		return source.Failed("postgres:quality.records", err, at)
	}
	return source.FromParse("postgres:quality.records", waterquality.ParseResult{Records: records}, at)
}
