package source

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
)

// Status tags the outcome of a load.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusFetchFailed Status = "fetch_failed"
)

// Result is the outcome of one dataset load. A fetch failure yields empty
// Records and a non-nil Err; it is never returned as an error.
type Result struct {
	Status   Status                    `json:"status"`
	Source   string                    `json:"source"`
	Records  []waterquality.Record     `json:"records"`
	Warnings []waterquality.RowWarning `json:"warnings,omitempty"`
	Err      error                     `json:"-"`
	LoadedAt time.Time                 `json:"loaded_at"`
}

// Error returns the fetch failure reason, or "" when the load succeeded.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Dataset indexes the loaded records.
func (r Result) Dataset() *waterquality.Dataset {
	return waterquality.NewDataset(r.Records)
}

// FromParse tags a parse result as ok or empty.
func FromParse(location string, parsed waterquality.ParseResult, at time.Time) Result {
	status := StatusOK
	if len(parsed.Records) == 0 {
		status = StatusEmpty
	}
	return Result{
		Status:   status,
		Source:   location,
		Records:  parsed.Records,
		Warnings: parsed.Warnings,
		LoadedAt: at,
	}
}

// Failed builds a fetch-failed result.
func Failed(location string, err error, at time.Time) Result {
	return Result{
		Status:   StatusFetchFailed,
		Source:   location,
		Records:  []waterquality.Record{},
		Err:      err,
		LoadedAt: at,
	}
}

// DefaultLoadTimeout bounds a shared fetch when no timeout is set.
const DefaultLoadTimeout = 30 * time.Second

// Loader runs fetch then parse against a Source. Concurrent loads share a
// single fetch that outlives any one caller's cancellation. With a positive
// TTL the last successful result is reused.
type Loader struct {
	src     Source
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	group singleflight.Group

	mu     sync.Mutex
	cached *Result
}

// NewLoader creates a Loader. A zero ttl re-reads the source on every call.
func NewLoader(src Source, ttl time.Duration) *Loader {
	return &Loader{src: src, ttl: ttl, timeout: DefaultLoadTimeout, now: time.Now}
}

// WithTimeout sets how long a shared fetch may run. A non-positive value
// keeps the current timeout.
func (l *Loader) WithTimeout(d time.Duration) *Loader {
	if d > 0 {
		l.timeout = d
	}
	return l
}

// Load fetches and parses the dataset. A caller whose ctx ends before the
// shared fetch completes gets a fetch-failed result carrying ctx.Err();
// the fetch keeps running for the other callers.
func (l *Loader) Load(ctx context.Context) Result {
	if res, ok := l.fromCache(); ok {
		return res
	}

	ch := l.group.DoChan("load", func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.load(shared), nil
	})
	select {
	case r := <-ch:
		return r.Val.(Result)
	case <-ctx.Done():
		return Failed(l.src.Location(), ctx.Err(), l.now())
	}
}

// Invalidate drops any cached result.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}

func (l *Loader) fromCache() (Result, bool) {
	if l.ttl <= 0 {
		return Result{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached == nil || l.now().Sub(l.cached.LoadedAt) >= l.ttl {
		return Result{}, false
	}
	return *l.cached, true
}

func (l *Loader) load(ctx context.Context) Result {
	at := l.now()

	text, err := l.src.Fetch(ctx)
	if err != nil {
		zap.L().Warn("dataset fetch failed",
			zap.String("source", l.src.Location()),
			zap.Error(err),
		)
		return Failed(l.src.Location(), err, at)
	}

	res := FromParse(l.src.Location(), waterquality.Parse(text), at)
	for _, w := range res.Warnings {
		zap.L().Warn("dataset row skipped",
			zap.String("source", l.src.Location()),
			zap.Int("line", w.Line),
			zap.String("field", w.Field),
			zap.String("reason", w.Reason),
		)
	}
	zap.L().Debug("dataset loaded",
		zap.String("source", l.src.Location()),
		zap.String("status", string(res.Status)),
		zap.Int("records", len(res.Records)),
	)

	if l.ttl > 0 {
		l.mu.Lock()
		l.cached = &res
		l.mu.Unlock()
	}
	return res
}
