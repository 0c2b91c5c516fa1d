package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const sampleCSV = "date,measure,status,basins_monitored,proportion\n" +
	"2000,bod5,clean,120,32.5\n" +
	"2000,bod5,polluted,120,15\n" +
	"2001,bod5,clean,130,48.33"

func fastOpts() HTTPOptions {
	return HTTPOptions{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
		Limiter:     rate.NewLimiter(rate.Inf, 1),
	}
}

func TestOpen(t *testing.T) {
	src, err := Open("https://example.org/d.csv", HTTPOptions{})
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)
	assert.Equal(t, "https://example.org/d.csv", src.Location())

	src, err = Open("file:///data/d.csv", HTTPOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/data/d.csv", src.Location())

	src, err = Open("./dashboard.csv", HTTPOptions{})
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	_, err = Open("  ", HTTPOptions{})
	assert.Error(t, err)
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	text, err := (&FileSource{Path: path}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, text)

	_, err = (&FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")}).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source: read")
}

func TestHTTPSource_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "basin-dashboard/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	text, err := NewHTTPSource(srv.URL, fastOpts()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPSource_ExhaustsRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, fastOpts()).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSource_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, fastOpts()).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Equal(t, int32(1), calls.Load())
}

type stubSource struct {
	text  string
	err   error
	calls atomic.Int32
}

func (s *stubSource) Fetch(ctx context.Context) (string, error) {
	s.calls.Add(1)
	return s.text, s.err
}

func (s *stubSource) Location() string { return "stub" }

func TestLoader_OK(t *testing.T) {
	res := NewLoader(&stubSource{text: sampleCSV}, 0).Load(context.Background())
	assert.Equal(t, StatusOK, res.Status)
	assert.Len(t, res.Records, 3)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Error())
	assert.Equal(t, []string{"2000", "2001"}, res.Dataset().YearIndex())
}

func TestLoader_FetchFailureIsTagged(t *testing.T) {
	res := NewLoader(&stubSource{err: errors.New("connection refused")}, 0).Load(context.Background())
	assert.Equal(t, StatusFetchFailed, res.Status)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Equal(t, "connection refused", res.Error())

	// Aggregates degrade to absent cells rather than failing.
	d := res.Dataset()
	assert.Empty(t, d.YearIndex())
	assert.Empty(t, d.CleanSeries("bod5").Cells)
}

func TestLoader_EmptyIsDistinctFromFailure(t *testing.T) {
	res := NewLoader(&stubSource{text: "date,measure,status,basins_monitored,proportion\n\n"}, 0).Load(context.Background())
	assert.Equal(t, StatusEmpty, res.Status)
	assert.NoError(t, res.Err)
}

func TestLoader_WarningsSurface(t *testing.T) {
	text := "date,measure,status,basins_monitored,proportion\n2000,bod5,clean,x,1\n2000,ss,clean,3,1\n"
	res := NewLoader(&stubSource{text: text}, 0).Load(context.Background())
	assert.Equal(t, StatusOK, res.Status)
	assert.Len(t, res.Records, 1)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 2, res.Warnings[0].Line)
}

func TestLoader_TTLCache(t *testing.T) {
	src := &stubSource{text: sampleCSV}
	l := NewLoader(src, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Load(context.Background())
	l.Load(context.Background())
	assert.Equal(t, int32(1), src.calls.Load())

	now = now.Add(2 * time.Minute)
	l.Load(context.Background())
	assert.Equal(t, int32(2), src.calls.Load())

	l.Invalidate()
	l.Load(context.Background())
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestLoader_NoCacheRereads(t *testing.T) {
	src := &stubSource{text: sampleCSV}
	l := NewLoader(src, 0)
	l.Load(context.Background())
	l.Load(context.Background())
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestLoader_FailuresAreNotCached(t *testing.T) {
	src := &stubSource{err: errors.New("boom")}
	l := NewLoader(src, time.Hour)
	l.Load(context.Background())
	l.Load(context.Background())
	assert.Equal(t, int32(2), src.calls.Load())
}

// gatedSource blocks every fetch until release is closed or ctx ends.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newGatedSource() *gatedSource {
	return &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSource) Fetch(ctx context.Context) (string, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return sampleCSV, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *gatedSource) Location() string { return "gated" }

func TestLoader_ConcurrentLoadsShareOneFetch(t *testing.T) {
	src := newGatedSource()
	l := NewLoader(src, 0)

	results := make(chan Result, 3)
	go func() { results <- l.Load(context.Background()) }()
	<-src.started
	for range 2 {
		go func() { results <- l.Load(context.Background()) }()
	}
	time.Sleep(20 * time.Millisecond)
	close(src.release)

	for range 3 {
		res := <-results
		assert.Equal(t, StatusOK, res.Status)
		assert.Len(t, res.Records, 3)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestLoader_CancelledCallerDoesNotFailOthers(t *testing.T) {
	src := newGatedSource()
	l := NewLoader(src, 0)

	first, cancel := context.WithCancel(context.Background())
	firstRes := make(chan Result, 1)
	go func() { firstRes <- l.Load(first) }()
	<-src.started

	secondRes := make(chan Result, 1)
	go func() { secondRes <- l.Load(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	res := <-firstRes
	assert.Equal(t, StatusFetchFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)

	close(src.release)
	res = <-secondRes
	assert.Equal(t, StatusOK, res.Status)
	assert.NoError(t, res.Err)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestLoader_SharedFetchHonoursTimeout(t *testing.T) {
	src := newGatedSource()
	res := NewLoader(src, 0).WithTimeout(10 * time.Millisecond).Load(context.Background())
	assert.Equal(t, StatusFetchFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestHTTPSource_NegativeRetriesStillFetches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	opts := fastOpts()
	opts.MaxRetries = -1
	text, err := NewHTTPSource(srv.URL, opts).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, text)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSource_NoBackoffAfterLastAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	opts := fastOpts()
	opts.MaxRetries = 1
	opts.BaseBackoff = time.Hour
	opts.MaxBackoff = time.Hour

	start := time.Now()
	_, err := NewHTTPSource(srv.URL, opts).Fetch(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
