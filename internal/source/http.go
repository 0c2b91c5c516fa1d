package source

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP source. MaxRetries counts attempts; zero
// or negative means the default.
type HTTPOptions struct {
	UserAgent   string
	Timeout     time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Limiter     *rate.Limiter
	Client      *http.Client
}

// HTTPSource downloads the dataset with retry on transport errors, 429 and 5xx.
type HTTPSource struct {
	url     string
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPSource creates an HTTPSource, filling unset options with defaults.
func NewHTTPSource(url string, opts HTTPOptions) *HTTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseBackoff == 0 {
		opts.BaseBackoff = time.Second
	}
	if opts.MaxBackoff == 0 {
		opts.MaxBackoff = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "basin-dashboard/1.0"
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(5, 5)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPSource{url: url, client: client, opts: opts, limiter: limiter}
}

// Location returns the URL.
func (h *HTTPSource) Location() string {
	return h.url
}

// Fetch downloads the body as text.
func (h *HTTPSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return "", eris.Wrap(err, "source: create request")
	}
	req.Header.Set("User-Agent", h.opts.UserAgent)
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := h.doWithRetry(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.Errorf("source: unexpected status %d from %s", resp.StatusCode, h.url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "source: read body")
	}
	return string(body), nil
}

func (h *HTTPSource) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range h.opts.MaxRetries {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "source: rate limiter wait")
		}

		resp, err := h.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("dataset request failed, retrying",
				zap.String("url", h.url),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			h.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, h.url)
			zap.L().Warn("dataset request rejected, backing off",
				zap.String("url", h.url),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			h.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "source: all retries exhausted")
}

// backoff sleeps before the next attempt; it returns at once after the last.
func (h *HTTPSource) backoff(ctx context.Context, attempt int) {
	if attempt >= h.opts.MaxRetries-1 {
		return
	}
	d := time.Duration(float64(h.opts.BaseBackoff) * math.Pow(2, float64(attempt)))
	if d > h.opts.MaxBackoff {
		d = h.opts.MaxBackoff
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
