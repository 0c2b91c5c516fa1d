package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kaisel-labs/basin-dashboard/internal/render"
)

// Backends the API can read records from.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	DataSource   string
	DataBackend  string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	DatabaseURL  string
	Port         int
	BearerToken  string
	LogLevel     string
	LogFormat    string
	AbsentPolicy render.AbsentPolicy
	ChartWidth   int
	ChartHeight  int
	ChartPanels  int
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		DataBackend:  BackendFile,
		FetchTimeout: 10 * time.Second,
		Port:         8080,
		LogLevel:     "info",
		LogFormat:    "json",
		AbsentPolicy: render.AbsentZero,
		ChartWidth:   1024,
		ChartHeight:  512,
		ChartPanels:  render.DefaultBoardPanels,
	}

	if backend := strings.TrimSpace(os.Getenv("DATA_BACKEND")); backend != "" {
		switch strings.ToLower(backend) {
		case BackendFile, BackendPostgres:
			cfg.DataBackend = strings.ToLower(backend)
		default:
			return cfg, fmt.Errorf("invalid DATA_BACKEND: %s", backend)
		}
	}

	cfg.DataSource = strings.TrimSpace(os.Getenv("DATA_SOURCE"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	switch cfg.DataBackend {
	case BackendFile:
		if cfg.DataSource == "" {
			return cfg, errors.New("DATA_SOURCE is required")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required")
		}
	}

	if v := strings.TrimSpace(os.Getenv("DATA_CACHE_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("invalid DATA_CACHE_TTL: %s", v)
		}
		cfg.CacheTTL = d
	}

	if v := strings.TrimSpace(os.Getenv("DATA_FETCH_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid DATA_FETCH_TIMEOUT: %s", v)
		}
		cfg.FetchTimeout = d
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if v := strings.TrimSpace(os.Getenv("ABSENT_POLICY")); v != "" {
		p, err := render.ParseAbsentPolicy(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ABSENT_POLICY: %s", v)
		}
		cfg.AbsentPolicy = p
	}

	if v := strings.TrimSpace(os.Getenv("CHART_WIDTH")); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cfg.ChartWidth = w
		} else {
			return cfg, fmt.Errorf("invalid CHART_WIDTH: %s", v)
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHART_HEIGHT")); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			cfg.ChartHeight = h
		} else {
			return cfg, fmt.Errorf("invalid CHART_HEIGHT: %s", v)
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHART_PANELS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChartPanels = n
		} else {
			return cfg, fmt.Errorf("invalid CHART_PANELS: %s", v)
		}
	}

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
