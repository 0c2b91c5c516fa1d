package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	for _, k := range []string{"DATABASE_URL", "DATA_SOURCE", "WATCHER_REQUEST_TIMEOUT", "WATCHER_VALUE_EPSILON", "DRY_RUN", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, env[k])
	}
}

func TestLoad(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":            "postgres://localhost/basin",
		"DATA_SOURCE":             "https://example.test/wq.csv",
		"WATCHER_REQUEST_TIMEOUT": "5s",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, defaultValueEpsilon, cfg.ValueEpsilon)
	assert.False(t, cfg.DryRun)
}

func TestLoad_DryRunWithoutDatabase(t *testing.T) {
	setEnv(t, map[string]string{"DATA_SOURCE": "wq.csv", "DRY_RUN": "TRUE"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database": {"DATA_SOURCE": "wq.csv"},
		"missing source":   {"DATABASE_URL": "postgres://x"},
		"bad timeout":      {"DATABASE_URL": "postgres://x", "DATA_SOURCE": "wq.csv", "WATCHER_REQUEST_TIMEOUT": "soon"},
		"negative epsilon": {"DATABASE_URL": "postgres://x", "DATA_SOURCE": "wq.csv", "WATCHER_VALUE_EPSILON": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setEnv(t, env)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
