package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim5623/hazcurve/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 0, cfg.Workers)
	assert.Empty(t, cfg.ModelPath)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("HAZARD_MODEL", "/models/wus.yaml")
	t.Setenv("CALC_WORKERS", "8")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/models/wus.yaml", cfg.ModelPath)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad shutdown timeout", func(t *testing.T) {
		t.Setenv("SHUTDOWN_TIMEOUT", "nope")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("negative workers", func(t *testing.T) {
		t.Setenv("CALC_WORKERS", "-2")
		_, err := config.Load()
		assert.Error(t, err)
	})
}
