// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate(), "default configuration must pass validation")
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8750, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Correlation.TimeWindowSeconds)
	assert.Equal(t, 60, cfg.Correlation.BufferMaxAgeSeconds)
	assert.Equal(t, "EVENTS", cfg.NATS.StreamName)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("CORRELATION_TIME_WINDOW_SECONDS", "5")
	t.Setenv("CORRELATION_BUFFER_MAX_AGE_SECONDS", "30")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Correlation.TimeWindowSeconds)
	assert.Equal(t, 30, cfg.Correlation.BufferMaxAgeSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7777\ncorrelation:\n  time_window_seconds: 8\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port, "config file should override defaults")
	assert.Equal(t, 8, cfg.Correlation.TimeWindowSeconds)
}

func TestValidateRejectsBufferSmallerThanWindow(t *testing.T) {
	cfg := defaultConfig()
	cfg.Correlation.TimeWindowSeconds = 30
	cfg.Correlation.BufferMaxAgeSeconds = 10

	assert.Error(t, cfg.Validate(), "buffer_max_age < time_window must fail validation")
}

func TestValidateRejectsInvalidLogLevel(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "verbose"

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingNATSURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.NATS.URL = ""

	assert.Error(t, cfg.Validate(), "nats.url is required while nats is enabled")
}

func TestCorrelationDurations(t *testing.T) {
	cc := CorrelationConfig{TimeWindowSeconds: 10, BufferMaxAgeSeconds: 60}
	assert.Equal(t, 10*time.Second, cc.TimeWindow())
	assert.Equal(t, 60*time.Second, cc.BufferMaxAge())
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.API.CORSOrigins, 2)
	assert.Equal(t, "https://a.example", cfg.API.CORSOrigins[0])
	assert.Equal(t, "https://b.example", cfg.API.CORSOrigins[1], "values should be trimmed")
}
