// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

// Package config provides centralized configuration management for Argus.
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml)
//  3. Environment variables
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"time"
)

// Config holds all application configuration loaded from environment
// variables and config files.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	NATS        NATSConfig        `koanf:"nats"`
	Correlation CorrelationConfig `koanf:"correlation"`
	API         APIConfig         `koanf:"api"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8750)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
type ServerConfig struct {
	Port    int           `koanf:"port" validate:"gt=0,lte=65535"`
	Host    string        `koanf:"host" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/argus.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)
//   - DUCKDB_THREADS: Worker threads, 0 = runtime.NumCPU() (default: 0)
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"`
}

// NATSConfig holds event ingestion settings for Watermill/NATS JetStream.
//
// Camera gateways publish detection events to NATS subjects under
// "events.camera.*"; the ingest consumer persists them and hands them to the
// correlation engine.
//
// Environment Variables:
//   - NATS_ENABLED: Enable the NATS ingest pipeline (default: true)
//   - NATS_URL: Server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED_SERVER: Run an embedded nats-server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	StreamName          string        `koanf:"stream_name"`
	StreamRetentionDays int           `koanf:"stream_retention_days" validate:"gte=0"`
	DurableName         string        `koanf:"durable_name"`
	QueueGroup          string        `koanf:"queue_group"`
	SubscribersCount    int           `koanf:"subscribers_count" validate:"gte=1"`
	MaxReconnects       int           `koanf:"max_reconnects"`
	ReconnectWait       time.Duration `koanf:"reconnect_wait"`

	// IngestRatePerSecond throttles event persistence to protect the
	// database from camera bursts. 0 disables throttling.
	IngestRatePerSecond int `koanf:"ingest_rate_per_second" validate:"gte=0"`
}

// CorrelationConfig holds the multi-camera correlation engine settings.
//
// BufferMaxAgeSeconds must be at least TimeWindowSeconds: an event has to stay
// retrievable from the buffer for as long as later events may match it.
//
// Environment Variables:
//   - CORRELATION_TIME_WINDOW_SECONDS: Matching window (default: 10)
//   - CORRELATION_BUFFER_MAX_AGE_SECONDS: Buffer retention (default: 60)
type CorrelationConfig struct {
	TimeWindowSeconds   int           `koanf:"time_window_seconds" validate:"gt=0"`
	BufferMaxAgeSeconds int           `koanf:"buffer_max_age_seconds" validate:"gt=0"`
	PersistTimeout      time.Duration `koanf:"persist_timeout" validate:"gt=0"`

	// Circuit breaker settings for correlation persistence writes.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold" validate:"gte=1"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// APIConfig holds API response settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size" validate:"gt=0"`
	MaxPageSize     int `koanf:"max_page_size" validate:"gt=0"`

	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller info (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TimeWindow returns the correlation matching window as a duration.
func (c CorrelationConfig) TimeWindow() time.Duration {
	return time.Duration(c.TimeWindowSeconds) * time.Second
}

// BufferMaxAge returns the buffer retention window as a duration.
func (c CorrelationConfig) BufferMaxAge() time.Duration {
	return time.Duration(c.BufferMaxAgeSeconds) * time.Second
}
