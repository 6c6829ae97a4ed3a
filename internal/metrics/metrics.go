// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

// Package metrics provides Prometheus instrumentation for production
// observability:
//   - Database query performance (DuckDB)
//   - API endpoint latency and throughput
//   - Event ingestion (NATS/Watermill)
//   - Multi-camera correlation engine
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Event Ingestion Metrics
	IngestEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_events_total",
			Help: "Total number of camera events consumed from NATS",
		},
		[]string{"detection_type"},
	)

	IngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_errors_total",
			Help: "Total number of event ingestion failures",
		},
		[]string{"error_type"}, // "deserialize", "validate", "database", "throttle"
	)

	IngestDeadLettered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_dead_lettered_total",
			Help: "Total number of poison messages parked on the dead letter subject",
		},
		[]string{"reason"},
	)

	NATSPublishTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_publish_total",
			Help: "Total number of events published to NATS",
		},
	)

	// Correlation Engine Metrics
	CorrelationEventsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "correlation_events_processed_total",
			Help: "Total number of events processed by the correlation engine",
		},
	)

	CorrelationGroupsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "correlation_groups_created_total",
			Help: "Total number of newly minted correlation groups",
		},
	)

	CorrelationGroupsJoined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "correlation_groups_joined_total",
			Help: "Total number of events joined to pre-existing correlation groups",
		},
	)

	CorrelationBufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "correlation_buffer_size",
			Help: "Current number of events in the correlation buffer",
		},
	)

	CorrelationScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "correlation_scan_duration_seconds",
			Help:    "Duration of candidate scans over the correlation buffer",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		},
	)

	CorrelationPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "correlation_persist_failures_total",
			Help: "Total number of failed correlation persistence writes",
		},
	)

	CorrelationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "correlation_errors_total",
			Help: "Total number of internal correlation engine errors (recovered)",
		},
	)
)

// RecordDBQuery records a database query duration.
func RecordDBQuery(operation, table string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordDBError records a database query error.
func RecordDBError(operation, table string) {
	DBQueryErrors.WithLabelValues(operation, table).Inc()
}

// RecordNATSPublish records a successful NATS publish.
func RecordNATSPublish() {
	NATSPublishTotal.Inc()
}

// RecordIngestEvent records a consumed camera event.
func RecordIngestEvent(detectionType string) {
	if detectionType == "" {
		detectionType = "none"
	}
	IngestEventsTotal.WithLabelValues(detectionType).Inc()
}

// RecordIngestError records an ingestion failure by type.
func RecordIngestError(errorType string) {
	IngestErrors.WithLabelValues(errorType).Inc()
}

// RecordDeadLetter increments the dead letter counter for a drop reason.
func RecordDeadLetter(reason string) {
	IngestDeadLettered.WithLabelValues(reason).Inc()
}
