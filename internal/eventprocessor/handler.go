// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/time/rate"

	"github.com/argushq/argus/internal/correlation"
	"github.com/argushq/argus/internal/logging"
	"github.com/argushq/argus/internal/metrics"
	"github.com/argushq/argus/internal/models"
)

// EventWriter is the persistence surface the ingest handler writes through.
type EventWriter interface {
	InsertEvent(ctx context.Context, event *models.Event) error
}

// Correlator dispatches correlation for a freshly persisted event. The
// result is discarded at this call site; correlation is fire-and-forget.
type Correlator interface {
	ProcessEvent(ctx context.Context, event correlation.Event) string
}

// IngestHandler consumes camera events from the stream, persists them, and
// dispatches correlation without blocking the consume loop.
type IngestHandler struct {
	cfg        HandlerConfig
	store      EventWriter
	correlator Correlator
	limiter    *rate.Limiter
	dlq        *DeadLetterQueue
}

// NewIngestHandler creates the ingest handler. correlator may be nil to
// disable correlation dispatch (ingest-only deployments).
func NewIngestHandler(cfg HandlerConfig, store EventWriter, correlator Correlator) *IngestHandler {
	if cfg.Topic == "" {
		cfg.Topic = TopicPrefix + ".>"
	}

	var limiter *rate.Limiter
	if cfg.IngestRatePerSecond > 0 {
		burst := cfg.IngestBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.IngestRatePerSecond), burst)
	}

	return &IngestHandler{
		cfg:        cfg,
		store:      store,
		correlator: correlator,
		limiter:    limiter,
	}
}

// SetDeadLetterQueue routes dropped poison messages to a dead letter
// subject instead of discarding them. Without one, undecodable and invalid
// payloads are logged and acked.
func (h *IngestHandler) SetDeadLetterQueue(dlq *DeadLetterQueue) {
	h.dlq = dlq
}

// Run consumes events from the subscriber until context cancellation.
func (h *IngestHandler) Run(ctx context.Context, sub *Subscriber) error {
	logging.Info().
		Str("topic", h.cfg.Topic).
		Msg("Event ingest handler starting")
	return sub.NewMessageHandler(h.cfg.Topic).Handle(h.HandleMessage).Run(ctx)
}

// HandleMessage processes one NATS message: throttle, decode, persist,
// dispatch correlation. Returning an error nacks the message for
// redelivery; malformed payloads are acked since redelivering them can
// never succeed, and parked on the dead letter subject when one is
// configured.
func (h *IngestHandler) HandleMessage(ctx context.Context, msg *message.Message) error {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			metrics.RecordIngestError("throttle")
			return fmt.Errorf("ingest throttle: %w", err)
		}
	}

	event, err := DecodeCameraEvent(msg.Payload)
	if err != nil {
		metrics.RecordIngestError("deserialize")
		logging.Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("Dead-lettering undecodable camera event")
		h.deadLetter(msg, "deserialize", err)
		return nil
	}
	event.EnsureSchemaVersion()

	if err := event.Validate(); err != nil {
		metrics.RecordIngestError("validate")
		logging.Warn().
			Err(err).
			Str("event_id", event.EventID).
			Msg("Dead-lettering invalid camera event")
		h.deadLetter(msg, "validate", err)
		return nil
	}

	if err := h.store.InsertEvent(ctx, event.ToModel()); err != nil {
		metrics.RecordIngestError("database")
		return fmt.Errorf("persist event %s: %w", event.EventID, err)
	}

	metrics.RecordIngestEvent(event.DetectionType)
	logging.Debug().
		Str("event_id", event.EventID).
		Str("camera_id", event.CameraID).
		Str("detection_type", event.DetectionType).
		Msg("Camera event persisted")

	// Fire-and-forget: ingestion never waits on correlation, and the
	// message context dies at ack, so the dispatch gets its own context.
	if h.correlator != nil {
		corrEvent := event.ToCorrelationEvent()
		go h.correlator.ProcessEvent(context.Background(), corrEvent)
	}

	return nil
}

// deadLetter parks a poison message if a queue is configured. A park
// failure is logged and swallowed: the message is dropped either way, and
// blocking the consume loop on the dead letter path would turn one poison
// payload into an outage.
func (h *IngestHandler) deadLetter(msg *message.Message, reason string, cause error) {
	if h.dlq == nil {
		return
	}
	if err := h.dlq.Publish(msg, reason, cause); err != nil {
		logging.Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Str("reason", reason).
			Msg("Failed to dead-letter message")
	}
}
