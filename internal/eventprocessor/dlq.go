// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/argushq/argus/internal/metrics"
)

// TopicDeadLetter is the subject poison messages are parked on. Covered by
// the event stream so dead letters share its retention, but outside the
// events.camera.> wildcard so the ingest consumer never sees them again.
const TopicDeadLetter = "events.dlq"

// Metadata keys describing why a message was dead-lettered.
const (
	DLQMetaReason     = "dlq_reason"
	DLQMetaError      = "dlq_error"
	DLQMetaSourceUUID = "dlq_source_uuid"
	DLQMetaTime       = "dlq_time"
)

// DeadLetterQueue parks undeliverable messages on a separate subject so
// they stay inspectable and replayable after the consumer acks them.
// Redelivering a payload that cannot be decoded or validated can never
// succeed, so the ingest handler routes it here instead of nacking.
type DeadLetterQueue struct {
	publisher message.Publisher
	topic     string
}

// NewDeadLetterQueue creates a dead letter queue publishing to topic.
// An empty topic uses TopicDeadLetter.
func NewDeadLetterQueue(publisher message.Publisher, topic string) (*DeadLetterQueue, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher required")
	}
	if topic == "" {
		topic = TopicDeadLetter
	}
	return &DeadLetterQueue{
		publisher: publisher,
		topic:     topic,
	}, nil
}

// Publish parks a copy of the original message with failure metadata. The
// original payload and metadata are preserved; the dlq_* keys record the
// reason, the error text, the source message uuid, and the park time.
func (q *DeadLetterQueue) Publish(original *message.Message, reason string, cause error) error {
	dead := message.NewMessage(watermill.NewUUID(), original.Payload)
	for key, value := range original.Metadata {
		dead.Metadata.Set(key, value)
	}
	dead.Metadata.Set(DLQMetaReason, reason)
	if cause != nil {
		dead.Metadata.Set(DLQMetaError, cause.Error())
	}
	dead.Metadata.Set(DLQMetaSourceUUID, original.UUID)
	dead.Metadata.Set(DLQMetaTime, time.Now().UTC().Format(time.RFC3339))

	if err := q.publisher.Publish(q.topic, dead); err != nil {
		return fmt.Errorf("publish to dead letter topic %s: %w", q.topic, err)
	}

	metrics.RecordDeadLetter(reason)
	return nil
}

// Topic returns the dead letter subject.
func (q *DeadLetterQueue) Topic() string {
	return q.topic
}
