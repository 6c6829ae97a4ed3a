// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package eventprocessor

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/argushq/argus/internal/correlation"
	"github.com/argushq/argus/internal/models"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to CameraEvent.
const SchemaVersion = 1

// TopicPrefix is the NATS subject prefix for camera events.
const TopicPrefix = "events.camera"

// TopicUnclassified is the subject suffix for events without a detection
// type (raw motion from cameras whose analysis is disabled).
const TopicUnclassified = "motion"

// CameraEvent is the wire format for detection events published by camera
// controllers. It is the canonical event format across all controller types;
// the ingestion handler converts it into the persisted model and the
// correlation engine's projection.
type CameraEvent struct {
	// Schema version for forward/backward compatibility
	SchemaVersion int `json:"schema_version,omitempty"`

	// Identification
	EventID      string    `json:"event_id"`
	CameraID     string    `json:"camera_id"`
	ControllerID string    `json:"controller_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`

	// Classification
	DetectionType  string  `json:"detection_type,omitempty"` // empty = unclassified
	Score          float64 `json:"score,omitempty"`
	IsDoorbellRing bool    `json:"is_doorbell_ring,omitempty"`
	FallbackReason string  `json:"fallback_reason,omitempty"` // set when analysis fell back to raw motion

	// Media artifacts
	ClipPath      string `json:"clip_path,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`

	// Raw payload for debugging and future fields
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
}

// NewCameraEvent creates an event with a unique ID, timestamp, and schema
// version.
func NewCameraEvent(cameraID string) *CameraEvent {
	return &CameraEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		CameraID:      cameraID,
		Timestamp:     time.Now().UTC(),
	}
}

// EnsureSchemaVersion sets the schema version if not already set. Call this
// when processing events that may predate explicit versioning.
func (e *CameraEvent) EnsureSchemaVersion() {
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
}

// Validate checks required fields and returns an error if validation fails.
func (e *CameraEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.CameraID == "" {
		return &ValidationError{Field: "camera_id", Message: "required"}
	}
	if e.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Message: "required"}
	}
	if e.Score < 0 || e.Score > 1 {
		return &ValidationError{Field: "score", Message: "must be between 0 and 1"}
	}
	return nil
}

// Topic returns the NATS subject for this event.
// Format: events.camera.<detection_type>
// Example: events.camera.person; unclassified events publish under
// events.camera.motion.
func (e *CameraEvent) Topic() string {
	if e.DetectionType == "" {
		return TopicPrefix + "." + TopicUnclassified
	}
	return TopicPrefix + "." + e.DetectionType
}

// ToModel converts the wire event into the persisted record.
func (e *CameraEvent) ToModel() *models.Event {
	event := &models.Event{
		ID:             e.EventID,
		CameraID:       e.CameraID,
		Timestamp:      e.Timestamp.UTC(),
		Score:          e.Score,
		IsDoorbellRing: e.IsDoorbellRing,
	}
	if e.ControllerID != "" {
		event.ControllerID = &e.ControllerID
	}
	if e.DetectionType != "" {
		event.DetectionType = &e.DetectionType
	}
	if e.FallbackReason != "" {
		event.FallbackReason = &e.FallbackReason
	}
	if e.ClipPath != "" {
		event.ClipPath = &e.ClipPath
	}
	if e.ThumbnailPath != "" {
		event.ThumbnailPath = &e.ThumbnailPath
	}
	return event
}

// ToCorrelationEvent converts the wire event into the correlation engine's
// narrow projection.
func (e *CameraEvent) ToCorrelationEvent() correlation.Event {
	event := correlation.Event{
		ID:        e.EventID,
		CameraID:  e.CameraID,
		Timestamp: e.Timestamp.UTC(),
	}
	if e.ControllerID != "" {
		event.ControllerID = &e.ControllerID
	}
	if e.DetectionType != "" {
		event.DetectionType = &e.DetectionType
	}
	return event
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
