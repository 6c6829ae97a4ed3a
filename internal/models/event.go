// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

// Package models defines the persisted data structures shared across the
// database, API, and correlation layers.
package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Detection type labels attached to camera events. An empty/nil detection
// type means the event carries no classification.
const (
	DetectionTypePerson       = "person"
	DetectionTypeVehicle      = "vehicle"
	DetectionTypeAnimal       = "animal"
	DetectionTypePackage      = "package"
	DetectionTypeDoorbellRing = "doorbell_ring"
)

// Event is a persisted camera detection event.
//
// CorrelationGroupID and CorrelatedEventIDs are written exclusively by the
// correlation engine. CorrelationGroupID links events across cameras that
// observed the same real-world occurrence; CorrelatedEventIDs is the JSON
// array of all event ids in that group at the time of the last update. Both
// are nil until the event is correlated, and a lone event that never finds a
// partner keeps them nil forever.
type Event struct {
	ID           string    `json:"id"`
	CameraID     string    `json:"camera_id"`
	ControllerID *string   `json:"controller_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`

	// Classification
	DetectionType  *string  `json:"detection_type,omitempty"`
	Score          float64  `json:"score,omitempty"`
	IsDoorbellRing bool     `json:"is_doorbell_ring"`
	FallbackReason *string  `json:"fallback_reason,omitempty"`

	// Media artifacts produced by the ingestion pipeline
	ClipPath      *string `json:"clip_path,omitempty"`
	ThumbnailPath *string `json:"thumbnail_path,omitempty"`

	// Multi-camera correlation (written by the correlation engine)
	CorrelationGroupID *string `json:"correlation_group_id,omitempty"`
	CorrelatedEventIDs *string `json:"correlated_event_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// CorrelatedIDs decodes the serialized correlated event id list.
// Returns nil without error when the event is uncorrelated.
func (e *Event) CorrelatedIDs() ([]string, error) {
	if e.CorrelatedEventIDs == nil || *e.CorrelatedEventIDs == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(*e.CorrelatedEventIDs), &ids); err != nil {
		return nil, fmt.Errorf("decode correlated_event_ids for event %s: %w", e.ID, err)
	}
	return ids, nil
}

// EncodeCorrelatedIDs serializes an event id list to the JSON text stored in
// the correlated_event_ids column.
func EncodeCorrelatedIDs(ids []string) (string, error) {
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode correlated event ids: %w", err)
	}
	return string(data), nil
}

// EventFilter defines filtering options for event queries.
type EventFilter struct {
	CameraID       string     `json:"camera_id,omitempty"`
	DetectionType  string     `json:"detection_type,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	CorrelatedOnly bool       `json:"correlated_only,omitempty"`
	Limit          int        `json:"limit,omitempty"`
	Offset         int        `json:"offset,omitempty"`
}

// EventStats summarizes the events table for the system endpoint.
type EventStats struct {
	TotalEvents      int64      `json:"total_events"`
	CorrelatedEvents int64      `json:"correlated_events"`
	CorrelationRate  float64    `json:"correlation_rate"`
	OldestEvent      *time.Time `json:"oldest_event,omitempty"`
	NewestEvent      *time.Time `json:"newest_event,omitempty"`
}
