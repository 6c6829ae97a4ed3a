// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package eventprocessor

import (
	"testing"
	"time"

	"github.com/argushq/argus/internal/models"
)

func validEvent() *CameraEvent {
	event := NewCameraEvent("front_door")
	event.DetectionType = models.DetectionTypePerson
	event.Score = 0.92
	return event
}

func TestNewCameraEvent(t *testing.T) {
	event := NewCameraEvent("front_door")

	if event.EventID == "" {
		t.Error("EventID not generated")
	}
	if event.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", event.SchemaVersion, SchemaVersion)
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestCameraEventTopic(t *testing.T) {
	tests := []struct {
		name          string
		detectionType string
		want          string
	}{
		{"person", models.DetectionTypePerson, "events.camera.person"},
		{"vehicle", models.DetectionTypeVehicle, "events.camera.vehicle"},
		{"doorbell", models.DetectionTypeDoorbellRing, "events.camera.doorbell_ring"},
		{"unclassified", "", "events.camera.motion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewCameraEvent("cam1")
			event.DetectionType = tt.detectionType
			if got := event.Topic(); got != tt.want {
				t.Errorf("Topic() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCameraEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CameraEvent)
		wantErr string
	}{
		{"valid", func(e *CameraEvent) {}, ""},
		{"missing event id", func(e *CameraEvent) { e.EventID = "" }, "event_id"},
		{"missing camera id", func(e *CameraEvent) { e.CameraID = "" }, "camera_id"},
		{"missing timestamp", func(e *CameraEvent) { e.Timestamp = time.Time{} }, "timestamp"},
		{"score too high", func(e *CameraEvent) { e.Score = 1.5 }, "score"},
		{"score negative", func(e *CameraEvent) { e.Score = -0.1 }, "score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validEvent()
			tt.mutate(event)

			err := event.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !asValidationError(err, &verr) || verr.Field != tt.wantErr {
				t.Errorf("error = %v, want field %q", err, tt.wantErr)
			}
		})
	}
}

func asValidationError(err error, target **ValidationError) bool {
	v, ok := err.(*ValidationError)
	if ok {
		*target = v
	}
	return ok
}

func TestCameraEventToModel(t *testing.T) {
	event := validEvent()
	event.ControllerID = "ctrl-1"
	event.FallbackReason = "audio unavailable"
	event.ClipPath = "/clips/a.mp4"

	m := event.ToModel()

	if m.ID != event.EventID || m.CameraID != "front_door" {
		t.Errorf("identity fields not carried: %+v", m)
	}
	if m.DetectionType == nil || *m.DetectionType != models.DetectionTypePerson {
		t.Errorf("DetectionType = %v, want person", m.DetectionType)
	}
	if m.ControllerID == nil || *m.ControllerID != "ctrl-1" {
		t.Errorf("ControllerID = %v, want ctrl-1", m.ControllerID)
	}
	if m.FallbackReason == nil || *m.FallbackReason != "audio unavailable" {
		t.Errorf("FallbackReason = %v", m.FallbackReason)
	}
	if m.CorrelationGroupID != nil {
		t.Error("new event should be uncorrelated")
	}
}

func TestCameraEventToModelEmptyOptionalsStayNil(t *testing.T) {
	event := NewCameraEvent("cam1")
	m := event.ToModel()

	if m.DetectionType != nil || m.ControllerID != nil || m.FallbackReason != nil || m.ClipPath != nil {
		t.Errorf("empty optionals should map to nil, got %+v", m)
	}
}

func TestCameraEventToCorrelationEvent(t *testing.T) {
	event := validEvent()
	ce := event.ToCorrelationEvent()

	if ce.ID != event.EventID || ce.CameraID != "front_door" {
		t.Errorf("identity fields not carried: %+v", ce)
	}
	if ce.DetectionType == nil || *ce.DetectionType != models.DetectionTypePerson {
		t.Errorf("DetectionType = %v, want person", ce.DetectionType)
	}
	if ce.CorrelationGroupID != nil {
		t.Error("fresh event should carry no group id")
	}
}

func TestEnsureSchemaVersion(t *testing.T) {
	event := &CameraEvent{}
	event.EnsureSchemaVersion()
	if event.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", event.SchemaVersion, SchemaVersion)
	}
}
