// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package eventprocessor

import (
	"testing"

	"github.com/argushq/argus/internal/models"
)

func TestEncodePayloadRoundTrip(t *testing.T) {
	event := validEvent()
	event.IsDoorbellRing = true

	data, err := event.EncodePayload()
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}

	decoded, err := DecodeCameraEvent(data)
	if err != nil {
		t.Fatalf("DecodeCameraEvent failed: %v", err)
	}

	if decoded.EventID != event.EventID {
		t.Errorf("EventID = %q, want %q", decoded.EventID, event.EventID)
	}
	if decoded.DetectionType != models.DetectionTypePerson {
		t.Errorf("DetectionType = %q, want person", decoded.DetectionType)
	}
	if !decoded.IsDoorbellRing {
		t.Error("IsDoorbellRing lost in round trip")
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestEncodePayloadRejectsInvalidEvent(t *testing.T) {
	event := validEvent()
	event.CameraID = ""

	if _, err := event.EncodePayload(); err == nil {
		t.Error("expected validation error for missing camera_id")
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeCameraEvent([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestDecodeSkipsValidation(t *testing.T) {
	// Decode and validate are separate steps so ingest can distinguish
	// undecodable payloads from well-formed but invalid ones.
	decoded, err := DecodeCameraEvent([]byte(`{"event_id":"e1","camera_id":""}`))
	if err != nil {
		t.Fatalf("DecodeCameraEvent failed: %v", err)
	}
	if err := decoded.Validate(); err == nil {
		t.Error("expected validation to fail for missing camera_id")
	}
}
