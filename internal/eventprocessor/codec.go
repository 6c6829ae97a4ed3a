// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package eventprocessor

import (
	"fmt"

	"github.com/goccy/go-json"
)

// EncodePayload renders the event as the JSON wire payload carried on the
// camera event subjects. Invalid events are rejected before they reach the
// broker so consumers only ever see the validate failure on payloads that
// bypassed this path.
func (e *CameraEvent) EncodePayload() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return data, nil
}

// DecodeCameraEvent parses a wire payload back into an event. It does not
// validate; the ingest handler validates separately so decode and validate
// failures are reported as distinct drop reasons.
func DecodeCameraEvent(data []byte) (*CameraEvent, error) {
	var event CameraEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}

	return &event, nil
}
