// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package models

import "time"

// Camera analysis modes. The analysis mode decides which classification
// pipeline a camera's events pass through upstream of this backend.
const (
	AnalysisModeFull     = "full"     // Frame + audio analysis
	AnalysisModeFast     = "fast"     // Frame analysis only
	AnalysisModeDisabled = "disabled" // Raw motion events, no classification
)

// Camera is a registered camera known to the backend. Events reference
// cameras by id; camera rows are upserted when controllers announce them.
type Camera struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ControllerID *string   `json:"controller_id,omitempty"`
	AnalysisMode string    `json:"analysis_mode"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
