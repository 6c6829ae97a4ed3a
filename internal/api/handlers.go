// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/argushq/argus/internal/correlation"
	"github.com/argushq/argus/internal/database"
	"github.com/argushq/argus/internal/logging"
	"github.com/argushq/argus/internal/models"
)

// APIResponse is the envelope for all JSON responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	db          *database.DB
	correlation *correlation.Service
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(db *database.DB, corr *correlation.Service) *Handler {
	return &Handler{db: db, correlation: corr}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, &APIResponse{Success: false, Error: msg})
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Success: true,
		Data:    map[string]string{"status": "alive"},
	})
}

// HealthReady reports readiness: the database must answer a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	if err := h.db.Ping(r.Context()); err != nil {
		logging.Warn().Err(err).Msg("Readiness check failed")
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, &APIResponse{
		Success: true,
		Data:    map[string]string{"status": "ready"},
	})
}

// ListEvents returns events matching the query filter, newest first.
// Query parameters: camera_id, detection_type, start, end (RFC3339),
// correlated_only, limit, offset.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.db.ListEvents(r.Context(), filter)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list events")
		respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"events": events,
			"count":  len(events),
		},
	})
}

func parseEventFilter(r *http.Request) (models.EventFilter, error) {
	q := r.URL.Query()
	filter := models.EventFilter{
		CameraID:      q.Get("camera_id"),
		DetectionType: q.Get("detection_type"),
		Limit:         100,
	}

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, &queryError{"start", "must be RFC3339"}
		}
		filter.StartTime = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, &queryError{"end", "must be RFC3339"}
		}
		filter.EndTime = &t
	}
	if v := q.Get("correlated_only"); v == "true" || v == "1" {
		filter.CorrelatedOnly = true
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return filter, &queryError{"limit", "must be 1-1000"}
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, &queryError{"offset", "must be >= 0"}
		}
		filter.Offset = n
	}
	return filter, nil
}

type queryError struct {
	param   string
	message string
}

func (e *queryError) Error() string {
	return "invalid " + e.param + ": " + e.message
}

// GetEvent returns a single event by id.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.db.GetEvent(r.Context(), id)
	if err != nil {
		logging.Error().Err(err).Str("event_id", id).Msg("Failed to get event")
		respondError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{Success: true, Data: event})
}

// EventsByGroup returns all events in a correlation group, oldest first.
func (h *Handler) EventsByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	events, err := h.db.ListEventsByGroup(r.Context(), groupID)
	if err != nil {
		logging.Error().Err(err).Str("group_id", groupID).Msg("Failed to list group events")
		respondError(w, http.StatusInternalServerError, "failed to list group events")
		return
	}
	if len(events) == 0 {
		respondError(w, http.StatusNotFound, "correlation group not found")
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"group_id": groupID,
			"events":   events,
			"count":    len(events),
		},
	})
}

// ListCameras returns all registered cameras.
func (h *Handler) ListCameras(w http.ResponseWriter, r *http.Request) {
	cameras, err := h.db.ListCameras(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list cameras")
		respondError(w, http.StatusInternalServerError, "failed to list cameras")
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"cameras": cameras,
			"count":   len(cameras),
		},
	})
}

// CorrelationStats exposes the correlation buffer state plus persisted
// event totals for the system surface.
func (h *Handler) CorrelationStats(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"buffer": h.correlation.BufferStats(),
	}

	if stats, err := h.db.GetEventStats(r.Context()); err == nil {
		data["events"] = stats
	} else {
		logging.Warn().Err(err).Msg("Failed to read event stats")
	}

	respondJSON(w, http.StatusOK, &APIResponse{Success: true, Data: data})
}

// ClearCorrelationBuffer is the administrative reset for the sliding
// window. Persisted correlations are untouched.
func (h *Handler) ClearCorrelationBuffer(w http.ResponseWriter, r *http.Request) {
	removed := h.correlation.ClearBuffer()
	logging.Info().Int("removed", removed).Msg("Correlation buffer cleared via API")

	respondJSON(w, http.StatusOK, &APIResponse{
		Success: true,
		Data:    map[string]int{"removed": removed},
	})
}
