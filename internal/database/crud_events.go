// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/argushq/argus/internal/metrics"
	"github.com/argushq/argus/internal/models"
)

// InsertEvent persists a new camera event.
func (db *DB) InsertEvent(ctx context.Context, event *models.Event) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	query := `INSERT INTO events (
		id, camera_id, controller_id, timestamp, detection_type, score,
		is_doorbell_ring, fallback_reason, clip_path, thumbnail_path,
		correlation_group_id, correlated_event_ids, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		event.ID, event.CameraID, event.ControllerID, event.Timestamp.UTC(),
		event.DetectionType, event.Score, event.IsDoorbellRing,
		event.FallbackReason, event.ClipPath, event.ThumbnailPath,
		event.CorrelationGroupID, event.CorrelatedEventIDs, event.CreatedAt,
	)
	if err != nil {
		metrics.RecordDBError("insert", "events")
		return fmt.Errorf("failed to insert event %s: %w", event.ID, err)
	}

	metrics.RecordDBQuery("insert", "events", start)
	return nil
}

// GetEvent retrieves an event by id. Returns nil without error when the
// event does not exist.
func (db *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT id, camera_id, controller_id, timestamp, detection_type, score,
		is_doorbell_ring, fallback_reason, clip_path, thumbnail_path,
		correlation_group_id, correlated_event_ids, created_at
	FROM events WHERE id = ?`

	event := &models.Event{}
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.CameraID, &event.ControllerID, &event.Timestamp,
		&event.DetectionType, &event.Score, &event.IsDoorbellRing,
		&event.FallbackReason, &event.ClipPath, &event.ThumbnailPath,
		&event.CorrelationGroupID, &event.CorrelatedEventIDs, &event.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBError("select", "events")
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}

	return event, nil
}

// ListEvents retrieves events matching the filter, newest first.
func (db *DB) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT id, camera_id, controller_id, timestamp, detection_type, score,
		is_doorbell_ring, fallback_reason, clip_path, thumbnail_path,
		correlation_group_id, correlated_event_ids, created_at
	FROM events WHERE 1=1`
	var args []interface{}

	if filter.CameraID != "" {
		query += " AND camera_id = ?"
		args = append(args, filter.CameraID)
	}
	if filter.DetectionType != "" {
		query += " AND detection_type = ?"
		args = append(args, filter.DetectionType)
	}
	if filter.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime.UTC())
	}
	if filter.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime.UTC())
	}
	if filter.CorrelatedOnly {
		query += " AND correlation_group_id IS NOT NULL"
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError("select", "events")
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event := models.Event{}
		err := rows.Scan(
			&event.ID, &event.CameraID, &event.ControllerID, &event.Timestamp,
			&event.DetectionType, &event.Score, &event.IsDoorbellRing,
			&event.FallbackReason, &event.ClipPath, &event.ThumbnailPath,
			&event.CorrelationGroupID, &event.CorrelatedEventIDs, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	metrics.RecordDBQuery("select", "events", start)
	return events, rows.Err()
}

// ListEventsByGroup retrieves all events in a correlation group.
func (db *DB) ListEventsByGroup(ctx context.Context, groupID string) ([]models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT id, camera_id, controller_id, timestamp, detection_type, score,
		is_doorbell_ring, fallback_reason, clip_path, thumbnail_path,
		correlation_group_id, correlated_event_ids, created_at
	FROM events WHERE correlation_group_id = ? ORDER BY timestamp`

	rows, err := db.conn.QueryContext(ctx, query, groupID)
	if err != nil {
		metrics.RecordDBError("select", "events")
		return nil, fmt.Errorf("failed to query correlation group %s: %w", groupID, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event := models.Event{}
		err := rows.Scan(
			&event.ID, &event.CameraID, &event.ControllerID, &event.Timestamp,
			&event.DetectionType, &event.Score, &event.IsDoorbellRing,
			&event.FallbackReason, &event.ClipPath, &event.ThumbnailPath,
			&event.CorrelationGroupID, &event.CorrelatedEventIDs, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// UpdateCorrelation writes the group id and the serialized member list to
// every event whose id is in eventIDs, and returns the number of rows
// actually modified. Rows deleted between buffering and resolution are
// silently skipped, so the count may be less than len(eventIDs).
func (db *DB) UpdateCorrelation(ctx context.Context, groupID string, eventIDs []string) (int, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	serialized, err := models.EncodeCorrelatedIDs(eventIDs)
	if err != nil {
		return 0, err
	}

	placeholders, inArgs := buildInClause(eventIDs)
	query := fmt.Sprintf(
		`UPDATE events SET correlation_group_id = ?, correlated_event_ids = ? WHERE id IN (%s)`,
		placeholders,
	)
	args := append([]interface{}{groupID, serialized}, inArgs...)

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError("update", "events")
		return 0, fmt.Errorf("failed to update correlation group %s: %w", groupID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	metrics.RecordDBQuery("update", "events", start)
	return int(affected), nil
}

// GetCorrelatedEventIDs returns the ids of all events already recorded under
// a correlation group. Used to union buffer-expired members into a group
// update before writing.
func (db *DB) GetCorrelatedEventIDs(ctx context.Context, groupID string) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM events WHERE correlation_group_id = ?`, groupID)
	if err != nil {
		metrics.RecordDBError("select", "events")
		return nil, fmt.Errorf("failed to query group members for %s: %w", groupID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan event id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetEventStats summarizes the events table for the system endpoint.
func (db *DB) GetEventStats(ctx context.Context) (*models.EventStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT
		COUNT(*),
		COUNT(correlation_group_id),
		MIN(timestamp),
		MAX(timestamp)
	FROM events`

	stats := &models.EventStats{}
	var oldest, newest sql.NullTime
	err := db.conn.QueryRowContext(ctx, query).Scan(
		&stats.TotalEvents, &stats.CorrelatedEvents, &oldest, &newest,
	)
	if err != nil {
		metrics.RecordDBError("select", "events")
		return nil, fmt.Errorf("failed to query event stats: %w", err)
	}

	if oldest.Valid {
		stats.OldestEvent = &oldest.Time
	}
	if newest.Valid {
		stats.NewestEvent = &newest.Time
	}
	if stats.TotalEvents > 0 {
		stats.CorrelationRate = float64(stats.CorrelatedEvents) / float64(stats.TotalEvents)
	}

	return stats, nil
}
