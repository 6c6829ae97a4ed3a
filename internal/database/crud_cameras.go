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

// UpsertCamera inserts or updates a camera record.
func (db *DB) UpsertCamera(ctx context.Context, camera *models.Camera) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	if camera.CreatedAt.IsZero() {
		camera.CreatedAt = now
	}
	camera.UpdatedAt = now
	if camera.AnalysisMode == "" {
		camera.AnalysisMode = models.AnalysisModeFull
	}

	start := time.Now()
	query := `INSERT INTO cameras (id, name, controller_id, analysis_mode, enabled, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		controller_id = EXCLUDED.controller_id,
		analysis_mode = EXCLUDED.analysis_mode,
		enabled = EXCLUDED.enabled,
		updated_at = EXCLUDED.updated_at`

	_, err := db.conn.ExecContext(ctx, query,
		camera.ID, camera.Name, camera.ControllerID, camera.AnalysisMode,
		camera.Enabled, camera.CreatedAt, camera.UpdatedAt,
	)
	if err != nil {
		metrics.RecordDBError("upsert", "cameras")
		return fmt.Errorf("failed to upsert camera %s: %w", camera.ID, err)
	}

	metrics.RecordDBQuery("upsert", "cameras", start)
	return nil
}

// GetCamera retrieves a camera by id. Returns nil without error when the
// camera does not exist.
func (db *DB) GetCamera(ctx context.Context, id string) (*models.Camera, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT id, name, controller_id, analysis_mode, enabled, created_at, updated_at
	FROM cameras WHERE id = ?`

	camera := &models.Camera{}
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&camera.ID, &camera.Name, &camera.ControllerID, &camera.AnalysisMode,
		&camera.Enabled, &camera.CreatedAt, &camera.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBError("select", "cameras")
		return nil, fmt.Errorf("failed to get camera %s: %w", id, err)
	}

	return camera, nil
}

// ListCameras retrieves all cameras ordered by name.
func (db *DB) ListCameras(ctx context.Context) ([]models.Camera, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, controller_id, analysis_mode, enabled, created_at, updated_at
		FROM cameras ORDER BY name`)
	if err != nil {
		metrics.RecordDBError("select", "cameras")
		return nil, fmt.Errorf("failed to query cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		camera := models.Camera{}
		err := rows.Scan(
			&camera.ID, &camera.Name, &camera.ControllerID, &camera.AnalysisMode,
			&camera.Enabled, &camera.CreatedAt, &camera.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cameras = append(cameras, camera)
	}

	return cameras, rows.Err()
}
