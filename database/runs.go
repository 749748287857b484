/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/subsync/internal/apierror"
	"github.com/blnkfinance/subsync/model"
)

const syncRunColumns = `run_id, status, is_dry_run, pages, records_seen, created, churned,
	skipped, sink_failures, error_message, started_at, completed_at`

// RecordSyncRun inserts a new run history row.
func (d Datasource) RecordSyncRun(ctx context.Context, run *model.SyncRun) error {
	ctx, span := otel.Tracer("SyncRun").Start(ctx, "Saving sync run to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, d.rebind(`
		INSERT INTO sync_runs (`+syncRunColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		run.RunID, run.Status, run.IsDryRun, run.Pages, run.RecordsSeen, run.Created, run.Churned,
		run.Skipped, run.SinkFailures, run.Error, run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to record sync run", err)
	}
	return nil
}

// UpdateSyncRun writes the status and counters of a run.
func (d Datasource) UpdateSyncRun(ctx context.Context, run *model.SyncRun) error {
	ctx, span := otel.Tracer("SyncRun").Start(ctx, "Updating sync run")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, d.rebind(`
		UPDATE sync_runs
		SET status = ?, pages = ?, records_seen = ?, created = ?, churned = ?, skipped = ?,
			sink_failures = ?, error_message = ?, completed_at = ?
		WHERE run_id = ?
	`),
		run.Status, run.Pages, run.RecordsSeen, run.Created, run.Churned, run.Skipped,
		run.SinkFailures, run.Error, run.CompletedAt, run.RunID,
	)
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to update sync run", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("sync run with ID '%s' not found", run.RunID), nil)
	}
	return nil
}

// GetSyncRun retrieves a run by its ID.
func (d Datasource) GetSyncRun(ctx context.Context, runID string) (*model.SyncRun, error) {
	ctx, span := otel.Tracer("SyncRun").Start(ctx, "Fetching sync run from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, d.rebind(`SELECT `+syncRunColumns+` FROM sync_runs WHERE run_id = ?`), runID)
	run, err := scanSyncRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("sync run with ID '%s' not found", runID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to retrieve sync run", err)
	}
	return run, nil
}

// GetAllSyncRuns lists runs, most recent first.
func (d Datasource) GetAllSyncRuns(ctx context.Context, limit, offset int) ([]model.SyncRun, error) {
	ctx, span := otel.Tracer("SyncRun").Start(ctx, "Fetching sync runs")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, d.rebind(`
		SELECT `+syncRunColumns+`
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to retrieve sync runs", err)
	}
	defer rows.Close()

	runs := []model.SyncRun{}
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to scan sync run", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "error iterating sync runs", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSyncRun(row scanner) (*model.SyncRun, error) {
	run := &model.SyncRun{}
	var errMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&run.RunID, &run.Status, &run.IsDryRun, &run.Pages, &run.RecordsSeen, &run.Created, &run.Churned,
		&run.Skipped, &run.SinkFailures, &errMsg, &run.StartedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Error = errMsg.String
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return run, nil
}
