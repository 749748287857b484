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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/blnkfinance/subsync/internal/apierror"
	"github.com/blnkfinance/subsync/model"
)

var runColumns = []string{
	"run_id", "status", "is_dry_run", "pages", "records_seen", "created", "churned",
	"skipped", "sink_failures", "error_message", "started_at", "completed_at",
}

func TestRecordSyncRun_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	run := &model.SyncRun{
		RunID:     uuid.New().String(),
		Status:    model.RunStarted,
		IsDryRun:  true,
		StartedAt: time.Now(),
	}

	mock.ExpectExec("INSERT INTO sync_runs").
		WithArgs(run.RunID, model.RunStarted, true, 0, 0, 0, 0, 0, 0, "", run.StartedAt, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = ds.RecordSyncRun(context.TODO(), run)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSyncRun_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE sync_runs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateSyncRun(context.TODO(), &model.SyncRun{RunID: "run_404", Status: model.RunFailed})
	assert.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}

func TestGetSyncRun_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	started := time.Now().Add(-time.Minute)
	completed := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM sync_runs WHERE run_id = ?").
		WithArgs("run_1").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run_1", model.RunExhausted, false, 2, 7, 1, 1, 3, 0, "token pool exhausted", started, completed))

	run, err := ds.GetSyncRun(context.TODO(), "run_1")
	assert.NoError(t, err)
	assert.Equal(t, model.RunExhausted, run.Status)
	assert.Equal(t, 7, run.RecordsSeen)
	assert.Equal(t, "token pool exhausted", run.Error)
	assert.Equal(t, completed, *run.CompletedAt)
}

func TestGetSyncRun_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT (.+) FROM sync_runs").
		WithArgs("run_404").
		WillReturnError(sql.ErrNoRows)

	_, err = ds.GetSyncRun(context.TODO(), "run_404")
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}

func TestGetAllSyncRuns(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM sync_runs ORDER BY started_at DESC").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run_2", model.RunStarted, false, 0, 0, 0, 0, 0, 0, nil, now, nil).
			AddRow("run_1", model.RunCompleted, false, 1, 2, 2, 0, 0, 0, nil, now.Add(-time.Hour), now))

	runs, err := ds.GetAllSyncRuns(context.TODO(), 20, 0)
	assert.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Nil(t, runs[0].CompletedAt)
	assert.NotNil(t, runs[1].CompletedAt)
}
