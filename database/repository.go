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

	"github.com/blnkfinance/subsync/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	ledger  // Interface for the subscription ledger
	syncRun // Interface for run history
	Close() error
}

// ledger defines the reconciliation ledger. There is no upsert: callers look up first.
type ledger interface {
	GetLedgerEntry(ctx context.Context, id string) (*model.LedgerEntry, error)               // Retrieves an entry, NOT_FOUND when absent
	InsertLedgerEntry(ctx context.Context, id string, cancelled bool) error                  // Inserts an entry, CONFLICT when it exists
	UpdateLedgerCancelled(ctx context.Context, id string, cancelled bool) error              // Marks an entry cancelled; no-op when absent
	DeleteLedgerEntry(ctx context.Context, id string) error                                  // Removes an entry; idempotent
	GetAllLedgerEntries(ctx context.Context, limit, offset int) ([]model.LedgerEntry, error) // Lists entries
}

// syncRun defines methods for recording reconciliation passes.
type syncRun interface {
	RecordSyncRun(ctx context.Context, run *model.SyncRun) error
	UpdateSyncRun(ctx context.Context, run *model.SyncRun) error
	GetSyncRun(ctx context.Context, runID string) (*model.SyncRun, error)
	GetAllSyncRuns(ctx context.Context, limit, offset int) ([]model.SyncRun, error)
}
