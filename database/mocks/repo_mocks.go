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
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/blnkfinance/subsync/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Ledger methods

func (m *MockDataSource) GetLedgerEntry(ctx context.Context, id string) (*model.LedgerEntry, error) {
	args := m.Called(ctx, id)
	entry, _ := args.Get(0).(*model.LedgerEntry)
	return entry, args.Error(1)
}

func (m *MockDataSource) InsertLedgerEntry(ctx context.Context, id string, cancelled bool) error {
	args := m.Called(ctx, id, cancelled)
	return args.Error(0)
}

func (m *MockDataSource) UpdateLedgerCancelled(ctx context.Context, id string, cancelled bool) error {
	args := m.Called(ctx, id, cancelled)
	return args.Error(0)
}

func (m *MockDataSource) DeleteLedgerEntry(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDataSource) GetAllLedgerEntries(ctx context.Context, limit, offset int) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, limit, offset)
	entries, _ := args.Get(0).([]model.LedgerEntry)
	return entries, args.Error(1)
}

// Sync run methods

func (m *MockDataSource) RecordSyncRun(ctx context.Context, run *model.SyncRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDataSource) UpdateSyncRun(ctx context.Context, run *model.SyncRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDataSource) GetSyncRun(ctx context.Context, runID string) (*model.SyncRun, error) {
	args := m.Called(ctx, runID)
	run, _ := args.Get(0).(*model.SyncRun)
	return run, args.Error(1)
}

func (m *MockDataSource) GetAllSyncRuns(ctx context.Context, limit, offset int) ([]model.SyncRun, error) {
	args := m.Called(ctx, limit, offset)
	runs, _ := args.Get(0).([]model.SyncRun)
	return runs, args.Error(1)
}

func (m *MockDataSource) Close() error {
	args := m.Called()
	return args.Error(0)
}
