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

package subsync

import (
	"context"

	"github.com/blnkfinance/subsync/model"
)

// GetSyncRun retrieves a recorded pass by its run ID.
func (s *Subsync) GetSyncRun(ctx context.Context, runID string) (*model.SyncRun, error) {
	return s.datasource.GetSyncRun(ctx, runID)
}

// ListSyncRuns returns recorded passes, most recent first.
func (s *Subsync) ListSyncRuns(ctx context.Context, limit, offset int) ([]model.SyncRun, error) {
	return s.datasource.GetAllSyncRuns(ctx, limit, offset)
}
