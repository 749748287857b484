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
package model

import "time"

// ChurnType is the churn decision for a single record.
type ChurnType string

const (
	ChurnNone       ChurnType = ""
	ChurnVoluntary  ChurnType = "voluntary"
	ChurnDelinquent ChurnType = "delinquent"
)

// IsChurn reports whether the decision requires a churn call.
func (c ChurnType) IsChurn() bool {
	return c != ChurnNone
}

// LedgerEntry records that a subscription has been forwarded to the sink and whether
// it has already been reported as churned. Cancelled never goes back to false.
type LedgerEntry struct {
	ID        string `json:"id"`
	Cancelled bool   `json:"cancelled"`
}

// Run statuses.
const (
	RunStarted   = "started"
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunExhausted = "exhausted"
)

// SyncRun is the history row of one reconciliation pass.
type SyncRun struct {
	RunID        string     `json:"run_id"`
	Status       string     `json:"status"`
	IsDryRun     bool       `json:"is_dry_run"`
	Pages        int        `json:"pages"`
	RecordsSeen  int        `json:"records_seen"`
	Created      int        `json:"created"`
	Churned      int        `json:"churned"`
	Skipped      int        `json:"skipped"`
	SinkFailures int        `json:"sink_failures"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}
