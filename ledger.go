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

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/subsync/model"
)

// GetLedgerEntry retrieves the ledger state of a subscription.
func (s *Subsync) GetLedgerEntry(ctx context.Context, subscriptionID string) (*model.LedgerEntry, error) {
	return s.datasource.GetLedgerEntry(ctx, subscriptionID)
}

// ListLedgerEntries returns a page of the ledger ordered by subscription ID.
func (s *Subsync) ListLedgerEntries(ctx context.Context, limit, offset int) ([]model.LedgerEntry, error) {
	return s.datasource.GetAllLedgerEntries(ctx, limit, offset)
}

// ResetLedgerEntry forgets a subscription. The next pass treats it as new and forwards it
// to the sink again, so this is meant for operators repairing a bad sink state.
func (s *Subsync) ResetLedgerEntry(ctx context.Context, subscriptionID string) error {
	if err := s.datasource.DeleteLedgerEntry(ctx, subscriptionID); err != nil {
		return err
	}
	logrus.WithField("subscription_id", subscriptionID).Warn("ledger entry reset")
	return nil
}
