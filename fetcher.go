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

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/subsync/internal/apierror"
	"github.com/blnkfinance/subsync/internal/tokens"
	"github.com/blnkfinance/subsync/model"
)

type salesLister interface {
	ListSales(ctx context.Context, token, pageKey string) (*model.SalesPage, error)
}

// PaginatedFetcher walks the source's sales listing one page at a time. The walk only
// moves forward and ends after a page that carries no next-page key.
type PaginatedFetcher struct {
	client  salesLister
	rotator *tokens.Rotator
	pageKey string
	done    bool
}

// NewPaginatedFetcher creates a fetcher positioned before the first page.
func NewPaginatedFetcher(client salesLister, rotator *tokens.Rotator) *PaginatedFetcher {
	return &PaginatedFetcher{client: client, rotator: rotator}
}

// HasNext reports whether another page can be requested.
func (f *PaginatedFetcher) HasNext() bool {
	return !f.done
}

// Next fetches the next page. A rate-limited request is retried on the same page with the
// next credential. Bad request and unauthorized responses are fatal and returned as is;
// tokens.ErrTokensExhausted is returned once the pool runs out.
func (f *PaginatedFetcher) Next(ctx context.Context) (*model.SalesPage, error) {
	if f.done {
		return nil, errors.New("sales pagination already finished")
	}

	page, err := f.fetchPage(ctx, f.pageKey)
	if err != nil {
		f.done = true
		return nil, err
	}

	f.pageKey = page.NextPageKey
	if f.pageKey == "" {
		f.done = true
	}
	return page, nil
}

// fetchPage is bounded by the pool size: every retry consumes one credential.
func (f *PaginatedFetcher) fetchPage(ctx context.Context, pageKey string) (*model.SalesPage, error) {
	for {
		token, err := f.rotator.Current()
		if err != nil {
			return nil, err
		}

		page, err := f.client.ListSales(ctx, token, pageKey)
		if err == nil {
			return page, nil
		}

		if !apierror.IsRetryable(err) {
			logrus.WithError(err).WithField("page_key", pageKey).Error("failed to fetch sales page")
			return nil, errors.Wrap(err, "fetching sales page")
		}

		if _, err := f.rotator.Advance(); err != nil {
			return nil, err
		}
	}
}
