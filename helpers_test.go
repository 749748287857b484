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
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"

	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/database"
	"github.com/blnkfinance/subsync/model"
)

const (
	testSourceURL = "http://source.test/v2"
	testSinkURL   = "http://sink.test/v2"
)

func testConfig(accessTokens ...string) *config.Configuration {
	return &config.Configuration{
		ProjectName: "subsync-test",
		DataSource:  config.DataSourceConfig{Dns: fmt.Sprintf("file:%s?mode=memory&cache=shared", gofakeit.UUID())},
		Source: config.SourceConfig{
			BaseUrl:      testSourceURL,
			AccessTokens: accessTokens,
			Timezone:     "UTC",
		},
		Sink:      config.SinkConfig{BaseUrl: testSinkURL, ApiKey: "pw_key", Currency: "usd"},
		Transport: config.TransportConfig{MaxRetries: 0, InitialIntervalMs: 1},
	}
}

// newTestSubsync wires a Subsync to an in-memory sqlite ledger.
func newTestSubsync(t *testing.T, cnf *config.Configuration) (*Subsync, database.IDataSource) {
	t.Helper()
	config.MockConfig(cnf)

	ds, err := database.NewDataSource(cnf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	s, err := NewSubsync(ds)
	require.NoError(t, err)
	return s, ds
}

func subscriptionSale(subscriptionID string) model.SaleRecord {
	return model.SaleRecord{
		ID:                   gofakeit.UUID(),
		SubscriptionID:       subscriptionID,
		Email:                gofakeit.Email(),
		ProductID:            "prod_1",
		Price:                decimal.NewFromInt(10),
		SubscriptionDuration: model.IntervalMonthly,
		CreatedAt:            "2024-03-01T12:00:00Z",
	}
}

func cancelledSale(subscriptionID string) model.SaleRecord {
	sale := subscriptionSale(subscriptionID)
	sale.Cancelled = true
	return sale
}

func endedSale(subscriptionID string) model.SaleRecord {
	sale := subscriptionSale(subscriptionID)
	sale.Ended = ptr.Bool(true)
	return sale
}

type churnCall struct {
	Alias         string
	EffectiveDate string
	ChurnType     string
}

// fakeProviders stands in for both HTTP providers and records every call made to them.
// Pages are keyed by page key, "" being the first page.
type fakeProviders struct {
	mu sync.Mutex

	pages           map[string]model.SalesPage
	salesStatus     map[string]int
	subscribers     map[string]model.SubscriberStatus
	subscriberCode  int
	createStatus    int
	churnStatus     int
	salesCalls      []string
	subscriberCalls []string
	creates         []model.SinkSubscription
	churns          []churnCall
}

func newFakeProviders(pages ...model.SalesPage) *fakeProviders {
	f := &fakeProviders{
		pages:        map[string]model.SalesPage{},
		salesStatus:  map[string]int{},
		subscribers:  map[string]model.SubscriberStatus{},
		createStatus: http.StatusCreated,
		churnStatus:  http.StatusOK,
	}
	key := ""
	for i, page := range pages {
		if i < len(pages)-1 {
			page.NextPageKey = fmt.Sprintf("p%d", i+2)
		}
		page.Success = true
		f.pages[key] = page
		key = page.NextPageKey
	}
	return f
}

func (f *fakeProviders) register() {
	httpmock.RegisterResponder(http.MethodGet, testSourceURL+"/sales", func(req *http.Request) (*http.Response, error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		token := req.URL.Query().Get("access_token")
		pageKey := req.URL.Query().Get("page_key")
		f.salesCalls = append(f.salesCalls, token+"|"+pageKey)

		if status, ok := f.salesStatus[token]; ok {
			return httpmock.NewStringResponse(status, `{"success": false}`), nil
		}
		return httpmock.NewJsonResponse(http.StatusOK, f.pages[pageKey])
	})

	httpmock.RegisterRegexpResponder(http.MethodGet, regexpFor(testSourceURL+"/subscribers/"), func(req *http.Request) (*http.Response, error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		id := path.Base(req.URL.Path)
		f.subscriberCalls = append(f.subscriberCalls, id)
		if f.subscriberCode != 0 {
			return httpmock.NewStringResponse(f.subscriberCode, `{"success": false}`), nil
		}
		status := f.subscribers[id]
		return httpmock.NewJsonResponse(http.StatusOK, model.SubscriberResponse{Success: true, Subscriber: &status})
	})

	httpmock.RegisterResponder(http.MethodPost, testSinkURL+"/subscriptions/", func(req *http.Request) (*http.Response, error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var sub model.SinkSubscription
		if err := json.NewDecoder(req.Body).Decode(&sub); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}
		if req.Header.Get("Authorization") != "pw_key" {
			return httpmock.NewStringResponse(http.StatusUnauthorized, ""), nil
		}
		f.creates = append(f.creates, sub)
		return httpmock.NewStringResponse(f.createStatus, `{}`), nil
	})

	httpmock.RegisterRegexpResponder(http.MethodDelete, regexpFor(testSinkURL+"/subscriptions/"), func(req *http.Request) (*http.Response, error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.churns = append(f.churns, churnCall{
			Alias:         path.Base(strings.TrimSuffix(req.URL.Path, "/")),
			EffectiveDate: req.URL.Query().Get("effective_date"),
			ChurnType:     req.URL.Query().Get("churn_type"),
		})
		return httpmock.NewStringResponse(f.churnStatus, `{}`), nil
	})
}

func regexpFor(prefix string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(prefix))
}

func (f *fakeProviders) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.salesCalls = nil
	f.subscriberCalls = nil
	f.creates = nil
	f.churns = nil
}
