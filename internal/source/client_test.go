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

package source

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/internal/apierror"
)

const baseURL = "http://source.test/v2"

func newTestClient() *Client {
	return NewClient(
		config.SourceConfig{BaseUrl: baseURL, TimeoutSeconds: 5},
		config.TransportConfig{MaxRetries: 0, InitialIntervalMs: 1},
	)
}

func TestListSales_FirstPage(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponderWithQuery("GET", baseURL+"/sales", "access_token=tok_1",
		httpmock.NewStringResponder(200, `{
			"success": true,
			"next_page_key": "p2",
			"sales": [
				{"id": "s1", "subscription_id": "sub_1", "email": "a@b.co", "product_id": "prod", "price": 500,
				 "subscription_duration": "yearly", "created_at": "2024-01-01T00:00:00Z", "cancelled": false}
			]
		}`))

	page, err := newTestClient().ListSales(context.Background(), "tok_1", "")
	require.NoError(t, err)
	assert.Equal(t, "p2", page.NextPageKey)
	require.Len(t, page.Sales, 1)
	assert.Equal(t, "sub_1", page.Sales[0].SubscriptionID)
	assert.Equal(t, "yearly", page.Sales[0].SubscriptionDuration)
}

func TestListSales_PassesPageKey(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponderWithQuery("GET", baseURL+"/sales", "access_token=tok_1&page_key=p2",
		httpmock.NewStringResponder(200, `{"success": true, "sales": []}`))

	page, err := newTestClient().ListSales(context.Background(), "tok_1", "p2")
	require.NoError(t, err)
	assert.Empty(t, page.NextPageKey)
	assert.Empty(t, page.Sales)
}

func TestListSales_StatusTaxonomy(t *testing.T) {
	tests := []struct {
		status   int
		expected apierror.ErrorCode
	}{
		{http.StatusBadRequest, apierror.ErrBadRequest},
		{http.StatusUnauthorized, apierror.ErrUnauthorized},
		{http.StatusTooManyRequests, apierror.ErrRateLimited},
		{http.StatusInternalServerError, apierror.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			httpmock.Activate()
			defer httpmock.DeactivateAndReset()

			httpmock.RegisterResponder("GET", baseURL+"/sales",
				httpmock.NewStringResponder(tt.status, `{"success": false}`))

			_, err := newTestClient().ListSales(context.Background(), "tok_1", "")
			assert.Error(t, err)
			assert.True(t, apierror.IsCode(err, tt.expected))
		})
	}
}

func TestListSales_MalformedBody(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", baseURL+"/sales",
		httpmock.NewStringResponder(200, `{not json`))

	_, err := newTestClient().ListSales(context.Background(), "tok_1", "")
	assert.True(t, apierror.IsCode(err, apierror.ErrInternalServer))
}

func TestGetSubscriber(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponderWithQuery("GET", baseURL+"/subscribers/sub_1", "access_token=tok_2",
		httpmock.NewStringResponder(200, `{
			"success": true,
			"subscriber": {"id": "sub_1", "status": "cancelled", "cancelled_at": "2024-02-01T10:00:00Z"}
		}`))

	status, err := newTestClient().GetSubscriber(context.Background(), "tok_2", "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01T10:00:00Z", status.CancelledAt)
	assert.Empty(t, status.EndedAt)
}

func TestGetSubscriber_MissingSubscriber(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", baseURL+"/subscribers/sub_1",
		httpmock.NewStringResponder(200, `{"success": true}`))

	status, err := newTestClient().GetSubscriber(context.Background(), "tok_2", "sub_1")
	require.NoError(t, err)
	_, found := status.Terminal()
	assert.False(t, found)
}

func TestGetSubscriber_Unauthorized(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", baseURL+"/subscribers/sub_1",
		httpmock.NewStringResponder(401, `{"success": false}`))

	_, err := newTestClient().GetSubscriber(context.Background(), "tok_2", "sub_1")
	assert.True(t, apierror.IsCode(err, apierror.ErrUnauthorized))
}
