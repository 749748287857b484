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

package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/internal/apierror"
	"github.com/blnkfinance/subsync/model"
)

const baseURL = "http://sink.test/v2"

func newTestClient() *Client {
	return NewClient(
		config.SinkConfig{BaseUrl: baseURL, ApiKey: "pw_key", TimeoutSeconds: 5},
		config.TransportConfig{MaxRetries: 0, InitialIntervalMs: 1},
	)
}

func TestCreateSubscription(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	sub := model.SinkSubscription{
		UserAlias:         "jane@example.com",
		SubscriptionAlias: "sub_1",
		Email:             "jane@example.com",
		PlanID:            "prod_1",
		PlanInterval:      model.PlanIntervalMonth,
		PlanCurrency:      "usd",
		Status:            model.SinkStatusActive,
		Value:             1000,
		EffectiveDate:     1704067200,
	}

	httpmock.RegisterResponder("POST", baseURL+"/subscriptions/",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "pw_key", req.Header.Get("Authorization"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

			var got model.SinkSubscription
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			assert.Equal(t, sub, got)
			return httpmock.NewStringResponse(http.StatusCreated, `{"subscription_alias":"sub_1"}`), nil
		})

	result, err := newTestClient().CreateSubscription(context.Background(), sub)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result.StatusCode)
}

func TestCreateSubscription_Failure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", baseURL+"/subscriptions/",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error":"duplicate"}`))

	result, err := newTestClient().CreateSubscription(context.Background(), model.SinkSubscription{SubscriptionAlias: "sub_1"})
	assert.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrSinkCreateFailed))
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	assert.Contains(t, result.Body, "duplicate")
}

func TestChurnSubscription(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponderWithQuery("DELETE", baseURL+"/subscriptions/sub_1/",
		"effective_date=1706781600&churn_type=voluntary",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "pw_key", req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
		})

	result, err := newTestClient().ChurnSubscription(context.Background(), "sub_1", 1706781600, model.ChurnVoluntary)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestChurnSubscription_NonOKIsFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("DELETE", baseURL+"/subscriptions/sub_1/",
		httpmock.NewStringResponder(http.StatusNoContent, ``))

	_, err := newTestClient().ChurnSubscription(context.Background(), "sub_1", 1, model.ChurnDelinquent)
	assert.True(t, apierror.IsCode(err, apierror.ErrSinkChurnFailed))
}
