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
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/internal/apierror"
	"github.com/blnkfinance/subsync/internal/request"
	"github.com/blnkfinance/subsync/model"
)

// Client talks to the revenue-analytics provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *request.Client
}

// NewClient builds a sink client from configuration.
func NewClient(cfg config.SinkConfig, transport config.TransportConfig) *Client {
	return &Client{
		baseURL: cfg.BaseUrl,
		apiKey:  cfg.ApiKey,
		http: request.NewClient(
			time.Duration(cfg.TimeoutSeconds)*time.Second,
			transport.MaxRetries,
			time.Duration(transport.InitialIntervalMs)*time.Millisecond,
		),
	}
}

// CreateSubscription posts a new subscription. 200 and 201 are success; any other
// status is returned as SINK_CREATE_FAILED together with the result.
func (c *Client) CreateSubscription(ctx context.Context, sub model.SinkSubscription) (model.SinkResult, error) {
	payload, err := request.ToJsonReq(sub)
	if err != nil {
		return model.SinkResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/subscriptions/", payload)
	if err != nil {
		return model.SinkResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, body, err := c.http.Do(req)
	if err != nil {
		return model.SinkResult{}, apierror.NewAPIError(apierror.ErrSinkCreateFailed, "sink create request failed", err.Error())
	}

	result := model.SinkResult{StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := apierror.NewAPIError(apierror.ErrSinkCreateFailed,
			fmt.Sprintf("error posting subscription %s, status code %d", sub.SubscriptionAlias, resp.StatusCode), result.Body)
		apiErr.StatusCode = resp.StatusCode
		return result, apiErr
	}
	return result, nil
}

// ChurnSubscription cancels a subscription at effectiveDate. Only 200 is success.
func (c *Client) ChurnSubscription(ctx context.Context, alias string, effectiveDate int64, churnType model.ChurnType) (model.SinkResult, error) {
	params := url.Values{}
	params.Set("effective_date", strconv.FormatInt(effectiveDate, 10))
	params.Set("churn_type", string(churnType))
	endpoint := fmt.Sprintf("%s/subscriptions/%s/?%s", c.baseURL, url.PathEscape(alias), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return model.SinkResult{}, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, body, err := c.http.Do(req)
	if err != nil {
		return model.SinkResult{}, apierror.NewAPIError(apierror.ErrSinkChurnFailed, "sink churn request failed", err.Error())
	}

	result := model.SinkResult{StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode != http.StatusOK {
		apiErr := apierror.NewAPIError(apierror.ErrSinkChurnFailed,
			fmt.Sprintf("error churning subscription %s, status code %d", alias, resp.StatusCode), result.Body)
		apiErr.StatusCode = resp.StatusCode
		return result, apiErr
	}

	logrus.WithFields(logrus.Fields{
		"subscription_alias": alias,
		"churn_type":         churnType,
	}).Info("subscription churned")
	return result, nil
}
