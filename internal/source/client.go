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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/internal/apierror"
	"github.com/blnkfinance/subsync/internal/request"
	"github.com/blnkfinance/subsync/model"
)

// Client talks to the billing provider's sales and subscriber endpoints. Every call takes
// the credential explicitly so that rotation stays in the caller's hands.
type Client struct {
	baseURL string
	http    *request.Client
	limiter *rate.Limiter
}

// NewClient builds a source client from configuration.
func NewClient(cfg config.SourceConfig, transport config.TransportConfig) *Client {
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	return &Client{
		baseURL: cfg.BaseUrl,
		http: request.NewClient(
			time.Duration(cfg.TimeoutSeconds)*time.Second,
			transport.MaxRetries,
			time.Duration(transport.InitialIntervalMs)*time.Millisecond,
		),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// ListSales fetches one page of sales. An empty pageKey requests the first page.
// Non-2xx statuses are returned as apierror.APIError values.
func (c *Client) ListSales(ctx context.Context, token, pageKey string) (*model.SalesPage, error) {
	params := url.Values{}
	params.Set("access_token", token)
	if pageKey != "" {
		params.Set("page_key", pageKey)
	}

	body, err := c.get(ctx, fmt.Sprintf("%s/sales?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var page model.SalesPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to decode sales page", err.Error())
	}
	return &page, nil
}

// GetSubscriber fetches the detail record of a single subscription.
func (c *Client) GetSubscriber(ctx context.Context, token, subscriptionID string) (*model.SubscriberStatus, error) {
	params := url.Values{}
	params.Set("access_token", token)

	body, err := c.get(ctx, fmt.Sprintf("%s/subscribers/%s?%s", c.baseURL, url.PathEscape(subscriptionID), params.Encode()))
	if err != nil {
		return nil, err
	}

	var resp model.SubscriberResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to decode subscriber", err.Error())
	}
	if resp.Subscriber == nil {
		return &model.SubscriberStatus{ID: subscriptionID}, nil
	}
	return resp.Subscriber, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, body, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"url":         req.URL.Path,
			"status_code": resp.StatusCode,
		}).Warn("source request failed")
		return nil, apierror.MapHTTPStatusToError(resp.StatusCode, string(body))
	}
	return body, nil
}
