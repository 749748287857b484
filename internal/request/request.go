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

package request

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// ToJsonReq converts a Go object to a JSON-encoded HTTP request payload.
// It serializes the provided payload to JSON format and wraps it in a buffer for sending in HTTP requests.
//
// Parameters:
// - payload interface{}: The data structure to be serialized into JSON.
//
// Returns:
// - *bytes.Buffer: The JSON-encoded payload wrapped in a bytes buffer, ready to be sent in a request.
// - error: An error if the JSON marshalling process fails.
func ToJsonReq(payload interface{}) (*bytes.Buffer, error) {
	c, e := json.Marshal(payload)
	if e != nil {
		return nil, e
	}

	bytePayload := bytes.NewBuffer(c)
	return bytePayload, nil
}

// Client sends requests to the upstream and downstream providers. Only transport failures
// (no response at all) are retried here; HTTP status handling belongs to the caller.
type Client struct {
	http            *http.Client
	maxRetries      uint64
	initialInterval time.Duration
}

// NewClient creates a Client with a per-request timeout and a bounded exponential backoff
// for transport errors.
func NewClient(timeout time.Duration, maxRetries uint64, initialInterval time.Duration) *Client {
	if initialInterval <= 0 {
		initialInterval = 500 * time.Millisecond
	}
	return &Client{
		http:            &http.Client{Timeout: timeout},
		maxRetries:      maxRetries,
		initialInterval: initialInterval,
	}
}

// Do sends the request and returns the response together with its fully read body.
// The response body is already closed when Do returns.
func (c *Client) Do(req *http.Request) (*http.Response, []byte, error) {
	var (
		resp *http.Response
		body []byte
	)

	operation := func() error {
		if req.GetBody != nil {
			b, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Body = b
		}

		r, err := c.http.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer func() {
			if err := r.Body.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close response body")
			}
		}()

		data, err := io.ReadAll(r.Body)
		if err != nil {
			// the upstream already answered; resending a create could duplicate it
			if !idempotent(req.Method) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp, body = r, data
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), req.Context())

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		logrus.WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL.Redacted(),
			"wait":   wait,
		}).WithError(err).Warn("transport error, retrying request")
	})
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
