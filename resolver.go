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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/subsync/internal/apierror"
	"github.com/blnkfinance/subsync/internal/tokens"
	"github.com/blnkfinance/subsync/model"
)

type subscriberGetter interface {
	GetSubscriber(ctx context.Context, token, subscriptionID string) (*model.SubscriberStatus, error)
}

// SubscriberStatusResolver finds the effective end-of-service time of a churned
// subscription from the source's subscriber detail endpoint.
type SubscriberStatusResolver struct {
	client   subscriberGetter
	rotator  *tokens.Rotator
	location *time.Location
}

// NewSubscriberStatusResolver shares the rotator with the fetcher of the same pass.
func NewSubscriberStatusResolver(client subscriberGetter, rotator *tokens.Rotator, location *time.Location) *SubscriberStatusResolver {
	return &SubscriberStatusResolver{client: client, rotator: rotator, location: location}
}

// Resolve returns the effective timestamp in epoch seconds.
//
// A RESOLUTION_UNAVAILABLE APIError means the record should be skipped for this pass:
// the source rejected the request, returned no terminal field, or could not be reached.
// tokens.ErrTokensExhausted means the pool ran out while rotating past rate limits.
func (r *SubscriberStatusResolver) Resolve(ctx context.Context, subscriptionID string) (int64, error) {
	logger := logrus.WithField("subscription_id", subscriptionID)

	for {
		token, err := r.rotator.Current()
		if err != nil {
			return 0, err
		}

		status, err := r.client.GetSubscriber(ctx, token, subscriptionID)
		if err != nil {
			if apierror.IsRetryable(err) {
				if _, err := r.rotator.Advance(); err != nil {
					return 0, err
				}
				continue
			}
			logger.WithError(err).Warn("subscriber status unavailable")
			return 0, apierror.NewAPIError(apierror.ErrResolutionUnavailable, "subscriber status unavailable", err.Error())
		}

		terminal, ok := status.Terminal()
		if !ok {
			logger.Warn("subscriber has no end-of-service timestamp")
			return 0, apierror.NewAPIError(apierror.ErrResolutionUnavailable, "subscriber has no end-of-service timestamp", nil)
		}

		effective, err := model.ParseSourceTime(terminal, r.location)
		if err != nil {
			return 0, apierror.NewAPIError(apierror.ErrResolutionUnavailable, "invalid end-of-service timestamp", err.Error())
		}
		return effective, nil
	}
}
