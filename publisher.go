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

	"github.com/pkg/errors"

	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/model"
)

type subscriptionSink interface {
	CreateSubscription(ctx context.Context, sub model.SinkSubscription) (model.SinkResult, error)
	ChurnSubscription(ctx context.Context, alias string, effectiveDate int64, churnType model.ChurnType) (model.SinkResult, error)
}

var planIntervals = map[string]string{
	model.IntervalMonthly:       model.PlanIntervalMonth,
	model.IntervalQuarterly:     model.PlanIntervalMonth,
	model.IntervalBiannually:    model.PlanIntervalMonth,
	model.IntervalYearly:        model.PlanIntervalYear,
	model.IntervalEveryTwoYears: model.PlanIntervalYear,
}

// SinkPublisher maps sale records onto the sink's subscription shape and issues
// create and churn calls.
type SinkPublisher struct {
	client   subscriptionSink
	cfg      config.SinkConfig
	location *time.Location
}

func NewSinkPublisher(client subscriptionSink, cfg config.SinkConfig, location *time.Location) *SinkPublisher {
	return &SinkPublisher{client: client, cfg: cfg, location: location}
}

// Alias is the sink subscription alias of a record.
func (p *SinkPublisher) Alias(record model.SaleRecord) string {
	return record.SubscriptionID + p.cfg.AliasSuffix
}

// BuildSubscription converts a sale record into the sink creation payload.
func (p *SinkPublisher) BuildSubscription(record model.SaleRecord) (model.SinkSubscription, error) {
	effective, err := model.ParseSourceTime(record.CreatedAt, p.location)
	if err != nil {
		return model.SinkSubscription{}, errors.Wrapf(err, "parsing created_at of sale %s", record.ID)
	}

	status := model.SinkStatusTrialing
	if record.Price.IsPositive() {
		status = model.SinkStatusActive
	}

	return model.SinkSubscription{
		UserAlias:         record.Email,
		SubscriptionAlias: p.Alias(record),
		Email:             truncateEmail(record.Email, p.cfg.MaxEmailLength),
		PlanID:            record.ProductID,
		PlanInterval:      PlanInterval(record.SubscriptionDuration),
		PlanCurrency:      p.cfg.Currency,
		Status:            status,
		Value:             record.Price.IntPart(),
		EffectiveDate:     effective,
	}, nil
}

// Create posts a new subscription to the sink.
func (p *SinkPublisher) Create(ctx context.Context, record model.SaleRecord) (model.SinkResult, error) {
	sub, err := p.BuildSubscription(record)
	if err != nil {
		return model.SinkResult{}, err
	}
	return p.client.CreateSubscription(ctx, sub)
}

// Churn cancels the subscription with the given alias at effective.
func (p *SinkPublisher) Churn(ctx context.Context, alias string, effective int64, churnType model.ChurnType) (model.SinkResult, error) {
	if !churnType.IsChurn() {
		return model.SinkResult{}, errors.Errorf("refusing to churn %s without a churn type", alias)
	}
	return p.client.ChurnSubscription(ctx, alias, effective, churnType)
}

// PlanInterval maps a source subscription duration to a sink plan interval.
// Unknown durations are billed monthly.
func PlanInterval(duration string) string {
	if interval, ok := planIntervals[duration]; ok {
		return interval
	}
	return model.PlanIntervalMonth
}

// truncateEmail cuts email to limit runes. A limit of zero or less disables truncation.
func truncateEmail(email string, limit int) string {
	if limit <= 0 {
		return email
	}
	runes := []rune(email)
	if len(runes) <= limit {
		return email
	}
	return string(runes[:limit])
}
