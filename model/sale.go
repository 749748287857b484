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

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// SourceTimeLayout is the layout the source uses for every timestamp it returns.
const SourceTimeLayout = "2006-01-02T15:04:05Z"

// Subscription interval categories reported by the source.
const (
	IntervalMonthly       = "monthly"
	IntervalQuarterly     = "quarterly"
	IntervalBiannually    = "biannually"
	IntervalYearly        = "yearly"
	IntervalEveryTwoYears = "every_two_years"
)

// SaleRecord is a single sale as returned by the source list endpoint.
// A record without a subscription ID is a one-off sale.
type SaleRecord struct {
	ID                   string          `json:"id"`
	SubscriptionID       string          `json:"subscription_id,omitempty"`
	Email                string          `json:"email"`
	ProductID            string          `json:"product_id"`
	Price                decimal.Decimal `json:"price"`
	SubscriptionDuration string          `json:"subscription_duration,omitempty"`
	CreatedAt            string          `json:"created_at"`
	Cancelled            bool            `json:"cancelled"`
	Ended                *bool           `json:"ended,omitempty"`
	Dead                 *bool           `json:"dead,omitempty"`
}

// SalesPage is one page of the source list endpoint.
type SalesPage struct {
	Success     bool         `json:"success"`
	Sales       []SaleRecord `json:"sales"`
	NextPageKey string       `json:"next_page_key,omitempty"`
}

// IsSubscription reports whether the record belongs to a recurring subscription.
func (s *SaleRecord) IsSubscription() bool {
	return s.SubscriptionID != ""
}

// IsEnded reports whether the source flagged the subscription as ended.
func (s *SaleRecord) IsEnded() bool {
	return s.Ended != nil && *s.Ended
}

// IsDead reports whether the source flagged the subscription as dead.
func (s *SaleRecord) IsDead() bool {
	return s.Dead != nil && *s.Dead
}

// Validate checks the fields the sink needs before a record can be forwarded.
func (s *SaleRecord) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ID, validation.Required),
		validation.Field(&s.SubscriptionID, validation.Required),
		validation.Field(&s.ProductID, validation.Required),
		validation.Field(&s.CreatedAt, validation.Required, validation.Date(SourceTimeLayout)),
	)
}

// ParseSourceTime converts a source timestamp to epoch seconds. The source labels its
// timestamps as UTC but they are interpreted in loc, which is time.Local by default.
func ParseSourceTime(value string, loc *time.Location) (int64, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(SourceTimeLayout, value, loc)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
