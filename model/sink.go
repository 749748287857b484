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

// Sink plan intervals.
const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// Sink subscription statuses.
const (
	SinkStatusActive   = "active"
	SinkStatusTrialing = "trialing"
)

// SinkSubscription is the body of the sink subscription-creation call.
type SinkSubscription struct {
	UserAlias         string `json:"user_alias"`
	SubscriptionAlias string `json:"subscription_alias"`
	Email             string `json:"email"`
	PlanID            string `json:"plan_id"`
	PlanInterval      string `json:"plan_interval"`
	PlanCurrency      string `json:"plan_currency"`
	Status            string `json:"status"`
	Value             int64  `json:"value"`
	EffectiveDate     int64  `json:"effective_date"`
}

// SinkResult is the outcome of a sink call.
type SinkResult struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body,omitempty"`
}
