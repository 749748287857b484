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

// SubscriberStatus holds the end-of-service fields of a subscriber detail response.
type SubscriberStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status,omitempty"`
	FailedAt    string `json:"failed_at,omitempty"`
	EndedAt     string `json:"ended_at,omitempty"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

// SubscriberResponse is the envelope returned by the subscriber detail endpoint.
type SubscriberResponse struct {
	Success    bool              `json:"success"`
	Subscriber *SubscriberStatus `json:"subscriber"`
}

// Terminal returns the authoritative end-of-service timestamp. Fields are checked in the
// order failed_at, ended_at, cancelled_at and the first non-empty one wins.
func (s *SubscriberStatus) Terminal() (string, bool) {
	if s == nil {
		return "", false
	}
	for _, v := range []string{s.FailedAt, s.EndedAt, s.CancelledAt} {
		if v != "" {
			return v, true
		}
	}
	return "", false
}
