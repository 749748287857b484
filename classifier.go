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

import "github.com/blnkfinance/subsync/model"

// Classify maps the flags of a sale record to a churn decision. A cancelled record is a
// voluntary churn; an ended or dead record is delinquent, and that wins when both apply.
func Classify(record model.SaleRecord) model.ChurnType {
	churnType := model.ChurnNone
	if record.Cancelled {
		churnType = model.ChurnVoluntary
	}
	if record.IsEnded() || record.IsDead() {
		churnType = model.ChurnDelinquent
	}
	return churnType
}
