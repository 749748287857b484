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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wacul/ptr"

	"github.com/blnkfinance/subsync/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		record   model.SaleRecord
		expected model.ChurnType
	}{
		{"active", model.SaleRecord{}, model.ChurnNone},
		{"cancelled", model.SaleRecord{Cancelled: true}, model.ChurnVoluntary},
		{"ended", model.SaleRecord{Ended: ptr.Bool(true)}, model.ChurnDelinquent},
		{"dead", model.SaleRecord{Dead: ptr.Bool(true)}, model.ChurnDelinquent},
		{"cancelled and ended", model.SaleRecord{Cancelled: true, Ended: ptr.Bool(true)}, model.ChurnDelinquent},
		{"cancelled and dead", model.SaleRecord{Cancelled: true, Dead: ptr.Bool(true)}, model.ChurnDelinquent},
		{"explicitly not ended", model.SaleRecord{Cancelled: true, Ended: ptr.Bool(false), Dead: ptr.Bool(false)}, model.ChurnVoluntary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.record))
		})
	}
}
