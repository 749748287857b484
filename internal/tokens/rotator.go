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

package tokens

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrTokensExhausted is returned once every credential in the pool has been used up.
var ErrTokensExhausted = errors.New("all access tokens exhausted")

// Rotator hands out source credentials from a fixed, ordered pool. The cursor only moves
// forward: there is no wraparound and no refresh within a run.
type Rotator struct {
	pool   []string
	cursor int
}

// NewRotator copies the pool so later changes by the caller do not leak into a run.
func NewRotator(pool []string) *Rotator {
	cp := make([]string, len(pool))
	copy(cp, pool)
	return &Rotator{pool: cp}
}

// Current returns the credential in use, or ErrTokensExhausted when the pool is consumed.
func (r *Rotator) Current() (string, error) {
	if r.cursor >= len(r.pool) {
		return "", ErrTokensExhausted
	}
	return r.pool[r.cursor], nil
}

// Advance moves to the next credential and returns it.
func (r *Rotator) Advance() (string, error) {
	if r.cursor < len(r.pool) {
		r.cursor++
	}
	if r.cursor >= len(r.pool) {
		logrus.Warn("all access tokens exhausted, please try again later")
		return "", ErrTokensExhausted
	}
	logrus.WithField("token_index", r.cursor).Info("rate limit reached, switching tokens")
	return r.pool[r.cursor], nil
}

// Size is the number of credentials in the pool.
func (r *Rotator) Size() int {
	return len(r.pool)
}
