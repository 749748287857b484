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

package redis_db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		tls      bool
	}{
		{name: "docker style", url: "redis:6379", addr: "redis:6379"},
		{name: "url with password", url: "redis://:password123@localhost:6379", addr: "localhost:6379", password: "password123"},
		{name: "password without colon", url: "redis://password123@localhost:6379", addr: "localhost:6379", password: "password123"},
		{name: "tls url", url: "rediss://:secret@cache.example.com:6380", addr: "cache.example.com:6380", password: "secret", tls: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedisURL(tt.url, false)
			require.NoError(t, err)
			assert.Equal(t, tt.addr, got.Addr)
			assert.Equal(t, tt.password, got.Password)
			assert.Equal(t, tt.tls, got.TLSConfig != nil)
		})
	}
}

func TestParseRedisURL_SkipTLSVerify(t *testing.T) {
	got, err := ParseRedisURL("rediss://localhost:6380", true)
	require.NoError(t, err)
	require.NotNil(t, got.TLSConfig)
	assert.True(t, got.TLSConfig.InsecureSkipVerify)
}

func TestNewRedisClient_Empty(t *testing.T) {
	_, err := NewRedisClient([]string{}, false)
	assert.EqualError(t, err, "redis addresses list cannot be empty")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient([]string{addr}, false)
	assert.Error(t, err)
}

func TestNewRedisClient_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient([]string{"redis://" + mr.Addr()}, false)
	require.NoError(t, err)
	defer client.Client().Close()

	ctx := context.Background()
	require.NoError(t, client.Client().Set(ctx, "subsync:test", "value", time.Minute).Err())

	got, err := mr.Get("subsync:test")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}
