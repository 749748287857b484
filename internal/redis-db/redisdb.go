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
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the client used for the run lock. One address gives a standalone client,
// several give a cluster client.
type Redis struct {
	addresses []string
	client    redis.UniversalClient
}

// ParseRedisURL turns a redis address into client options. It accepts docker style
// host:port addresses, redis:// and rediss:// URLs, and URLs carrying only a password.
func ParseRedisURL(rawURL string, skipTLSVerify bool) (*redis.Options, error) {
	if !strings.Contains(rawURL, "//") && !strings.Contains(rawURL, "@") {
		return &redis.Options{Addr: rawURL}, nil
	}

	// redis://secret@host:6379 means a password without a username.
	if strings.HasPrefix(rawURL, "redis://") || strings.HasPrefix(rawURL, "rediss://") {
		scheme, rest, _ := strings.Cut(rawURL, "://")
		if userinfo, host, ok := strings.Cut(rest, "@"); ok && !strings.Contains(userinfo, ":") {
			rawURL = scheme + "://:" + userinfo + "@" + host
		}
	}

	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if opts.TLSConfig != nil && skipTLSVerify {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return opts, nil
}

// NewRedisClient connects to the given addresses and pings the server.
func NewRedisClient(addresses []string, skipTLSVerify bool) (*Redis, error) {
	if len(addresses) == 0 {
		return nil, errors.New("redis addresses list cannot be empty")
	}

	var client redis.UniversalClient
	if len(addresses) == 1 {
		opts, err := ParseRedisURL(addresses[0], skipTLSVerify)
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opts)
	} else {
		cluster := &redis.UniversalOptions{}
		for _, addr := range addresses {
			opts, err := ParseRedisURL(addr, skipTLSVerify)
			if err != nil {
				return nil, err
			}
			cluster.Addrs = append(cluster.Addrs, opts.Addr)
			if cluster.Password == "" {
				cluster.Password = opts.Password
			}
			if opts.TLSConfig != nil {
				cluster.TLSConfig = opts.TLSConfig
			}
		}
		client = redis.NewUniversalClient(cluster)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{addresses: addresses, client: client}, nil
}

// Client returns the Redis universal client.
func (r *Redis) Client() redis.UniversalClient {
	return r.client
}
