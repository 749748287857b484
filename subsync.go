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
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/database"
	redis_db "github.com/blnkfinance/subsync/internal/redis-db"
	"github.com/blnkfinance/subsync/internal/sink"
	"github.com/blnkfinance/subsync/internal/source"
)

// Subsync reconciles subscriptions between the billing source and the analytics sink.
type Subsync struct {
	datasource database.IDataSource
	source     *source.Client
	sink       *sink.Client
	redis      redis.UniversalClient
	config     *config.Configuration
	location   *time.Location
}

// NewSubsync initializes a new instance of Subsync with the provided datasource.
// It fetches the configuration and builds the source and sink clients. A Redis client
// is only created when a redis DNS is configured; without it passes run unlocked.
//
// Parameters:
// - db database.IDataSource: The ledger and run history store.
//
// Returns:
// - *Subsync: A pointer to the newly created Subsync instance.
// - error: An error if the configuration is missing or Redis cannot be set up.
func NewSubsync(db database.IDataSource) (*Subsync, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	s := &Subsync{
		datasource: db,
		source:     source.NewClient(configuration.Source, configuration.Transport),
		sink:       sink.NewClient(configuration.Sink, configuration.Transport),
		config:     configuration,
		location:   configuration.Source.Location(),
	}

	if configuration.Redis.Dns != "" {
		addr := configuration.Redis.Dns
		if !strings.Contains(addr, "://") {
			addr = fmt.Sprintf("redis://%s", addr)
		}
		redisClient, err := redis_db.NewRedisClient([]string{addr}, configuration.Redis.SkipTLSVerify)
		if err != nil {
			return nil, err
		}
		s.redis = redisClient.Client()
	}
	return s, nil
}

// Close releases the Redis client. The datasource belongs to the caller.
func (s *Subsync) Close() error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Close()
}
