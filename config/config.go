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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_DATA_SOURCE     = "file:subsync.db"
	DEFAULT_SOURCE_BASE_URL = "https://api.gumroad.com/v2"
	DEFAULT_SINK_BASE_URL   = "https://api.profitwell.com/v2"
	DEFAULT_CURRENCY        = "usd"
	DEFAULT_TIMEOUT_SECONDS = 30
)

var ConfigStore atomic.Value

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"SUBSYNC_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"SUBSYNC_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"SUBSYNC_REDIS_SKIP_TLS_VERIFY"`
	LockTTLSec    int    `json:"lock_ttl_sec" envconfig:"SUBSYNC_REDIS_LOCK_TTL_SEC"`
}

type SourceConfig struct {
	BaseUrl           string   `json:"base_url" envconfig:"SUBSYNC_SOURCE_BASE_URL"`
	AccessTokens      []string `json:"access_tokens" envconfig:"SUBSYNC_SOURCE_ACCESS_TOKENS"`
	RequestsPerSecond float64  `json:"requests_per_second" envconfig:"SUBSYNC_SOURCE_RPS"`
	TimeoutSeconds    int      `json:"timeout_seconds" envconfig:"SUBSYNC_SOURCE_TIMEOUT_SECONDS"`
	Timezone          string   `json:"timezone" envconfig:"SUBSYNC_SOURCE_TIMEZONE"`
}

type SinkConfig struct {
	BaseUrl        string `json:"base_url" envconfig:"SUBSYNC_SINK_BASE_URL"`
	ApiKey         string `json:"api_key" envconfig:"SUBSYNC_SINK_API_KEY"`
	MaxEmailLength int    `json:"max_email_length" envconfig:"SUBSYNC_SINK_MAX_EMAIL_LENGTH"`
	AliasSuffix    string `json:"alias_suffix" envconfig:"SUBSYNC_SINK_ALIAS_SUFFIX"`
	Currency       string `json:"currency" envconfig:"SUBSYNC_SINK_CURRENCY"`
	TimeoutSeconds int    `json:"timeout_seconds" envconfig:"SUBSYNC_SINK_TIMEOUT_SECONDS"`
}

type TransportConfig struct {
	MaxRetries        uint64 `json:"max_retries" envconfig:"SUBSYNC_TRANSPORT_MAX_RETRIES"`
	InitialIntervalMs int    `json:"initial_interval_ms" envconfig:"SUBSYNC_TRANSPORT_INITIAL_INTERVAL_MS"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"SUBSYNC_SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName     string           `json:"project_name" envconfig:"SUBSYNC_PROJECT_NAME"`
	DataSource      DataSourceConfig `json:"data_source"`
	Redis           RedisConfig      `json:"redis"`
	Source          SourceConfig     `json:"source"`
	Sink            SinkConfig       `json:"sink"`
	Transport       TransportConfig  `json:"transport"`
	Notification    Notification     `json:"notification"`
	EnableTelemetry bool             `json:"enable_telemetry" envconfig:"SUBSYNC_ENABLE_TELEMETRY"`
	OtelEndpoint    string           `json:"otel_endpoint" envconfig:"SUBSYNC_OTEL_ENDPOINT"`
	LogLevel        string           `json:"log_level" envconfig:"SUBSYNC_LOG_LEVEL"`
	LogFormat       string           `json:"log_format" envconfig:"SUBSYNC_LOG_FORMAT"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("subsync", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	applyLogging(&cnf)
	ConfigStore.Store(&cnf)
	return nil
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called subsync.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "Subsync"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Sink.ApiKey = strings.TrimSpace(cnf.Sink.ApiKey)

	tokens := make([]string, 0, len(cnf.Source.AccessTokens))
	for _, token := range cnf.Source.AccessTokens {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	cnf.Source.AccessTokens = tokens

	if cnf.DataSource.Dns == "" {
		log.Printf("Warning: Data source DNS not specified. Using local ledger: %s", DEFAULT_DATA_SOURCE)
		cnf.DataSource.Dns = DEFAULT_DATA_SOURCE
	}
	if cnf.Source.BaseUrl == "" {
		cnf.Source.BaseUrl = DEFAULT_SOURCE_BASE_URL
	}
	if cnf.Sink.BaseUrl == "" {
		cnf.Sink.BaseUrl = DEFAULT_SINK_BASE_URL
	}
	cnf.Source.BaseUrl = strings.TrimRight(strings.TrimSpace(cnf.Source.BaseUrl), "/")
	cnf.Sink.BaseUrl = strings.TrimRight(strings.TrimSpace(cnf.Sink.BaseUrl), "/")

	if cnf.Sink.Currency == "" {
		cnf.Sink.Currency = DEFAULT_CURRENCY
	}
	if cnf.Source.TimeoutSeconds <= 0 {
		cnf.Source.TimeoutSeconds = DEFAULT_TIMEOUT_SECONDS
	}
	if cnf.Sink.TimeoutSeconds <= 0 {
		cnf.Sink.TimeoutSeconds = DEFAULT_TIMEOUT_SECONDS
	}
	if cnf.Transport.MaxRetries == 0 {
		cnf.Transport.MaxRetries = 3
	}
	if cnf.Transport.InitialIntervalMs <= 0 {
		cnf.Transport.InitialIntervalMs = 500
	}
	if cnf.Redis.LockTTLSec <= 0 {
		cnf.Redis.LockTTLSec = 3600
	}
	if cnf.LogLevel == "" {
		cnf.LogLevel = "info"
	}

	return cnf.validate()
}

func (cnf *Configuration) validate() error {
	err := validation.ValidateStruct(&cnf.Source,
		validation.Field(&cnf.Source.AccessTokens, validation.Required.Error("at least one source access token is required")),
		validation.Field(&cnf.Source.BaseUrl, validation.Required, is.URL),
		validation.Field(&cnf.Source.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&cnf.Source.Timezone, validation.By(validateTimezone)),
	)
	if err != nil {
		return err
	}

	return validation.ValidateStruct(&cnf.Sink,
		validation.Field(&cnf.Sink.ApiKey, validation.Required.Error("sink api key is required")),
		validation.Field(&cnf.Sink.BaseUrl, validation.Required, is.URL),
		validation.Field(&cnf.Sink.MaxEmailLength, validation.Min(0)),
	)
}

func validateTimezone(value interface{}) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	_, err := time.LoadLocation(name)
	return err
}

// Location returns the location source timestamps are interpreted in.
func (s SourceConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}

func applyLogging(cnf *Configuration) {
	level, err := logrus.ParseLevel(cnf.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cnf.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if strings.EqualFold(cnf.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
