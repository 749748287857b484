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

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blnkfinance/subsync/config"
)

func configCommands(app *subsyncInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "config outputs your instance's computed configuration, secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(redact(*app.cnf))
		},
	}
}

// redact masks credentials before the configuration is printed.
func redact(cnf config.Configuration) config.Configuration {
	tokens := make([]string, len(cnf.Source.AccessTokens))
	for i, token := range cnf.Source.AccessTokens {
		tokens[i] = mask(token)
	}
	cnf.Source.AccessTokens = tokens
	cnf.Sink.ApiKey = mask(cnf.Sink.ApiKey)
	cnf.Notification.Slack.WebhookUrl = mask(cnf.Notification.Slack.WebhookUrl)
	return cnf
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("error printing output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
