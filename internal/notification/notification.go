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

package notification

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/internal/request"
)

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

var slackClient = request.NewClient(10*time.Second, 2, 500*time.Millisecond)

// pending tracks notifications still being delivered.
var pending sync.WaitGroup

// SlackNotification posts an error report to a Slack webhook.
//
// Parameters:
// - webhookURL: The incoming webhook to post to.
// - title: The header of the message.
// - err: The error to be reported.
//
// Returns an error when the webhook cannot be reached or answers with a non-2xx status.
func SlackNotification(webhookURL, title string, err error) error {
	message := slackMessage{Blocks: []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: title, Emoji: true}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("*Error:*\n%v", err)}}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("*Time:*\n%v", time.Now().Format(time.RFC822))}}},
	}}

	payload, err := request.ToJsonReq(&message)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, webhookURL, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, body, err := slackClient.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// NotifyError logs the error locally and, if Slack is configured, posts it there.
// The post runs in its own goroutine; processes that exit right after must call Flush.
func NotifyError(systemError error) {
	pending.Add(1)
	go func(systemError error) {
		defer pending.Done()
		logrus.Error(systemError)

		conf, err := config.Fetch()
		if err != nil {
			log.Println(err)
			return
		}

		if conf.Notification.Slack.WebhookUrl != "" {
			title := "Sync aborted 🐞"
			if conf.ProjectName != "" {
				title = fmt.Sprintf("Sync aborted in %s 🐞", conf.ProjectName)
			}
			if err := SlackNotification(conf.Notification.Slack.WebhookUrl, title, systemError); err != nil {
				log.Println(err)
			}
		}
	}(systemError)
}

// Flush blocks until every notification started by NotifyError has been delivered or
// timeout elapses. It reports whether all of them finished.
func Flush(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		logrus.Warn("timed out waiting for notifications to be delivered")
		return false
	}
}
