package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/slack-go/slack"
)

// SlackSender posts to an incoming webhook given by config key "webhook_url".
type SlackSender struct {
	httpClient *http.Client
}

func NewSlackSender(timeout time.Duration) *SlackSender {
	return &SlackSender{httpClient: &http.Client{Timeout: timeout}}
}

func (s *SlackSender) Send(ctx context.Context, content string, recipients []string, config map[string]interface{}) error {
	webhookURL := configString(config, "webhook_url")
	if webhookURL == "" {
		return errcodes.Validation("slack channel requires webhook_url")
	}

	msg := &slack.WebhookMessage{Text: content}
	if err := slack.PostWebhookCustomHTTPContext(ctx, webhookURL, s.httpClient, msg); err != nil {
		return errcodes.Upstream(err, "failed to post slack webhook")
	}
	return nil
}
