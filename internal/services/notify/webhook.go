// -----------------------------------------------------------------------
// Webhook Channel - Slack-compatible delivery of result summaries
// -----------------------------------------------------------------------

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/models"
)

// WebhookChannel posts result summaries to a webhook URL using a
// Slack-compatible block payload. The URL comes from the job request when
// explicit, otherwise from WEBHOOK_URL / SLACK_WEBHOOK_URL (falling back to
// the configured default), read at send time.
type WebhookChannel struct {
	config common.NotifyConfig
	client *http.Client
	logger arbor.ILogger
}

// NewWebhookChannel creates the webhook notification channel
func NewWebhookChannel(config common.NotifyConfig, logger arbor.ILogger) *WebhookChannel {
	return &WebhookChannel{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (c *WebhookChannel) Name() string { return "webhook" }

// Resolve normalizes the webhook configuration to a concrete delivery URL
func (c *WebhookChannel) Resolve(config models.NotificationConfig) (string, bool, error) {
	switch config.Webhook.Mode {
	case models.ChannelExplicit:
		if config.Webhook.URL == "" {
			return "", true, fmt.Errorf("webhook URL not provided")
		}
		return config.Webhook.URL, true, nil
	case models.ChannelEnvDefault:
		url := os.Getenv("WEBHOOK_URL")
		if url == "" {
			url = os.Getenv("SLACK_WEBHOOK_URL")
		}
		if url == "" {
			url = c.config.WebhookURL
		}
		if url == "" {
			return "", true, fmt.Errorf("webhook URL not resolved (WEBHOOK_URL or SLACK_WEBHOOK_URL not set)")
		}
		return url, true, nil
	default:
		return "", false, nil
	}
}

// webhookPayload is the Slack-compatible message shape
type webhookPayload struct {
	Text        string       `json:"text"`
	Blocks      []block      `json:"blocks"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type block struct {
	Type   string      `json:"type"`
	Text   *blockText  `json:"text,omitempty"`
	Fields []blockText `json:"fields,omitempty"`
}

type blockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type attachment struct {
	Color  string            `json:"color"`
	Fields []attachmentField `json:"fields"`
}

type attachmentField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Send posts the summary payload to the resolved URL
func (c *WebhookChannel) Send(ctx context.Context, target string, results []models.ExecutionResult, summary models.Summary, jobID string) error {
	payload := buildPayload(results, summary, jobID)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.logger.Debug().Str("url", target).Int("status", resp.StatusCode).Str("job_id", jobID).Msg("Webhook notification delivered")
	return nil
}

// buildPayload assembles the block message: aggregate counts, job id, and
// per-failure name + error text
func buildPayload(results []models.ExecutionResult, summary models.Summary, jobID string) webhookPayload {
	color := "#36a64f"
	if !summary.Success() {
		color = "#ff0000"
	}

	blocks := []block{
		{
			Type: "header",
			Text: &blockText{Type: "plain_text", Text: "Test Suite Results"},
		},
		{
			Type: "section",
			Fields: []blockText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Total Tests:*\n%d", summary.Total)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Duration:*\n%s", formatDuration(summary.TotalDuration))},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Passed:*\n%d", summary.Passed)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Failed:*\n%d", summary.Failed)},
			},
		},
		{
			Type: "section",
			Text: &blockText{Type: "mrkdwn", Text: fmt.Sprintf("Job ID: `%s` | %s", jobID, summary.Timestamp.Format(time.RFC1123))},
		},
	}

	failed := failedResults(results)
	for _, r := range failed {
		errText := r.Error
		if errText == "" {
			errText = "Unknown error"
		}
		blocks = append(blocks, block{
			Type: "section",
			Text: &blockText{Type: "mrkdwn", Text: fmt.Sprintf("• *%s*\n```%s```", r.Name, errText)},
		})
	}

	payload := webhookPayload{
		Text:   fmt.Sprintf("Test Suite Results: %d/%d Passed", summary.Passed, summary.Total),
		Blocks: blocks,
	}

	if len(failed) > 0 {
		att := attachment{Color: color}
		for _, r := range failed {
			att.Fields = append(att.Fields, attachmentField{
				Title: r.Name,
				Value: r.Error,
				Short: false,
			})
		}
		payload.Attachments = []attachment{att}
	}

	return payload
}
