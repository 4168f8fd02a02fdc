package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/models"
)

func newWebhookChannel(config common.NotifyConfig) *WebhookChannel {
	return NewWebhookChannel(config, arbor.NewLogger())
}

func TestWebhookResolve(t *testing.T) {
	tests := []struct {
		name        string
		mode        models.ChannelMode
		url         string
		env         map[string]string
		configURL   string
		wantTarget  string
		wantEnabled bool
		wantErr     bool
	}{
		{
			name:        "disabled",
			mode:        models.ChannelDisabled,
			wantEnabled: false,
		},
		{
			name:        "explicit url",
			mode:        models.ChannelExplicit,
			url:         "https://hooks.example.com/explicit",
			wantTarget:  "https://hooks.example.com/explicit",
			wantEnabled: true,
		},
		{
			name:        "explicit without url",
			mode:        models.ChannelExplicit,
			wantEnabled: true,
			wantErr:     true,
		},
		{
			name:        "env default from WEBHOOK_URL",
			mode:        models.ChannelEnvDefault,
			env:         map[string]string{"WEBHOOK_URL": "https://hooks.example.com/env"},
			wantTarget:  "https://hooks.example.com/env",
			wantEnabled: true,
		},
		{
			name:        "env default falls back to SLACK_WEBHOOK_URL",
			mode:        models.ChannelEnvDefault,
			env:         map[string]string{"SLACK_WEBHOOK_URL": "https://hooks.slack.com/abc"},
			wantTarget:  "https://hooks.slack.com/abc",
			wantEnabled: true,
		},
		{
			name:        "env default falls back to config",
			mode:        models.ChannelEnvDefault,
			configURL:   "https://hooks.example.com/config",
			wantTarget:  "https://hooks.example.com/config",
			wantEnabled: true,
		},
		{
			name:        "env default with nothing set",
			mode:        models.ChannelEnvDefault,
			wantEnabled: true,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WEBHOOK_URL", tt.env["WEBHOOK_URL"])
			t.Setenv("SLACK_WEBHOOK_URL", tt.env["SLACK_WEBHOOK_URL"])

			channel := newWebhookChannel(common.NotifyConfig{WebhookURL: tt.configURL})
			target, enabled, err := channel.Resolve(models.NotificationConfig{
				Webhook: models.WebhookConfig{Mode: tt.mode, URL: tt.url},
			})

			assert.Equal(t, tt.wantEnabled, enabled)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestWebhookSend(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel := newWebhookChannel(common.NotifyConfig{})
	results := sampleResults()
	summary := models.Summarize(results)

	err := channel.Send(context.Background(), server.URL, results, summary, "job_123")
	require.NoError(t, err)

	assert.Equal(t, "Test Suite Results: 1/2 Passed", received.Text)
	require.NotEmpty(t, received.Blocks)
	assert.Equal(t, "header", received.Blocks[0].Type)

	// Failures carry an attachment with name and error
	require.Len(t, received.Attachments, 1)
	require.Len(t, received.Attachments[0].Fields, 1)
	assert.Equal(t, "B", received.Attachments[0].Fields[0].Title)
	assert.Equal(t, "boom", received.Attachments[0].Fields[0].Value)
	assert.Equal(t, "#ff0000", received.Attachments[0].Color)
}

func TestWebhookSendAllPassedHasNoAttachments(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
	}))
	defer server.Close()

	channel := newWebhookChannel(common.NotifyConfig{})
	results := []models.ExecutionResult{{Name: "A", Status: models.StatusPassed, Duration: 100}}

	err := channel.Send(context.Background(), server.URL, results, models.Summarize(results), "job_123")
	require.NoError(t, err)
	assert.Empty(t, received.Attachments)
}

func TestWebhookSendNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	channel := newWebhookChannel(common.NotifyConfig{})
	results := sampleResults()

	err := channel.Send(context.Background(), server.URL, results, models.Summarize(results), "job_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestEmailResolve(t *testing.T) {
	tests := []struct {
		name        string
		config      models.EmailConfig
		env         string
		defaultTo   string
		wantTarget  string
		wantEnabled bool
		wantErr     bool
	}{
		{
			name:        "disabled",
			config:      models.EmailConfig{Mode: models.ChannelDisabled},
			wantEnabled: false,
		},
		{
			name:        "explicit single recipient",
			config:      models.EmailConfig{Mode: models.ChannelExplicit, Recipients: []string{"qa@example.com"}},
			wantTarget:  "qa@example.com",
			wantEnabled: true,
		},
		{
			name:        "explicit multiple recipients",
			config:      models.EmailConfig{Mode: models.ChannelExplicit, Recipients: []string{"a@example.com", "b@example.com"}},
			wantTarget:  "a@example.com,b@example.com",
			wantEnabled: true,
		},
		{
			name:        "env default",
			config:      models.EmailConfig{Mode: models.ChannelEnvDefault},
			env:         "team@example.com",
			wantTarget:  "team@example.com",
			wantEnabled: true,
		},
		{
			name:        "env default falls back to config",
			config:      models.EmailConfig{Mode: models.ChannelEnvDefault},
			defaultTo:   "fallback@example.com",
			wantTarget:  "fallback@example.com",
			wantEnabled: true,
		},
		{
			name:        "env default with nothing set",
			config:      models.EmailConfig{Mode: models.ChannelEnvDefault},
			wantEnabled: true,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EMAIL_TO", tt.env)

			channel := NewEmailChannel(common.NotifyConfig{EmailTo: tt.defaultTo}, arbor.NewLogger())
			target, enabled, err := channel.Resolve(models.NotificationConfig{Email: tt.config})

			assert.Equal(t, tt.wantEnabled, enabled)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestEmailSendRequiresSMTPConfig(t *testing.T) {
	channel := NewEmailChannel(common.NotifyConfig{}, arbor.NewLogger())
	results := sampleResults()

	err := channel.Send(context.Background(), "qa@example.com", results, models.Summarize(results), "job_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP host not configured")
}
