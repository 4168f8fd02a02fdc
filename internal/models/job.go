package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChannelMode is the tagged variant a channel configuration normalizes to.
// The request wire format is duck-typed (string | bool | object); parsing
// reduces it to exactly one of these before anything else touches it.
type ChannelMode string

const (
	ChannelDisabled   ChannelMode = "disabled"
	ChannelExplicit   ChannelMode = "explicit"    // target carried in the request
	ChannelEnvDefault ChannelMode = "env-default" // target resolved from process config at send time
)

// EmailConfig configures the email notification channel
type EmailConfig struct {
	Mode       ChannelMode
	Recipients []string // populated only for ChannelExplicit
}

// Enabled reports whether the channel should be dispatched to
func (c EmailConfig) Enabled() bool {
	return c.Mode == ChannelExplicit || c.Mode == ChannelEnvDefault
}

// UnmarshalJSON accepts the three request shapes:
// "a@b.com" | true | {"enabled": true, "to": "a@b.com" | ["a@b.com", ...]}
func (c *EmailConfig) UnmarshalJSON(data []byte) error {
	*c = EmailConfig{Mode: ChannelDisabled}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		c.Mode = ChannelExplicit
		c.Recipients = []string{asString}
		return nil
	}

	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		if asBool {
			c.Mode = ChannelEnvDefault
		}
		return nil
	}

	var asObject struct {
		Enabled bool            `json:"enabled"`
		To      json.RawMessage `json:"to"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return fmt.Errorf("invalid email notification config: %w", err)
	}
	if !asObject.Enabled {
		return nil
	}
	if len(asObject.To) == 0 || string(asObject.To) == "null" {
		c.Mode = ChannelEnvDefault
		return nil
	}

	var to string
	if err := json.Unmarshal(asObject.To, &to); err == nil {
		c.Mode = ChannelExplicit
		c.Recipients = []string{to}
		return nil
	}
	var toList []string
	if err := json.Unmarshal(asObject.To, &toList); err != nil {
		return fmt.Errorf(`email "to" field must be a string or array`)
	}
	c.Mode = ChannelExplicit
	c.Recipients = toList
	return nil
}

// WebhookConfig configures the webhook notification channel
type WebhookConfig struct {
	Mode ChannelMode
	URL  string // populated only for ChannelExplicit
}

// Enabled reports whether the channel should be dispatched to
func (c WebhookConfig) Enabled() bool {
	return c.Mode == ChannelExplicit || c.Mode == ChannelEnvDefault
}

// UnmarshalJSON accepts the three request shapes:
// "https://..." | true | {"enabled": true, "url": "https://..."}
func (c *WebhookConfig) UnmarshalJSON(data []byte) error {
	*c = WebhookConfig{Mode: ChannelDisabled}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		c.Mode = ChannelExplicit
		c.URL = asString
		return nil
	}

	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		if asBool {
			c.Mode = ChannelEnvDefault
		}
		return nil
	}

	var asObject struct {
		Enabled bool   `json:"enabled"`
		URL     string `json:"url"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return fmt.Errorf("invalid webhook notification config: %w", err)
	}
	if !asObject.Enabled {
		return nil
	}
	if asObject.URL == "" {
		c.Mode = ChannelEnvDefault
		return nil
	}
	c.Mode = ChannelExplicit
	c.URL = asObject.URL
	return nil
}

// NotificationConfig is the per-channel configuration carried by a job
// request. Channels are dispatched independently of each other.
type NotificationConfig struct {
	Email   EmailConfig   `json:"email"`
	Webhook WebhookConfig `json:"webhook"`
}

// AnyEnabled reports whether at least one channel is enabled
func (c NotificationConfig) AnyEnabled() bool {
	return c.Email.Enabled() || c.Webhook.Enabled()
}

// JobRequest is one accepted run request. JobID is generated at acceptance
// time; there is no other persisted job record.
type JobRequest struct {
	JobID         string             `json:"jobId"`
	Tests         []string           `json:"tests"` // empty means "all"
	All           bool               `json:"all"`
	Notifications NotificationConfig `json:"notifications"`
	AcceptedAt    time.Time          `json:"acceptedAt"`
}

// TriggerResponse is the synchronous reply to a trigger request
type TriggerResponse struct {
	Success bool     `json:"success"`
	JobID   string   `json:"jobId,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidationResult is the outcome of notification config pre-flight checks
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ChannelOutcome records one channel's dispatch result, independent of the
// other channels
type ChannelOutcome struct {
	Channel string `json:"channel"`
	Target  string `json:"target,omitempty"`
	Status  string `json:"status"` // "sent" or "error"
	Error   string `json:"error,omitempty"`
}

// DispatchReport is the aggregate outcome of notification dispatch for one
// job. Success is true only if every enabled channel's send succeeded.
type DispatchReport struct {
	JobID    string           `json:"jobId"`
	Success  bool             `json:"success"`
	Summary  Summary          `json:"summary"`
	Channels []ChannelOutcome `json:"channels"`
}
