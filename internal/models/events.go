package models

import "time"

// StreamEventType identifies a progress event on the streaming channel
type StreamEventType string

const (
	EventConnected   StreamEventType = "connected"
	EventStep        StreamEventType = "step"
	EventComplete    StreamEventType = "complete"
	EventAllComplete StreamEventType = "all-complete"
)

// StreamEvent is one server-push progress event. Step events carry Message,
// complete events carry Result, all-complete events carry Results.
type StreamEvent struct {
	Type      StreamEventType   `json:"type"`
	JobID     string            `json:"jobId,omitempty"`
	Scenario  string            `json:"scenario,omitempty"`
	Message   string            `json:"message,omitempty"`
	Result    *ExecutionResult  `json:"result,omitempty"`
	Results   []ExecutionResult `json:"results,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
