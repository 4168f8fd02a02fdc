package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/herrold/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0ms"},
		{850, "850ms"},
		{1000, "1.00s"},
		{4250, "4.25s"},
		{60000, "1m 0s"},
		{125000, "2m 5s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.ms))
	}
}

func TestEmailSubject(t *testing.T) {
	passed := models.Summary{Total: 4, Passed: 4}
	assert.Equal(t, "Test Suite Results: 4/4 Passed [PASSED]", emailSubject(passed))

	failed := models.Summary{Total: 4, Passed: 3, Failed: 1}
	assert.Equal(t, "Test Suite Results: 3/4 Passed [FAILED]", emailSubject(failed))
}

func TestSplitRecipients(t *testing.T) {
	tests := []struct {
		target string
		want   []string
	}{
		{"a@example.com", []string{"a@example.com"}},
		{"a@example.com, b@example.com", []string{"a@example.com", "b@example.com"}},
		{"a@example.com,,b@example.com", []string{"a@example.com", "b@example.com"}},
		{" ", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, splitRecipients(tt.target))
	}
}

func TestTextEmailContent(t *testing.T) {
	results := sampleResults()
	summary := models.Summarize(results)
	summary.Timestamp = time.Date(2026, 1, 15, 6, 0, 0, 0, time.UTC)

	body := textEmail(results, summary, "job_abc")

	assert.Contains(t, body, "Job ID: job_abc")
	assert.Contains(t, body, "Total Tests: 2")
	assert.Contains(t, body, "[PASS] A")
	assert.Contains(t, body, "[FAIL] B")
	assert.Contains(t, body, "Error: boom")
}

func TestHTMLEmailEscapesContent(t *testing.T) {
	results := []models.ExecutionResult{
		{Name: "A <script>", Status: models.StatusFailed, Error: `selector "<div>" not found`},
	}
	summary := models.Summarize(results)

	body := htmlEmail(results, summary, "job_abc")

	assert.NotContains(t, body, "A <script>")
	assert.Contains(t, body, "A &lt;script&gt;")
	assert.Contains(t, body, "&lt;div&gt;")
}

func TestFailedResults(t *testing.T) {
	failed := failedResults(sampleResults())
	assert.Len(t, failed, 1)
	assert.Equal(t, "B", failed[0].Name)

	assert.Empty(t, failedResults(nil))
}
