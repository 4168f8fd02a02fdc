package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ternarybob/herrold/internal/models"
)

// formatDuration renders milliseconds in the most readable unit
func formatDuration(ms int64) string {
	switch {
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	case ms < 60000:
		return fmt.Sprintf("%.2fs", float64(ms)/1000)
	default:
		return fmt.Sprintf("%dm %ds", ms/60000, (ms%60000)/1000)
	}
}

// shortSummary is the one-line result digest used in logs and subjects
func shortSummary(summary models.Summary) string {
	rate := 0.0
	if summary.Total > 0 {
		rate = float64(summary.Passed) / float64(summary.Total) * 100
	}
	return fmt.Sprintf("Test results: %d/%d passed (%.1f%%) in %s",
		summary.Passed, summary.Total, rate, formatDuration(summary.TotalDuration))
}

// failedResults filters the result set down to failures
func failedResults(results []models.ExecutionResult) []models.ExecutionResult {
	var failed []models.ExecutionResult
	for _, r := range results {
		if !r.Passed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// emailSubject builds the notification subject line
func emailSubject(summary models.Summary) string {
	marker := "FAILED"
	if summary.Success() {
		marker = "PASSED"
	}
	return fmt.Sprintf("Test Suite Results: %d/%d Passed [%s]", summary.Passed, summary.Total, marker)
}

// textEmail renders the plain-text email body
func textEmail(results []models.ExecutionResult, summary models.Summary, jobID string) string {
	var b strings.Builder

	b.WriteString("TEST SUITE RESULTS\n==================\n")
	fmt.Fprintf(&b, "Job ID: %s\nTimestamp: %s\n\n", jobID, summary.Timestamp.Format(time.RFC3339))
	b.WriteString("SUMMARY\n-------\n")
	fmt.Fprintf(&b, "Total Tests: %d\nPassed: %d\nFailed: %d\nDuration: %s\n\n",
		summary.Total, summary.Passed, summary.Failed, formatDuration(summary.TotalDuration))
	b.WriteString("RESULTS\n-------\n")

	for _, r := range results {
		status := "[FAIL]"
		if r.Passed() {
			status = "[PASS]"
		}
		fmt.Fprintf(&b, "%s %s\n  Duration: %s\n", status, r.Name, formatDuration(r.Duration))
		if r.Error != "" {
			fmt.Fprintf(&b, "  Error: %s\n", r.Error)
		}
	}

	b.WriteString("\n--\nGenerated by Herrold Test Runner\n")
	return b.String()
}

// htmlEmail renders the HTML email body. Kept to the data contract: totals,
// duration, per-scenario status and failure errors, job id.
func htmlEmail(results []models.ExecutionResult, summary models.Summary, jobID string) string {
	var rows strings.Builder
	for _, r := range results {
		status := "FAILED"
		color := "#ef4444"
		if r.Passed() {
			status = "PASSED"
			color = "#10b981"
		}
		errCell := ""
		if r.Error != "" {
			errCell = fmt.Sprintf(`<div style="font-family: monospace; font-size: 12px;">%s</div>`, html.EscapeString(r.Error))
		}
		fmt.Fprintf(&rows, `<tr><td><strong>%s</strong></td><td style="color: %s;">%s</td><td>%s</td><td>%s</td></tr>`,
			html.EscapeString(r.Name), color, status, formatDuration(r.Duration), errCell)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
  <h1>Test Suite Results</h1>
  <p>Job ID: %s</p>
  <p><strong>Total:</strong> %d &nbsp; <strong>Passed:</strong> %d &nbsp; <strong>Failed:</strong> %d &nbsp; <strong>Duration:</strong> %s</p>
  <table border="1" cellpadding="8" style="border-collapse: collapse;">
    <thead><tr><th>Test Name</th><th>Status</th><th>Duration</th><th>Details</th></tr></thead>
    <tbody>%s</tbody>
  </table>
  <p style="font-size: 12px; color: #6b7280;">Generated by Herrold Test Runner at %s</p>
</body>
</html>`,
		html.EscapeString(jobID), summary.Total, summary.Passed, summary.Failed,
		formatDuration(summary.TotalDuration), rows.String(),
		summary.Timestamp.Format(time.RFC1123))
}

// splitRecipients splits a comma-separated recipient list
func splitRecipients(target string) []string {
	var out []string
	for _, part := range strings.Split(target, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
