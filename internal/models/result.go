package models

import "time"

// Status is the terminal state of a single scenario run
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// ArtifactKind names a diagnostic artifact captured on scenario failure
type ArtifactKind string

const (
	ArtifactScreenshot ArtifactKind = "screenshot"
	ArtifactHTML       ArtifactKind = "html"
	ArtifactErrorLog   ArtifactKind = "errorLog"
	ArtifactPageState  ArtifactKind = "pageState"
)

// ArtifactBundle maps artifact kinds to storage locators. Created only on
// failure, write-once.
type ArtifactBundle map[ArtifactKind]string

// ExecutionResult is the uniform record every scenario run produces,
// regardless of how it fails. Error is set iff Status is failed. Never
// mutated after creation.
type ExecutionResult struct {
	Name      string         `json:"name"`
	Status    Status         `json:"status"`
	Duration  int64          `json:"duration"` // wall-clock milliseconds
	Error     string         `json:"error,omitempty"`
	Artifacts ArtifactBundle `json:"artifacts,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Passed reports whether the run succeeded
func (r ExecutionResult) Passed() bool {
	return r.Status == StatusPassed
}

// Summary aggregates a result set for notification and logging
type Summary struct {
	Total         int       `json:"total"`
	Passed        int       `json:"passed"`
	Failed        int       `json:"failed"`
	TotalDuration int64     `json:"duration"` // milliseconds
	Timestamp     time.Time `json:"timestamp"`
}

// Success reports whether every scenario in the set passed
func (s Summary) Success() bool {
	return s.Failed == 0
}

// Summarize computes aggregate counts over a result set
func Summarize(results []ExecutionResult) Summary {
	summary := Summary{Timestamp: time.Now().UTC()}
	for _, r := range results {
		summary.Total++
		summary.TotalDuration += r.Duration
		if r.Passed() {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// PageState is a diagnostic snapshot of the browser page at failure time
type PageState struct {
	URL            string            `json:"url"`
	Title          string            `json:"title"`
	Cookies        []Cookie          `json:"cookies"`
	LocalStorage   map[string]string `json:"localStorage"`
	SessionStorage map[string]string `json:"sessionStorage"`
}

// Cookie is a browser cookie captured in a page-state snapshot
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	HTTPOnly bool   `json:"httpOnly"`
	Secure   bool   `json:"secure"`
}

// ScenarioInfo is registry metadata exposed without the executable body
type ScenarioInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
