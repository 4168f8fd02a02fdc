package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/herrold/internal/interfaces"
	"github.com/ternarybob/herrold/internal/models"
)

// Capture gathers failure diagnostics from the session: full-page
// screenshot, serialized markup, page-state snapshot and a textual error
// log. Each capture is attempted independently; a failure gathering one
// artifact never prevents the others and never escalates past this
// boundary - the scenario's original error is the only error the caller
// sees.
func (s *Service) Capture(ctx context.Context, session interfaces.BrowserSession, scenarioName string, scenarioErr error, steps []string) models.ArtifactBundle {
	bundle := models.ArtifactBundle{}
	ts := time.Now()

	currentURL := "N/A"
	if session != nil {
		if url, err := session.CurrentURL(ctx); err == nil {
			currentURL = url
		}
	}

	if session != nil {
		if png, err := session.Screenshot(ctx); err != nil {
			s.logger.Warn().Err(err).Str("scenario", scenarioName).Msg("Failed to capture screenshot")
		} else if path, err := s.write(screenshotsDir, fileName(scenarioName, ts, "failure", "png"), png); err != nil {
			s.logger.Warn().Err(err).Str("scenario", scenarioName).Msg("Failed to save screenshot")
		} else {
			bundle[models.ArtifactScreenshot] = path
			s.logger.Debug().Str("path", path).Msg("Screenshot saved")
		}

		if html, err := session.HTML(ctx); err != nil {
			s.logger.Warn().Err(err).Str("scenario", scenarioName).Msg("Failed to capture page markup")
		} else if path, err := s.write(logsDir, fileName(scenarioName, ts, "page", "html"), []byte(html)); err != nil {
			s.logger.Warn().Err(err).Str("scenario", scenarioName).Msg("Failed to save page markup")
		} else {
			bundle[models.ArtifactHTML] = path
			s.logger.Debug().Str("path", path).Msg("Page markup saved")
		}

		if state, err := session.PageState(ctx); err != nil {
			s.logger.Warn().Err(err).Str("scenario", scenarioName).Msg("Failed to capture page state")
		} else if data, err := json.MarshalIndent(state, "", "  "); err != nil {
			s.logger.Warn().Err(err).Str("scenario", scenarioName).Msg("Failed to marshal page state")
		} else if path, err := s.write(logsDir, fileName(scenarioName, ts, "state", "json"), data); err != nil {
			s.logger.Warn().Err(err).Str("scenario", scenarioName).Msg("Failed to save page state")
		} else {
			bundle[models.ArtifactPageState] = path
			s.logger.Debug().Str("path", path).Msg("Page state saved")
		}
	}

	// The error log is always attempted, session or not
	logContent := s.formatErrorLog(scenarioName, scenarioErr, currentURL, steps, ts)
	if path, err := s.write(logsDir, fileName(scenarioName, ts, "error", "log"), []byte(logContent)); err != nil {
		s.logger.Warn().Err(err).Str("scenario", scenarioName).Msg("Failed to save error log")
	} else {
		bundle[models.ArtifactErrorLog] = path
		s.logger.Debug().Str("path", path).Msg("Error log saved")
	}

	if len(bundle) == 0 {
		return nil
	}
	return bundle
}

// formatErrorLog renders the textual failure log: error, address at
// failure, and the buffered progress lines in emission order
func (s *Service) formatErrorLog(scenarioName string, scenarioErr error, currentURL string, steps []string, ts time.Time) string {
	var b strings.Builder
	divider := strings.Repeat("=", 40)

	fmt.Fprintf(&b, "%s\nTest: %s\nTimestamp: %s\n%s\n\n", divider, scenarioName, ts.UTC().Format(time.RFC3339), divider)

	b.WriteString("ERROR:\n")
	if scenarioErr != nil {
		b.WriteString(scenarioErr.Error())
	} else {
		b.WriteString("unknown error")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "URL at failure: %s\n\n", currentURL)

	b.WriteString("PROGRESS LOG:\n")
	for _, line := range steps {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n" + divider + "\n")
	return b.String()
}
