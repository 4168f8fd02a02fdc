// -----------------------------------------------------------------------
// Artifact Store - failure diagnostics on disk, partitioned by kind
// -----------------------------------------------------------------------

package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/models"
)

const (
	screenshotsDir = "screenshots"
	logsDir        = "logs"
	reportsDir     = "reports"
)

// Service persists failure artifacts and per-run reports under a base
// directory partitioned into screenshots/, logs/ and reports/. Writes are
// sequential and files are named to sort lexically by time, so no locking
// is needed.
type Service struct {
	baseDir       string
	retentionDays int
	targetURL     string
	logger        arbor.ILogger
}

// NewService creates the artifact store and its directory layout
func NewService(config common.ArtifactsConfig, targetURL string, logger arbor.ILogger) (*Service, error) {
	s := &Service{
		baseDir:       config.Dir,
		retentionDays: config.RetentionDays,
		targetURL:     targetURL,
		logger:        logger,
	}
	if s.retentionDays <= 0 {
		s.retentionDays = 7
	}

	for _, dir := range []string{screenshotsDir, logsDir, reportsDir} {
		if err := os.MkdirAll(filepath.Join(s.baseDir, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// BaseDir returns the artifact storage root
func (s *Service) BaseDir() string {
	return s.baseDir
}

// fileName builds the deterministic artifact file name:
// {scenarioName}_{ISO8601 timestamp with ':' and '.' replaced}_{kind}.{ext}
// Names collide neither across repeated runs nor across kinds, and sort
// lexically by capture time.
func fileName(scenarioName string, ts time.Time, kind, ext string) string {
	name := strings.Join(strings.Fields(scenarioName), "-")
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(ts.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	return fmt.Sprintf("%s_%s_%s.%s", name, stamp, kind, ext)
}

// write persists one artifact file and returns its path
func (s *Service) write(dir, name string, data []byte) (string, error) {
	path := filepath.Join(s.baseDir, dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// runReport is the JSON report written once per scenario run
type runReport struct {
	TestName    string                `json:"testName"`
	Success     bool                  `json:"success"`
	Duration    int64                 `json:"duration"`
	Timestamp   string                `json:"timestamp"`
	Artifacts   models.ArtifactBundle `json:"artifacts"`
	Environment map[string]string     `json:"environment"`
}

// WriteReport persists the per-run JSON report. Reports are written for
// every run, pass or fail.
func (s *Service) WriteReport(result models.ExecutionResult) (string, error) {
	ts := result.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	report := runReport{
		TestName:  result.Name,
		Success:   result.Passed(),
		Duration:  result.Duration,
		Timestamp: ts.UTC().Format(time.RFC3339),
		Artifacts: result.Artifacts,
		Environment: map[string]string{
			"go":       runtime.Version(),
			"platform": runtime.GOOS,
			"target":   s.targetURL,
		},
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run report: %w", err)
	}

	path, err := s.write(reportsDir, fileName(result.Name, ts, "report", "json"), data)
	if err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}
	return path, nil
}

// CleanupExpired deletes artifact files older than the retention window.
// Called once at process startup. Returns the number of files removed.
func (s *Service) CleanupExpired() (int, error) {
	cutoff := time.Now().Add(-time.Duration(s.retentionDays) * 24 * time.Hour)
	removed := 0

	for _, dir := range []string{screenshotsDir, logsDir, reportsDir} {
		entries, err := os.ReadDir(filepath.Join(s.baseDir, dir))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("failed to scan artifact directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				path := filepath.Join(s.baseDir, dir, entry.Name())
				if err := os.Remove(path); err != nil {
					s.logger.Warn().Err(err).Str("file", path).Msg("Failed to delete expired artifact")
					continue
				}
				removed++
				s.logger.Debug().Str("file", entry.Name()).Msg("Deleted expired artifact")
			}
		}
	}

	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Int("retention_days", s.retentionDays).
			Msg("Expired artifacts cleaned up")
	}
	return removed, nil
}
