package artifacts

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/herrold/internal/models"
)

// captureSession is a browser session fake whose diagnostic calls can fail
// selectively
type captureSession struct {
	url           string
	screenshotErr error
	htmlErr       error
	stateErr      error
}

func (s *captureSession) Navigate(ctx context.Context, url string) error            { return nil }
func (s *captureSession) WaitVisible(ctx context.Context, selector string) error    { return nil }
func (s *captureSession) Click(ctx context.Context, selector string) error          { return nil }
func (s *captureSession) SendKeys(ctx context.Context, selector, text string) error { return nil }
func (s *captureSession) Text(ctx context.Context, selector string) (string, error) { return "", nil }
func (s *captureSession) Close() error                                              { return nil }

func (s *captureSession) CurrentURL(ctx context.Context) (string, error) {
	return s.url, nil
}

func (s *captureSession) Screenshot(ctx context.Context) ([]byte, error) {
	if s.screenshotErr != nil {
		return nil, s.screenshotErr
	}
	return []byte("png-bytes"), nil
}

func (s *captureSession) HTML(ctx context.Context) (string, error) {
	if s.htmlErr != nil {
		return "", s.htmlErr
	}
	return "<html><body>failure page</body></html>", nil
}

func (s *captureSession) PageState(ctx context.Context) (*models.PageState, error) {
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	return &models.PageState{
		URL:   s.url,
		Title: "Handraise",
	}, nil
}

func TestCaptureFullBundle(t *testing.T) {
	svc := newTestService(t)
	session := &captureSession{url: "https://app.handraise.test/login"}

	bundle := svc.Capture(context.Background(), session, "Login Flow",
		errors.New("submit button never appeared"),
		[]string{"[LOG] 2026-01-01T00:00:00Z - navigated to login page"})

	require.Len(t, bundle, 4)
	for _, kind := range []models.ArtifactKind{
		models.ArtifactScreenshot,
		models.ArtifactHTML,
		models.ArtifactPageState,
		models.ArtifactErrorLog,
	} {
		path, ok := bundle[kind]
		require.True(t, ok, "missing artifact %s", kind)
		_, err := os.Stat(path)
		assert.NoError(t, err, "artifact %s not on disk", kind)
	}
}

func TestCaptureErrorLogContent(t *testing.T) {
	svc := newTestService(t)
	session := &captureSession{url: "https://app.handraise.test/newsfeed"}

	bundle := svc.Capture(context.Background(), session, "Search Newsfeed",
		errors.New("filter panel never appeared"),
		[]string{
			"[LOG] 2026-01-01T00:00:00Z - opened newsfeed",
			"[LOG] 2026-01-01T00:00:05Z - typed search query",
		})

	data, err := os.ReadFile(bundle[models.ArtifactErrorLog])
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Test: Search Newsfeed")
	assert.Contains(t, content, "ERROR:\nfilter panel never appeared")
	assert.Contains(t, content, "URL at failure: https://app.handraise.test/newsfeed")
	assert.Contains(t, content, "PROGRESS LOG:")
	assert.Contains(t, content, "opened newsfeed")
	assert.Contains(t, content, "typed search query")
}

func TestCapturePartialFailureKeepsOtherArtifacts(t *testing.T) {
	svc := newTestService(t)
	session := &captureSession{
		url:           "https://app.handraise.test",
		screenshotErr: errors.New("tab already closed"),
	}

	bundle := svc.Capture(context.Background(), session, "Login", errors.New("boom"), nil)

	_, hasScreenshot := bundle[models.ArtifactScreenshot]
	assert.False(t, hasScreenshot, "failed capture must not appear in the bundle")
	assert.Contains(t, bundle, models.ArtifactHTML)
	assert.Contains(t, bundle, models.ArtifactPageState)
	assert.Contains(t, bundle, models.ArtifactErrorLog)
}

func TestCaptureWithoutSession(t *testing.T) {
	svc := newTestService(t)

	bundle := svc.Capture(context.Background(), nil, "Login",
		errors.New("failed to provision browser session"), nil)

	require.Len(t, bundle, 1, "only the error log is possible without a session")
	require.Contains(t, bundle, models.ArtifactErrorLog)

	data, err := os.ReadFile(bundle[models.ArtifactErrorLog])
	require.NoError(t, err)
	assert.Contains(t, string(data), "URL at failure: N/A")
}
