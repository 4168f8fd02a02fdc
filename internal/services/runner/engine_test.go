package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/interfaces"
	"github.com/ternarybob/herrold/internal/models"
)

// fakeSession records teardown without touching a real browser
type fakeSession struct {
	closed     int
	closeErr   error
	currentURL string
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error            { return nil }
func (f *fakeSession) WaitVisible(ctx context.Context, selector string) error    { return nil }
func (f *fakeSession) Click(ctx context.Context, selector string) error          { return nil }
func (f *fakeSession) SendKeys(ctx context.Context, selector, text string) error { return nil }
func (f *fakeSession) Text(ctx context.Context, selector string) (string, error) {
	return "", nil
}
func (f *fakeSession) CurrentURL(ctx context.Context) (string, error) {
	return f.currentURL, nil
}
func (f *fakeSession) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("png"), nil
}
func (f *fakeSession) HTML(ctx context.Context) (string, error) {
	return "<html></html>", nil
}
func (f *fakeSession) PageState(ctx context.Context) (*models.PageState, error) {
	return &models.PageState{URL: f.currentURL}, nil
}
func (f *fakeSession) Close() error {
	f.closed++
	return f.closeErr
}

// fakeProvider hands out a canned session or fails to acquire
type fakeProvider struct {
	session    *fakeSession
	acquireErr error
	acquired   int
}

func (f *fakeProvider) Acquire(ctx context.Context) (interfaces.BrowserSession, error) {
	f.acquired++
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	return f.session, nil
}

// fakeCapturer records capture calls and returns a canned bundle
type fakeCapturer struct {
	bundle      models.ArtifactBundle
	captures    int
	lastSession interfaces.BrowserSession
	lastErr     error
	lastSteps   []string
	reports     []models.ExecutionResult
	reportErr   error
}

func (f *fakeCapturer) Capture(ctx context.Context, session interfaces.BrowserSession, scenarioName string, scenarioErr error, steps []string) models.ArtifactBundle {
	f.captures++
	f.lastSession = session
	f.lastErr = scenarioErr
	f.lastSteps = append([]string(nil), steps...)
	return f.bundle
}

func (f *fakeCapturer) WriteReport(result models.ExecutionResult) (string, error) {
	f.reports = append(f.reports, result)
	return "report.json", f.reportErr
}

func newTestEngine(provider *fakeProvider, capturer *fakeCapturer, timeout time.Duration) *Engine {
	return NewEngine(provider, capturer, timeout, arbor.NewLogger())
}

func passingScenario(name string) interfaces.ScenarioDescriptor {
	return interfaces.ScenarioDescriptor{
		Name:        name,
		Description: "always passes",
		Run: func(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
			step("doing work")
			return nil
		},
	}
}

func failingScenario(name, message string) interfaces.ScenarioDescriptor {
	return interfaces.ScenarioDescriptor{
		Name:        name,
		Description: "always fails",
		Run: func(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
			return errors.New(message)
		},
	}
}

func TestExecutePassedResult(t *testing.T) {
	session := &fakeSession{}
	provider := &fakeProvider{session: session}
	capturer := &fakeCapturer{}
	engine := newTestEngine(provider, capturer, 0)

	result := engine.Execute(context.Background(), passingScenario("Login"), nil)

	assert.Equal(t, "Login", result.Name)
	assert.Equal(t, models.StatusPassed, result.Status)
	assert.Empty(t, result.Error)
	assert.Nil(t, result.Artifacts)
	assert.GreaterOrEqual(t, result.Duration, int64(0))
	assert.Equal(t, 0, capturer.captures, "passing run must not capture artifacts")
	assert.Equal(t, 1, session.closed, "session must be torn down")
	require.Len(t, capturer.reports, 1, "every run writes a report")
	assert.True(t, capturer.reports[0].Passed())
}

func TestExecuteFailedResultCapturesArtifacts(t *testing.T) {
	session := &fakeSession{}
	provider := &fakeProvider{session: session}
	capturer := &fakeCapturer{bundle: models.ArtifactBundle{
		models.ArtifactScreenshot: "shot.png",
	}}
	engine := newTestEngine(provider, capturer, 0)

	result := engine.Execute(context.Background(), failingScenario("Search", "boom"), nil)

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Equal(t, "boom", result.Error)
	assert.Equal(t, "shot.png", result.Artifacts[models.ArtifactScreenshot])
	assert.Equal(t, 1, capturer.captures)
	assert.Same(t, session, capturer.lastSession)
	assert.EqualError(t, capturer.lastErr, "boom")
	assert.Equal(t, 1, session.closed)
}

func TestExecuteAcquireFailure(t *testing.T) {
	provider := &fakeProvider{acquireErr: errors.New("chrome did not start")}
	capturer := &fakeCapturer{}
	engine := newTestEngine(provider, capturer, 0)

	result := engine.Execute(context.Background(), passingScenario("Login"), nil)

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "failed to provision browser session")
	assert.Contains(t, result.Error, "chrome did not start")
	assert.Equal(t, 1, capturer.captures)
	assert.Nil(t, capturer.lastSession, "capture runs without a session")
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	session := &fakeSession{}
	provider := &fakeProvider{session: session}
	capturer := &fakeCapturer{}
	engine := newTestEngine(provider, capturer, 0)

	desc := interfaces.ScenarioDescriptor{
		Name:        "Panics",
		Description: "always panics",
		Run: func(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
			panic("nil dereference somewhere")
		},
	}

	result := engine.Execute(context.Background(), desc, nil)

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "scenario panicked")
	assert.Contains(t, result.Error, "nil dereference somewhere")
	assert.Equal(t, 1, session.closed, "panic must not leak the session")
}

func TestExecuteEnforcesTimeout(t *testing.T) {
	session := &fakeSession{}
	provider := &fakeProvider{session: session}
	capturer := &fakeCapturer{}
	engine := newTestEngine(provider, capturer, 50*time.Millisecond)

	desc := interfaces.ScenarioDescriptor{
		Name:        "Hangs",
		Description: "never finishes on its own",
		Run: func(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	result := engine.Execute(context.Background(), desc, nil)

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Equal(t, fmt.Sprintf("scenario timed out after %s", 50*time.Millisecond), result.Error)
}

func TestExecuteTeardownFailureDoesNotMaskResult(t *testing.T) {
	session := &fakeSession{closeErr: errors.New("browser already gone")}
	provider := &fakeProvider{session: session}
	capturer := &fakeCapturer{}
	engine := newTestEngine(provider, capturer, 0)

	result := engine.Execute(context.Background(), passingScenario("Login"), nil)

	assert.Equal(t, models.StatusPassed, result.Status)
	assert.Empty(t, result.Error)
}

func TestExecuteForwardsStepsInOrder(t *testing.T) {
	session := &fakeSession{}
	provider := &fakeProvider{session: session}
	capturer := &fakeCapturer{}
	engine := newTestEngine(provider, capturer, 0)

	desc := interfaces.ScenarioDescriptor{
		Name:        "Steps",
		Description: "emits progress",
		Run: func(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
			step("first")
			step("second")
			return nil
		},
	}

	var seen []string
	engine.Execute(context.Background(), desc, func(message string) {
		seen = append(seen, message)
	})

	require.GreaterOrEqual(t, len(seen), 4)
	assert.Equal(t, "Running test: Steps", seen[0])
	assert.Equal(t, "first", seen[1])
	assert.Equal(t, "second", seen[2])
	assert.Equal(t, `Test "Steps" passed`, seen[3])
}

func TestExecuteBuffersStepsForErrorLog(t *testing.T) {
	session := &fakeSession{}
	provider := &fakeProvider{session: session}
	capturer := &fakeCapturer{}
	engine := newTestEngine(provider, capturer, 0)

	desc := interfaces.ScenarioDescriptor{
		Name:        "Buffered",
		Description: "fails after progress",
		Run: func(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
			step("navigated to login")
			return errors.New("button never appeared")
		},
	}

	engine.Execute(context.Background(), desc, nil)

	require.Equal(t, 1, capturer.captures)
	require.NotEmpty(t, capturer.lastSteps)
	joined := fmt.Sprint(capturer.lastSteps)
	assert.Contains(t, joined, "navigated to login")
	assert.Contains(t, joined, "button never appeared")
}
