// -----------------------------------------------------------------------
// Scenario Execution Engine - one isolated run, one normalized result
// -----------------------------------------------------------------------

package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/interfaces"
	"github.com/ternarybob/herrold/internal/models"
)

// ArtifactCapturer gathers failure diagnostics and writes per-run reports
type ArtifactCapturer interface {
	Capture(ctx context.Context, session interfaces.BrowserSession, scenarioName string, scenarioErr error, steps []string) models.ArtifactBundle
	WriteReport(result models.ExecutionResult) (string, error)
}

// Engine runs one scenario end-to-end: provisions an isolated session,
// invokes the body, enforces the per-scenario timeout, captures failure
// artifacts and produces a normalized result. Errors inside a scenario
// never propagate past this boundary - every run yields an ExecutionResult.
type Engine struct {
	provider  interfaces.SessionProvider
	artifacts ArtifactCapturer
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewEngine creates an execution engine. A zero timeout disables the
// per-scenario hard cap.
func NewEngine(provider interfaces.SessionProvider, artifacts ArtifactCapturer, timeout time.Duration, logger arbor.ILogger) *Engine {
	return &Engine{
		provider:  provider,
		artifacts: artifacts,
		timeout:   timeout,
		logger:    logger,
	}
}

// Execute runs one scenario to completion. onStep, when non-nil, receives
// every progress line in emission order, in addition to normal logging.
func (e *Engine) Execute(ctx context.Context, desc interfaces.ScenarioDescriptor, onStep interfaces.StepSink) models.ExecutionResult {
	start := time.Now()

	// Progress lines are both forwarded live and buffered for the error log
	var steps []string
	emit := func(message string) {
		steps = append(steps, fmt.Sprintf("[LOG] %s - %s", time.Now().UTC().Format(time.RFC3339), message))
		e.logger.Info().Str("scenario", desc.Name).Msg(message)
		if onStep != nil {
			onStep(message)
		}
	}

	result := models.ExecutionResult{
		Name:      desc.Name,
		Timestamp: start,
	}

	emit(fmt.Sprintf("Running test: %s", desc.Name))

	session, err := e.provider.Acquire(ctx)
	if err != nil {
		result.Status = models.StatusFailed
		result.Error = fmt.Sprintf("failed to provision browser session: %v", err)
		result.Duration = time.Since(start).Milliseconds()
		emit(fmt.Sprintf("Test %q failed: %s", desc.Name, result.Error))
		result.Artifacts = e.artifacts.Capture(ctx, nil, desc.Name, err, steps)
		e.writeReport(result)
		return result
	}

	// Teardown on every exit path. A teardown failure is logged, never
	// allowed to mask the run's outcome.
	defer func() {
		if err := session.Close(); err != nil {
			e.logger.Warn().Err(err).Str("scenario", desc.Name).Msg("Browser session teardown failed")
		}
	}()

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	scenarioErr := e.invoke(runCtx, desc, session, emit)
	result.Duration = time.Since(start).Milliseconds()

	if scenarioErr == nil {
		result.Status = models.StatusPassed
		emit(fmt.Sprintf("Test %q passed", desc.Name))
		e.writeReport(result)
		return result
	}

	if runCtx.Err() == context.DeadlineExceeded {
		scenarioErr = fmt.Errorf("scenario timed out after %s", e.timeout)
	}

	result.Status = models.StatusFailed
	result.Error = scenarioErr.Error()
	emit(fmt.Sprintf("Test %q failed: %s", desc.Name, result.Error))

	// Diagnostics are best-effort; capture failures stay inside Capture
	result.Artifacts = e.artifacts.Capture(ctx, session, desc.Name, scenarioErr, steps)
	e.writeReport(result)
	return result
}

// invoke runs the scenario body, converting a panic into a failure so a
// misbehaving scenario cannot take down the whole suite
func (e *Engine) invoke(ctx context.Context, desc interfaces.ScenarioDescriptor, session interfaces.BrowserSession, step interfaces.StepSink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scenario panicked: %v", r)
		}
	}()
	return desc.Run(ctx, session, step)
}

func (e *Engine) writeReport(result models.ExecutionResult) {
	if path, err := e.artifacts.WriteReport(result); err != nil {
		e.logger.Warn().Err(err).Str("scenario", result.Name).Msg("Failed to write run report")
	} else {
		e.logger.Debug().Str("path", path).Msg("Run report written")
	}
}
