// -----------------------------------------------------------------------
// Suite Orchestrator - sequential scenario runs over the live registry
// -----------------------------------------------------------------------

package runner

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/interfaces"
	"github.com/ternarybob/herrold/internal/models"
)

// notFoundError is the uniform error text for a selected scenario that does
// not exist in the registry
const notFoundError = "Test case not found"

// EventSink receives orchestration progress events: one step event per
// progress line, one complete event per scenario, one all-complete event
// per suite run.
type EventSink func(event models.StreamEvent)

// Orchestrator runs scenario sets strictly sequentially. One browser
// session, one site-login state at a time: the next scenario never starts
// before the previous result has fully settled.
type Orchestrator struct {
	registry interfaces.ScenarioRegistry
	engine   *Engine
	logger   arbor.ILogger
}

// NewOrchestrator creates a suite orchestrator
func NewOrchestrator(registry interfaces.ScenarioRegistry, engine *Engine, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		engine:   engine,
		logger:   logger,
	}
}

// RunAll reloads the registry and runs every scenario in registry order.
// The reload happens at call time, so the run reflects the registry's
// current contents rather than a cached list.
func (o *Orchestrator) RunAll(ctx context.Context, onEvent EventSink) ([]models.ExecutionResult, error) {
	descriptors, err := o.registry.Load()
	if err != nil {
		return nil, err
	}

	results := make([]models.ExecutionResult, 0, len(descriptors))
	for _, desc := range descriptors {
		results = append(results, o.runScenario(ctx, desc, onEvent))
	}

	o.emitAllComplete(onEvent, results)
	return results, nil
}

// RunSelection reloads the registry and runs the named scenarios in the
// order given. A name that matches nothing yields a failed placeholder
// result, never an omission: the result count always equals the selection
// count.
func (o *Orchestrator) RunSelection(ctx context.Context, names []string, onEvent EventSink) ([]models.ExecutionResult, error) {
	if _, err := o.registry.Load(); err != nil {
		return nil, err
	}

	results := make([]models.ExecutionResult, 0, len(names))
	for _, name := range names {
		desc, ok := o.registry.Get(name)
		if !ok {
			o.logger.Warn().Str("scenario", name).Msg("Requested scenario not found in registry")
			result := notFoundResult(name)
			o.emitComplete(onEvent, result)
			results = append(results, result)
			continue
		}
		results = append(results, o.runScenario(ctx, desc, onEvent))
	}

	o.emitAllComplete(onEvent, results)
	return results, nil
}

// RunOne is the single-scenario convenience. An unknown name returns a
// failed placeholder result rather than an error.
func (o *Orchestrator) RunOne(ctx context.Context, name string, onEvent EventSink) models.ExecutionResult {
	if _, err := o.registry.Load(); err != nil {
		o.logger.Error().Err(err).Msg("Scenario registry reload failed")
		result := models.ExecutionResult{
			Name:      name,
			Status:    models.StatusFailed,
			Error:     err.Error(),
			Timestamp: time.Now(),
		}
		o.emitComplete(onEvent, result)
		return result
	}

	desc, ok := o.registry.Get(name)
	if !ok {
		result := notFoundResult(name)
		o.emitComplete(onEvent, result)
		return result
	}
	return o.runScenario(ctx, desc, onEvent)
}

// runScenario executes one scenario, bridging engine step lines into
// stream events
func (o *Orchestrator) runScenario(ctx context.Context, desc interfaces.ScenarioDescriptor, onEvent EventSink) models.ExecutionResult {
	var onStep interfaces.StepSink
	if onEvent != nil {
		scenario := desc.Name
		onStep = func(message string) {
			onEvent(models.StreamEvent{
				Type:      models.EventStep,
				Scenario:  scenario,
				Message:   message,
				Timestamp: time.Now(),
			})
		}
	}

	result := o.engine.Execute(ctx, desc, onStep)
	o.emitComplete(onEvent, result)
	return result
}

func (o *Orchestrator) emitComplete(onEvent EventSink, result models.ExecutionResult) {
	if onEvent == nil {
		return
	}
	r := result
	onEvent(models.StreamEvent{
		Type:      models.EventComplete,
		Scenario:  result.Name,
		Result:    &r,
		Timestamp: time.Now(),
	})
}

func (o *Orchestrator) emitAllComplete(onEvent EventSink, results []models.ExecutionResult) {
	if onEvent == nil {
		return
	}
	onEvent(models.StreamEvent{
		Type:      models.EventAllComplete,
		Results:   results,
		Timestamp: time.Now(),
	})
}

func notFoundResult(name string) models.ExecutionResult {
	return models.ExecutionResult{
		Name:      name,
		Status:    models.StatusFailed,
		Error:     notFoundError,
		Duration:  0,
		Timestamp: time.Now(),
	}
}
