package interfaces

import (
	"context"

	"github.com/ternarybob/herrold/internal/models"
)

// StepSink receives human-readable progress lines emitted during a scenario
// run, in emission order. Implementations must be safe for sequential use;
// the engine never calls a sink concurrently.
type StepSink func(message string)

// BrowserSession is one isolated browser execution context (cookies,
// storage, tabs) used by exactly one scenario run. Scenarios never construct
// sessions directly; the execution engine acquires one per run and is the
// only component that closes it.
type BrowserSession interface {
	// Navigate loads a URL and waits for the document to become ready
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until the selector matches a visible node
	WaitVisible(ctx context.Context, selector string) error
	// Click clicks the first visible node matching the selector
	Click(ctx context.Context, selector string) error
	// SendKeys types text into the node matching the selector
	SendKeys(ctx context.Context, selector, text string) error
	// Text returns the text content of the node matching the selector
	Text(ctx context.Context, selector string) (string, error)
	// CurrentURL returns the page's current address
	CurrentURL(ctx context.Context) (string, error)
	// Screenshot captures a full-page PNG
	Screenshot(ctx context.Context) ([]byte, error)
	// HTML returns the serialized page markup
	HTML(ctx context.Context) (string, error)
	// PageState snapshots address, title, cookies and web storage
	PageState(ctx context.Context) (*models.PageState, error)
	// Close tears the session down. Safe to call more than once.
	Close() error
}

// SessionProvider acquires isolated browser sessions. One session per
// scenario run; no reuse across runs.
type SessionProvider interface {
	Acquire(ctx context.Context) (BrowserSession, error)
}

// AsyncScenario is the opaque scenario body supplied by the scripting
// layer. A returned error signals failure; nil signals success. The core
// never inspects the body's internals.
type AsyncScenario func(ctx context.Context, session BrowserSession, step StepSink) error

// ScenarioDescriptor is one named test scenario. Name is the only
// addressing mechanism; it is unique within a loaded registry.
type ScenarioDescriptor struct {
	Name        string
	Description string
	Run         AsyncScenario
}

// Valid reports whether the descriptor can be registered. Definitions
// lacking a name, description or body are skipped at load time.
func (d ScenarioDescriptor) Valid() bool {
	return d.Name != "" && d.Description != "" && d.Run != nil
}

// ScenarioSource is the backing store the registry re-scans on every load
// (supports hot reload of scenario definitions during development).
type ScenarioSource interface {
	Scenarios() []ScenarioDescriptor
}

// ScenarioRegistry discovers and addresses the loaded scenario set
type ScenarioRegistry interface {
	// Load re-scans the backing source, replacing the loaded set. Returns
	// an error when the source yields no valid scenarios.
	Load() ([]ScenarioDescriptor, error)
	// List returns metadata only, in registry order
	List() []models.ScenarioInfo
	// Get looks a scenario up by name in the currently loaded set
	Get(name string) (ScenarioDescriptor, bool)
}

// NotificationDispatcher validates channel configuration and fans results
// out to every enabled channel
type NotificationDispatcher interface {
	Validate(config models.NotificationConfig) models.ValidationResult
	Dispatch(ctx context.Context, results []models.ExecutionResult, config models.NotificationConfig, jobID string) models.DispatchReport
}

// EventBroadcaster pushes progress events to connected streaming clients
type EventBroadcaster interface {
	Broadcast(event models.StreamEvent)
}
