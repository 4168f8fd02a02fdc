// -----------------------------------------------------------------------
// Application wiring - builds every service and handler in dependency order
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/handlers"
	"github.com/ternarybob/herrold/internal/interfaces"
	"github.com/ternarybob/herrold/internal/scenarios"
	"github.com/ternarybob/herrold/internal/services/artifacts"
	"github.com/ternarybob/herrold/internal/services/browser"
	"github.com/ternarybob/herrold/internal/services/notify"
	"github.com/ternarybob/herrold/internal/services/registry"
	"github.com/ternarybob/herrold/internal/services/runner"
	"github.com/ternarybob/herrold/internal/services/scheduler"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Scenario discovery
	Registry interfaces.ScenarioRegistry

	// Execution pipeline
	Provider     interfaces.SessionProvider
	Artifacts    *artifacts.Service
	Engine       *runner.Engine
	Orchestrator *runner.Orchestrator

	// Result delivery
	Notifier  interfaces.NotificationDispatcher
	Scheduler *scheduler.Service

	// HTTP handlers
	APIHandler *handlers.APIHandler
	JobHandler *handlers.JobHandler
	WSHandler  *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Artifact store first: every failed run writes diagnostics through it
	artifactService, err := artifacts.NewService(cfg.Artifacts, cfg.Target.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact store: %w", err)
	}
	app.Artifacts = artifactService

	// Sweep expired artifacts from previous runs
	if removed, err := artifactService.CleanupExpired(); err != nil {
		logger.Warn().Err(err).Msg("Artifact cleanup failed")
	} else if removed > 0 {
		logger.Info().
			Int("removed", removed).
			Int("retention_days", cfg.Artifacts.RetentionDays).
			Msg("Expired artifacts removed")
	}

	// Scenario registry over the built-in scenario source. Loaded here so
	// startup fails loudly when no valid scenarios exist; the orchestrator
	// reloads before every run.
	app.Registry = registry.New(scenarios.NewSource(cfg.Target), logger)
	loaded, err := app.Registry.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	logger.Info().Int("count", len(loaded)).Msg("Scenarios registered")

	// Execution pipeline: one isolated browser session per scenario run
	app.Provider = browser.NewProvider(cfg.Browser, logger)
	app.Engine = runner.NewEngine(app.Provider, artifactService, cfg.Browser.ScenarioTimeout.Duration(), logger)
	app.Orchestrator = runner.NewOrchestrator(app.Registry, app.Engine, logger)

	// Notification dispatcher with both delivery channels
	app.Notifier = notify.NewService(logger,
		notify.NewEmailChannel(cfg.Notify, logger),
		notify.NewWebhookChannel(cfg.Notify, logger),
	)

	// WebSocket handler before JobHandler so runs can stream progress
	app.WSHandler = handlers.NewWebSocketHandler(logger)
	app.JobHandler = handlers.NewJobHandler(app.Orchestrator, app.Registry, app.Notifier, app.WSHandler, logger)
	app.APIHandler = handlers.NewAPIHandler(logger)

	// Scheduled suite runs (no-op unless enabled in config)
	app.Scheduler = scheduler.New(cfg.Schedule, app.Orchestrator, app.Notifier, logger)
	if err := app.Scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().
		Str("target", cfg.Target.URL).
		Bool("scheduler_enabled", cfg.Schedule.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// Close stops background components. Safe to call once at shutdown.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	a.Logger.Info().Msg("Application stopped")
}
