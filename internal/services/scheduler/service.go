// -----------------------------------------------------------------------
// Scheduler Service - unattended suite runs on a cron schedule
// -----------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/interfaces"
	"github.com/ternarybob/herrold/internal/models"
	"github.com/ternarybob/herrold/internal/services/runner"
)

// SuiteRunner is the orchestration surface scheduled runs need
type SuiteRunner interface {
	RunAll(ctx context.Context, onEvent runner.EventSink) ([]models.ExecutionResult, error)
}

// Service runs the full suite on a cron schedule. Scheduled runs use
// environment-default notification targets; a tick that cannot resolve any
// target still runs the suite and logs the summary locally.
type Service struct {
	config     common.ScheduleConfig
	runner     SuiteRunner
	dispatcher interfaces.NotificationDispatcher
	cron       *cron.Cron
	logger     arbor.ILogger
}

// New creates the scheduler service
func New(config common.ScheduleConfig, runner SuiteRunner, dispatcher interfaces.NotificationDispatcher, logger arbor.ILogger) *Service {
	return &Service{
		config:     config,
		runner:     runner,
		dispatcher: dispatcher,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start registers the schedule and begins ticking. A no-op when scheduling
// is disabled.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Scheduler disabled")
		return nil
	}
	if s.config.Cron == "" {
		return fmt.Errorf("scheduler enabled but no cron expression configured")
	}

	if _, err := s.cron.AddFunc(s.config.Cron, s.tick); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.config.Cron, err)
	}

	s.cron.Start()
	s.logger.Info().Str("cron", s.config.Cron).Msg("Scheduled suite runs enabled")
	return nil
}

// Stop halts the schedule, waiting for a running tick to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// tick runs the full suite and dispatches results to env-default channels
func (s *Service) tick() {
	jobID := common.NewJobID()
	s.logger.Info().Str("job_id", jobID).Msg("Scheduled suite run starting")

	ctx := context.Background()
	results, err := s.runner.RunAll(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("Scheduled suite run failed to start")
		return
	}

	config := models.NotificationConfig{
		Email:   models.EmailConfig{Mode: models.ChannelEnvDefault},
		Webhook: models.WebhookConfig{Mode: models.ChannelEnvDefault},
	}
	report := s.dispatcher.Dispatch(ctx, results, config, jobID)

	s.logger.Info().
		Str("job_id", jobID).
		Bool("notify_success", report.Success).
		Int("passed", report.Summary.Passed).
		Int("failed", report.Summary.Failed).
		Msg("Scheduled suite run complete")
}
