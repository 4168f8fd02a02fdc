// -----------------------------------------------------------------------
// Notification Dispatcher - fan-out of suite results to enabled channels
// -----------------------------------------------------------------------

package notify

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/models"
)

// Channel is one notification delivery mechanism. Resolve normalizes the
// channel's configuration to a concrete target; resolution failure at send
// time is a dispatch error for that channel, never a skip.
type Channel interface {
	Name() string
	// Resolve returns the concrete target, or enabled=false when the
	// channel is disabled, or an error when enabled but no target resolves
	Resolve(config models.NotificationConfig) (target string, enabled bool, err error)
	Send(ctx context.Context, target string, results []models.ExecutionResult, summary models.Summary, jobID string) error
}

// Service dispatches result summaries to every enabled channel
// independently: one channel's failure never prevents attempting the
// others.
type Service struct {
	channels []Channel
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a dispatcher over the given channels
func NewService(logger arbor.ILogger, channels ...Channel) *Service {
	return &Service{
		channels: channels,
		validate: validator.New(),
		logger:   logger,
	}
}

// Validate is the pre-flight contract callers invoke before accepting a job
// request. It is idempotent: the same config always yields the same result.
// Dispatch still defends against resolution failure at send time, because
// environment-sourced targets can change between validation and dispatch.
func (s *Service) Validate(config models.NotificationConfig) models.ValidationResult {
	var errors []string

	if !config.AnyEnabled() {
		errors = append(errors, "at least one notification method (email or webhook) must be specified")
	}

	for _, channel := range s.channels {
		target, enabled, err := channel.Resolve(config)
		if !enabled {
			continue
		}
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", channel.Name(), err))
			continue
		}
		if err := s.validateTarget(channel.Name(), target); err != nil {
			errors = append(errors, err.Error())
		}
	}

	return models.ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// validateTarget checks a resolved target's shape per channel
func (s *Service) validateTarget(channel, target string) error {
	switch channel {
	case "email":
		for _, addr := range splitRecipients(target) {
			if err := s.validate.Var(addr, "required,email"); err != nil {
				return fmt.Errorf("invalid email address: %s", addr)
			}
		}
	case "webhook":
		if err := s.validate.Var(target, "required,url"); err != nil {
			return fmt.Errorf("invalid webhook URL format")
		}
	}
	return nil
}

// Dispatch formats and sends the result summary to each enabled channel,
// tracking per-channel outcomes independently. The returned report's
// Success is true only if every enabled channel's send succeeded. A log
// summary is always emitted regardless of configured channels.
func (s *Service) Dispatch(ctx context.Context, results []models.ExecutionResult, config models.NotificationConfig, jobID string) models.DispatchReport {
	summary := models.Summarize(results)

	// Local observability is independent of external notification outcome
	s.logSummary(results, summary, jobID)

	report := models.DispatchReport{
		JobID:   jobID,
		Success: true,
		Summary: summary,
	}

	for _, channel := range s.channels {
		target, enabled, err := channel.Resolve(config)
		if !enabled {
			continue
		}

		outcome := models.ChannelOutcome{Channel: channel.Name(), Target: target}
		if err != nil {
			outcome.Status = "error"
			outcome.Error = err.Error()
			report.Success = false
			s.logger.Error().Err(err).Str("channel", channel.Name()).Str("job_id", jobID).Msg("Notification target resolution failed")
			report.Channels = append(report.Channels, outcome)
			continue
		}

		if err := channel.Send(ctx, target, results, summary, jobID); err != nil {
			outcome.Status = "error"
			outcome.Error = err.Error()
			report.Success = false
			s.logger.Error().Err(err).Str("channel", channel.Name()).Str("job_id", jobID).Msg("Notification send failed")
		} else {
			outcome.Status = "sent"
			s.logger.Info().Str("channel", channel.Name()).Str("target", target).Str("job_id", jobID).Msg("Notification sent")
		}
		report.Channels = append(report.Channels, outcome)
	}

	return report
}

// logSummary emits the console result summary for every dispatch
func (s *Service) logSummary(results []models.ExecutionResult, summary models.Summary, jobID string) {
	s.logger.Info().
		Str("job_id", jobID).
		Int("total", summary.Total).
		Int("passed", summary.Passed).
		Int("failed", summary.Failed).
		Str("duration", formatDuration(summary.TotalDuration)).
		Msg(shortSummary(summary))

	for _, r := range results {
		if r.Passed() {
			s.logger.Info().Str("job_id", jobID).Str("duration", formatDuration(r.Duration)).Msgf("[PASS] %s", r.Name)
		} else {
			s.logger.Error().Str("job_id", jobID).Str("error", r.Error).Msgf("[FAIL] %s", r.Name)
		}
	}
}
