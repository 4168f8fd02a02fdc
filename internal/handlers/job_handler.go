// -----------------------------------------------------------------------
// Job Trigger Boundary - accepts run requests, starts orchestration
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/interfaces"
	"github.com/ternarybob/herrold/internal/models"
	"github.com/ternarybob/herrold/internal/services/runner"
)

// SuiteRunner is the orchestration surface the trigger boundary needs
type SuiteRunner interface {
	RunAll(ctx context.Context, onEvent runner.EventSink) ([]models.ExecutionResult, error)
	RunSelection(ctx context.Context, names []string, onEvent runner.EventSink) ([]models.ExecutionResult, error)
}

// JobHandler is the externally reachable accept/start operation. It
// validates synchronously, responds immediately with a job id, and runs
// orchestration plus notification dispatch as a detached background task.
// There is no durable job record beyond the id.
type JobHandler struct {
	orchestrator SuiteRunner
	registry     interfaces.ScenarioRegistry
	dispatcher   interfaces.NotificationDispatcher
	broadcaster  interfaces.EventBroadcaster
	logger       arbor.ILogger
}

// NewJobHandler creates the job trigger handler
func NewJobHandler(orchestrator SuiteRunner, registry interfaces.ScenarioRegistry, dispatcher interfaces.NotificationDispatcher, broadcaster interfaces.EventBroadcaster, logger arbor.ILogger) *JobHandler {
	return &JobHandler{
		orchestrator: orchestrator,
		registry:     registry,
		dispatcher:   dispatcher,
		broadcaster:  broadcaster,
		logger:       logger,
	}
}

// triggerRequest is the trigger wire shape. Tests accepts "all" or a list
// of scenario names.
type triggerRequest struct {
	Notifications models.NotificationConfig `json:"notifications"`
	Tests         json.RawMessage           `json:"tests"`
}

// parseSelector reduces the tests field to (all, names, errors)
func parseSelector(raw json.RawMessage) (bool, []string, []string) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil, []string{"no scenario selector provided (tests must be \"all\" or a list of scenario names)"}
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "all" {
			return true, nil, nil
		}
		return false, nil, []string{`invalid scenario selector: only "all" or a list of names is accepted`}
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return false, nil, []string{"invalid scenario selector: must be \"all\" or a list of scenario names"}
	}
	if len(names) == 0 {
		return false, nil, []string{"scenario selector list is empty"}
	}
	return false, names, nil
}

// TriggerHandler handles POST /api/jobs/trigger. The caller is never
// blocked on test execution: a valid request is answered with a fresh job
// id before the first scenario starts.
func (h *JobHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse trigger request")
		WriteJSON(w, http.StatusBadRequest, models.TriggerResponse{
			Success: false,
			Errors:  []string{"invalid request body: " + err.Error()},
		})
		return
	}

	all, names, errors := parseSelector(req.Tests)

	if validation := h.dispatcher.Validate(req.Notifications); !validation.Valid {
		errors = append(errors, validation.Errors...)
	}

	if len(errors) > 0 {
		h.logger.Warn().Strs("errors", errors).Msg("Trigger request rejected")
		WriteJSON(w, http.StatusBadRequest, models.TriggerResponse{
			Success: false,
			Errors:  errors,
		})
		return
	}

	jobID := common.NewJobID()
	job := models.JobRequest{
		JobID:         jobID,
		Tests:         names,
		All:           all,
		Notifications: req.Notifications,
		AcceptedAt:    time.Now(),
	}

	h.logger.Info().
		Str("job_id", jobID).
		Bool("all", all).
		Strs("tests", names).
		Msg("Test run accepted")

	// Execution and dispatch are intentionally detached from the
	// request/response cycle
	common.SafeGo(h.logger, "job:"+jobID, func() {
		h.runJob(job)
	})

	WriteJSON(w, http.StatusOK, models.TriggerResponse{
		Success: true,
		JobID:   jobID,
		Message: "Test run started",
	})
}

// runJob executes the suite and dispatches notifications under the job id
func (h *JobHandler) runJob(job models.JobRequest) {
	ctx := context.Background()

	onEvent := runner.EventSink(nil)
	if h.broadcaster != nil {
		onEvent = func(event models.StreamEvent) {
			event.JobID = job.JobID
			h.broadcaster.Broadcast(event)
		}
	}

	var results []models.ExecutionResult
	var err error
	if job.All {
		results, err = h.orchestrator.RunAll(ctx, onEvent)
	} else {
		results, err = h.orchestrator.RunSelection(ctx, job.Tests, onEvent)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", job.JobID).Msg("Suite run failed to start")
		return
	}

	report := h.dispatcher.Dispatch(ctx, results, job.Notifications, job.JobID)
	h.logger.Info().
		Str("job_id", job.JobID).
		Bool("notify_success", report.Success).
		Int("passed", report.Summary.Passed).
		Int("failed", report.Summary.Failed).
		Msg("Job complete")
}

// ListScenariosHandler handles GET /api/scenarios - scenario metadata only,
// freshly loaded so the list reflects current definitions
func (h *JobHandler) ListScenariosHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if _, err := h.registry.Load(); err != nil {
		h.logger.Error().Err(err).Msg("Scenario registry load failed")
		WriteError(w, http.StatusInternalServerError, "failed to load scenarios")
		return
	}

	WriteJSON(w, http.StatusOK, h.registry.List())
}
