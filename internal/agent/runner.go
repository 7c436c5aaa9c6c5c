package agent

import (
	"context"
	"fmt"
	"time"

	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// QueueOps is the slice of the queue workflow the runner needs: claiming the
// next submission and moving it through the lifecycle.
type QueueOps interface {
	DequeueNext(ctx context.Context) (*models.DailyLog, error)
	UpdateStatus(ctx context.Context, id int64, status models.DailyLogStatus, processedAt *time.Time) error
}

// PredictionOps is the slice of the prediction workflow the runner needs:
// scoring a submission and persisting the result.
type PredictionOps interface {
	PredictForLog(ctx context.Context, log *models.DailyLog) (*models.AgentPrediction, error)
	Save(ctx context.Context, pred *models.AgentPrediction) (*models.AgentPrediction, error)
}

// AgentRunner executes the sense -> think -> act cycle for one daily log at a
// time. It is the single place the lifecycle transitions of a claimed log are
// driven from.
type AgentRunner struct {
	queue       QueueOps
	predictions PredictionOps
	employees   ports.EmployeeRepository
	notifier    ports.Notifier
	policy      *PolicyEngine
	alerts      *AlertManager
	logger      *zap.Logger
}

// NewAgentRunner creates a runner.
func NewAgentRunner(
	queue QueueOps,
	predictions PredictionOps,
	employees ports.EmployeeRepository,
	notifier ports.Notifier,
	policy *PolicyEngine,
	alerts *AlertManager,
	logger *zap.Logger,
) *AgentRunner {
	return &AgentRunner{
		queue:       queue,
		predictions: predictions,
		employees:   employees,
		notifier:    notifier,
		policy:      policy,
		alerts:      alerts,
		logger:      logger,
	}
}

// Step runs one full cycle: claim the oldest queued log, score it, persist
// the prediction, advance the log's status and fire any alerts. It returns
// (nil, nil) when the queue is empty.
//
// On a mid-cycle error the claimed log stays in PROCESSING: the failure is
// surfaced to the caller and the log is left for an operator to re-queue or
// fail explicitly, never silently retried.
func (r *AgentRunner) Step(ctx context.Context) (*models.PredictionOutcome, error) {
	// Sense.
	log, err := r.queue.DequeueNext(ctx)
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	if log == nil {
		return nil, nil
	}

	r.logger.Debug("claimed daily log",
		zap.Int64("daily_log_id", log.ID),
		zap.Int64("employee_id", log.EmployeeID))

	// Think.
	pred, err := r.predictions.PredictForLog(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("predict for log %d: %w", log.ID, err)
	}
	pred.NeedsReview = r.policy.ShouldRequireReview(pred)

	saved, err := r.predictions.Save(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("save prediction for log %d: %w", log.ID, err)
	}

	now := time.Now()
	status := models.StatusAnalyzed
	if saved.NeedsReview {
		status = models.StatusPendingReview
	}
	if err := r.queue.UpdateStatus(ctx, log.ID, status, &now); err != nil {
		return nil, fmt.Errorf("advance log %d to %s: %w", log.ID, status, err)
	}

	// Act.
	if err := r.act(ctx, log, saved); err != nil {
		return nil, err
	}

	return &models.PredictionOutcome{
		DailyLogID:  log.ID,
		EmployeeID:  log.EmployeeID,
		BurnoutRate: saved.BurnoutRate,
		RiskLevel:   saved.RiskLevel,
		Confidence:  saved.Confidence,
		NeedsReview: saved.NeedsReview,
		ProcessedAt: now,
		Message:     saved.Message,
	}, nil
}

// act fires side effects for a finished prediction. Predictions routed to
// review only get a review request here; alert handling is deferred until a
// human confirms the risk.
func (r *AgentRunner) act(ctx context.Context, log *models.DailyLog, pred *models.AgentPrediction) error {
	employee, err := r.employees.GetByID(ctx, log.EmployeeID)
	if err != nil {
		return fmt.Errorf("load employee %d: %w", log.EmployeeID, err)
	}

	if pred.NeedsReview {
		if err := r.notifier.SendReviewRequest(ctx, employee, pred, log.LogDate); err != nil {
			// The prediction already sits in the pending-review list, so a
			// lost notification is recoverable.
			r.logger.Error("review request delivery failed",
				zap.Int64("prediction_id", pred.ID), zap.Error(err))
		}
		return nil
	}

	return r.alerts.HandlePrediction(ctx, employee, pred, log.LogDate)
}

// ProcessBatch runs up to n cycles, stopping early when the queue drains or
// a cycle fails. Completed outcomes are returned alongside any error so
// partial progress is never hidden.
func (r *AgentRunner) ProcessBatch(ctx context.Context, n int) ([]models.PredictionOutcome, error) {
	var outcomes []models.PredictionOutcome
	for i := 0; i < n; i++ {
		outcome, err := r.Step(ctx)
		if err != nil {
			return outcomes, err
		}
		if outcome == nil {
			break
		}
		outcomes = append(outcomes, *outcome)
	}
	return outcomes, nil
}
