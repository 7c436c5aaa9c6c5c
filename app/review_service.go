package app

import (
	"context"
	"fmt"
	"time"

	"burnoutd/internal/agent"
	apperrors "burnoutd/internal/errors"
	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// ReviewService is the human-in-the-loop half of the agent: it records
// manager verdicts on low-confidence predictions and runs the alert logic
// that was deferred while the prediction awaited review.
type ReviewService struct {
	predictions ports.PredictionRepository
	logs        ports.DailyLogRepository
	employees   ports.EmployeeRepository
	queue       *QueueService
	alerts      *agent.AlertManager
	logger      *zap.Logger
}

// NewReviewService creates a review service.
func NewReviewService(
	predictions ports.PredictionRepository,
	logs ports.DailyLogRepository,
	employees ports.EmployeeRepository,
	queue *QueueService,
	alerts *agent.AlertManager,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		predictions: predictions,
		logs:        logs,
		employees:   employees,
		queue:       queue,
		alerts:      alerts,
		logger:      logger,
	}
}

// GetPendingReviews lists predictions still awaiting a human verdict.
func (s *ReviewService) GetPendingReviews(ctx context.Context) ([]models.AgentPrediction, error) {
	return s.predictions.GetPendingReviews(ctx)
}

// SubmitReview records a manager's verdict on a prediction and moves the
// underlying daily log to REVIEWED. When the verdict confirms the model, it
// also runs the alerting rules that were held back pending review.
//
// Rejected predictions never touch the employee's alert state: an unconfirmed
// high-risk day neither extends a streak nor breaks one.
func (s *ReviewService) SubmitReview(ctx context.Context, predictionID int64, isCorrect bool, notes *string) (*models.AgentPrediction, error) {
	pred, err := s.predictions.GetByID(ctx, predictionID)
	if err != nil {
		return nil, err
	}
	if pred.HumanValidation != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("prediction %d already reviewed", predictionID))
	}

	now := time.Now()
	pred.HumanValidation = &isCorrect
	pred.ReviewNotes = notes
	pred.ReviewedAt = &now
	if err := s.predictions.Update(ctx, pred); err != nil {
		return nil, fmt.Errorf("record review for prediction %d: %w", predictionID, err)
	}

	if err := s.queue.UpdateStatus(ctx, pred.DailyLogID, models.StatusReviewed, nil); err != nil {
		return nil, fmt.Errorf("close out daily log %d: %w", pred.DailyLogID, err)
	}

	s.logger.Info("prediction reviewed",
		zap.Int64("prediction_id", pred.ID),
		zap.Bool("confirmed", isCorrect),
		zap.String("risk_level", string(pred.RiskLevel)))

	if isCorrect {
		if err := s.deferredAct(ctx, pred); err != nil {
			return nil, err
		}
	}
	return pred, nil
}

// deferredAct runs the standard act-phase rules for a prediction whose risk
// a human has just confirmed.
func (s *ReviewService) deferredAct(ctx context.Context, pred *models.AgentPrediction) error {
	log, err := s.logs.GetByID(ctx, pred.DailyLogID)
	if err != nil {
		return fmt.Errorf("load daily log %d: %w", pred.DailyLogID, err)
	}
	employee, err := s.employees.GetByID(ctx, log.EmployeeID)
	if err != nil {
		return fmt.Errorf("load employee %d: %w", log.EmployeeID, err)
	}
	return s.alerts.HandlePrediction(ctx, employee, pred, log.LogDate)
}
