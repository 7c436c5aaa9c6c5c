package app

import (
	"context"
	"fmt"
	"time"

	"burnoutd/domain/core"
	apperrors "burnoutd/internal/errors"
	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// validTransitions is the daily-log lifecycle state machine. A status maps to
// the set of statuses it may move to; anything else is rejected.
var validTransitions = map[models.DailyLogStatus][]models.DailyLogStatus{
	models.StatusQueued:        {models.StatusProcessing},
	models.StatusProcessing:    {models.StatusAnalyzed, models.StatusPendingReview, models.StatusFailed},
	models.StatusAnalyzed:      {models.StatusReviewed},
	models.StatusPendingReview: {models.StatusReviewed},
	models.StatusFailed:        {models.StatusQueued},
}

// QueueService owns the daily-log submission queue: intake validation,
// claim-based dequeue and lifecycle transitions.
type QueueService struct {
	logs      ports.DailyLogRepository
	employees ports.EmployeeRepository
	logger    *zap.Logger
}

// NewQueueService creates a queue service.
func NewQueueService(logs ports.DailyLogRepository, employees ports.EmployeeRepository, logger *zap.Logger) *QueueService {
	return &QueueService{logs: logs, employees: employees, logger: logger}
}

// Enqueue validates and persists a new daily log in QUEUED status. The
// metric fields are optional; whatever is supplied must be on scale.
func (s *QueueService) Enqueue(ctx context.Context, log *models.DailyLog) (*models.DailyLog, error) {
	if err := s.validate(ctx, log); err != nil {
		return nil, err
	}

	log.Status = models.StatusQueued
	saved, err := s.logs.Add(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("enqueue daily log: %w", err)
	}

	s.logger.Info("daily log queued",
		zap.Int64("daily_log_id", saved.ID),
		zap.Int64("employee_id", saved.EmployeeID),
		zap.Time("log_date", saved.LogDate))
	return saved, nil
}

// DequeueNext claims the oldest queued log, flipping it to PROCESSING, or
// returns (nil, nil) when the queue is empty.
func (s *QueueService) DequeueNext(ctx context.Context) (*models.DailyLog, error) {
	return s.logs.ClaimNext(ctx, models.StatusQueued, models.StatusProcessing)
}

// UpdateStatus moves a log to a new lifecycle status, enforcing the state
// machine. processedAt is stamped when non-nil.
func (s *QueueService) UpdateStatus(ctx context.Context, id int64, status models.DailyLogStatus, processedAt *time.Time) error {
	current, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(current.Status, status) {
		return fmt.Errorf("%w: %s -> %s for daily log %d",
			core.ErrInvalidTransition, current.Status, status, id)
	}
	return s.logs.UpdateStatus(ctx, id, status, processedAt)
}

// MarkFailed records the failure reason and moves the log to FAILED. Used by
// operators to resolve logs stranded in PROCESSING after an agent error.
func (s *QueueService) MarkFailed(ctx context.Context, id int64, reason string) error {
	current, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(current.Status, models.StatusFailed) {
		return fmt.Errorf("%w: %s -> %s for daily log %d",
			core.ErrInvalidTransition, current.Status, models.StatusFailed, id)
	}

	if err := s.logs.SetError(ctx, id, reason); err != nil {
		return err
	}
	if err := s.logs.UpdateStatus(ctx, id, models.StatusFailed, nil); err != nil {
		return err
	}

	s.logger.Warn("daily log failed",
		zap.Int64("daily_log_id", id), zap.String("reason", reason))
	return nil
}

// Requeue moves a FAILED log back to QUEUED for another attempt.
func (s *QueueService) Requeue(ctx context.Context, id int64) error {
	return s.UpdateStatus(ctx, id, models.StatusQueued, nil)
}

// Stats returns per-status counts of the queue.
func (s *QueueService) Stats(ctx context.Context) (*models.QueueStats, error) {
	counts, err := s.logs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count queue statuses: %w", err)
	}

	stats := &models.QueueStats{
		Queued:        counts[models.StatusQueued],
		Processing:    counts[models.StatusProcessing],
		Analyzed:      counts[models.StatusAnalyzed],
		PendingReview: counts[models.StatusPendingReview],
		Reviewed:      counts[models.StatusReviewed],
		Failed:        counts[models.StatusFailed],
	}
	stats.Total = stats.Queued + stats.Processing + stats.Analyzed +
		stats.PendingReview + stats.Reviewed + stats.Failed
	return stats, nil
}

func (s *QueueService) validate(ctx context.Context, log *models.DailyLog) error {
	if log.EmployeeID <= 0 {
		return apperrors.InvalidInput("employee_id is required")
	}
	if log.LogDate.IsZero() {
		return apperrors.InvalidInput("log_date is required")
	}
	if _, err := s.employees.GetByID(ctx, log.EmployeeID); err != nil {
		if core.IsNotFoundError(err) {
			return apperrors.ValidationError(fmt.Sprintf("employee %d does not exist", log.EmployeeID))
		}
		return err
	}

	for name, v := range map[string]*float64{
		"hours_worked":   log.HoursWorked,
		"hours_slept":    log.HoursSlept,
		"personal_time":  log.PersonalTime,
		"overtime_hours": log.OvertimeHours,
	} {
		if v != nil && (*v < 0 || *v > 24) {
			return apperrors.ValidationError(fmt.Sprintf("%s must be between 0 and 24", name))
		}
	}
	for name, v := range map[string]*int{
		"motivation_level":   log.MotivationLevel,
		"stress_level":       log.StressLevel,
		"workload_intensity": log.WorkloadIntensity,
	} {
		if v != nil && (*v < 1 || *v > 10) {
			return apperrors.ValidationError(fmt.Sprintf("%s must be between 1 and 10", name))
		}
	}
	return nil
}

func transitionAllowed(from, to models.DailyLogStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
