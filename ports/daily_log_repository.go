package ports

import (
	"context"
	"time"

	"burnoutd/models"
)

// DailyLogRepository defines the interface for daily log data operations.
type DailyLogRepository interface {
	// Add persists a new daily log and returns it with its assigned id.
	Add(ctx context.Context, log *models.DailyLog) (*models.DailyLog, error)

	// GetByID retrieves a daily log, returning core.ErrDailyLogNotFound if absent.
	GetByID(ctx context.Context, id int64) (*models.DailyLog, error)

	// GetByEmployee returns an employee's logs, most recent business date first.
	GetByEmployee(ctx context.Context, employeeID int64, limit int) ([]models.DailyLog, error)

	// GetByDateRange returns an employee's logs within [start, end].
	GetByDateRange(ctx context.Context, employeeID int64, start, end time.Time) ([]models.DailyLog, error)

	// ClaimNext atomically flips the oldest log (by business date) in status
	// `from` to status `to` and returns it, or (nil, nil) when none is
	// available. The flip and the read are one statement so no other consumer
	// can claim the same log.
	ClaimNext(ctx context.Context, from, to models.DailyLogStatus) (*models.DailyLog, error)

	// UpdateStatus sets a log's status and, when non-nil, its processed_at.
	UpdateStatus(ctx context.Context, id int64, status models.DailyLogStatus, processedAt *time.Time) error

	// SetError records the failure message for a log.
	SetError(ctx context.Context, id int64, message string) error

	// CountByStatus returns the number of logs per lifecycle status.
	CountByStatus(ctx context.Context) (map[models.DailyLogStatus]int, error)

	// ListRecent returns the most recent logs company-wide, newest first,
	// used for global fallback averages.
	ListRecent(ctx context.Context, limit int) ([]models.DailyLog, error)
}
