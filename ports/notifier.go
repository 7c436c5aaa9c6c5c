package ports

import (
	"context"
	"time"

	"burnoutd/models"
)

// Notifier delivers alert and review messages to humans.
type Notifier interface {
	// SendCriticalAlert notifies about a critical-risk prediction, including
	// the recent history window and the employee's consecutive high-risk
	// streak.
	SendCriticalAlert(ctx context.Context, employee *models.Employee, pred *models.AgentPrediction, history []models.HistoryEntry, streak int, logDate time.Time) error

	// SendReviewRequest asks a reviewer to validate a low-confidence
	// prediction.
	SendReviewRequest(ctx context.Context, employee *models.Employee, pred *models.AgentPrediction, logDate time.Time) error
}
