package ports

import (
	"context"
	"time"

	"burnoutd/models"
)

// PredictionRepository defines the interface for agent prediction storage.
type PredictionRepository interface {
	// Add persists a new prediction and returns it with its assigned id.
	Add(ctx context.Context, p *models.AgentPrediction) (*models.AgentPrediction, error)

	// Update persists changes to an existing prediction.
	Update(ctx context.Context, p *models.AgentPrediction) error

	// GetByID retrieves a prediction, returning core.ErrPredictionNotFound if absent.
	GetByID(ctx context.Context, id int64) (*models.AgentPrediction, error)

	// GetByDailyLog returns all predictions for a daily log, newest first.
	GetByDailyLog(ctx context.Context, dailyLogID int64) ([]models.AgentPrediction, error)

	// GetPendingReviews returns predictions still awaiting human validation.
	GetPendingReviews(ctx context.Context) ([]models.AgentPrediction, error)

	// GetValidatedSince returns human-validated predictions reviewed at or
	// after the given time, used to assemble retraining datasets.
	GetValidatedSince(ctx context.Context, since time.Time) ([]models.AgentPrediction, error)
}
