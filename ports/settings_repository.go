package ports

import (
	"context"

	"burnoutd/models"
)

// SettingsRepository manages the retraining-state singleton. Implementations
// must create the row on first access so readers never see a missing record.
type SettingsRepository interface {
	// Get returns the singleton settings, creating defaults if absent.
	Get(ctx context.Context) (*models.SystemSettings, error)

	// Update persists the full settings row.
	Update(ctx context.Context, s *models.SystemSettings) error

	// IncrementSamples atomically adds n to the new-samples counter.
	IncrementSamples(ctx context.Context, n int) error

	// RecordRetrainSuccess atomically resets the samples counter, increments
	// the retrain count and stamps last_retrain_at.
	RecordRetrainSuccess(ctx context.Context) error
}
