package ports

import (
	"context"

	"burnoutd/models"
)

// ModelVersionRepository tracks the history of trained models.
type ModelVersionRepository interface {
	// Add persists a new version entry.
	Add(ctx context.Context, v *models.ModelVersion) (*models.ModelVersion, error)

	// LatestLabel returns the most recently created version label, or ""
	// when no version has been recorded yet.
	LatestLabel(ctx context.Context) (string, error)

	// List returns version entries, newest first.
	List(ctx context.Context, limit int) ([]models.ModelVersion, error)
}
