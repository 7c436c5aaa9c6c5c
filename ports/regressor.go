package ports

import (
	"context"

	"burnoutd/models"
)

// Regressor is the trained model behind burnout predictions. Implementations
// must be safe for concurrent Predict calls once loaded; Train and
// LoadFromPath are only called from the learning worker and the registry.
type Regressor interface {
	// Train fits the model on the given samples, persists it to outPath and
	// leaves the regressor loaded with the new parameters. It returns
	// core.ErrInsufficientData when too few samples are provided.
	Train(ctx context.Context, samples []models.TrainingSample, outPath string) (models.TrainingMetrics, error)

	// Predict scores a feature window (days x features) and returns the
	// predicted rate together with the scaled window used for scoring, so
	// callers can derive uncertainty from the model's own input view.
	// Returns core.ErrModelNotLoaded when no parameters are loaded.
	Predict(window [][]float64) (models.RegressorOutput, error)

	// LoadFromPath replaces the in-memory parameters with the persisted model
	// at path.
	LoadFromPath(path string) error

	// IsLoaded reports whether the regressor holds usable parameters.
	IsLoaded() bool
}

// RegressorFactory builds a fresh, unloaded regressor. The registry uses it
// to construct a candidate before swapping, so a bad model file never
// corrupts the serving instance.
type RegressorFactory func() Regressor
