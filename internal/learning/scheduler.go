package learning

import (
	"burnoutd/models"
)

// incrementalMinSamples is the floor below which accumulated validated
// samples are not worth a training pass at all.
const incrementalMinSamples = 50

// Scheduler decides, from the retraining-state singleton, whether a learning
// cycle should run and in what mode.
type Scheduler struct{}

// NewScheduler creates a scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Decide maps the accumulated sample count to a training decision:
//
//	count >= retrain threshold  -> full retraining
//	count >= 50                 -> incremental training
//	otherwise                   -> skip
//
// Automatic retraining being disabled always yields skip.
func (s *Scheduler) Decide(settings *models.SystemSettings) models.TrainingDecision {
	if settings == nil || !settings.AutoRetrainEnabled {
		return models.DecisionSkip
	}
	switch {
	case settings.NewSamplesCount >= settings.RetrainThreshold:
		return models.DecisionFull
	case settings.NewSamplesCount >= incrementalMinSamples:
		return models.DecisionIncremental
	default:
		return models.DecisionSkip
	}
}

// ModeFor translates a decision into the training mode recorded on the
// resulting model version.
func ModeFor(decision models.TrainingDecision) models.TrainingMode {
	if decision == models.DecisionFull {
		return models.ModeFull
	}
	return models.ModeIncremental
}
