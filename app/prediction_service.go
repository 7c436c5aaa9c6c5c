package app

import (
	"context"
	"fmt"

	"burnoutd/internal/features"
	"burnoutd/internal/registry"
	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// PredictionService turns a claimed daily log into a scored, persisted
// prediction: feature preparation, model inference, confidence estimation
// and the human-readable message.
type PredictionService struct {
	preparer    *features.FeaturePreparer
	estimator   *features.ConfidenceEstimator
	registry    *registry.ModelRegistry
	predictions ports.PredictionRepository
	settings    ports.SettingsRepository
	logger      *zap.Logger
}

// NewPredictionService creates a prediction service.
func NewPredictionService(
	preparer *features.FeaturePreparer,
	estimator *features.ConfidenceEstimator,
	reg *registry.ModelRegistry,
	predictions ports.PredictionRepository,
	settings ports.SettingsRepository,
	logger *zap.Logger,
) *PredictionService {
	return &PredictionService{
		preparer:    preparer,
		estimator:   estimator,
		registry:    reg,
		predictions: predictions,
		settings:    settings,
		logger:      logger,
	}
}

// PredictForLog scores one daily log. The returned prediction is not yet
// persisted and carries NeedsReview unset; routing policy is the caller's
// concern.
func (s *PredictionService) PredictForLog(ctx context.Context, log *models.DailyLog) (*models.AgentPrediction, error) {
	// Pick up an out-of-band model swap before scoring. Failure here only
	// means we keep serving the current model.
	if err := s.registry.CheckAndReloadIfNeeded(ctx); err != nil {
		s.logger.Warn("model reload check failed", zap.Error(err))
	}

	input, err := s.preparer.Prepare(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("prepare features for log %d: %w", log.ID, err)
	}

	out, version, err := s.registry.Predict(input.Window)
	if err != nil {
		return nil, fmt.Errorf("score log %d: %w", log.ID, err)
	}

	rate := models.ClampRate(out.Rate)
	level := models.RiskLevelFromRate(rate)

	confidence := s.estimator.Estimate(input, log)
	penalty := s.estimator.UncertaintyPenalty(out.ScaledWindow, rate)
	confidence = s.estimator.Apply(confidence, penalty)

	s.logger.Debug("log scored",
		zap.Int64("daily_log_id", log.ID),
		zap.Float64("rate", rate),
		zap.String("risk_level", string(level)),
		zap.Float64("confidence", confidence),
		zap.String("data_quality", string(input.Quality)),
		zap.String("model_version", version))

	return &models.AgentPrediction{
		DailyLogID:   log.ID,
		BurnoutRate:  rate,
		RiskLevel:    level,
		Confidence:   confidence,
		Message:      features.PredictionMessage(rate, level, input.Quality),
		ModelVersion: version,
	}, nil
}

// Save persists a prediction. First-time saves also bump the new-samples
// counter that drives retraining decisions; updates do not.
func (s *PredictionService) Save(ctx context.Context, pred *models.AgentPrediction) (*models.AgentPrediction, error) {
	if pred.ID != 0 {
		if err := s.predictions.Update(ctx, pred); err != nil {
			return nil, fmt.Errorf("update prediction %d: %w", pred.ID, err)
		}
		return pred, nil
	}

	saved, err := s.predictions.Add(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("persist prediction for log %d: %w", pred.DailyLogID, err)
	}
	if err := s.settings.IncrementSamples(ctx, 1); err != nil {
		// The prediction is durable; a lost counter tick only delays the
		// next retrain slightly.
		s.logger.Warn("failed to bump new-samples counter", zap.Error(err))
	}
	return saved, nil
}

// GetByDailyLog returns all predictions recorded for a daily log, newest
// first.
func (s *PredictionService) GetByDailyLog(ctx context.Context, dailyLogID int64) ([]models.AgentPrediction, error) {
	return s.predictions.GetByDailyLog(ctx, dailyLogID)
}
