package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"burnoutd/domain/core"
	"burnoutd/models"
	"burnoutd/ports"

	"github.com/jmoiron/sqlx"
)

const predictionColumns = `id, daily_log_id, burnout_rate, risk_level,
	confidence, message, needs_review, human_validation, review_notes,
	model_version, created_at, reviewed_at`

// PredictionRepositoryImpl implements PredictionRepository for PostgreSQL
type PredictionRepositoryImpl struct {
	db *sqlx.DB
}

// NewPredictionRepository creates a new PostgreSQL prediction repository
func NewPredictionRepository(db *sqlx.DB) ports.PredictionRepository {
	return &PredictionRepositoryImpl{db: db}
}

// Add persists a new prediction and returns it with its assigned id
func (r *PredictionRepositoryImpl) Add(ctx context.Context, p *models.AgentPrediction) (*models.AgentPrediction, error) {
	var saved models.AgentPrediction
	err := r.db.GetContext(ctx, &saved, `
		INSERT INTO agent_predictions (
			daily_log_id, burnout_rate, risk_level, confidence, message,
			needs_review, model_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+predictionColumns,
		p.DailyLogID, p.BurnoutRate, p.RiskLevel, p.Confidence, p.Message,
		p.NeedsReview, p.ModelVersion)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Update persists changes to an existing prediction
func (r *PredictionRepositoryImpl) Update(ctx context.Context, p *models.AgentPrediction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE agent_predictions SET
			burnout_rate = $2,
			risk_level = $3,
			confidence = $4,
			message = $5,
			needs_review = $6,
			human_validation = $7,
			review_notes = $8,
			reviewed_at = $9
		WHERE id = $1`,
		p.ID, p.BurnoutRate, p.RiskLevel, p.Confidence, p.Message,
		p.NeedsReview, p.HumanValidation, p.ReviewNotes, p.ReviewedAt)
	if err != nil {
		return err
	}
	return requireRowAffected(res, core.ErrPredictionNotFound)
}

// GetByID retrieves a prediction by id
func (r *PredictionRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.AgentPrediction, error) {
	var p models.AgentPrediction
	err := r.db.GetContext(ctx, &p, `
		SELECT `+predictionColumns+` FROM agent_predictions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrPredictionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByDailyLog returns all predictions for a daily log, newest first
func (r *PredictionRepositoryImpl) GetByDailyLog(ctx context.Context, dailyLogID int64) ([]models.AgentPrediction, error) {
	var preds []models.AgentPrediction
	err := r.db.SelectContext(ctx, &preds, `
		SELECT `+predictionColumns+` FROM agent_predictions
		WHERE daily_log_id = $1
		ORDER BY created_at DESC, id DESC`, dailyLogID)
	if err != nil {
		return nil, err
	}
	return preds, nil
}

// GetPendingReviews returns predictions still awaiting human validation
func (r *PredictionRepositoryImpl) GetPendingReviews(ctx context.Context) ([]models.AgentPrediction, error) {
	var preds []models.AgentPrediction
	err := r.db.SelectContext(ctx, &preds, `
		SELECT `+predictionColumns+` FROM agent_predictions
		WHERE needs_review AND human_validation IS NULL
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return preds, nil
}

// GetValidatedSince returns human-validated predictions reviewed at or after
// the given time
func (r *PredictionRepositoryImpl) GetValidatedSince(ctx context.Context, since time.Time) ([]models.AgentPrediction, error) {
	var preds []models.AgentPrediction
	err := r.db.SelectContext(ctx, &preds, `
		SELECT `+predictionColumns+` FROM agent_predictions
		WHERE human_validation IS NOT NULL AND reviewed_at >= $1
		ORDER BY reviewed_at ASC`, since)
	if err != nil {
		return nil, err
	}
	return preds, nil
}
