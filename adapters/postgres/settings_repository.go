package postgres

import (
	"context"

	"burnoutd/models"
	"burnoutd/ports"

	"github.com/jmoiron/sqlx"
)

const settingsColumns = `id, new_samples_count, retrain_threshold,
	auto_retrain_enabled, last_retrain_at, retrain_count`

// SettingsRepositoryImpl implements SettingsRepository for PostgreSQL
type SettingsRepositoryImpl struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new PostgreSQL settings repository
func NewSettingsRepository(db *sqlx.DB) ports.SettingsRepository {
	return &SettingsRepositoryImpl{db: db}
}

// Get returns the singleton settings row, creating defaults if absent
func (r *SettingsRepositoryImpl) Get(ctx context.Context) (*models.SystemSettings, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO system_settings (id) VALUES (1)
		ON CONFLICT (id) DO NOTHING`); err != nil {
		return nil, err
	}

	var s models.SystemSettings
	err := r.db.GetContext(ctx, &s, `
		SELECT `+settingsColumns+` FROM system_settings WHERE id = 1`)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update persists the full settings row
func (r *SettingsRepositoryImpl) Update(ctx context.Context, s *models.SystemSettings) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE system_settings SET
			new_samples_count = $1,
			retrain_threshold = $2,
			auto_retrain_enabled = $3,
			last_retrain_at = $4,
			retrain_count = $5
		WHERE id = 1`,
		s.NewSamplesCount, s.RetrainThreshold, s.AutoRetrainEnabled,
		s.LastRetrainAt, s.RetrainCount)
	return err
}

// IncrementSamples atomically adds n to the new-samples counter. The addition
// happens in SQL so concurrent agents never lose increments.
func (r *SettingsRepositoryImpl) IncrementSamples(ctx context.Context, n int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE system_settings
		SET new_samples_count = new_samples_count + $1
		WHERE id = 1`, n)
	return err
}

// RecordRetrainSuccess atomically resets the samples counter, increments the
// retrain count and stamps last_retrain_at
func (r *SettingsRepositoryImpl) RecordRetrainSuccess(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE system_settings
		SET new_samples_count = 0,
		    retrain_count = retrain_count + 1,
		    last_retrain_at = NOW()
		WHERE id = 1`)
	return err
}
