package postgres

import (
	"context"
	"database/sql"
	"errors"

	"burnoutd/models"
	"burnoutd/ports"

	"github.com/jmoiron/sqlx"
)

const modelVersionColumns = `id, version_label, training_mode, dataset_size,
	accuracy, model_file_path, created_at`

// ModelVersionRepositoryImpl implements ModelVersionRepository for PostgreSQL
type ModelVersionRepositoryImpl struct {
	db *sqlx.DB
}

// NewModelVersionRepository creates a new PostgreSQL model version repository
func NewModelVersionRepository(db *sqlx.DB) ports.ModelVersionRepository {
	return &ModelVersionRepositoryImpl{db: db}
}

// Add persists a new version entry
func (r *ModelVersionRepositoryImpl) Add(ctx context.Context, v *models.ModelVersion) (*models.ModelVersion, error) {
	var saved models.ModelVersion
	err := r.db.GetContext(ctx, &saved, `
		INSERT INTO model_versions (
			version_label, training_mode, dataset_size, accuracy, model_file_path
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING `+modelVersionColumns,
		v.VersionLabel, v.TrainingMode, v.DatasetSize, v.Accuracy, v.ModelFilePath)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// LatestLabel returns the most recently created version label, or "" when no
// version has been recorded yet
func (r *ModelVersionRepositoryImpl) LatestLabel(ctx context.Context) (string, error) {
	var label string
	err := r.db.GetContext(ctx, &label, `
		SELECT version_label FROM model_versions
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return label, nil
}

// List returns version entries, newest first
func (r *ModelVersionRepositoryImpl) List(ctx context.Context, limit int) ([]models.ModelVersion, error) {
	query := `
		SELECT ` + modelVersionColumns + ` FROM model_versions
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var versions []models.ModelVersion
	if err := r.db.SelectContext(ctx, &versions, query, args...); err != nil {
		return nil, err
	}
	return versions, nil
}
