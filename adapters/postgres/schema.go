package postgres

import (
	"context"

	"burnoutd/internal/errors"

	"github.com/jmoiron/sqlx"
)

// schemaStatements are applied in order on startup. Each statement is
// idempotent so repeated boots are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		department_id BIGINT REFERENCES departments(id),
		high_risk_streak INTEGER NOT NULL DEFAULT 0,
		last_alert_sent_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS daily_logs (
		id BIGSERIAL PRIMARY KEY,
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		log_date DATE NOT NULL,
		hours_worked DOUBLE PRECISION,
		hours_slept DOUBLE PRECISION,
		personal_time DOUBLE PRECISION,
		motivation_level INTEGER,
		stress_level INTEGER,
		workload_intensity INTEGER,
		overtime_hours DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'queued',
		error_message TEXT,
		processed_at TIMESTAMPTZ,
		reviewed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (employee_id, log_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_logs_status_date
		ON daily_logs (status, log_date)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_logs_employee_date
		ON daily_logs (employee_id, log_date DESC)`,
	`CREATE TABLE IF NOT EXISTS agent_predictions (
		id BIGSERIAL PRIMARY KEY,
		daily_log_id BIGINT NOT NULL REFERENCES daily_logs(id),
		burnout_rate DOUBLE PRECISION NOT NULL,
		risk_level TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		needs_review BOOLEAN NOT NULL DEFAULT FALSE,
		human_validation BOOLEAN,
		review_notes TEXT,
		model_version TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		reviewed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_predictions_daily_log
		ON agent_predictions (daily_log_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_predictions_pending
		ON agent_predictions (created_at)
		WHERE needs_review AND human_validation IS NULL`,
	`CREATE TABLE IF NOT EXISTS model_versions (
		id BIGSERIAL PRIMARY KEY,
		version_label TEXT NOT NULL,
		training_mode TEXT NOT NULL,
		dataset_size INTEGER NOT NULL,
		accuracy DOUBLE PRECISION NOT NULL,
		model_file_path TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS system_settings (
		id BIGINT PRIMARY KEY CHECK (id = 1),
		new_samples_count INTEGER NOT NULL DEFAULT 0,
		retrain_threshold INTEGER NOT NULL DEFAULT 500,
		auto_retrain_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		last_retrain_at TIMESTAMPTZ,
		retrain_count INTEGER NOT NULL DEFAULT 0
	)`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema statement")
		}
	}
	return nil
}
