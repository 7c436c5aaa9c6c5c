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

const dailyLogColumns = `id, employee_id, log_date, hours_worked, hours_slept,
	personal_time, motivation_level, stress_level, workload_intensity,
	overtime_hours, status, error_message, processed_at, reviewed_at, created_at`

// DailyLogRepositoryImpl implements DailyLogRepository for PostgreSQL
type DailyLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewDailyLogRepository creates a new PostgreSQL daily log repository
func NewDailyLogRepository(db *sqlx.DB) ports.DailyLogRepository {
	return &DailyLogRepositoryImpl{db: db}
}

// Add persists a new daily log and returns it with its assigned id
func (r *DailyLogRepositoryImpl) Add(ctx context.Context, log *models.DailyLog) (*models.DailyLog, error) {
	var saved models.DailyLog
	err := r.db.GetContext(ctx, &saved, `
		INSERT INTO daily_logs (
			employee_id, log_date, hours_worked, hours_slept, personal_time,
			motivation_level, stress_level, workload_intensity, overtime_hours,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+dailyLogColumns,
		log.EmployeeID, log.LogDate, log.HoursWorked, log.HoursSlept,
		log.PersonalTime, log.MotivationLevel, log.StressLevel,
		log.WorkloadIntensity, log.OvertimeHours, models.StatusQueued)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetByID retrieves a daily log by id
func (r *DailyLogRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.DailyLog, error) {
	var log models.DailyLog
	err := r.db.GetContext(ctx, &log, `
		SELECT `+dailyLogColumns+` FROM daily_logs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrDailyLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// GetByEmployee returns an employee's logs, most recent business date first
func (r *DailyLogRepositoryImpl) GetByEmployee(ctx context.Context, employeeID int64, limit int) ([]models.DailyLog, error) {
	query := `
		SELECT ` + dailyLogColumns + ` FROM daily_logs
		WHERE employee_id = $1
		ORDER BY log_date DESC, id DESC`
	args := []interface{}{employeeID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var logs []models.DailyLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetByDateRange returns an employee's logs within [start, end]
func (r *DailyLogRepositoryImpl) GetByDateRange(ctx context.Context, employeeID int64, start, end time.Time) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT `+dailyLogColumns+` FROM daily_logs
		WHERE employee_id = $1 AND log_date BETWEEN $2 AND $3
		ORDER BY log_date ASC, id ASC`, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ClaimNext atomically claims the oldest log in status `from`, flipping it to
// `to`. FOR UPDATE SKIP LOCKED keeps concurrent workers from racing on the
// same row; returns (nil, nil) when nothing is claimable.
func (r *DailyLogRepositoryImpl) ClaimNext(ctx context.Context, from, to models.DailyLogStatus) (*models.DailyLog, error) {
	var log models.DailyLog
	err := r.db.GetContext(ctx, &log, `
		UPDATE daily_logs SET status = $1
		WHERE id = (
			SELECT id FROM daily_logs
			WHERE status = $2
			ORDER BY log_date ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+dailyLogColumns, to, from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// UpdateStatus sets a log's status and, when non-nil, its processed_at
func (r *DailyLogRepositoryImpl) UpdateStatus(ctx context.Context, id int64, status models.DailyLogStatus, processedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE daily_logs
		SET status = $2, processed_at = COALESCE($3, processed_at)
		WHERE id = $1`, id, status, processedAt)
	if err != nil {
		return err
	}
	return requireRowAffected(res, core.ErrDailyLogNotFound)
}

// SetError records the failure message for a log
func (r *DailyLogRepositoryImpl) SetError(ctx context.Context, id int64, message string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE daily_logs SET error_message = $2 WHERE id = $1`, id, message)
	if err != nil {
		return err
	}
	return requireRowAffected(res, core.ErrDailyLogNotFound)
}

// CountByStatus returns the number of logs per lifecycle status
func (r *DailyLogRepositoryImpl) CountByStatus(ctx context.Context) (map[models.DailyLogStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM daily_logs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.DailyLogStatus]int)
	for rows.Next() {
		var status models.DailyLogStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ListRecent returns the most recent logs company-wide, newest first
func (r *DailyLogRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT `+dailyLogColumns+` FROM daily_logs
		ORDER BY log_date DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func requireRowAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
