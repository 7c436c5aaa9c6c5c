package postgres

import (
	"context"
	"database/sql"
	"errors"

	"burnoutd/domain/core"
	"burnoutd/models"
	"burnoutd/ports"

	"github.com/jmoiron/sqlx"
)

const employeeColumns = `id, name, email, department_id, high_risk_streak, last_alert_sent_at`

// EmployeeRepositoryImpl implements EmployeeRepository for PostgreSQL
type EmployeeRepositoryImpl struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new PostgreSQL employee repository
func NewEmployeeRepository(db *sqlx.DB) ports.EmployeeRepository {
	return &EmployeeRepositoryImpl{db: db}
}

// GetByID retrieves an employee by id
func (r *EmployeeRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	var e models.Employee
	err := r.db.GetContext(ctx, &e, `
		SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByDepartment returns all employees assigned to a department
func (r *EmployeeRepositoryImpl) GetByDepartment(ctx context.Context, departmentID int64) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.SelectContext(ctx, &employees, `
		SELECT `+employeeColumns+` FROM employees
		WHERE department_id = $1
		ORDER BY id ASC`, departmentID)
	if err != nil {
		return nil, err
	}
	return employees, nil
}

// Update persists alert-state changes
func (r *EmployeeRepositoryImpl) Update(ctx context.Context, e *models.Employee) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE employees SET
			name = $2,
			email = $3,
			department_id = $4,
			high_risk_streak = $5,
			last_alert_sent_at = $6
		WHERE id = $1`,
		e.ID, e.Name, e.Email, e.DepartmentID, e.HighRiskStreak, e.LastAlertSentAt)
	if err != nil {
		return err
	}
	return requireRowAffected(res, core.ErrEmployeeNotFound)
}
