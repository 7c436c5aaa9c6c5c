package ports

import (
	"context"

	"burnoutd/models"
)

// EmployeeRepository defines the interface for employee data operations.
type EmployeeRepository interface {
	// GetByID retrieves an employee, returning core.ErrEmployeeNotFound if absent.
	GetByID(ctx context.Context, id int64) (*models.Employee, error)

	// GetByDepartment returns all employees assigned to a department.
	GetByDepartment(ctx context.Context, departmentID int64) ([]models.Employee, error)

	// Update persists alert-state changes (streak, last alert timestamp).
	Update(ctx context.Context, e *models.Employee) error
}
