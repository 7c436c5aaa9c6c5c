package features

import (
	"context"
	"sync"

	"burnoutd/models"
	"burnoutd/ports"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

const (
	departmentSampleBudget = 500
	globalSampleBudget     = 1000
)

// Baseline is the fallback feature values synthetic history blends from.
// Level fields are truncated to whole levels the way the averages are
// reported to humans.
type Baseline struct {
	WorkHours    float64
	SleepHours   float64
	PersonalTime float64
	Motivation   float64
	Stress       float64
	Workload     float64
	Overtime     float64
}

// DefaultBaseline returns the company-wide assumed values used when no data
// exists at all.
func DefaultBaseline() Baseline {
	return Baseline{
		WorkHours:    models.DefaultHoursWorked,
		SleepHours:   models.DefaultHoursSlept,
		PersonalTime: models.DefaultPersonalTime,
		Motivation:   float64(models.DefaultLevel),
		Stress:       float64(models.DefaultLevel),
		Workload:     float64(models.DefaultLevel),
		Overtime:     models.DefaultOvertime,
	}
}

// AverageProvider computes department and global fallback baselines, caching
// each after first computation. Caches live for the process lifetime; stale
// averages are acceptable because they only seed synthetic history.
type AverageProvider struct {
	logs      ports.DailyLogRepository
	employees ports.EmployeeRepository
	logger    *zap.Logger

	mu         sync.Mutex
	department map[int64]Baseline
	global     *Baseline
}

// NewAverageProvider creates a provider over the given repositories.
func NewAverageProvider(logs ports.DailyLogRepository, employees ports.EmployeeRepository, logger *zap.Logger) *AverageProvider {
	return &AverageProvider{
		logs:       logs,
		employees:  employees,
		logger:     logger,
		department: make(map[int64]Baseline),
	}
}

// DepartmentAverages returns the average feature values across a department's
// recent logs, spreading the sample budget evenly across its employees.
func (p *AverageProvider) DepartmentAverages(ctx context.Context, departmentID int64) Baseline {
	p.mu.Lock()
	if cached, ok := p.department[departmentID]; ok {
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	baseline := p.computeDepartment(ctx, departmentID)

	p.mu.Lock()
	p.department[departmentID] = baseline
	p.mu.Unlock()
	return baseline
}

// GlobalAverages returns the average feature values over the most recent
// company-wide logs.
func (p *AverageProvider) GlobalAverages(ctx context.Context) Baseline {
	p.mu.Lock()
	if p.global != nil {
		cached := *p.global
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	baseline := p.computeGlobal(ctx)

	p.mu.Lock()
	p.global = &baseline
	p.mu.Unlock()
	return baseline
}

func (p *AverageProvider) computeDepartment(ctx context.Context, departmentID int64) Baseline {
	employees, err := p.employees.GetByDepartment(ctx, departmentID)
	if err != nil || len(employees) == 0 {
		if err != nil {
			p.logger.Warn("department averages fell back to defaults",
				zap.Int64("department_id", departmentID), zap.Error(err))
		}
		return DefaultBaseline()
	}

	perEmployee := departmentSampleBudget / len(employees)
	if perEmployee < 1 {
		perEmployee = 1
	}

	var all []models.DailyLog
	for _, e := range employees {
		logs, err := p.logs.GetByEmployee(ctx, e.ID, perEmployee)
		if err != nil {
			p.logger.Warn("skipping employee in department averages",
				zap.Int64("employee_id", e.ID), zap.Error(err))
			continue
		}
		all = append(all, logs...)
		if len(all) >= departmentSampleBudget {
			break
		}
	}
	if len(all) == 0 {
		return DefaultBaseline()
	}
	return baselineFromLogs(all)
}

func (p *AverageProvider) computeGlobal(ctx context.Context) Baseline {
	logs, err := p.logs.ListRecent(ctx, globalSampleBudget)
	if err != nil || len(logs) == 0 {
		if err != nil {
			p.logger.Warn("global averages fell back to defaults", zap.Error(err))
		}
		return DefaultBaseline()
	}
	return baselineFromLogs(logs)
}

func baselineFromLogs(logs []models.DailyLog) Baseline {
	n := len(logs)
	work := make([]float64, n)
	sleep := make([]float64, n)
	personal := make([]float64, n)
	motivation := make([]float64, n)
	stress := make([]float64, n)
	workload := make([]float64, n)
	overtime := make([]float64, n)

	for i := range logs {
		l := &logs[i]
		work[i] = l.HoursWorkedOrDefault()
		sleep[i] = l.HoursSleptOrDefault()
		personal[i] = l.PersonalTimeOrDefault()
		motivation[i] = l.MotivationOrDefault()
		stress[i] = l.StressOrDefault()
		workload[i] = l.WorkloadOrDefault()
		overtime[i] = l.OvertimeOrDefault()
	}

	return Baseline{
		WorkHours:    mean(work),
		SleepHours:   mean(sleep),
		PersonalTime: mean(personal),
		Motivation:   float64(int(mean(motivation))),
		Stress:       float64(int(mean(stress))),
		Workload:     float64(int(mean(workload))),
		Overtime:     mean(overtime),
	}
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}
