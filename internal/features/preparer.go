package features

import (
	"context"
	"math/rand"
	"sync"

	"burnoutd/domain/core"
	"burnoutd/internal/errors"
	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// PreparedInput is a model-ready feature window plus the context the
// confidence estimator needs to judge how trustworthy it is.
type PreparedInput struct {
	// Window is WindowDays rows of FeatureCount unscaled values, oldest first.
	Window [][]float64
	// Quality labels how much of the window is real history.
	Quality models.DataQuality
	// RealHistory holds the subject's actual prior logs used in the window,
	// oldest first.
	RealHistory []models.DailyLog
}

// FeaturePreparer assembles a fixed-size feature window for one submission,
// synthesizing missing history from department or company baselines.
type FeaturePreparer struct {
	logs      ports.DailyLogRepository
	employees ports.EmployeeRepository
	averages  *AverageProvider
	logger    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewFeaturePreparer creates a preparer. rng drives synthetic-history noise
// and must be seeded by the caller; tests pass a fixed seed for determinism.
func NewFeaturePreparer(
	logs ports.DailyLogRepository,
	employees ports.EmployeeRepository,
	averages *AverageProvider,
	rng *rand.Rand,
	logger *zap.Logger,
) *FeaturePreparer {
	return &FeaturePreparer{
		logs:      logs,
		employees: employees,
		averages:  averages,
		logger:    logger,
		rng:       rng,
	}
}

// Prepare builds the feature window for the given submission.
//
// Resolution strategy, in priority order:
//  1. enough real history: real days + current day
//  2. partial history: synthetic prefix blended from a fallback baseline
//  3. no history: fully synthetic prefix
func (p *FeaturePreparer) Prepare(ctx context.Context, log *models.DailyLog) (*PreparedInput, error) {
	history, err := p.priorHistory(ctx, log)
	if err != nil {
		return nil, err
	}
	realDays := len(history)

	hasDepartment, departmentID := p.department(ctx, log.EmployeeID)

	var rows [][]float64
	var quality models.DataQuality

	switch {
	case realDays >= models.WindowDays-1:
		quality = models.QualityExcellent
		for i := range history {
			rows = append(rows, rawRow(&history[i]))
		}
		rows = append(rows, rawRow(log))

	case realDays > 0:
		daysNeeded := (models.WindowDays - 1) - realDays
		if hasDepartment {
			quality = models.QualityGood
		} else {
			quality = models.QualityFair
		}
		rows = p.syntheticRows(ctx, log, daysNeeded, hasDepartment, departmentID)
		for i := range history {
			rows = append(rows, rawRow(&history[i]))
		}
		rows = append(rows, rawRow(log))

	default:
		if hasDepartment {
			quality = models.QualityEstimatedDept
		} else {
			quality = models.QualityEstimatedGlobal
		}
		rows = p.syntheticRows(ctx, log, models.WindowDays-1, hasDepartment, departmentID)
		rows = append(rows, rawRow(log))
	}

	p.logger.Debug("prepared feature window",
		zap.Int64("daily_log_id", log.ID),
		zap.Int("real_days", realDays),
		zap.String("quality", string(quality)))

	return &PreparedInput{
		Window:      addRollingFeatures(rows),
		Quality:     quality,
		RealHistory: history,
	}, nil
}

// priorHistory returns up to WindowDays-1 of the subject's logs strictly
// before the current submission's date, oldest first.
func (p *FeaturePreparer) priorHistory(ctx context.Context, log *models.DailyLog) ([]models.DailyLog, error) {
	recent, err := p.logs.GetByEmployee(ctx, log.EmployeeID, models.WindowDays)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch subject history")
	}

	var prior []models.DailyLog
	for _, l := range recent {
		if l.ID == log.ID || !l.LogDate.Before(log.LogDate) {
			continue
		}
		prior = append(prior, l)
		if len(prior) == models.WindowDays-1 {
			break
		}
	}

	// recent is newest first; the window wants chronological order.
	for i, j := 0, len(prior)-1; i < j; i, j = i+1, j-1 {
		prior[i], prior[j] = prior[j], prior[i]
	}
	return prior, nil
}

func (p *FeaturePreparer) department(ctx context.Context, employeeID int64) (bool, int64) {
	employee, err := p.employees.GetByID(ctx, employeeID)
	if err != nil {
		if !core.IsNotFoundError(err) {
			p.logger.Warn("employee lookup failed, assuming no department",
				zap.Int64("employee_id", employeeID), zap.Error(err))
		}
		return false, 0
	}
	if employee.DepartmentID == nil {
		return false, 0
	}
	return true, *employee.DepartmentID
}

// syntheticRows fabricates daysNeeded rows by blending a fallback baseline
// toward the current day's values. Earlier rows lean on the baseline, later
// rows on the subject, with bounded noise so the window is not flat.
func (p *FeaturePreparer) syntheticRows(ctx context.Context, log *models.DailyLog, daysNeeded int, hasDepartment bool, departmentID int64) [][]float64 {
	var baseline Baseline
	if hasDepartment {
		baseline = p.averages.DepartmentAverages(ctx, departmentID)
	} else {
		baseline = p.averages.GlobalAverages(ctx)
	}

	rows := make([][]float64, 0, daysNeeded)
	for i := 0; i < daysNeeded; i++ {
		blend := float64(i+1) / float64(daysNeeded)

		work := lerp(baseline.WorkHours, log.HoursWorkedOrDefault(), blend) + p.uniform(-0.5, 0.5)
		sleep := lerp(baseline.SleepHours, log.HoursSleptOrDefault(), blend) + p.uniform(-0.3, 0.3)
		personal := lerp(baseline.PersonalTime, log.PersonalTimeOrDefault(), blend) + p.uniform(-0.2, 0.2)
		motivation := clampLevel(lerp(baseline.Motivation, log.MotivationOrDefault(), blend) + p.levelNoise())
		stress := clampLevel(lerp(baseline.Stress, log.StressOrDefault(), blend) + p.levelNoise())
		workload := clampLevel(lerp(baseline.Workload, log.WorkloadOrDefault(), blend) + p.levelNoise())
		overtime := lerp(baseline.Overtime, log.OvertimeOrDefault(), blend) + p.uniform(-0.1, 0.1)
		if overtime < 0 {
			overtime = 0
		}

		rows = append(rows, []float64{work, sleep, personal, motivation, stress, workload, overtime})
	}
	return rows
}

func (p *FeaturePreparer) uniform(lo, hi float64) float64 {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return lo + p.rng.Float64()*(hi-lo)
}

func (p *FeaturePreparer) levelNoise() float64 {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return float64(p.rng.Intn(3) - 1) // -1, 0, or +1
}

func rawRow(log *models.DailyLog) []float64 {
	return []float64{
		log.HoursWorkedOrDefault(),
		log.HoursSleptOrDefault(),
		log.PersonalTimeOrDefault(),
		log.MotivationOrDefault(),
		log.StressOrDefault(),
		log.WorkloadOrDefault(),
		log.OvertimeOrDefault(),
	}
}

// addRollingFeatures appends the three rolling means to each row, computed
// over the window itself (up to RollingWindow days ending at the row).
func addRollingFeatures(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		start := i - models.RollingWindow + 1
		if start < 0 {
			start = 0
		}
		extended := make([]float64, 0, models.FeatureCount)
		extended = append(extended, row...)
		extended = append(extended,
			windowMean(rows, start, i, 0), // work hours
			windowMean(rows, start, i, 4), // stress
			windowMean(rows, start, i, 3), // motivation
		)
		out[i] = extended
	}
	return out
}

func windowMean(rows [][]float64, start, end, col int) float64 {
	sum := 0.0
	for i := start; i <= end; i++ {
		sum += rows[i][col]
	}
	return sum / float64(end-start+1)
}

func lerp(from, to, ratio float64) float64 {
	return from*(1-ratio) + to*ratio
}

func clampLevel(v float64) float64 {
	v = float64(int(v))
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
