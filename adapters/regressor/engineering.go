package regressor

import (
	"burnoutd/models"
)

// employeeSeries is one employee's chronological feature rows and labels.
type employeeSeries struct {
	rows    [][]float64
	targets []float64
}

// buildSeries converts flat training samples into per-employee feature rows,
// appending the three rolling means to each row. Rolling means use up to the
// last RollingWindow days including the current one, so early days average
// over whatever history exists.
func buildSeries(samples []models.TrainingSample) map[int64]*employeeSeries {
	series := make(map[int64]*employeeSeries)
	for _, s := range samples {
		es, ok := series[s.EmployeeID]
		if !ok {
			es = &employeeSeries{}
			series[s.EmployeeID] = es
		}

		row := []float64{
			s.HoursWorked,
			s.HoursSlept,
			s.PersonalTime,
			float64(s.Motivation),
			float64(s.Stress),
			float64(s.Workload),
			s.OvertimeHours,
		}
		es.rows = append(es.rows, row)
		es.targets = append(es.targets, s.BurnoutRate)
	}

	// Rolling means are computed after grouping so each employee's window
	// only sees their own history.
	for _, es := range series {
		for i := range es.rows {
			start := i - models.RollingWindow + 1
			if start < 0 {
				start = 0
			}
			es.rows[i] = append(es.rows[i],
				meanAt(es.rows, start, i, 0), // work hours
				meanAt(es.rows, start, i, 4), // stress
				meanAt(es.rows, start, i, 3), // motivation
			)
		}
	}
	return series
}

func meanAt(rows [][]float64, start, end, col int) float64 {
	sum := 0.0
	for i := start; i <= end; i++ {
		sum += rows[i][col]
	}
	return sum / float64(end-start+1)
}

// slidingWindows flattens WindowDays consecutive scaled rows into one sample
// whose label is the following day's burnout rate. Employees with fewer than
// WindowDays+1 rows contribute nothing.
func slidingWindows(scaled [][]float64, targets []float64) (x [][]float64, y []float64) {
	if len(scaled) <= models.WindowDays {
		return nil, nil
	}
	for i := 0; i+models.WindowDays < len(scaled); i++ {
		window := make([]float64, 0, models.WindowDays*models.FeatureCount)
		for _, row := range scaled[i : i+models.WindowDays] {
			window = append(window, row...)
		}
		x = append(x, window)
		y = append(y, targets[i+models.WindowDays])
	}
	return x, y
}
