package excel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"burnoutd/models"

	"go.uber.org/zap"
)

// Enqueuer is the intake side of the submission queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, log *models.DailyLog) (*models.DailyLog, error)
}

// ImportResult summarizes one bulk import.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []string
}

// Importer loads daily-log submissions from a spreadsheet into the queue.
// Each row becomes one QUEUED log; bad rows are collected, not fatal.
type Importer struct {
	queue  Enqueuer
	logger *zap.Logger
}

// NewImporter creates an importer feeding the given queue.
func NewImporter(queue Enqueuer, logger *zap.Logger) *Importer {
	return &Importer{queue: queue, logger: logger}
}

// dateLayouts covers ISO dates plus the formats excelize renders date cells
// in by default.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
}

// Import reads the file and enqueues every parseable row.
func (im *Importer) Import(ctx context.Context, filePath string) (*ImportResult, error) {
	data, err := NewDataReader(filePath).ReadData()
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range data.Rows {
		log, err := rowToDailyLog(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		if _, err := im.queue.Enqueue(ctx, log); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Imported++
	}

	im.logger.Info("spreadsheet import finished",
		zap.String("file", filePath),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func rowToDailyLog(row RawRow) (*models.DailyLog, error) {
	employeeID, err := requiredInt64(row, "employee_id")
	if err != nil {
		return nil, err
	}
	logDate, err := requiredDate(row, "log_date")
	if err != nil {
		return nil, err
	}

	log := &models.DailyLog{EmployeeID: employeeID, LogDate: logDate}
	if log.HoursWorked, err = optionalFloat(row, "hours_worked"); err != nil {
		return nil, err
	}
	if log.HoursSlept, err = optionalFloat(row, "hours_slept"); err != nil {
		return nil, err
	}
	if log.PersonalTime, err = optionalFloat(row, "personal_time"); err != nil {
		return nil, err
	}
	if log.MotivationLevel, err = optionalInt(row, "motivation_level"); err != nil {
		return nil, err
	}
	if log.StressLevel, err = optionalInt(row, "stress_level"); err != nil {
		return nil, err
	}
	if log.WorkloadIntensity, err = optionalInt(row, "workload_intensity"); err != nil {
		return nil, err
	}
	if log.OvertimeHours, err = optionalFloat(row, "overtime_hours"); err != nil {
		return nil, err
	}
	return log, nil
}

func requiredInt64(row RawRow, key string) (int64, error) {
	raw := row[key]
	if raw == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", key, raw)
	}
	return v, nil
}

func requiredDate(row RawRow, key string) (time.Time, error) {
	raw := row[key]
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing %s", key)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad %s %q", key, raw)
}

func optionalFloat(row RawRow, key string) (*float64, error) {
	raw := row[key]
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q", key, raw)
	}
	return &v, nil
}

func optionalInt(row RawRow, key string) (*int, error) {
	raw := row[key]
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q", key, raw)
	}
	return &v, nil
}
