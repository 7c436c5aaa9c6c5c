package learning

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"burnoutd/domain/core"
	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// minSamples is the smallest validated dataset worth materializing.
const minSamples = 5

// trainFraction of the dataset goes to train.csv, the rest to validation.csv.
const trainFraction = 0.8

var csvHeader = []string{
	"employee_id",
	"hours_worked",
	"hours_slept",
	"personal_time",
	"motivation_level",
	"stress_level",
	"workload_intensity",
	"overtime_hours",
	"burnout_rate",
}

// Dataset is one materialized, versioned training dataset on disk.
type Dataset struct {
	Version        string                  `json:"version"`
	Dir            string                  `json:"-"`
	TrainPath      string                  `json:"train_path"`
	ValidationPath string                  `json:"validation_path"`
	Samples        []models.TrainingSample `json:"-"`
	TrainCount     int                     `json:"train_samples"`
	ValidationL    int                     `json:"validation_samples"`
}

// datasetConfig is the metadata sidecar written next to the CSVs.
type datasetConfig struct {
	Version           string    `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	Since             time.Time `json:"validated_since"`
	TotalSamples      int       `json:"total_samples"`
	TrainSamples      int       `json:"train_samples"`
	ValidationSamples int       `json:"validation_samples"`
}

// DatasetFormatter turns human-validated predictions into versioned training
// datasets. Only predictions a reviewer confirmed become labels; rejected
// ones are noise the model must not learn from.
type DatasetFormatter struct {
	predictions ports.PredictionRepository
	logs        ports.DailyLogRepository
	dataDir     string
	logger      *zap.Logger

	// now is injectable so tests get stable version directories.
	now func() time.Time
}

// NewDatasetFormatter creates a formatter writing under dataDir.
func NewDatasetFormatter(predictions ports.PredictionRepository, logs ports.DailyLogRepository, dataDir string, logger *zap.Logger) *DatasetFormatter {
	return &DatasetFormatter{
		predictions: predictions,
		logs:        logs,
		dataDir:     dataDir,
		logger:      logger,
		now:         time.Now,
	}
}

// Format assembles every prediction validated at or after since into a
// versioned dataset directory containing train.csv, validation.csv and
// dataset_config.json. Returns core.ErrInsufficientData when fewer than
// five usable samples exist; nothing is written in that case.
func (f *DatasetFormatter) Format(ctx context.Context, since time.Time) (*Dataset, error) {
	preds, err := f.predictions.GetValidatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch validated predictions: %w", err)
	}

	var samples []models.TrainingSample
	for i := range preds {
		pred := &preds[i]
		if pred.HumanValidation == nil || !*pred.HumanValidation {
			continue
		}
		log, err := f.logs.GetByID(ctx, pred.DailyLogID)
		if err != nil {
			if core.IsNotFoundError(err) {
				f.logger.Warn("validated prediction references missing log, skipping",
					zap.Int64("prediction_id", pred.ID),
					zap.Int64("daily_log_id", pred.DailyLogID))
				continue
			}
			return nil, err
		}
		samples = append(samples, models.TrainingSample{
			EmployeeID:    log.EmployeeID,
			HoursWorked:   log.HoursWorkedOrDefault(),
			HoursSlept:    log.HoursSleptOrDefault(),
			PersonalTime:  log.PersonalTimeOrDefault(),
			Motivation:    int(log.MotivationOrDefault()),
			Stress:        int(log.StressOrDefault()),
			Workload:      int(log.WorkloadOrDefault()),
			OvertimeHours: log.OvertimeOrDefault(),
			BurnoutRate:   pred.BurnoutRate,
		})
	}

	if len(samples) < minSamples {
		return nil, core.NewInsufficientDataError(len(samples), minSamples)
	}

	version := f.now().UTC().Format("20060102_150405")
	dir := filepath.Join(f.dataDir, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dataset dir: %w", err)
	}

	split := int(float64(len(samples)) * trainFraction)
	if split == len(samples) {
		split = len(samples) - 1
	}
	train, validation := samples[:split], samples[split:]

	ds := &Dataset{
		Version:        version,
		Dir:            dir,
		TrainPath:      filepath.Join(dir, "train.csv"),
		ValidationPath: filepath.Join(dir, "validation.csv"),
		Samples:        samples,
		TrainCount:     len(train),
		ValidationL:    len(validation),
	}

	if err := writeSamplesCSV(ds.TrainPath, train); err != nil {
		return nil, err
	}
	if err := writeSamplesCSV(ds.ValidationPath, validation); err != nil {
		return nil, err
	}
	if err := f.writeConfig(dir, since, ds); err != nil {
		return nil, err
	}

	f.logger.Info("training dataset materialized",
		zap.String("version", version),
		zap.Int("total", len(samples)),
		zap.Int("train", len(train)),
		zap.Int("validation", len(validation)))
	return ds, nil
}

func (f *DatasetFormatter) writeConfig(dir string, since time.Time, ds *Dataset) error {
	cfg := datasetConfig{
		Version:           ds.Version,
		CreatedAt:         f.now().UTC(),
		Since:             since,
		TotalSamples:      len(ds.Samples),
		TrainSamples:      ds.TrainCount,
		ValidationSamples: ds.ValidationL,
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "dataset_config.json"), data, 0o644)
}

// ReadSamplesCSV loads training samples from a CSV in the dataset format,
// used to bootstrap the first model from a historical export.
func ReadSamplesCSV(path string) ([]models.TrainingSample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, name := range csvHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}

	samples := make([]models.TrainingSample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		s, err := parseSampleRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseSampleRow(row []string, col map[string]int) (models.TrainingSample, error) {
	var s models.TrainingSample
	var err error

	if s.EmployeeID, err = strconv.ParseInt(row[col["employee_id"]], 10, 64); err != nil {
		return s, err
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"hours_worked", &s.HoursWorked},
		{"hours_slept", &s.HoursSlept},
		{"personal_time", &s.PersonalTime},
		{"overtime_hours", &s.OvertimeHours},
		{"burnout_rate", &s.BurnoutRate},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(row[col[f.name]], 64); err != nil {
			return s, err
		}
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"motivation_level", &s.Motivation},
		{"stress_level", &s.Stress},
		{"workload_intensity", &s.Workload},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(row[col[f.name]]); err != nil {
			return s, err
		}
	}
	return s, nil
}

func writeSamplesCSV(path string, samples []models.TrainingSample) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range samples {
		record := []string{
			strconv.FormatInt(s.EmployeeID, 10),
			strconv.FormatFloat(s.HoursWorked, 'f', -1, 64),
			strconv.FormatFloat(s.HoursSlept, 'f', -1, 64),
			strconv.FormatFloat(s.PersonalTime, 'f', -1, 64),
			strconv.Itoa(s.Motivation),
			strconv.Itoa(s.Stress),
			strconv.Itoa(s.Workload),
			strconv.FormatFloat(s.OvertimeHours, 'f', -1, 64),
			strconv.FormatFloat(s.BurnoutRate, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}
