package models

import "time"

// Default values substituted for metrics the employee did not fill in.
// Feature completeness scoring counts only explicitly supplied fields, which
// is why the raw entity keeps pointers instead of zero values.
const (
	DefaultHoursWorked  = 8.0
	DefaultHoursSlept   = 7.0
	DefaultPersonalTime = 2.0
	DefaultLevel        = 5
	DefaultOvertime     = 0.0
)

// DailyLog is one employee's one day of raw well-being inputs. Status and
// timestamps are mutated only by the queue; the metric fields come from data
// entry and are never touched by the agent.
type DailyLog struct {
	ID                int64          `db:"id" json:"id"`
	EmployeeID        int64          `db:"employee_id" json:"employee_id"`
	LogDate           time.Time      `db:"log_date" json:"log_date"`
	HoursWorked       *float64       `db:"hours_worked" json:"hours_worked,omitempty"`
	HoursSlept        *float64       `db:"hours_slept" json:"hours_slept,omitempty"`
	PersonalTime      *float64       `db:"personal_time" json:"personal_time,omitempty"`
	MotivationLevel   *int           `db:"motivation_level" json:"motivation_level,omitempty"`
	StressLevel       *int           `db:"stress_level" json:"stress_level,omitempty"`
	WorkloadIntensity *int           `db:"workload_intensity" json:"workload_intensity,omitempty"`
	OvertimeHours     *float64       `db:"overtime_hours" json:"overtime_hours,omitempty"`
	Status            DailyLogStatus `db:"status" json:"status"`
	ErrorMessage      *string        `db:"error_message" json:"error_message,omitempty"`
	ProcessedAt       *time.Time     `db:"processed_at" json:"processed_at,omitempty"`
	ReviewedAt        *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// HoursWorkedOrDefault returns the supplied value or the company default.
func (d *DailyLog) HoursWorkedOrDefault() float64 { return floatOr(d.HoursWorked, DefaultHoursWorked) }

// HoursSleptOrDefault returns the supplied value or the company default.
func (d *DailyLog) HoursSleptOrDefault() float64 { return floatOr(d.HoursSlept, DefaultHoursSlept) }

// PersonalTimeOrDefault returns the supplied value or the company default.
func (d *DailyLog) PersonalTimeOrDefault() float64 {
	return floatOr(d.PersonalTime, DefaultPersonalTime)
}

// MotivationOrDefault returns the supplied value or the neutral level.
func (d *DailyLog) MotivationOrDefault() float64 { return intOr(d.MotivationLevel, DefaultLevel) }

// StressOrDefault returns the supplied value or the neutral level.
func (d *DailyLog) StressOrDefault() float64 { return intOr(d.StressLevel, DefaultLevel) }

// WorkloadOrDefault returns the supplied value or the neutral level.
func (d *DailyLog) WorkloadOrDefault() float64 { return intOr(d.WorkloadIntensity, DefaultLevel) }

// OvertimeOrDefault returns the supplied value or zero.
func (d *DailyLog) OvertimeOrDefault() float64 { return floatOr(d.OvertimeHours, DefaultOvertime) }

// SuppliedFieldCount reports how many of the seven raw metric fields were
// explicitly provided on this submission.
func (d *DailyLog) SuppliedFieldCount() int {
	n := 0
	if d.HoursWorked != nil {
		n++
	}
	if d.HoursSlept != nil {
		n++
	}
	if d.PersonalTime != nil {
		n++
	}
	if d.MotivationLevel != nil {
		n++
	}
	if d.StressLevel != nil {
		n++
	}
	if d.WorkloadIntensity != nil {
		n++
	}
	if d.OvertimeHours != nil {
		n++
	}
	return n
}

// RawFieldCount is the number of raw metric fields on a daily log.
const RawFieldCount = 7

func floatOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func intOr(v *int, def int) float64 {
	if v != nil {
		return float64(*v)
	}
	return float64(def)
}

// AgentPrediction is one ML outcome tied to a daily log. Created by the
// agent's think phase; the validation fields are mutated only by the human
// review workflow.
type AgentPrediction struct {
	ID              int64      `db:"id" json:"id"`
	DailyLogID      int64      `db:"daily_log_id" json:"daily_log_id"`
	BurnoutRate     float64    `db:"burnout_rate" json:"burnout_rate"`
	RiskLevel       RiskLevel  `db:"risk_level" json:"risk_level"`
	Confidence      float64    `db:"confidence" json:"confidence"`
	Message         string     `db:"message" json:"message"`
	NeedsReview     bool       `db:"needs_review" json:"needs_review"`
	HumanValidation *bool      `db:"human_validation" json:"human_validation,omitempty"`
	ReviewNotes     *string    `db:"review_notes" json:"review_notes,omitempty"`
	ModelVersion    string     `db:"model_version" json:"model_version"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt      *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// Employee carries the per-subject alert state alongside identity. The streak
// increments only on confirmed consecutive HIGH classifications and resets to
// zero on any non-HIGH outcome.
type Employee struct {
	ID              int64      `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	DepartmentID    *int64     `db:"department_id" json:"department_id,omitempty"`
	HighRiskStreak  int        `db:"high_risk_streak" json:"high_risk_streak"`
	LastAlertSentAt *time.Time `db:"last_alert_sent_at" json:"last_alert_sent_at,omitempty"`
}

// Department groups employees for fallback-average computation.
type Department struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// ModelVersion is one entry in the trained-model history.
type ModelVersion struct {
	ID            int64        `db:"id" json:"id"`
	VersionLabel  string       `db:"version_label" json:"version_label"`
	TrainingMode  TrainingMode `db:"training_mode" json:"training_mode"`
	DatasetSize   int          `db:"dataset_size" json:"dataset_size"`
	Accuracy      float64      `db:"accuracy" json:"accuracy"`
	ModelFilePath string       `db:"model_file_path" json:"model_file_path"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}

// SystemSettings is the retraining-state singleton (row id 1).
type SystemSettings struct {
	ID                 int64      `db:"id" json:"id"`
	NewSamplesCount    int        `db:"new_samples_count" json:"new_samples_count"`
	RetrainThreshold   int        `db:"retrain_threshold" json:"retrain_threshold"`
	AutoRetrainEnabled bool       `db:"auto_retrain_enabled" json:"auto_retrain_enabled"`
	LastRetrainAt      *time.Time `db:"last_retrain_at" json:"last_retrain_at,omitempty"`
	RetrainCount       int        `db:"retrain_count" json:"retrain_count"`
}

// QueueStats is a per-status count snapshot of the daily-log queue.
type QueueStats struct {
	Total         int `json:"total"`
	Queued        int `json:"queued"`
	Processing    int `json:"processing"`
	Analyzed      int `json:"analyzed"`
	PendingReview int `json:"pending_review"`
	Reviewed      int `json:"reviewed"`
	Failed        int `json:"failed"`
}

// PredictionOutcome is the result of one agent tick, returned to callers for
// real-time reporting.
type PredictionOutcome struct {
	DailyLogID  int64     `json:"daily_log_id"`
	EmployeeID  int64     `json:"employee_id"`
	BurnoutRate float64   `json:"burnout_rate"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Confidence  float64   `json:"confidence"`
	NeedsReview bool      `json:"needs_review"`
	ProcessedAt time.Time `json:"processed_at"`
	Message     string    `json:"message"`
}

// HistoryEntry is one (date, rate, level) triple included in escalation
// alerts, most recent first.
type HistoryEntry struct {
	Date  time.Time `json:"date"`
	Rate  float64   `json:"rate"`
	Level RiskLevel `json:"level"`
}

// TrainingSample is one labelled row of the training dataset.
type TrainingSample struct {
	EmployeeID    int64   `json:"employee_id"`
	HoursWorked   float64 `json:"hours_worked"`
	HoursSlept    float64 `json:"hours_slept"`
	PersonalTime  float64 `json:"personal_time"`
	Motivation    int     `json:"motivation_level"`
	Stress        int     `json:"stress_level"`
	Workload      int     `json:"workload_intensity"`
	OvertimeHours float64 `json:"overtime_hours"`
	BurnoutRate   float64 `json:"burnout_rate"`
}

// TrainingMetrics summarizes one fit of the regressor.
type TrainingMetrics struct {
	TrainR2      float64 `json:"train_r2"`
	TestR2       float64 `json:"test_r2"`
	TrainSamples int     `json:"train_samples"`
	TestSamples  int     `json:"test_samples"`
	FeatureCount int     `json:"feature_count"`
	MSE          float64 `json:"mse"`
	MAE          float64 `json:"mae"`
}

// RegressorOutput is a raw model prediction plus the scaled feature window it
// was computed from, kept for uncertainty diagnostics.
type RegressorOutput struct {
	Rate         float64
	ScaledWindow []float64
}
