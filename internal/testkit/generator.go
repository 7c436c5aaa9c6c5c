package testkit

import (
	"math/rand"
	"time"

	"burnoutd/models"
)

// Float64 returns a pointer to v, for building partially filled logs.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// LogGeneratorConfig shapes the synthetic daily logs produced for tests.
type LogGeneratorConfig struct {
	EmployeeID int64
	Start      time.Time
	Days       int
	Seed       int64

	// BaseWorkHours and BaseStress shift the generated pattern so tests can
	// fabricate healthy or overworked subjects.
	BaseWorkHours float64
	BaseStress    int
}

// GenerateLogs fabricates one fully populated log per day, deterministic for
// a given seed.
func GenerateLogs(cfg LogGeneratorConfig) []models.DailyLog {
	if cfg.BaseWorkHours == 0 {
		cfg.BaseWorkHours = 8
	}
	if cfg.BaseStress == 0 {
		cfg.BaseStress = 5
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	logs := make([]models.DailyLog, 0, cfg.Days)
	for d := 0; d < cfg.Days; d++ {
		stress := clampLevel(cfg.BaseStress + rng.Intn(3) - 1)
		motivation := clampLevel(11 - stress + rng.Intn(3) - 1)
		logs = append(logs, models.DailyLog{
			EmployeeID:        cfg.EmployeeID,
			LogDate:           cfg.Start.AddDate(0, 0, d),
			HoursWorked:       Float64(cfg.BaseWorkHours + rng.Float64()*2 - 1),
			HoursSlept:        Float64(7 + rng.Float64()*2 - 1),
			PersonalTime:      Float64(2 + rng.Float64()),
			MotivationLevel:   Int(motivation),
			StressLevel:       Int(stress),
			WorkloadIntensity: Int(clampLevel(cfg.BaseStress + rng.Intn(3) - 1)),
			OvertimeHours:     Float64(rng.Float64()),
			Status:            models.StatusQueued,
			CreatedAt:         cfg.Start.AddDate(0, 0, d),
		})
	}
	return logs
}

func clampLevel(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
