package models

// Feature window geometry shared by training and serving. A prediction input
// is WindowDays rows of FeatureCount columns, flattened row-major before it
// reaches the regressor.
const (
	WindowDays    = 7
	RollingWindow = 7
	FeatureCount  = 10
)

// FeatureNames returns the canonical column order of a feature row: the seven
// raw metrics followed by the three rolling means.
func FeatureNames() []string {
	return []string{
		"work_hours",
		"sleep_hours",
		"personal_time",
		"motivation_level",
		"stress_level",
		"workload_intensity",
		"overtime_hours",
		"work_hours_rolling_7d",
		"stress_level_rolling_7d",
		"motivation_level_rolling_7d",
	}
}
