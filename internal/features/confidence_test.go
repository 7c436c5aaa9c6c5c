package features

import (
	"math"
	"testing"
	"time"

	"burnoutd/internal/testkit"
	"burnoutd/models"

	"github.com/stretchr/testify/assert"
)

func fullLog() *models.DailyLog {
	return &models.DailyLog{
		EmployeeID:        1,
		LogDate:           time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		HoursWorked:       testkit.Float64(8),
		HoursSlept:        testkit.Float64(7),
		PersonalTime:      testkit.Float64(2),
		MotivationLevel:   testkit.Int(5),
		StressLevel:       testkit.Int(5),
		WorkloadIntensity: testkit.Int(5),
		OvertimeHours:     testkit.Float64(0),
	}
}

func steadyHistory(days int) []models.DailyLog {
	logs := make([]models.DailyLog, days)
	for i := range logs {
		logs[i] = models.DailyLog{
			HoursWorked:     testkit.Float64(8),
			HoursSlept:      testkit.Float64(7),
			StressLevel:     testkit.Int(5),
			MotivationLevel: testkit.Int(5),
		}
	}
	return logs
}

func TestEstimateFullDataPerfectConsistency(t *testing.T) {
	e := NewConfidenceEstimator()
	input := &PreparedInput{
		Quality:     models.QualityExcellent,
		RealHistory: steadyHistory(6),
	}

	// 0.95*0.65 + 1.0*0.20 + 1.0*0.15 = 0.9675, which sits just under the
	// midpoint in float64, so rounding to three decimals lands on 0.967.
	got := e.Estimate(input, fullLog())
	assert.InDelta(t, 0.967, got, 1e-9)
}

func TestEstimateCompletenessScalesWithSuppliedFields(t *testing.T) {
	e := NewConfidenceEstimator()
	input := &PreparedInput{Quality: models.QualityEstimatedGlobal}

	// No history: consistency term ramps from zero real days.
	// 0.40*0.65 + (3/7)*0.20 + 0 = 0.3457 -> 0.346
	sparse := &models.DailyLog{
		HoursWorked: testkit.Float64(12),
		HoursSlept:  testkit.Float64(4),
		StressLevel: testkit.Int(9),
	}
	assert.InDelta(t, 0.346, e.Estimate(input, sparse), 1e-9)

	// 0.40*0.65 + 1.0*0.20 + 0 = 0.46
	assert.InDelta(t, 0.46, e.Estimate(input, fullLog()), 1e-9)
}

func TestEstimateConsistencyRampBelowThreeDays(t *testing.T) {
	e := NewConfidenceEstimator()

	one := &PreparedInput{Quality: models.QualityFair, RealHistory: steadyHistory(1)}
	two := &PreparedInput{Quality: models.QualityFair, RealHistory: steadyHistory(2)}
	three := &PreparedInput{Quality: models.QualityFair, RealHistory: steadyHistory(3)}

	log := fullLog()
	c1 := e.Estimate(one, log)
	c2 := e.Estimate(two, log)
	c3 := e.Estimate(three, log)

	assert.Less(t, c1, c2)
	assert.Less(t, c2, c3)
	// 0.65*0.65 + 0.20 + (1/3)*0.15 = 0.6725 -> 0.673
	assert.InDelta(t, 0.673, c1, 1e-9)
}

func TestEstimateEndToEndColdStartCeiling(t *testing.T) {
	e := NewConfidenceEstimator()
	// A brand-new subject can never exceed 0.55 before penalties.
	for _, q := range []models.DataQuality{models.QualityEstimatedDept, models.QualityEstimatedGlobal} {
		input := &PreparedInput{Quality: q}
		got := e.Estimate(input, fullLog())
		assert.LessOrEqual(t, got, 0.55, "quality %s", q)
	}
}

func TestUncertaintyPenaltyPriority(t *testing.T) {
	e := NewConfidenceEstimator()

	flat := make([]float64, 70)
	for i := range flat {
		flat[i] = 0.5
	}

	// NaN wins even when other conditions also hold.
	withNaN := append([]float64(nil), flat...)
	withNaN[3] = math.NaN()
	assert.Equal(t, 0.25, e.UncertaintyPenalty(withNaN, 0.95))

	withInf := append([]float64(nil), flat...)
	withInf[3] = math.Inf(1)
	assert.Equal(t, 0.25, e.UncertaintyPenalty(withInf, 0.5))

	// High variance beats the extreme-rate check.
	spread := make([]float64, 70)
	for i := range spread {
		if i%2 == 0 {
			spread[i] = 0
		} else {
			spread[i] = 2
		}
	}
	assert.Equal(t, 0.15, e.UncertaintyPenalty(spread, 0.95))

	// Extreme predicted rates are trusted less.
	assert.Equal(t, 0.10, e.UncertaintyPenalty(flat, 0.05))
	assert.Equal(t, 0.10, e.UncertaintyPenalty(flat, 0.95))

	// Baseline penalty always applies.
	assert.Equal(t, 0.05, e.UncertaintyPenalty(flat, 0.5))
}

func TestApplyDiscountsAndClamps(t *testing.T) {
	e := NewConfidenceEstimator()
	assert.InDelta(t, 0.76, e.Apply(0.8, 0.05), 1e-9)
	assert.InDelta(t, 0.6, e.Apply(0.8, 0.25), 1e-9)
	assert.Equal(t, 0.0, e.Apply(0, 0.05))
}

func TestPredictionMessages(t *testing.T) {
	cases := []struct {
		rate    float64
		level   models.RiskLevel
		quality models.DataQuality
		want    string
	}{
		{0.90, models.RiskCritical, models.QualityExcellent, "URGENT: High burnout rate (90.0%) detected."},
		{0.75, models.RiskHigh, models.QualityEstimatedGlobal, "Warning: 75.0% burnout rate (estimated from company averages)."},
		{0.50, models.RiskMedium, models.QualityGood, "Some warning signs detected (based on partial history)."},
		{0.35, models.RiskLow, models.QualityExcellent, "Healthy balance maintained."},
		{0.10, models.RiskNormal, models.QualityFair, "Healthy balance maintained (limited historical data)."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PredictionMessage(tc.rate, tc.level, tc.quality))
	}
}
