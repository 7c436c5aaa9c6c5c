package agent

import (
	"context"
	"testing"
	"time"

	"burnoutd/internal/testkit"
	"burnoutd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicy(threshold float64) (*PolicyEngine, *testkit.PredictionStore, *testkit.DailyLogStore) {
	preds := testkit.NewPredictionStore()
	logs := testkit.NewDailyLogStore()
	return NewPolicyEngine(threshold, preds, logs), preds, logs
}

func TestShouldRequireReview(t *testing.T) {
	p, _, _ := newPolicy(0.70)

	cases := []struct {
		name       string
		level      models.RiskLevel
		confidence float64
		want       bool
	}{
		{"critical always reviewed", models.RiskCritical, 0.99, true},
		{"high below floor", models.RiskHigh, 0.74, true},
		{"high at floor", models.RiskHigh, 0.75, false},
		{"medium below floor", models.RiskMedium, 0.69, true},
		{"medium at floor", models.RiskMedium, 0.70, false},
		{"low below configured threshold", models.RiskLow, 0.65, true},
		{"low above configured threshold", models.RiskLow, 0.80, false},
		{"normal above configured threshold", models.RiskNormal, 0.71, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pred := &models.AgentPrediction{RiskLevel: tc.level, Confidence: tc.confidence}
			assert.Equal(t, tc.want, p.ShouldRequireReview(pred))
		})
	}

	assert.True(t, p.ShouldRequireReview(nil))
}

func TestShouldSendEscalatingAlert(t *testing.T) {
	p, _, _ := newPolicy(0.70)

	alertDays := map[int]bool{3: true, 7: true, 14: true, 21: true, 28: true}
	for streak := 0; streak <= 30; streak++ {
		assert.Equal(t, alertDays[streak], p.ShouldSendEscalatingAlert(streak),
			"streak %d", streak)
	}
}

func TestRecentHistorySkipsUnscoredDays(t *testing.T) {
	p, preds, logs := newPolicy(0.70)
	ctx := context.Background()
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	logs.Seed(
		models.DailyLog{ID: 1, EmployeeID: 1, LogDate: start},
		models.DailyLog{ID: 2, EmployeeID: 1, LogDate: start.AddDate(0, 0, 1)},
		models.DailyLog{ID: 3, EmployeeID: 1, LogDate: start.AddDate(0, 0, 2)},
	)
	// Day 2 never got scored.
	_, err := preds.Add(ctx, &models.AgentPrediction{DailyLogID: 1, BurnoutRate: 0.72, RiskLevel: models.RiskHigh})
	require.NoError(t, err)
	_, err = preds.Add(ctx, &models.AgentPrediction{DailyLogID: 3, BurnoutRate: 0.80, RiskLevel: models.RiskHigh})
	require.NoError(t, err)

	history, err := p.RecentHistory(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Most recent first.
	assert.Equal(t, 0.80, history[0].Rate)
	assert.Equal(t, 0.72, history[1].Rate)
	assert.True(t, history[0].Date.After(history[1].Date))
}
