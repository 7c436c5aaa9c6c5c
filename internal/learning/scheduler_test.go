package learning

import (
	"testing"

	"burnoutd/models"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerDecisionTable(t *testing.T) {
	s := NewScheduler()

	cases := []struct {
		name      string
		samples   int
		threshold int
		auto      bool
		want      models.TrainingDecision
	}{
		{"auto retrain disabled", 1000, 500, false, models.DecisionSkip},
		{"below incremental floor", 49, 500, true, models.DecisionSkip},
		{"at incremental floor", 50, 500, true, models.DecisionIncremental},
		{"between floors", 499, 500, true, models.DecisionIncremental},
		{"at full threshold", 500, 500, true, models.DecisionFull},
		{"above full threshold", 501, 500, true, models.DecisionFull},
		{"low custom threshold wins over incremental", 60, 60, true, models.DecisionFull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Decide(&models.SystemSettings{
				NewSamplesCount:    tc.samples,
				RetrainThreshold:   tc.threshold,
				AutoRetrainEnabled: tc.auto,
			})
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Equal(t, models.DecisionSkip, s.Decide(nil))
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, models.ModeFull, ModeFor(models.DecisionFull))
	assert.Equal(t, models.ModeIncremental, ModeFor(models.DecisionIncremental))
}
