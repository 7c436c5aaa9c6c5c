package regressor

import (
	"context"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"burnoutd/domain/core"
	"burnoutd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticSamples fabricates a deterministic dataset. Each window is labeled
// with the *following* day's rate, so the per-employee load has to drift
// slowly across days for the fit to be learnable; an i.i.d. draw per day
// would leave the label independent of the window.
func syntheticSamples(employees, days int) []models.TrainingSample {
	rng := rand.New(rand.NewSource(7))
	var samples []models.TrainingSample
	for e := 1; e <= employees; e++ {
		phase := rng.Float64() * 2 * math.Pi
		for d := 0; d < days; d++ {
			load := 0.5 + 0.5*math.Sin(float64(d)/10+phase) // slow 0..1 cycle
			work := 6 + 6*load + rng.Float64()*0.4
			sleep := 9 - 4*load + rng.Float64()*0.4
			personal := 4 * (1 - load)
			stress := 1 + int(9*load)      // 1..10
			motivation := 10 - int(8*load) // 2..10
			workload := 1 + int(9*load)
			overtime := 3 * load

			rate := 0.2 + 0.04*(work-6) + 0.03*float64(stress) -
				0.02*(sleep-5) + 0.02*overtime

			samples = append(samples, models.TrainingSample{
				EmployeeID:    int64(e),
				HoursWorked:   work,
				HoursSlept:    sleep,
				PersonalTime:  personal,
				Motivation:    motivation,
				Stress:        stress,
				Workload:      workload,
				OvertimeHours: overtime,
				BurnoutRate:   rate,
			})
		}
	}
	return samples
}

func TestRidgeTrainPersistAndReload(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "burnout_model.json")
	r := NewRidgeRegressor()

	metrics, err := r.Train(context.Background(), syntheticSamples(5, 40), modelPath)
	require.NoError(t, err)
	assert.True(t, r.IsLoaded())
	assert.Greater(t, metrics.TrainSamples, 0)
	assert.Greater(t, metrics.TestSamples, 0)
	assert.Equal(t, models.FeatureCount, metrics.FeatureCount)
	assert.Greater(t, metrics.TestR2, 0.5, "linear signal should be learnable")

	// A fresh instance loading the persisted file must reproduce the
	// original's output exactly.
	window := make([][]float64, models.WindowDays)
	for i := range window {
		window[i] = []float64{8, 7, 2, 5, 5, 5, 0, 8, 5, 5}
	}
	original, err := r.Predict(window)
	require.NoError(t, err)
	assert.Len(t, original.ScaledWindow, models.WindowDays*models.FeatureCount)

	reloaded := NewRidgeRegressor()
	require.NoError(t, reloaded.LoadFromPath(modelPath))
	out, err := reloaded.Predict(window)
	require.NoError(t, err)
	assert.InDelta(t, original.Rate, out.Rate, 1e-12)
}

func TestRidgePredictRequiresLoadedModel(t *testing.T) {
	r := NewRidgeRegressor()
	window := make([][]float64, models.WindowDays)
	for i := range window {
		window[i] = make([]float64, models.FeatureCount)
	}

	_, err := r.Predict(window)
	assert.ErrorIs(t, err, core.ErrModelNotLoaded)
}

func TestRidgeTrainRejectsShortHistories(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "model.json")
	r := NewRidgeRegressor()

	// WindowDays rows per employee is one short of producing any window.
	_, err := r.Train(context.Background(), syntheticSamples(3, models.WindowDays), modelPath)
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = r.Train(context.Background(), nil, modelPath)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestRidgeRejectsMalformedWindow(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "model.json")
	r := NewRidgeRegressor()
	_, err := r.Train(context.Background(), syntheticSamples(4, 30), modelPath)
	require.NoError(t, err)

	_, err = r.Predict([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestMinMaxScalerBounds(t *testing.T) {
	s := MinMaxScaler{}
	require.NoError(t, s.Fit([][]float64{
		{0, 10, 5},
		{10, 20, 5},
	}))

	out, err := s.Transform([][]float64{{5, 15, 5}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out[0][0], 1e-12)
	assert.InDelta(t, 0.5, out[0][1], 1e-12)
	// Zero-range columns collapse to 0 instead of dividing by zero.
	assert.Equal(t, 0.0, out[0][2])

	// Unseen values extrapolate rather than clamp.
	out, err = s.Transform([][]float64{{20, 0, 5}})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, out[0][0], 1e-12)
	assert.InDelta(t, -1.0, out[0][1], 1e-12)
}

func TestSlidingWindowGeometry(t *testing.T) {
	samples := syntheticSamples(1, models.WindowDays+3)
	series := buildSeries(samples)
	require.Len(t, series, 1)

	es := series[1]
	require.Len(t, es.rows, models.WindowDays+3)
	assert.Len(t, es.rows[0], models.FeatureCount)

	// Day 0 rolling means equal the raw values.
	assert.InDelta(t, es.rows[0][0], es.rows[0][7], 1e-12)
	assert.InDelta(t, es.rows[0][4], es.rows[0][8], 1e-12)
	assert.InDelta(t, es.rows[0][3], es.rows[0][9], 1e-12)

	x, y := slidingWindows(es.rows, es.targets)
	assert.Len(t, x, 3)
	assert.Len(t, y, 3)
	assert.Len(t, x[0], models.WindowDays*models.FeatureCount)
	// Labels come from the day after each window.
	assert.Equal(t, es.targets[models.WindowDays], y[0])
}
