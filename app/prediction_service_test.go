package app

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"burnoutd/domain/core"
	"burnoutd/internal/features"
	"burnoutd/internal/registry"
	"burnoutd/internal/testkit"
	"burnoutd/models"
	"burnoutd/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedRegressor always predicts the same rate.
type fixedRegressor struct {
	rate   float64
	loaded bool
}

func (r *fixedRegressor) Train(context.Context, []models.TrainingSample, string) (models.TrainingMetrics, error) {
	return models.TrainingMetrics{}, nil
}

func (r *fixedRegressor) Predict(window [][]float64) (models.RegressorOutput, error) {
	if !r.loaded {
		return models.RegressorOutput{}, core.ErrModelNotLoaded
	}
	var flat []float64
	for _, row := range window {
		flat = append(flat, row...)
	}
	return models.RegressorOutput{Rate: r.rate, ScaledWindow: flat}, nil
}

func (r *fixedRegressor) LoadFromPath(string) error { r.loaded = true; return nil }
func (r *fixedRegressor) IsLoaded() bool            { return r.loaded }

type predictionFixture struct {
	service  *PredictionService
	registry *registry.ModelRegistry
	preds    *testkit.PredictionStore
	settings *testkit.SettingsStore
}

func newPredictionFixture(t *testing.T, rate float64, withModel bool) *predictionFixture {
	t.Helper()
	logger := zap.NewNop()
	logs := testkit.NewDailyLogStore()
	employees := testkit.NewEmployeeStore(models.Employee{ID: 1})
	preds := testkit.NewPredictionStore()
	settings := testkit.NewSettingsStore()

	averages := features.NewAverageProvider(logs, employees, logger)
	preparer := features.NewFeaturePreparer(logs, employees, averages, rand.New(rand.NewSource(1)), logger)

	reg := registry.NewModelRegistry(
		func() ports.Regressor { return &fixedRegressor{rate: rate} },
		testkit.NewModelVersionStore(),
		filepath.Join(t.TempDir(), "model.json"),
		registry.DefaultReloadMinInterval,
		logger,
	)
	if withModel {
		require.NoError(t, reg.LoadModel(context.Background(), &fixedRegressor{rate: rate, loaded: true}, ""))
	}

	return &predictionFixture{
		service:  NewPredictionService(preparer, features.NewConfidenceEstimator(), reg, preds, settings, logger),
		registry: reg,
		preds:    preds,
		settings: settings,
	}
}

func coldStartLog() *models.DailyLog {
	return &models.DailyLog{
		ID:          7,
		EmployeeID:  1,
		LogDate:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		HoursWorked: testkit.Float64(11),
		StressLevel: testkit.Int(8),
	}
}

func TestPredictForLogWithoutModel(t *testing.T) {
	f := newPredictionFixture(t, 0.5, false)

	_, err := f.service.PredictForLog(context.Background(), coldStartLog())
	assert.ErrorIs(t, err, core.ErrModelNotReady)
}

func TestPredictForLogColdStart(t *testing.T) {
	f := newPredictionFixture(t, 0.78, true)

	pred, err := f.service.PredictForLog(context.Background(), coldStartLog())
	require.NoError(t, err)

	assert.Equal(t, int64(7), pred.DailyLogID)
	assert.Equal(t, 0.78, pred.BurnoutRate)
	assert.Equal(t, models.RiskHigh, pred.RiskLevel)
	assert.Equal(t, "Burnout Predictor v1", pred.ModelVersion)

	// Cold-start subjects never reach actionable confidence.
	assert.Less(t, pred.Confidence, 0.70)
	assert.True(t, strings.Contains(pred.Message, "estimated from company averages"), pred.Message)
}

func TestPredictForLogClampsRate(t *testing.T) {
	f := newPredictionFixture(t, 1.7, true)

	pred, err := f.service.PredictForLog(context.Background(), coldStartLog())
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.BurnoutRate)
	assert.Equal(t, models.RiskCritical, pred.RiskLevel)
}

func TestSaveNewPredictionBumpsSampleCounter(t *testing.T) {
	f := newPredictionFixture(t, 0.5, true)
	ctx := context.Background()

	saved, err := f.service.Save(ctx, &models.AgentPrediction{DailyLogID: 7, BurnoutRate: 0.5})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	settings, err := f.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, settings.NewSamplesCount)

	// Updating an existing prediction is not a new sample.
	saved.ReviewNotes = testkit.String("checked")
	_, err = f.service.Save(ctx, saved)
	require.NoError(t, err)

	settings, err = f.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, settings.NewSamplesCount)
}
