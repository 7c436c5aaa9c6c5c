package learning

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"burnoutd/internal/registry"
	"burnoutd/internal/testkit"
	"burnoutd/models"
	"burnoutd/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// trainableStub persists a marker file on Train and is loaded afterwards.
type trainableStub struct {
	loaded   bool
	trainErr error
	metrics  models.TrainingMetrics
}

func (s *trainableStub) Train(_ context.Context, samples []models.TrainingSample, outPath string) (models.TrainingMetrics, error) {
	if s.trainErr != nil {
		return models.TrainingMetrics{}, s.trainErr
	}
	if err := os.WriteFile(outPath, []byte("{}"), 0o644); err != nil {
		return models.TrainingMetrics{}, err
	}
	s.loaded = true
	s.metrics.TrainSamples = len(samples)
	return s.metrics, nil
}

func (s *trainableStub) Predict([][]float64) (models.RegressorOutput, error) {
	return models.RegressorOutput{Rate: 0.5}, nil
}

func (s *trainableStub) LoadFromPath(string) error { s.loaded = true; return nil }
func (s *trainableStub) IsLoaded() bool            { return s.loaded }

type workerFixture struct {
	worker   *Worker
	settings *testkit.SettingsStore
	versions *testkit.ModelVersionStore
	registry *registry.ModelRegistry
	stub     *trainableStub
	logs     *testkit.DailyLogStore
	preds    *testkit.PredictionStore
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	logger := zap.NewNop()
	logs := testkit.NewDailyLogStore()
	preds := testkit.NewPredictionStore()
	settings := testkit.NewSettingsStore()
	versions := testkit.NewModelVersionStore()

	stub := &trainableStub{metrics: models.TrainingMetrics{TestR2: 0.81}}
	factory := ports.RegressorFactory(func() ports.Regressor { return stub })

	modelPath := filepath.Join(t.TempDir(), "burnout_model.json")
	reg := registry.NewModelRegistry(factory, versions, modelPath, registry.DefaultReloadMinInterval, logger)

	formatter := NewDatasetFormatter(preds, logs, t.TempDir(), logger)
	worker := NewWorker(NewScheduler(), formatter, factory, reg, versions, settings, modelPath, time.Hour, logger)

	return &workerFixture{
		worker:   worker,
		settings: settings,
		versions: versions,
		registry: reg,
		stub:     stub,
		logs:     logs,
		preds:    preds,
	}
}

// accumulate fakes enough validated samples for a retrain, all reviewed at
// historical dates.
func (f *workerFixture) accumulate(t *testing.T, validated, counted int) {
	t.Helper()
	f.accumulateReviewed(t, validated, counted, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
}

func (f *workerFixture) accumulateReviewed(t *testing.T, validated, counted int, reviewedBase time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.settings.IncrementSamples(ctx, counted))

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < validated; i++ {
		log := testkit.GenerateLogs(testkit.LogGeneratorConfig{
			EmployeeID: 1, Start: start.AddDate(0, 0, i), Days: 1, Seed: int64(i),
		})[0]
		log.ID = int64(i + 1)
		f.logs.Seed(log)

		reviewedAt := reviewedBase.Add(time.Duration(i) * time.Minute)
		_, err := f.preds.Add(ctx, &models.AgentPrediction{
			DailyLogID:      log.ID,
			BurnoutRate:     0.4,
			HumanValidation: testkit.Bool(true),
			ReviewedAt:      &reviewedAt,
		})
		require.NoError(t, err)
	}
}

func TestRunOnceSkipsBelowThresholds(t *testing.T) {
	f := newWorkerFixture(t)

	result, err := f.worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionSkip, result.Decision)
	assert.False(t, result.Trained)
	assert.False(t, f.registry.Ready())
}

func TestRunOnceFullRetrainCycle(t *testing.T) {
	f := newWorkerFixture(t)
	f.accumulate(t, 20, 500)
	ctx := context.Background()

	result, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionFull, result.Decision)
	assert.True(t, result.Trained)
	assert.Equal(t, "Burnout Predictor v1", result.VersionLabel)
	assert.Equal(t, 20, result.Samples)
	assert.Equal(t, 0.81, result.Metrics.TestR2)

	// The registry now serves the candidate.
	assert.True(t, f.registry.Ready())
	assert.Equal(t, "Burnout Predictor v1", f.registry.Version())

	// The version history carries the dataset size and accuracy.
	history, err := f.versions.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ModeFull, history[0].TrainingMode)
	assert.Equal(t, 20, history[0].DatasetSize)
	assert.Equal(t, 0.81, history[0].Accuracy)

	// Counters reset for the next accumulation round.
	settings, err := f.settings.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, settings.NewSamplesCount)
	assert.Equal(t, 1, settings.RetrainCount)
	assert.NotNil(t, settings.LastRetrainAt)
}

func TestRunOnceIncrementalMode(t *testing.T) {
	f := newWorkerFixture(t)
	f.accumulate(t, 10, 60)

	result, err := f.worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionIncremental, result.Decision)
	assert.True(t, result.Trained)

	history, err := f.versions.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ModeIncremental, history[0].TrainingMode)
}

func TestRunOnceTrainingFailureLeavesSettingsUntouched(t *testing.T) {
	f := newWorkerFixture(t)
	f.accumulate(t, 20, 500)
	f.stub.trainErr = errors.New("singular matrix")

	_, err := f.worker.RunOnce(context.Background())
	require.Error(t, err)

	settings, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500, settings.NewSamplesCount)
	assert.Zero(t, settings.RetrainCount)
	assert.Nil(t, settings.LastRetrainAt)
	assert.False(t, f.registry.Ready())

	history, err := f.versions.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRunOnceCounterFullButTooFewValidated(t *testing.T) {
	f := newWorkerFixture(t)
	f.accumulate(t, 2, 500)

	result, err := f.worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Trained)
	assert.NotEmpty(t, result.Reason)

	// Nothing was consumed; the next cycle retries.
	settings, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500, settings.NewSamplesCount)
}

func TestFullRetrainConsumesEntireValidatedBacklog(t *testing.T) {
	f := newWorkerFixture(t)
	f.accumulate(t, 20, 500)
	ctx := context.Background()

	first, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, first.Trained)

	// All reviews predate the retrain stamp. A full retrain must still fold
	// the whole validated corpus in, not just the delta since the last run.
	f.accumulate(t, 20, 500)
	second, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, second.Trained)
	assert.Equal(t, models.DecisionFull, second.Decision)
	assert.Equal(t, 40, second.Samples)
}

func TestIncrementalRetrainOnlyFoldsInNewReviews(t *testing.T) {
	f := newWorkerFixture(t)
	f.accumulate(t, 20, 500)
	ctx := context.Background()

	first, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, first.Trained)

	f.accumulateReviewed(t, 10, 60, time.Now().Add(time.Minute))
	second, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionIncremental, second.Decision)
	require.True(t, second.Trained)
	assert.Equal(t, 10, second.Samples)
}

func TestSuccessiveRetrainsBumpVersions(t *testing.T) {
	f := newWorkerFixture(t)
	f.accumulate(t, 20, 500)
	ctx := context.Background()

	first, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, first.Trained)

	f.accumulate(t, 20, 500)
	second, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, second.Trained)

	assert.Equal(t, "Burnout Predictor v1", first.VersionLabel)
	assert.Equal(t, "Burnout Predictor v2", second.VersionLabel)
	assert.Equal(t, "Burnout Predictor v2", f.registry.Version())
}
