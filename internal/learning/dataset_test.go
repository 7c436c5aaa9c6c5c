package learning

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"burnoutd/domain/core"
	"burnoutd/internal/testkit"
	"burnoutd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type formatterFixture struct {
	formatter *DatasetFormatter
	logs      *testkit.DailyLogStore
	preds     *testkit.PredictionStore
}

func newFormatterFixture(t *testing.T) *formatterFixture {
	t.Helper()
	logs := testkit.NewDailyLogStore()
	preds := testkit.NewPredictionStore()
	f := NewDatasetFormatter(preds, logs, t.TempDir(), zap.NewNop())
	f.now = func() time.Time {
		return time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)
	}
	return &formatterFixture{formatter: f, logs: logs, preds: preds}
}

// seedValidated creates n logs each with a confirmed prediction.
func (f *formatterFixture) seedValidated(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		log := testkit.GenerateLogs(testkit.LogGeneratorConfig{
			EmployeeID: 1, Start: start.AddDate(0, 0, i), Days: 1, Seed: int64(i),
		})[0]
		f.logs.Seed(log)
		stored, err := f.logs.GetByEmployee(ctx, 1, 0)
		require.NoError(t, err)

		reviewedAt := start.AddDate(0, 0, i+1)
		_, err = f.preds.Add(ctx, &models.AgentPrediction{
			DailyLogID:      stored[0].ID,
			BurnoutRate:     0.4,
			RiskLevel:       models.RiskLow,
			HumanValidation: testkit.Bool(true),
			ReviewedAt:      &reviewedAt,
		})
		require.NoError(t, err)
	}
}

func TestFormatWritesVersionedDataset(t *testing.T) {
	f := newFormatterFixture(t)
	f.seedValidated(t, 10)

	ds, err := f.formatter.Format(context.Background(), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "20260501_123000", ds.Version)
	assert.Len(t, ds.Samples, 10)
	assert.Equal(t, 8, ds.TrainCount)
	assert.Equal(t, 2, ds.ValidationL)

	// train.csv holds header + 8 rows.
	file, err := os.Open(ds.TrainPath)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "0.4", rows[1][8])

	// Metadata sidecar is present and consistent.
	data, err := os.ReadFile(filepath.Join(ds.Dir, "dataset_config.json"))
	require.NoError(t, err)
	var cfg datasetConfig
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, ds.Version, cfg.Version)
	assert.Equal(t, 10, cfg.TotalSamples)
	assert.Equal(t, 8, cfg.TrainSamples)
	assert.Equal(t, 2, cfg.ValidationSamples)
}

func TestFormatSkipsRejectedAndOrphanedPredictions(t *testing.T) {
	f := newFormatterFixture(t)
	f.seedValidated(t, 6)
	ctx := context.Background()
	reviewedAt := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)

	// A rejected prediction must not become a training label.
	_, err := f.preds.Add(ctx, &models.AgentPrediction{
		DailyLogID:      1,
		BurnoutRate:     0.99,
		HumanValidation: testkit.Bool(false),
		ReviewedAt:      &reviewedAt,
	})
	require.NoError(t, err)

	// A validated prediction whose log vanished is skipped with a warning.
	_, err = f.preds.Add(ctx, &models.AgentPrediction{
		DailyLogID:      9999,
		BurnoutRate:     0.5,
		HumanValidation: testkit.Bool(true),
		ReviewedAt:      &reviewedAt,
	})
	require.NoError(t, err)

	ds, err := f.formatter.Format(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, ds.Samples, 6)
}

func TestFormatRequiresMinimumSamples(t *testing.T) {
	f := newFormatterFixture(t)
	f.seedValidated(t, 4)

	_, err := f.formatter.Format(context.Background(), time.Time{})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestFormatHonorsSinceCutoff(t *testing.T) {
	f := newFormatterFixture(t)
	f.seedValidated(t, 10)

	// Reviews happen on April 2nd..11th; cutting at the 7th leaves 5.
	since := time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC)
	ds, err := f.formatter.Format(context.Background(), since)
	require.NoError(t, err)
	assert.Len(t, ds.Samples, 5)
}
