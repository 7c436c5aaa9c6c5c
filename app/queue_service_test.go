package app

import (
	"context"
	"testing"
	"time"

	"burnoutd/domain/core"
	apperrors "burnoutd/internal/errors"
	"burnoutd/internal/testkit"
	"burnoutd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newQueueService() (*QueueService, *testkit.DailyLogStore) {
	logs := testkit.NewDailyLogStore()
	employees := testkit.NewEmployeeStore(models.Employee{ID: 1, Name: "Ada"})
	return NewQueueService(logs, employees, zap.NewNop()), logs
}

func validLog() *models.DailyLog {
	return &models.DailyLog{
		EmployeeID:  1,
		LogDate:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		HoursWorked: testkit.Float64(9),
		StressLevel: testkit.Int(6),
	}
}

func TestEnqueueAssignsQueuedStatus(t *testing.T) {
	s, _ := newQueueService()

	saved, err := s.Enqueue(context.Background(), validLog())
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, models.StatusQueued, saved.Status)
}

func TestEnqueueRejectsUnknownEmployee(t *testing.T) {
	s, _ := newQueueService()
	log := validLog()
	log.EmployeeID = 42

	_, err := s.Enqueue(context.Background(), log)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
}

func TestEnqueueRejectsOutOfScaleMetrics(t *testing.T) {
	s, _ := newQueueService()

	log := validLog()
	log.StressLevel = testkit.Int(11)
	_, err := s.Enqueue(context.Background(), log)
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))

	log = validLog()
	log.HoursWorked = testkit.Float64(-1)
	_, err = s.Enqueue(context.Background(), log)
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))

	log = validLog()
	log.EmployeeID = 0
	_, err = s.Enqueue(context.Background(), log)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestUpdateStatusEnforcesStateMachine(t *testing.T) {
	s, _ := newQueueService()
	ctx := context.Background()

	saved, err := s.Enqueue(ctx, validLog())
	require.NoError(t, err)

	// Skipping PROCESSING is not allowed.
	err = s.UpdateStatus(ctx, saved.ID, models.StatusReviewed, nil)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	require.NoError(t, s.UpdateStatus(ctx, saved.ID, models.StatusProcessing, nil))
	now := time.Now()
	require.NoError(t, s.UpdateStatus(ctx, saved.ID, models.StatusAnalyzed, &now))
	require.NoError(t, s.UpdateStatus(ctx, saved.ID, models.StatusReviewed, nil))

	// REVIEWED is terminal.
	err = s.UpdateStatus(ctx, saved.ID, models.StatusQueued, nil)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestMarkFailedAndRequeue(t *testing.T) {
	s, logs := newQueueService()
	ctx := context.Background()

	saved, err := s.Enqueue(ctx, validLog())
	require.NoError(t, err)

	// Only a claimed log may fail.
	err = s.MarkFailed(ctx, saved.ID, "boom")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	_, err = s.DequeueNext(ctx)
	require.NoError(t, err)
	require.NoError(t, s.MarkFailed(ctx, saved.ID, "model unavailable"))

	stored, err := logs.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "model unavailable", *stored.ErrorMessage)

	require.NoError(t, s.Requeue(ctx, saved.ID))
	stored, err = logs.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, stored.Status)
}

func TestDequeueNextClaimsOldestOrNil(t *testing.T) {
	s, _ := newQueueService()
	ctx := context.Background()

	got, err := s.DequeueNext(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	older := validLog()
	newer := validLog()
	newer.LogDate = older.LogDate.AddDate(0, 0, 3)
	_, err = s.Enqueue(ctx, newer)
	require.NoError(t, err)
	first, err := s.Enqueue(ctx, older)
	require.NoError(t, err)

	got, err = s.DequeueNext(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, models.StatusProcessing, got.Status)
}

func TestStatsCountsEveryStatus(t *testing.T) {
	s, _ := newQueueService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		log := validLog()
		log.LogDate = log.LogDate.AddDate(0, 0, i)
		_, err := s.Enqueue(ctx, log)
		require.NoError(t, err)
	}
	claimed, err := s.DequeueNext(ctx)
	require.NoError(t, err)
	require.NoError(t, s.MarkFailed(ctx, claimed.ID, "boom"))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Queued)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Processing)
}
