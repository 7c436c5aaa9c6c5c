package app

import (
	"context"
	"testing"
	"time"

	"burnoutd/internal/agent"
	apperrors "burnoutd/internal/errors"
	"burnoutd/internal/testkit"
	"burnoutd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reviewFixture struct {
	service   *ReviewService
	logs      *testkit.DailyLogStore
	preds     *testkit.PredictionStore
	employees *testkit.EmployeeStore
	notifier  *testkit.Notifier
}

func newReviewFixture(employee models.Employee) *reviewFixture {
	logger := zap.NewNop()
	logs := testkit.NewDailyLogStore()
	preds := testkit.NewPredictionStore()
	employees := testkit.NewEmployeeStore(employee)
	notifier := testkit.NewNotifier()

	policy := agent.NewPolicyEngine(0.70, preds, logs)
	alerts := agent.NewAlertManager(notifier, employees, policy, logger)
	queue := NewQueueService(logs, employees, logger)

	return &reviewFixture{
		service:   NewReviewService(preds, logs, employees, queue, alerts, logger),
		logs:      logs,
		preds:     preds,
		employees: employees,
		notifier:  notifier,
	}
}

// pendingPrediction seeds a log in PENDING_REVIEW with its prediction.
func (f *reviewFixture) pendingPrediction(t *testing.T, level models.RiskLevel, rate float64) *models.AgentPrediction {
	t.Helper()
	f.logs.Seed(models.DailyLog{
		ID:         1,
		EmployeeID: 1,
		LogDate:    time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		Status:     models.StatusPendingReview,
	})
	pred, err := f.preds.Add(context.Background(), &models.AgentPrediction{
		DailyLogID:  1,
		BurnoutRate: rate,
		RiskLevel:   level,
		Confidence:  0.5,
		NeedsReview: true,
	})
	require.NoError(t, err)
	return pred
}

func TestSubmitReviewRecordsVerdict(t *testing.T) {
	f := newReviewFixture(models.Employee{ID: 1})
	pred := f.pendingPrediction(t, models.RiskMedium, 0.55)

	reviewed, err := f.service.SubmitReview(context.Background(), pred.ID, true, testkit.String("looks right"))
	require.NoError(t, err)

	require.NotNil(t, reviewed.HumanValidation)
	assert.True(t, *reviewed.HumanValidation)
	assert.NotNil(t, reviewed.ReviewedAt)
	require.NotNil(t, reviewed.ReviewNotes)
	assert.Equal(t, "looks right", *reviewed.ReviewNotes)

	log, err := f.logs.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReviewed, log.Status)
}

func TestSubmitReviewConfirmedCriticalFiresAlert(t *testing.T) {
	f := newReviewFixture(models.Employee{ID: 1})
	pred := f.pendingPrediction(t, models.RiskCritical, 0.92)

	_, err := f.service.SubmitReview(context.Background(), pred.ID, true, nil)
	require.NoError(t, err)

	alerts := f.notifier.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, 0.92, alerts[0].Rate)

	emp, err := f.employees.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, emp.LastAlertSentAt)
}

func TestSubmitReviewConfirmedHighExtendsStreak(t *testing.T) {
	f := newReviewFixture(models.Employee{ID: 1, HighRiskStreak: 6})
	pred := f.pendingPrediction(t, models.RiskHigh, 0.74)

	_, err := f.service.SubmitReview(context.Background(), pred.ID, true, nil)
	require.NoError(t, err)

	emp, err := f.employees.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, emp.HighRiskStreak)
	// Day 7 is an escalation milestone.
	assert.Len(t, f.notifier.Alerts(), 1)
}

func TestSubmitReviewRejectedLeavesAlertStateAlone(t *testing.T) {
	f := newReviewFixture(models.Employee{ID: 1, HighRiskStreak: 2})
	pred := f.pendingPrediction(t, models.RiskCritical, 0.9)

	reviewed, err := f.service.SubmitReview(context.Background(), pred.ID, false, nil)
	require.NoError(t, err)
	require.NotNil(t, reviewed.HumanValidation)
	assert.False(t, *reviewed.HumanValidation)

	assert.Empty(t, f.notifier.Alerts())
	emp, err := f.employees.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, emp.HighRiskStreak)
	assert.Nil(t, emp.LastAlertSentAt)
}

func TestSubmitReviewTwiceConflicts(t *testing.T) {
	f := newReviewFixture(models.Employee{ID: 1})
	pred := f.pendingPrediction(t, models.RiskMedium, 0.5)

	_, err := f.service.SubmitReview(context.Background(), pred.ID, true, nil)
	require.NoError(t, err)

	_, err = f.service.SubmitReview(context.Background(), pred.ID, false, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.GetCode(err))
}

func TestGetPendingReviews(t *testing.T) {
	f := newReviewFixture(models.Employee{ID: 1})
	pred := f.pendingPrediction(t, models.RiskMedium, 0.5)

	pending, err := f.service.GetPendingReviews(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pred.ID, pending[0].ID)

	_, err = f.service.SubmitReview(context.Background(), pred.ID, true, nil)
	require.NoError(t, err)

	pending, err = f.service.GetPendingReviews(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}
