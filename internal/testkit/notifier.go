package testkit

import (
	"context"
	"sync"
	"time"

	"burnoutd/models"
)

// AlertCall records one SendCriticalAlert invocation.
type AlertCall struct {
	EmployeeID int64
	Rate       float64
	Streak     int
	History    []models.HistoryEntry
	LogDate    time.Time
}

// ReviewCall records one SendReviewRequest invocation.
type ReviewCall struct {
	EmployeeID   int64
	PredictionID int64
	LogDate      time.Time
}

// Notifier is a recording ports.Notifier. Set AlertErr or ReviewErr to
// simulate delivery failures.
type Notifier struct {
	mu        sync.Mutex
	alerts    []AlertCall
	reviews   []ReviewCall
	AlertErr  error
	ReviewErr error
}

// NewNotifier creates an empty recording notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) SendCriticalAlert(_ context.Context, employee *models.Employee, pred *models.AgentPrediction, history []models.HistoryEntry, streak int, logDate time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.AlertErr != nil {
		return n.AlertErr
	}
	n.alerts = append(n.alerts, AlertCall{
		EmployeeID: employee.ID,
		Rate:       pred.BurnoutRate,
		Streak:     streak,
		History:    history,
		LogDate:    logDate,
	})
	return nil
}

func (n *Notifier) SendReviewRequest(_ context.Context, employee *models.Employee, pred *models.AgentPrediction, logDate time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ReviewErr != nil {
		return n.ReviewErr
	}
	n.reviews = append(n.reviews, ReviewCall{
		EmployeeID:   employee.ID,
		PredictionID: pred.ID,
		LogDate:      logDate,
	})
	return nil
}

// Alerts returns a copy of the recorded alert calls.
func (n *Notifier) Alerts() []AlertCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]AlertCall, len(n.alerts))
	copy(out, n.alerts)
	return out
}

// Reviews returns a copy of the recorded review-request calls.
func (n *Notifier) Reviews() []ReviewCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ReviewCall, len(n.reviews))
	copy(out, n.reviews)
	return out
}
