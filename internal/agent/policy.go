package agent

import (
	"context"

	"burnoutd/models"
	"burnoutd/ports"
)

// Review thresholds per risk level. Higher-severity predictions demand more
// confidence before they bypass human review.
const (
	highRiskReviewThreshold   = 0.75
	mediumRiskReviewThreshold = 0.70
)

// Escalation streak milestones for consecutive high-risk days.
const (
	firstEscalationStreak  = 3
	secondEscalationStreak = 7
	thirdEscalationStreak  = 14
	escalationRepeatEvery  = 7
)

// PolicyEngine decides, deterministically, whether a prediction is
// trustworthy enough to act on and when repeated high-risk days warrant
// escalation. It holds no mutable state.
type PolicyEngine struct {
	confidenceThreshold float64
	predictions         ports.PredictionRepository
	logs                ports.DailyLogRepository
}

// NewPolicyEngine creates a policy engine. confidenceThreshold applies to
// low-severity predictions; higher severities use stricter built-in floors.
func NewPolicyEngine(confidenceThreshold float64, predictions ports.PredictionRepository, logs ports.DailyLogRepository) *PolicyEngine {
	return &PolicyEngine{
		confidenceThreshold: confidenceThreshold,
		predictions:         predictions,
		logs:                logs,
	}
}

// ShouldRequireReview reports whether a prediction must be validated by a
// human before it is treated as final. Critical predictions always go to
// review regardless of confidence.
func (p *PolicyEngine) ShouldRequireReview(pred *models.AgentPrediction) bool {
	if pred == nil {
		return true
	}
	switch pred.RiskLevel {
	case models.RiskCritical:
		return true
	case models.RiskHigh:
		return pred.Confidence < highRiskReviewThreshold
	case models.RiskMedium:
		return pred.Confidence < mediumRiskReviewThreshold
	default:
		return pred.Confidence < p.confidenceThreshold
	}
}

// ShouldSendEscalatingAlert reports whether a consecutive high-risk streak
// has hit an escalation milestone: days 3, 7, 14, then every 7 days after.
func (p *PolicyEngine) ShouldSendEscalatingAlert(streak int) bool {
	switch {
	case streak == firstEscalationStreak,
		streak == secondEscalationStreak,
		streak == thirdEscalationStreak:
		return true
	case streak > thirdEscalationStreak:
		return (streak-thirdEscalationStreak)%escalationRepeatEvery == 0
	default:
		return false
	}
}

// RecentHistory assembles the employee's latest scored days, most recent
// first, for inclusion in escalation alerts. Days without a prediction are
// skipped.
func (p *PolicyEngine) RecentHistory(ctx context.Context, employeeID int64, days int) ([]models.HistoryEntry, error) {
	logs, err := p.logs.GetByEmployee(ctx, employeeID, days)
	if err != nil {
		return nil, err
	}

	entries := make([]models.HistoryEntry, 0, len(logs))
	for i := range logs {
		preds, err := p.predictions.GetByDailyLog(ctx, logs[i].ID)
		if err != nil {
			return nil, err
		}
		if len(preds) == 0 {
			continue
		}
		latest := preds[0]
		entries = append(entries, models.HistoryEntry{
			Date:  logs[i].LogDate,
			Rate:  latest.BurnoutRate,
			Level: latest.RiskLevel,
		})
	}
	return entries, nil
}
