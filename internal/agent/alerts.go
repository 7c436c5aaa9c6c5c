package agent

import (
	"context"
	"fmt"
	"time"

	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// historyDaysInAlert is how many recent scored days escalation alerts carry.
const historyDaysInAlert = 7

// AlertManager is the act phase of the agent: it turns a finished prediction
// into alerts and employee alert-state updates.
//
// Rules:
//   - CRITICAL: alert immediately, every time. The streak counter is not
//     consulted and not changed.
//   - HIGH: increment the consecutive streak; alert only at escalation
//     milestones, with recent history attached.
//   - anything else: reset a non-zero streak.
type AlertManager struct {
	notifier  ports.Notifier
	employees ports.EmployeeRepository
	policy    *PolicyEngine
	logger    *zap.Logger
}

// NewAlertManager creates an alert manager.
func NewAlertManager(notifier ports.Notifier, employees ports.EmployeeRepository, policy *PolicyEngine, logger *zap.Logger) *AlertManager {
	return &AlertManager{
		notifier:  notifier,
		employees: employees,
		policy:    policy,
		logger:    logger,
	}
}

// HandlePrediction applies the alerting rules for one finished prediction.
// Notification failures are logged but never fail the call; streak updates
// are persisted regardless so a flaky mail server cannot corrupt the count.
func (m *AlertManager) HandlePrediction(ctx context.Context, employee *models.Employee, pred *models.AgentPrediction, logDate time.Time) error {
	switch pred.RiskLevel {
	case models.RiskCritical:
		return m.handleCritical(ctx, employee, pred, logDate)
	case models.RiskHigh:
		return m.handleHigh(ctx, employee, pred, logDate)
	default:
		return m.resetStreak(ctx, employee)
	}
}

func (m *AlertManager) handleCritical(ctx context.Context, employee *models.Employee, pred *models.AgentPrediction, logDate time.Time) error {
	// Critical alerts report a single-day event: no streak, no history.
	if err := m.notifier.SendCriticalAlert(ctx, employee, pred, nil, 1, logDate); err != nil {
		m.logger.Error("critical alert delivery failed",
			zap.Int64("employee_id", employee.ID), zap.Error(err))
		return nil
	}

	now := time.Now()
	employee.LastAlertSentAt = &now
	if err := m.employees.Update(ctx, employee); err != nil {
		return fmt.Errorf("stamp last alert time: %w", err)
	}
	m.logger.Warn("critical burnout alert sent",
		zap.Int64("employee_id", employee.ID),
		zap.Float64("rate", pred.BurnoutRate))
	return nil
}

func (m *AlertManager) handleHigh(ctx context.Context, employee *models.Employee, pred *models.AgentPrediction, logDate time.Time) error {
	employee.HighRiskStreak++

	if m.policy.ShouldSendEscalatingAlert(employee.HighRiskStreak) {
		history, err := m.policy.RecentHistory(ctx, employee.ID, historyDaysInAlert)
		if err != nil {
			m.logger.Error("recent history lookup failed, sending alert without it",
				zap.Int64("employee_id", employee.ID), zap.Error(err))
			history = nil
		}

		if err := m.notifier.SendCriticalAlert(ctx, employee, pred, history, employee.HighRiskStreak, logDate); err != nil {
			m.logger.Error("escalation alert delivery failed",
				zap.Int64("employee_id", employee.ID),
				zap.Int("streak", employee.HighRiskStreak),
				zap.Error(err))
		} else {
			now := time.Now()
			employee.LastAlertSentAt = &now
			m.logger.Warn("escalation alert sent",
				zap.Int64("employee_id", employee.ID),
				zap.Int("streak", employee.HighRiskStreak))
		}
	}

	if err := m.employees.Update(ctx, employee); err != nil {
		return fmt.Errorf("persist high-risk streak: %w", err)
	}
	return nil
}

func (m *AlertManager) resetStreak(ctx context.Context, employee *models.Employee) error {
	if employee.HighRiskStreak == 0 {
		return nil
	}
	m.logger.Info("high-risk streak broken",
		zap.Int64("employee_id", employee.ID),
		zap.Int("previous_streak", employee.HighRiskStreak))
	employee.HighRiskStreak = 0
	if err := m.employees.Update(ctx, employee); err != nil {
		return fmt.Errorf("reset high-risk streak: %w", err)
	}
	return nil
}
