package email

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"burnoutd/internal/config"
	"burnoutd/models"
	"burnoutd/ports"

	"go.uber.org/zap"
)

// SMTPNotifier delivers alerts and review requests over plain SMTP with
// HTML bodies.
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	logger *zap.Logger

	// send is swappable for tests.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// NewNotifier picks the SMTP notifier when a host is configured and falls
// back to log-only delivery otherwise, so development environments work
// without a mail server.
func NewNotifier(cfg config.SMTPConfig, logger *zap.Logger) ports.Notifier {
	if cfg.Host == "" {
		logger.Info("smtp host not configured, alerts go to the log only")
		return NewLogNotifier(logger)
	}
	return NewSMTPNotifier(cfg, logger)
}

func (n *SMTPNotifier) SendCriticalAlert(_ context.Context, employee *models.Employee, pred *models.AgentPrediction, history []models.HistoryEntry, streak int, logDate time.Time) error {
	subject := fmt.Sprintf("Burnout alert: %s (%s)", employee.Name, logDate.Format("2006-01-02"))
	if streak > 1 {
		subject = fmt.Sprintf("Burnout alert: %s, day %d at high risk", employee.Name, streak)
	}
	body := buildCriticalAlertBody(employee, pred, history, streak, logDate)
	return n.deliver(n.cfg.AlertTo, subject, body)
}

func (n *SMTPNotifier) SendReviewRequest(_ context.Context, employee *models.Employee, pred *models.AgentPrediction, logDate time.Time) error {
	subject := fmt.Sprintf("Review needed: prediction %d for %s", pred.ID, employee.Name)
	body := buildReviewRequestBody(employee, pred, logDate)
	return n.deliver(n.cfg.ReviewTo, subject, body)
}

func (n *SMTPNotifier) deliver(to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("no recipient configured for %q", subject)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		n.cfg.From, to, subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	if err := n.send(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	n.logger.Info("notification sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// LogNotifier writes notifications to the structured log instead of sending
// them anywhere.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendCriticalAlert(_ context.Context, employee *models.Employee, pred *models.AgentPrediction, history []models.HistoryEntry, streak int, logDate time.Time) error {
	n.logger.Warn("ALERT (log only)",
		zap.String("employee", employee.Name),
		zap.Time("log_date", logDate),
		zap.Float64("rate", pred.BurnoutRate),
		zap.String("risk_level", string(pred.RiskLevel)),
		zap.Int("streak", streak),
		zap.Int("history_days", len(history)))
	return nil
}

func (n *LogNotifier) SendReviewRequest(_ context.Context, employee *models.Employee, pred *models.AgentPrediction, logDate time.Time) error {
	n.logger.Info("REVIEW REQUEST (log only)",
		zap.String("employee", employee.Name),
		zap.Time("log_date", logDate),
		zap.Int64("prediction_id", pred.ID),
		zap.Float64("confidence", pred.Confidence))
	return nil
}
