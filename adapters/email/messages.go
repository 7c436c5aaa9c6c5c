package email

import (
	"fmt"
	"strings"
	"time"

	"burnoutd/models"

	"github.com/gomarkdown/markdown"
)

// buildCriticalAlertBody renders the alert email as markdown and returns the
// HTML body. Streak 1 reads as a single-day event; longer streaks carry the
// recent history table.
func buildCriticalAlertBody(employee *models.Employee, pred *models.AgentPrediction, history []models.HistoryEntry, streak int, logDate time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Burnout Alert: %s\n\n", employee.Name)
	fmt.Fprintf(&b, "**Date:** %s\n\n", logDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "**Predicted burnout rate:** %.1f%%\n\n", pred.BurnoutRate*100)
	fmt.Fprintf(&b, "**Risk level:** %s\n\n", strings.ToUpper(string(pred.RiskLevel)))
	fmt.Fprintf(&b, "**Model confidence:** %.0f%%\n\n", pred.Confidence*100)

	if streak > 1 {
		fmt.Fprintf(&b, "This is the **%d%s consecutive day** at high risk.\n\n", streak, ordinal(streak))
	}
	if pred.Message != "" {
		fmt.Fprintf(&b, "%s\n\n", pred.Message)
	}

	if len(history) > 0 {
		b.WriteString("## Recent days\n\n")
		b.WriteString("| Date | Burnout rate | Risk |\n|---|---|---|\n")
		for _, h := range history {
			fmt.Fprintf(&b, "| %s | %.1f%% | %s |\n",
				h.Date.Format("2006-01-02"), h.Rate*100, h.Level)
		}
		b.WriteString("\n")
	}

	b.WriteString("Please check in with this employee as soon as possible.\n")
	return string(markdown.ToHTML([]byte(b.String()), nil, nil))
}

// buildReviewRequestBody renders the review-request email body.
func buildReviewRequestBody(employee *models.Employee, pred *models.AgentPrediction, logDate time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Prediction Review Needed\n\n")
	fmt.Fprintf(&b, "The model flagged a prediction for **%s** (%s) that needs a human verdict.\n\n",
		employee.Name, logDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "- **Burnout rate:** %.1f%%\n", pred.BurnoutRate*100)
	fmt.Fprintf(&b, "- **Risk level:** %s\n", pred.RiskLevel)
	fmt.Fprintf(&b, "- **Confidence:** %.0f%%\n", pred.Confidence*100)
	fmt.Fprintf(&b, "- **Prediction id:** %d\n\n", pred.ID)
	if pred.Message != "" {
		fmt.Fprintf(&b, "> %s\n\n", pred.Message)
	}
	b.WriteString("Confirm or reject it in the review queue.\n")

	return string(markdown.ToHTML([]byte(b.String()), nil, nil))
}

func ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
