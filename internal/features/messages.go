package features

import (
	"fmt"

	"burnoutd/models"
)

// PredictionMessage renders the human-facing summary for a prediction. The
// data-quality suffix tells readers when the number leans on estimates.
func PredictionMessage(rate float64, level models.RiskLevel, quality models.DataQuality) string {
	suffix := quality.Suffix()
	switch level {
	case models.RiskCritical:
		return fmt.Sprintf("URGENT: High burnout rate (%.1f%%) detected%s.", rate*100, suffix)
	case models.RiskHigh:
		return fmt.Sprintf("Warning: %.1f%% burnout rate%s.", rate*100, suffix)
	case models.RiskMedium:
		return fmt.Sprintf("Some warning signs detected%s.", suffix)
	default:
		return fmt.Sprintf("Healthy balance maintained%s.", suffix)
	}
}
