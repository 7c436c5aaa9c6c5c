package models

// DailyLogStatus tracks a daily log through the agent lifecycle.
//
// Flow:
//
//	QUEUED -> PROCESSING -> {ANALYZED | PENDING_REVIEW} -> REVIEWED
//	               |
//	             FAILED
//
// QUEUED is the only entry state. REVIEWED and FAILED are terminal for the
// agent; a human may re-queue externally.
type DailyLogStatus string

const (
	StatusQueued        DailyLogStatus = "queued"         // logged, awaiting agent analysis
	StatusProcessing    DailyLogStatus = "processing"     // agent currently analyzing
	StatusAnalyzed      DailyLogStatus = "analyzed"       // analysis complete (high confidence)
	StatusPendingReview DailyLogStatus = "pending_review" // needs manager review (borderline case)
	StatusReviewed      DailyLogStatus = "reviewed"       // manager confirmed/corrected
	StatusFailed        DailyLogStatus = "failed"         // error during analysis
)

// AllStatuses lists every lifecycle status, used by queue stats.
var AllStatuses = []DailyLogStatus{
	StatusQueued,
	StatusProcessing,
	StatusAnalyzed,
	StatusPendingReview,
	StatusReviewed,
	StatusFailed,
}

// RiskLevel is the burnout risk severity predicted by the model.
//
// Thresholds on the (clamped) burnout rate:
//
//	NORMAL:   [0.00, 0.30)
//	LOW:      [0.30, 0.45)
//	MEDIUM:   [0.45, 0.70)
//	HIGH:     [0.70, 0.85)
//	CRITICAL: [0.85, 1.00]
type RiskLevel string

const (
	RiskNormal   RiskLevel = "normal"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelFromRate classifies a burnout rate. Rates are clamped to [0, 1]
// before classification.
func RiskLevelFromRate(rate float64) RiskLevel {
	rate = ClampRate(rate)
	switch {
	case rate >= 0.85:
		return RiskCritical
	case rate >= 0.70:
		return RiskHigh
	case rate >= 0.45:
		return RiskMedium
	case rate >= 0.30:
		return RiskLow
	default:
		return RiskNormal
	}
}

// ClampRate bounds a predicted rate to the valid [0, 1] interval.
func ClampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// DataQuality describes how much real history backed a prediction.
type DataQuality string

const (
	QualityExcellent       DataQuality = "excellent"        // full real history
	QualityGood            DataQuality = "good"             // partial history, department fallback
	QualityFair            DataQuality = "fair"             // partial history, global fallback
	QualityEstimatedDept   DataQuality = "estimated_dept"   // no history, department averages
	QualityEstimatedGlobal DataQuality = "estimated_global" // no history, company averages
)

// Suffix returns the qualifying message suffix attached to prediction messages.
func (q DataQuality) Suffix() string {
	switch q {
	case QualityGood:
		return " (based on partial history)"
	case QualityFair:
		return " (limited historical data)"
	case QualityEstimatedDept:
		return " (estimated from department data)"
	case QualityEstimatedGlobal:
		return " (estimated from company averages)"
	default:
		return ""
	}
}

// TrainingDecision is the outcome of one learning-scheduler cycle.
type TrainingDecision string

const (
	DecisionSkip        TrainingDecision = "skip"
	DecisionIncremental TrainingDecision = "incremental_training"
	DecisionFull        TrainingDecision = "full_retraining"
)

// TrainingMode records how a model version was produced.
type TrainingMode string

const (
	ModeInitial     TrainingMode = "initial"
	ModeIncremental TrainingMode = "incremental"
	ModeFull        TrainingMode = "full"
)
