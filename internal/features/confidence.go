package features

import (
	"math"

	"burnoutd/models"

	"github.com/montanaflynn/stats"
)

// Confidence blend weights. Base data quality dominates; completeness and
// consistency refine it.
const (
	baseWeight         = 0.65
	completenessWeight = 0.20
	consistencyWeight  = 0.15

	consistencyMinDays = 3
)

// ConfidenceEstimator scores how trustworthy a prediction input is, then
// discounts the score by inference-time uncertainty.
type ConfidenceEstimator struct{}

// NewConfidenceEstimator creates a stateless estimator.
func NewConfidenceEstimator() *ConfidenceEstimator {
	return &ConfidenceEstimator{}
}

// Estimate blends base data quality, feature completeness and historical
// consistency into a confidence score in [0, 1], rounded to 3 decimals.
func (e *ConfidenceEstimator) Estimate(input *PreparedInput, log *models.DailyLog) float64 {
	base := baseScore(input.Quality) * baseWeight
	completeness := float64(log.SuppliedFieldCount()) / float64(models.RawFieldCount) * completenessWeight

	realDays := len(input.RealHistory)
	var consistency float64
	if realDays >= consistencyMinDays {
		consistency = historicalConsistency(input.RealHistory) * consistencyWeight
	} else {
		// Too little history to measure variance; ramp the term with what
		// little exists instead of granting a neutral score.
		consistency = float64(realDays) / float64(consistencyMinDays) * consistencyWeight
	}

	return round3(clamp01(base + completeness + consistency))
}

// UncertaintyPenalty inspects the scaled feature window the model actually
// scored and the predicted rate. Checks are ordered by severity; only the
// first that fires applies.
func (e *ConfidenceEstimator) UncertaintyPenalty(scaledWindow []float64, rate float64) float64 {
	for _, v := range scaledWindow {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0.25
		}
	}
	if std, err := stats.StandardDeviation(scaledWindow); err == nil && std > 0.5 {
		return 0.15
	}
	if rate < 0.1 || rate > 0.9 {
		return 0.10
	}
	return 0.05
}

// Apply discounts a confidence score by an uncertainty penalty.
func (e *ConfidenceEstimator) Apply(confidence, penalty float64) float64 {
	return round3(clamp01(confidence * (1 - penalty)))
}

func baseScore(quality models.DataQuality) float64 {
	switch quality {
	case models.QualityExcellent:
		return 0.95
	case models.QualityGood:
		return 0.80
	case models.QualityFair:
		return 0.65
	case models.QualityEstimatedDept:
		return 0.50
	case models.QualityEstimatedGlobal:
		return 0.40
	default:
		return 0.40
	}
}

// historicalConsistency averages, over the key metrics, how steady the
// subject's real history is. A coefficient of variation of 0 scores 1.0;
// 0.5 or more scores 0.
func historicalConsistency(history []models.DailyLog) float64 {
	metrics := [][]float64{
		make([]float64, 0, len(history)), // work hours
		make([]float64, 0, len(history)), // sleep hours
		make([]float64, 0, len(history)), // stress
		make([]float64, 0, len(history)), // motivation
	}
	for i := range history {
		l := &history[i]
		metrics[0] = append(metrics[0], l.HoursWorkedOrDefault())
		metrics[1] = append(metrics[1], l.HoursSleptOrDefault())
		metrics[2] = append(metrics[2], l.StressOrDefault())
		metrics[3] = append(metrics[3], l.MotivationOrDefault())
	}

	var scores []float64
	for _, values := range metrics {
		if len(values) < 2 {
			continue
		}
		m, err := stats.Mean(values)
		if err != nil || m == 0 {
			continue
		}
		sd, err := stats.StandardDeviationSample(values)
		if err != nil {
			continue
		}
		cv := sd / m
		scores = append(scores, math.Max(0, 1-cv*2))
	}
	if len(scores) == 0 {
		return 0.5
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
