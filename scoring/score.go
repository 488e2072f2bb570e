package scoring

import (
	"math"

	"github.com/codedaily-app/backend/execsrvc"
)

// Named scoring factors recognized in a challenge's scoring criteria.
const (
	FactorCorrectness = "correctness"
	FactorSpeed       = "speed"
	FactorEfficiency  = "efficiency"
)

// Default relative weights, used for factors absent from the criteria.
const (
	DefaultCorrectnessWeight = 0.6
	DefaultSpeedWeight       = 0.2
	DefaultEfficiencyWeight  = 0.2
)

const (
	speedBaselineMs      = 1000.0 // execution at or above this earns 0 speed points
	memoryBaselineMB     = 100.0  // memory at or above this earns 0 efficiency points
	speedMaxPoints       = 50.0
	efficiencyMaxPoints  = 30.0
	consistencyBonusPts  = 20.0
	consistencyBonusMult = 0.1
)

const (
	RatingExpert       = "Expert"
	RatingAdvanced     = "Advanced"
	RatingIntermediate = "Intermediate"
	RatingCompetent    = "Competent"
	RatingBeginner     = "Beginner"
)

// Factor is a sub-score together with the normalized weight it
// entered the total with.
type Factor struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Breakdown records every sub-score and the raw metrics they were
// derived from, for audit and debugging.
type Breakdown struct {
	Correctness      Factor  `json:"correctness"`
	Speed            Factor  `json:"speed"`
	Efficiency       Factor  `json:"efficiency"`
	ConsistencyBonus float64 `json:"consistency_bonus"`

	PassedTests        int     `json:"passed_tests"`
	TotalTests         int     `json:"total_tests"`
	AvgExecutionTimeMs float64 `json:"avg_execution_time_ms"`
	AvgMemoryUsageMB   float64 `json:"avg_memory_usage_mb"`
}

type Result struct {
	Total     int       `json:"total"` // 0..100
	Rating    string    `json:"rating"`
	Breakdown Breakdown `json:"breakdown"`
}

// Score computes the weighted multi-factor score of a submission's
// test results. It is a pure function: no side effects, identical
// results for identical input, safe to call concurrently.
//
// The consistency bonus is applied outside the renormalized
// three-factor weight set, so the total weight mass exceeds 1 when
// the bonus fires; the 100-point clamp bounds the result. This
// mirrors the formula the rest of the product is calibrated against.
func Score(results []execsrvc.TestResult, criteria map[string]float64) Result {
	passed := 0
	var sumTimeMs, sumMemMB float64
	for _, r := range results {
		if r.Passed {
			passed++
		}
		sumTimeMs += r.ExecutionTimeMs
		sumMemMB += r.MemoryUsageMB
	}
	total := len(results)

	var correctness, avgTimeMs, avgMemMB float64
	if total > 0 {
		correctness = 100 * float64(passed) / float64(total)
		avgTimeMs = sumTimeMs / float64(total)
		avgMemMB = sumMemMB / float64(total)
	}

	speed := clamp(0, speedMaxPoints, speedMaxPoints*(1-avgTimeMs/speedBaselineMs))
	efficiency := clamp(0, efficiencyMaxPoints, efficiencyMaxPoints*(1-avgMemMB/memoryBaselineMB))

	var consistencyBonus float64
	if total > 0 && passed == total {
		consistencyBonus = consistencyBonusPts
	}

	wc, ws, we := NormalizeWeights(criteria)

	weighted := correctness*wc + speed*ws + efficiency*we + consistencyBonus*consistencyBonusMult
	totalScore := int(math.Round(math.Min(100, weighted)))

	return Result{
		Total:  totalScore,
		Rating: RatingFor(totalScore),
		Breakdown: Breakdown{
			Correctness:        Factor{Value: correctness, Weight: wc},
			Speed:              Factor{Value: speed, Weight: ws},
			Efficiency:         Factor{Value: efficiency, Weight: we},
			ConsistencyBonus:   consistencyBonus,
			PassedTests:        passed,
			TotalTests:         total,
			AvgExecutionTimeMs: avgTimeMs,
			AvgMemoryUsageMB:   avgMemMB,
		},
	}
}

// NormalizeWeights extracts the correctness, speed and efficiency
// weights from the criteria (falling back to defaults for absent
// factors) and renormalizes them to sum to exactly 1. A degenerate
// all-zero input falls back entirely to the defaults.
func NormalizeWeights(criteria map[string]float64) (wc, ws, we float64) {
	wc = weightOrDefault(criteria, FactorCorrectness, DefaultCorrectnessWeight)
	ws = weightOrDefault(criteria, FactorSpeed, DefaultSpeedWeight)
	we = weightOrDefault(criteria, FactorEfficiency, DefaultEfficiencyWeight)

	sum := wc + ws + we
	if sum <= 0 {
		wc, ws, we = DefaultCorrectnessWeight, DefaultSpeedWeight, DefaultEfficiencyWeight
		sum = wc + ws + we
	}
	return wc / sum, ws / sum, we / sum
}

func weightOrDefault(criteria map[string]float64, factor string, def float64) float64 {
	w, ok := criteria[factor]
	if !ok {
		return def
	}
	if w < 0 {
		return 0
	}
	return w
}

// RatingFor maps a total score to its discrete tier.
func RatingFor(total int) string {
	switch {
	case total >= 90:
		return RatingExpert
	case total >= 80:
		return RatingAdvanced
	case total >= 70:
		return RatingIntermediate
	case total >= 60:
		return RatingCompetent
	default:
		return RatingBeginner
	}
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
