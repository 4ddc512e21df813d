package analytics

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if isConstant(values) {
		return values[0]
	}
	return lo.Sum(values) / float64(len(values))
}

// sampleStd uses n-1 in the denominator; fewer than two values give 0.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values) / float64(len(values)-1))
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values) / float64(len(values)))
}

// sumSquaredDeviations is exactly 0 for constant input, so callers can rely
// on a zero std for flat history.
func sumSquaredDeviations(values []float64) float64 {
	if isConstant(values) {
		return 0
	}
	avg := mean(values)
	return lo.SumBy(values, func(v float64) float64 {
		d := v - avg
		return d * d
	})
}

// quantile interpolates linearly between order statistics. sorted must be
// ascending and non-empty.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

func isConstant(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	return lo.Min(values) == lo.Max(values)
}

func sortedCopy(values []float64) []float64 {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

// indexCorrelation is the Pearson correlation between values and their
// position 0..n-1. Zero variance on either side yields 0.
func indexCorrelation(values []float64) float64 {
	n := len(values)
	if n < 2 || isConstant(values) {
		return 0
	}
	xMean := float64(n-1) / 2
	yMean := mean(values)

	var cov, xVar, yVar float64
	for i, y := range values {
		dx := float64(i) - xMean
		dy := y - yMean
		cov += dx * dy
		xVar += dx * dx
		yVar += dy * dy
	}
	if xVar == 0 || yVar == 0 {
		return 0
	}
	r := cov / math.Sqrt(xVar*yVar)
	return clamp(r, -1, 1)
}
