package analytics

import "agrobot-intelligence/internal/models"

// Rule pairs a predicate with the outcome it produces.
type Rule[In, Out any] struct {
	Name string
	When func(In) bool
	Then func(In) Out
}

// RuleChain is one concern: rules are tried top to bottom and the first
// match wins.
type RuleChain[In, Out any] []Rule[In, Out]

func (c RuleChain[In, Out]) Evaluate(in In) (Out, bool) {
	for _, rule := range c {
		if rule.When(in) {
			return rule.Then(in), true
		}
	}
	var zero Out
	return zero, false
}

// EvaluateAll runs every concern and collects one outcome per matching chain,
// in chain order.
func EvaluateAll[In, Out any](chains []RuleChain[In, Out], in In) []Out {
	out := make([]Out, 0, len(chains))
	for _, chain := range chains {
		if result, ok := chain.Evaluate(in); ok {
			out = append(out, result)
		}
	}
	return out
}

// checkThreshold compares a measured value against a threshold.
func checkThreshold(measured float64, threshold float64, operator models.ThresholdOperator) bool {
	switch operator {
	case models.ThresholdLT:
		return measured < threshold
	case models.ThresholdGT:
		return measured > threshold
	case models.ThresholdLTE:
		return measured <= threshold
	case models.ThresholdGTE:
		return measured >= threshold
	case models.ThresholdEQ:
		return measured == threshold
	case models.ThresholdNE:
		return measured != threshold
	default:
		return false
	}
}

// between is inclusive on both ends.
func between(v, low, high float64) bool {
	return v >= low && v <= high
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
