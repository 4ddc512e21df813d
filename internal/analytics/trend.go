package analytics

import (
	"math"

	"agrobot-intelligence/internal/models"
)

// TrendAnalyzer classifies the direction of each field against sample order.
// Sample order stands in for time, so uneven sampling is not corrected.
type TrendAnalyzer struct {
	cfg TrendThresholds
}

func NewTrendAnalyzer(cfg TrendThresholds) *TrendAnalyzer {
	return &TrendAnalyzer{cfg: cfg}
}

func (a *TrendAnalyzer) Analyze(series models.HistoricalSeries) map[models.SensorField]models.Trend {
	trends := make(map[models.SensorField]models.Trend)
	if len(series) < a.cfg.MinPoints {
		return trends
	}

	for _, field := range models.AllSensorFields {
		values := series.FieldValues(field)
		if len(values) < a.cfg.MinPoints {
			continue
		}
		trends[field] = a.trendFor(values)
	}
	return trends
}

func (a *TrendAnalyzer) trendFor(values []float64) models.Trend {
	corr := indexCorrelation(values)
	return models.Trend{
		Direction:       a.direction(corr),
		Strength:        math.Abs(corr),
		RecentChangePct: a.recentChange(values),
		Correlation:     corr,
	}
}

func (a *TrendAnalyzer) direction(corr float64) models.TrendDirection {
	switch {
	case corr > a.cfg.CorrelationCutoff:
		return models.TrendIncreasing
	case corr < -a.cfg.CorrelationCutoff:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// recentChange compares the last window with the window before it. A zero
// previous mean yields 0.
func (a *TrendAnalyzer) recentChange(values []float64) float64 {
	n := len(values)
	w := a.cfg.RecentWindow
	if n < a.cfg.RecentChangeMinPoint || n < 2*w {
		return 0
	}
	recent := mean(values[n-w:])
	previous := mean(values[n-2*w : n-w])
	if previous == 0 {
		return 0
	}
	return (recent - previous) / previous * 100
}
