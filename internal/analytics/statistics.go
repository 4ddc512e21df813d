package analytics

import (
	"agrobot-intelligence/internal/models"

	"github.com/samber/lo"
)

// StatisticsEngine summarizes each sensor field over the history window.
type StatisticsEngine struct{}

func NewStatisticsEngine() *StatisticsEngine {
	return &StatisticsEngine{}
}

// Compute returns an entry for every field with at least one value.
func (e *StatisticsEngine) Compute(series models.HistoricalSeries) map[models.SensorField]models.FieldStatistics {
	stats := make(map[models.SensorField]models.FieldStatistics)
	for _, field := range models.AllSensorFields {
		if s, ok := e.ComputeField(series, field); ok {
			stats[field] = s
		}
	}
	return stats
}

func (e *StatisticsEngine) ComputeField(series models.HistoricalSeries, field models.SensorField) (models.FieldStatistics, bool) {
	values := series.FieldValues(field)
	if len(values) == 0 {
		return models.FieldStatistics{}, false
	}
	return summarize(values), true
}

func summarize(values []float64) models.FieldStatistics {
	sorted := sortedCopy(values)
	minVal := lo.Min(sorted)
	maxVal := lo.Max(sorted)

	return models.FieldStatistics{
		Mean:   clamp(mean(values), minVal, maxVal),
		Median: quantile(sorted, 0.5),
		Std:    sampleStd(values),
		Min:    minVal,
		Max:    maxVal,
		Q25:    quantile(sorted, 0.25),
		Q75:    quantile(sorted, 0.75),
		Count:  len(values),
	}
}
