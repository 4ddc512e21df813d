package analytics

import (
	"time"

	"agrobot-intelligence/internal/models"
)

// Processor runs the signal stage of the pipeline: statistics, trends,
// anomalies, quality and indices. It holds no state between calls.
type Processor struct {
	statistics *StatisticsEngine
	trends     *TrendAnalyzer
	anomalies  *AnomalyDetector
	quality    *DataQualityScorer
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now for age based rules.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewProcessor(th Thresholds, opts ...Option) *Processor {
	o := applyOptions(opts)
	return &Processor{
		statistics: NewStatisticsEngine(),
		trends:     NewTrendAnalyzer(th.Trend),
		anomalies:  NewAnomalyDetector(th.Anomaly),
		quality:    NewDataQualityScorer(th.Quality, o.now),
	}
}

// Process builds ProcessedData from the current reading and history. A
// missing reading yields empty signals with an offline quality verdict.
func (p *Processor) Process(current *models.SensorReading, history models.HistoricalSeries) *models.ProcessedData {
	processed := &models.ProcessedData{
		Statistics: make(map[models.SensorField]models.FieldStatistics),
		Trends:     make(map[models.SensorField]models.Trend),
		Anomalies:  make([]models.Anomaly, 0),
	}

	if current.IsEmpty() {
		processed.DataQuality = p.quality.Score(nil)
		return processed
	}
	processed.Current = current

	if len(history) > 0 {
		series := make(models.HistoricalSeries, len(history))
		copy(series, history)
		series.SortByTimestamp()

		processed.Statistics = p.statistics.Compute(series)
		processed.Trends = p.trends.Analyze(series)
		processed.Anomalies = p.anomalies.Detect(current, series)
	}

	processed.DataQuality = p.quality.Score(current)
	processed.Indices = ComputeIndices(current)
	return processed
}
