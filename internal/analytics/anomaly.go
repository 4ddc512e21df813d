package analytics

import (
	"math"

	"agrobot-intelligence/internal/models"
)

// AnomalyDetector flags current values outside the historical sigma band.
type AnomalyDetector struct {
	cfg AnomalyThresholds
}

func NewAnomalyDetector(cfg AnomalyThresholds) *AnomalyDetector {
	return &AnomalyDetector{cfg: cfg}
}

func (d *AnomalyDetector) Detect(current *models.SensorReading, series models.HistoricalSeries) []models.Anomaly {
	anomalies := make([]models.Anomaly, 0)
	if current.IsEmpty() {
		return anomalies
	}

	for _, field := range models.AllSensorFields {
		value, ok := current.Value(field)
		if !ok {
			continue
		}
		if a, found := d.check(field, value, series.FieldValues(field)); found {
			anomalies = append(anomalies, a)
		}
	}
	return anomalies
}

func (d *AnomalyDetector) check(field models.SensorField, value float64, history []float64) (models.Anomaly, bool) {
	if len(history) < d.cfg.MinHistory {
		return models.Anomaly{}, false
	}

	avg := mean(history)
	std := sampleStd(history)
	// flat history never flags
	if std == 0 {
		return models.Anomaly{}, false
	}

	band := d.cfg.SigmaBand * std
	if math.Abs(value-avg) <= band {
		return models.Anomaly{}, false
	}

	z := (value - avg) / std
	severity := models.AnomalyMedium
	if math.Abs(z) > d.cfg.HighZScore {
		severity = models.AnomalyHigh
	}

	return models.Anomaly{
		Field:        field,
		CurrentValue: value,
		ExpectedRange: models.ExpectedRange{
			Low:  avg - band,
			High: avg + band,
		},
		ZScore:   z,
		Severity: severity,
	}, true
}
