package analytics

import (
	"time"

	"agrobot-intelligence/internal/models"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

var testNow = time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

func createTestReading(timestamp string, values map[models.SensorField]float64) *models.SensorReading {
	r := models.NewSensorReading(1, timestamp, nil)
	for field, v := range values {
		r.Set(field, v)
	}
	return r
}

// createHealthyValues returns a full reading that trips no rule.
func createHealthyValues() map[models.SensorField]float64 {
	return map[models.SensorField]float64{
		models.FieldTemperature:  25,
		models.FieldHumidity:     55,
		models.FieldPH:           6.5,
		models.FieldNitrogen:     30,
		models.FieldPhosphorus:   20,
		models.FieldPotassium:    30,
		models.FieldConductivity: 150,
		models.FieldTDS:          100,
	}
}

func withValue(values map[models.SensorField]float64, field models.SensorField, v float64) map[models.SensorField]float64 {
	out := make(map[models.SensorField]float64, len(values)+1)
	for k, val := range values {
		out[k] = val
	}
	out[field] = v
	return out
}

func minutesAgo(m float64) string {
	return testNow.Add(-time.Duration(m * float64(time.Minute))).Format(time.RFC3339)
}

// createTestSeries builds one reading per value, one minute apart.
func createTestSeries(field models.SensorField, values ...float64) models.HistoricalSeries {
	series := make(models.HistoricalSeries, 0, len(values))
	start := testNow.Add(-time.Duration(len(values)) * time.Minute)
	for i, v := range values {
		ts := start.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		r := createTestReading(ts, map[models.SensorField]float64{field: v})
		r.EntryID = int64(i + 1)
		series = append(series, *r)
	}
	return series
}

func createProcessed(current *models.SensorReading) *models.ProcessedData {
	return &models.ProcessedData{
		Current:    current,
		Statistics: map[models.SensorField]models.FieldStatistics{},
		Trends:     map[models.SensorField]models.Trend{},
		Anomalies:  []models.Anomaly{},
		DataQuality: models.DataQuality{
			Freshness:    models.FreshnessExcellent,
			Completeness: 100,
			Reliability:  100,
			SensorStatus: models.SensorOnline,
		},
	}
}

func createForecast(n int, point models.ForecastPoint) models.ForecastSeries {
	forecast := make(models.ForecastSeries, n)
	for i := range forecast {
		p := point
		p.Time = testNow.Add(time.Duration(3*(i+1)) * time.Hour)
		forecast[i] = p
	}
	return forecast
}

func actions(recs []models.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Action)
	}
	return out
}

func titles(alerts []models.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Title)
	}
	return out
}
