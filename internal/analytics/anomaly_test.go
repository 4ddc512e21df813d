package analytics

import (
	"math"
	"testing"

	"agrobot-intelligence/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAnomalyDetector() *AnomalyDetector {
	return NewAnomalyDetector(DefaultThresholds().Anomaly)
}

// alternatingHistory has mean 11 and sample std sqrt(10/9).
func alternatingHistory() models.HistoricalSeries {
	return createTestSeries(models.FieldTemperature, 10, 12, 10, 12, 10, 12, 10, 12, 10, 12)
}

// ============================================================================
// TEST SUITE 1: SEVERITY
// ============================================================================

func TestDetect_Severity(t *testing.T) {
	std := math.Sqrt(10.0 / 9.0)

	tests := []struct {
		name     string
		current  float64
		found    bool
		severity models.AnomalySeverity
	}{
		{"within band", 12, false, ""},
		{"just outside band", 13.5, true, models.AnomalyMedium},
		{"far outside band", 20, true, models.AnomalyHigh},
		{"far below band", 2, true, models.AnomalyHigh},
	}

	detector := createTestAnomalyDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := createTestReading(minutesAgo(0), map[models.SensorField]float64{
				models.FieldTemperature: tt.current,
			})

			anomalies := detector.Detect(current, alternatingHistory())

			if !tt.found {
				assert.Empty(t, anomalies)
				return
			}
			require.Len(t, anomalies, 1)
			a := anomalies[0]
			assert.Equal(t, models.FieldTemperature, a.Field)
			assert.Equal(t, tt.severity, a.Severity)
			assert.Equal(t, tt.current, a.CurrentValue)
			assert.InDelta(t, (tt.current-11)/std, a.ZScore, 1e-9)
			assert.InDelta(t, 11-2*std, a.ExpectedRange.Low, 1e-9)
			assert.InDelta(t, 11+2*std, a.ExpectedRange.High, 1e-9)
		})
	}
}

// ============================================================================
// TEST SUITE 2: GUARDS
// ============================================================================

func TestDetect_ConstantHistoryNeverFlags(t *testing.T) {
	detector := createTestAnomalyDetector()
	history := createTestSeries(models.FieldPH, 6.8, 6.8, 6.8, 6.8, 6.8, 6.8, 6.8, 6.8, 6.8, 6.8, 6.8, 6.8)

	for _, value := range []float64{0, 6.8, 14, 1e6} {
		current := createTestReading(minutesAgo(0), map[models.SensorField]float64{models.FieldPH: value})

		assert.Empty(t, detector.Detect(current, history), "value %v", value)
	}
}

func TestDetect_ShortHistoryNeverFlags(t *testing.T) {
	detector := createTestAnomalyDetector()
	history := createTestSeries(models.FieldTemperature, 10, 12, 10, 12, 10, 12, 10, 12, 10)
	current := createTestReading(minutesAgo(0), map[models.SensorField]float64{models.FieldTemperature: 500})

	assert.Empty(t, detector.Detect(current, history))
}

func TestDetect_FieldMissingFromCurrentIsSkipped(t *testing.T) {
	detector := createTestAnomalyDetector()
	current := createTestReading(minutesAgo(0), map[models.SensorField]float64{models.FieldHumidity: 50})

	assert.Empty(t, detector.Detect(current, alternatingHistory()))
}

func TestDetect_EmptyCurrent(t *testing.T) {
	detector := createTestAnomalyDetector()

	anomalies := detector.Detect(nil, alternatingHistory())

	assert.NotNil(t, anomalies)
	assert.Empty(t, anomalies)
}

func TestDetect_CanonicalFieldOrder(t *testing.T) {
	detector := createTestAnomalyDetector()
	history := alternatingHistory()
	for i := range history {
		v := 100.0
		if i%2 == 1 {
			v = 102
		}
		history[i].Set(models.FieldTDS, v)
	}
	current := createTestReading(minutesAgo(0), map[models.SensorField]float64{
		models.FieldTDS:         200,
		models.FieldTemperature: 40,
	})

	anomalies := detector.Detect(current, history)

	require.Len(t, anomalies, 2)
	assert.Equal(t, models.FieldTemperature, anomalies[0].Field)
	assert.Equal(t, models.FieldTDS, anomalies[1].Field)
}
