package analytics

import (
	"testing"

	"agrobot-intelligence/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTrendAnalyzer() *TrendAnalyzer {
	return NewTrendAnalyzer(DefaultThresholds().Trend)
}

// ============================================================================
// TEST SUITE 1: DIRECTION
// ============================================================================

func TestAnalyze_Direction(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		direction   models.TrendDirection
		correlation float64
	}{
		{"monotonic increase", []float64{1, 2, 3, 4, 5}, models.TrendIncreasing, 1},
		{"monotonic decrease", []float64{9, 7, 5, 3}, models.TrendDecreasing, -1},
		{"constant", []float64{4, 4, 4, 4}, models.TrendStable, 0},
		{"three points", []float64{10, 20, 30}, models.TrendIncreasing, 1},
	}

	analyzer := createTestTrendAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trends := analyzer.Analyze(createTestSeries(models.FieldTemperature, tt.values...))

			require.Contains(t, trends, models.FieldTemperature)
			trend := trends[models.FieldTemperature]
			assert.Equal(t, tt.direction, trend.Direction)
			assert.InDelta(t, tt.correlation, trend.Correlation, 1e-9)
			assert.InDelta(t, abs(tt.correlation), trend.Strength, 1e-9)
		})
	}
}

func TestAnalyze_WeakCorrelationIsStable(t *testing.T) {
	analyzer := createTestTrendAnalyzer()

	trends := analyzer.Analyze(createTestSeries(models.FieldHumidity, 50, 52, 49, 51, 50, 52, 49, 51))

	trend := trends[models.FieldHumidity]
	assert.LessOrEqual(t, trend.Strength, 0.1)
	assert.Equal(t, models.TrendStable, trend.Direction)
}

// ============================================================================
// TEST SUITE 2: MINIMUM HISTORY
// ============================================================================

func TestAnalyze_FewerThanThreeRowsIsEmpty(t *testing.T) {
	analyzer := createTestTrendAnalyzer()

	trends := analyzer.Analyze(createTestSeries(models.FieldTemperature, 1, 2))

	assert.NotNil(t, trends)
	assert.Empty(t, trends)
}

func TestAnalyze_SparseFieldIsOmitted(t *testing.T) {
	analyzer := createTestTrendAnalyzer()
	series := createTestSeries(models.FieldTemperature, 20, 21, 22, 23)
	series[0].Set(models.FieldPH, 6.5)
	series[1].Set(models.FieldPH, 6.6)

	trends := analyzer.Analyze(series)

	assert.Contains(t, trends, models.FieldTemperature)
	assert.NotContains(t, trends, models.FieldPH)
}

// ============================================================================
// TEST SUITE 3: RECENT CHANGE
// ============================================================================

func TestAnalyze_RecentChange(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"twenty percent rise", []float64{10, 10, 10, 10, 10, 12, 12, 12, 12, 12}, 20},
		{"fifty percent drop", []float64{99, 99, 8, 8, 8, 8, 8, 4, 4, 4, 4, 4}, -50},
		{"zero previous mean", []float64{0, 0, 0, 0, 0, 5, 5, 5, 5, 5}, 0},
		{"fewer than ten points", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 0},
	}

	analyzer := createTestTrendAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trends := analyzer.Analyze(createTestSeries(models.FieldNitrogen, tt.values...))

			require.Contains(t, trends, models.FieldNitrogen)
			assert.InDelta(t, tt.expected, trends[models.FieldNitrogen].RecentChangePct, 1e-9)
		})
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
