package analytics

import (
	"testing"

	"agrobot-intelligence/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST SUITE 1: FIELD SUMMARY
// ============================================================================

func TestComputeField_BasicSummary(t *testing.T) {
	engine := NewStatisticsEngine()
	series := createTestSeries(models.FieldTemperature, 5, 1, 4, 2, 3)

	stats, ok := engine.ComputeField(series, models.FieldTemperature)

	require.True(t, ok)
	assert.InDelta(t, 3.0, stats.Mean, 1e-9)
	assert.InDelta(t, 3.0, stats.Median, 1e-9)
	assert.InDelta(t, 1.5811388, stats.Std, 1e-6, "sample std with n-1")
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 5.0, stats.Max)
	assert.InDelta(t, 2.0, stats.Q25, 1e-9)
	assert.InDelta(t, 4.0, stats.Q75, 1e-9)
	assert.Equal(t, 5, stats.Count)
}

func TestComputeField_LinearQuantiles(t *testing.T) {
	engine := NewStatisticsEngine()
	series := createTestSeries(models.FieldPH, 1, 2, 3, 4)

	stats, ok := engine.ComputeField(series, models.FieldPH)

	require.True(t, ok)
	assert.InDelta(t, 1.75, stats.Q25, 1e-9)
	assert.InDelta(t, 2.5, stats.Median, 1e-9)
	assert.InDelta(t, 3.25, stats.Q75, 1e-9)
}

func TestComputeField_SingleValueHasZeroStd(t *testing.T) {
	engine := NewStatisticsEngine()
	series := createTestSeries(models.FieldHumidity, 42)

	stats, ok := engine.ComputeField(series, models.FieldHumidity)

	require.True(t, ok)
	assert.Equal(t, 42.0, stats.Mean)
	assert.Equal(t, 0.0, stats.Std)
	assert.Equal(t, 1, stats.Count)
}

func TestComputeField_ConstantSeries(t *testing.T) {
	engine := NewStatisticsEngine()
	series := createTestSeries(models.FieldPH, 7.3, 7.3, 7.3, 7.3, 7.3, 7.3, 7.3)

	stats, ok := engine.ComputeField(series, models.FieldPH)

	require.True(t, ok)
	assert.Equal(t, 7.3, stats.Mean)
	assert.Equal(t, 0.0, stats.Std)
	assert.Equal(t, 7.3, stats.Q25)
	assert.Equal(t, 7.3, stats.Q75)
}

// ============================================================================
// TEST SUITE 2: SERIES COVERAGE
// ============================================================================

func TestCompute_SkipsNullValues(t *testing.T) {
	engine := NewStatisticsEngine()
	series := createTestSeries(models.FieldNitrogen, 10, 20, 30)
	series = append(series, *createTestReading(minutesAgo(0), map[models.SensorField]float64{
		models.FieldPhosphorus: 12,
	}))

	stats := engine.Compute(series)

	require.Contains(t, stats, models.FieldNitrogen)
	assert.Equal(t, 3, stats[models.FieldNitrogen].Count)
	assert.InDelta(t, 20.0, stats[models.FieldNitrogen].Mean, 1e-9)
	require.Contains(t, stats, models.FieldPhosphorus)
	assert.Equal(t, 1, stats[models.FieldPhosphorus].Count)
}

func TestCompute_FieldWithoutValuesHasNoEntry(t *testing.T) {
	engine := NewStatisticsEngine()
	series := createTestSeries(models.FieldTemperature, 20, 21)

	stats := engine.Compute(series)

	assert.Len(t, stats, 1)
	assert.NotContains(t, stats, models.FieldTDS)
}

func TestCompute_EmptySeries(t *testing.T) {
	engine := NewStatisticsEngine()

	stats := engine.Compute(nil)

	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

// ============================================================================
// TEST SUITE 3: ORDERING PROPERTIES
// ============================================================================

func TestCompute_MeanWithinRangeAndQuartilesOrdered(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"skewed", []float64{0.1, 0.1, 0.1, 0.1, 1000}},
		{"negative", []float64{-20, -3.5, -7, -11.25}},
		{"repeating fraction", []float64{0.1, 0.2, 0.3, 0.1, 0.2, 0.3, 0.1}},
		{"large magnitude", []float64{1e9 + 0.1, 1e9 + 0.1, 1e9 + 0.1}},
		{"two points", []float64{3, 9}},
	}

	engine := NewStatisticsEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, ok := engine.ComputeField(createTestSeries(models.FieldConductivity, tt.values...), models.FieldConductivity)

			require.True(t, ok)
			assert.GreaterOrEqual(t, stats.Mean, stats.Min)
			assert.LessOrEqual(t, stats.Mean, stats.Max)
			assert.LessOrEqual(t, stats.Q25, stats.Median)
			assert.LessOrEqual(t, stats.Median, stats.Q75)
			assert.GreaterOrEqual(t, stats.Std, 0.0)
		})
	}
}
