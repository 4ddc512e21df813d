package analytics

import (
	"testing"

	"agrobot-intelligence/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAlertEngine() *AlertEngine {
	return NewAlertEngine(DefaultAlertThresholds(), WithClock(fixedClock()))
}

func alertsFor(values map[models.SensorField]float64, weather *models.WeatherSnapshot) models.AlertReport {
	processed := createProcessed(createTestReading(minutesAgo(1), values))
	return createTestAlertEngine().Alert(processed, weather)
}

// ============================================================================
// TEST SUITE 1: REPORT SHAPE
// ============================================================================

func TestAlert_AllClear(t *testing.T) {
	report := alertsFor(createHealthyValues(), calmWeather())

	assert.True(t, report.AllClear)
	assert.Equal(t, "All systems operating within normal parameters", report.Message)
	assert.Equal(t, 0, report.Total())
}

func TestAlert_NoCurrentReading(t *testing.T) {
	engine := createTestAlertEngine()

	report := engine.Alert(createProcessed(nil), calmWeather())

	assert.False(t, report.AllClear)
	assert.Equal(t, "No sensor data available", report.Message)
	assert.NotNil(t, report.Critical)
	assert.NotNil(t, report.Warning)
	assert.NotNil(t, report.Info)
	assert.Equal(t, 0, report.Total())
}

func TestAlert_BucketsKeepEvaluationOrder(t *testing.T) {
	values := createHealthyValues()
	values[models.FieldNitrogen] = 10
	values[models.FieldConductivity] = 350
	values[models.FieldTDS] = 230

	report := alertsFor(values, nil)

	assert.False(t, report.AllClear)
	assert.Empty(t, report.Message)
	assert.Equal(t, []string{"Low Nitrogen Levels", "High Soil Salinity"}, titles(report.Warning))
}

// ============================================================================
// TEST SUITE 2: SENSOR ALERTS
// ============================================================================

func TestAlert_TemperatureBands(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		priority models.AlertPriority
		title    string
	}{
		{"critical cold at boundary", 10, models.AlertCritical, "Extreme Cold Temperature"},
		{"critical heat at boundary", 40, models.AlertCritical, "Extreme Heat Temperature"},
		{"cool", 15, models.AlertWarning, "Low Temperature Warning"},
		{"warm", 35, models.AlertWarning, "High Temperature Warning"},
		{"comfortable", 25, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := alertsFor(withValue(createHealthyValues(), models.FieldTemperature, tt.temp), nil)

			if tt.title == "" {
				assert.True(t, report.AllClear)
				return
			}
			ordered := report.Ordered()
			require.Len(t, ordered, 1)
			assert.Equal(t, tt.priority, ordered[0].Priority)
			assert.Equal(t, tt.title, ordered[0].Title)
			assert.NotEmpty(t, ordered[0].Action)
		})
	}
}

func TestAlert_SoilBands(t *testing.T) {
	tests := []struct {
		name     string
		field    models.SensorField
		value    float64
		priority models.AlertPriority
		title    string
	}{
		{"drought", models.FieldHumidity, 18, models.AlertCritical, "Severe Drought Conditions"},
		{"dry", models.FieldHumidity, 30, models.AlertWarning, "Low Soil Moisture"},
		{"waterlogged", models.FieldHumidity, 92, models.AlertWarning, "Waterlogged Conditions"},
		{"acidic", models.FieldPH, 4.2, models.AlertCritical, "Extremely Acidic Soil"},
		{"alkaline", models.FieldPH, 9.5, models.AlertCritical, "Extremely Alkaline Soil"},
		{"slightly alkaline", models.FieldPH, 8.0, models.AlertWarning, "Suboptimal Soil pH"},
		{"nitrogen critical", models.FieldNitrogen, 5, models.AlertCritical, "Severe Nitrogen Deficiency"},
		{"phosphorus low", models.FieldPhosphorus, 4, models.AlertWarning, "Low Phosphorus Levels"},
		{"potassium low", models.FieldPotassium, 5, models.AlertWarning, "Low Potassium Levels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := alertsFor(withValue(createHealthyValues(), tt.field, tt.value), nil)

			ordered := report.Ordered()
			require.Len(t, ordered, 1)
			assert.Equal(t, tt.priority, ordered[0].Priority)
			assert.Equal(t, tt.title, ordered[0].Title)
		})
	}
}

func TestAlert_AlkalineMessage(t *testing.T) {
	report := alertsFor(withValue(createHealthyValues(), models.FieldPH, 9.5), nil)

	require.Len(t, report.Critical, 1)
	assert.Equal(t, "Soil pH critically high at 9.5 - nutrient deficiency likely", report.Critical[0].Message)
	assert.Equal(t, "Apply sulfur or acidifying agents", report.Critical[0].Action)
}

func TestAlert_InjectedThresholds(t *testing.T) {
	th := DefaultAlertThresholds()
	th.Temperature.CriticalHigh = 30
	engine := NewAlertEngine(th, WithClock(fixedClock()))
	processed := createProcessed(createTestReading(minutesAgo(1), withValue(createHealthyValues(), models.FieldTemperature, 31)))

	report := engine.Alert(processed, nil)

	assert.Equal(t, []string{"Extreme Heat Temperature"}, titles(report.Critical))
}

// ============================================================================
// TEST SUITE 3: QUALITY AND ANOMALY ALERTS
// ============================================================================

func TestAlert_DataQuality(t *testing.T) {
	tests := []struct {
		name         string
		completeness float64
		freshness    models.Freshness
		critical     []string
		warning      []string
	}{
		{"incomplete", 40, models.FreshnessExcellent, []string{"Sensor Data Incomplete"}, []string{}},
		{"partially offline", 70, models.FreshnessGood, []string{}, []string{"Some Sensors Offline"}},
		{"stale", 100, models.FreshnessPoor, []string{"Stale Sensor Data"}, []string{}},
		{"outdated", 100, models.FreshnessFair, []string{}, []string{"Outdated Sensor Data"}},
		{"both", 45, models.FreshnessPoor, []string{"Sensor Data Incomplete", "Stale Sensor Data"}, []string{}},
	}

	engine := createTestAlertEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processed := createProcessed(createTestReading(minutesAgo(1), createHealthyValues()))
			processed.DataQuality.Completeness = tt.completeness
			processed.DataQuality.Freshness = tt.freshness

			report := engine.Alert(processed, nil)

			assert.Equal(t, tt.critical, titles(report.Critical))
			assert.Equal(t, tt.warning, titles(report.Warning))
		})
	}
}

func TestAlert_OnlyHighSeverityAnomalies(t *testing.T) {
	engine := createTestAlertEngine()
	processed := createProcessed(createTestReading(minutesAgo(1), createHealthyValues()))
	processed.Anomalies = []models.Anomaly{
		{Field: models.FieldTemperature, CurrentValue: 25, Severity: models.AnomalyHigh},
		{Field: models.FieldHumidity, CurrentValue: 55, Severity: models.AnomalyMedium},
	}

	report := engine.Alert(processed, nil)

	require.Len(t, report.Warning, 1)
	assert.Equal(t, "Unusual Temperature Reading", report.Warning[0].Title)
	assert.Equal(t, "Temperature at 25.0 is significantly different from normal patterns", report.Warning[0].Message)
	assert.Empty(t, report.Critical)
}

// ============================================================================
// TEST SUITE 4: WEATHER AND SYSTEM ALERTS
// ============================================================================

func TestAlert_Weather(t *testing.T) {
	tests := []struct {
		name     string
		weather  models.WeatherSnapshot
		critical []string
		warning  []string
		info     []string
	}{
		{
			name:     "gale",
			weather:  models.WeatherSnapshot{Temperature: 24, WindSpeed: 25},
			critical: []string{"High Wind Alert"}, warning: []string{}, info: []string{},
		},
		{
			name:     "breezy",
			weather:  models.WeatherSnapshot{Temperature: 24, WindSpeed: 12},
			critical: []string{}, warning: []string{"Moderate Wind Warning"}, info: []string{},
		},
		{
			name:     "downpour",
			weather:  models.WeatherSnapshot{Temperature: 24, Rainfall1h: 12},
			critical: []string{}, warning: []string{}, info: []string{"Heavy Rainfall Detected"},
		},
		{
			name:     "hot air over cool soil",
			weather:  models.WeatherSnapshot{Temperature: 41},
			critical: []string{}, warning: []string{}, info: []string{"Large Temperature Differential"},
		},
		{
			name:     "wind at warning boundary",
			weather:  models.WeatherSnapshot{Temperature: 24, WindSpeed: 10},
			critical: []string{}, warning: []string{}, info: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weather := tt.weather
			report := alertsFor(createHealthyValues(), &weather)

			assert.Equal(t, tt.critical, titles(report.Critical))
			assert.Equal(t, tt.warning, titles(report.Warning))
			assert.Equal(t, tt.info, titles(report.Info))
		})
	}
}

func TestAlert_WeatherSkippedWithoutSnapshot(t *testing.T) {
	report := alertsFor(createHealthyValues(), nil)

	assert.True(t, report.AllClear)
}

func TestAlert_CommunicationIssue(t *testing.T) {
	engine := createTestAlertEngine()

	tests := []struct {
		name      string
		timestamp string
		expected  []string
	}{
		{"three hours old", minutesAgo(180), []string{"Communication Issue"}},
		{"ninety minutes old", minutesAgo(90), []string{}},
		{"unparsable timestamp", "not a time", []string{}},
		{"missing timestamp", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processed := createProcessed(createTestReading(tt.timestamp, createHealthyValues()))

			report := engine.Alert(processed, nil)

			assert.Equal(t, tt.expected, titles(report.Warning))
		})
	}
}

func TestAlert_WindExampleMatchesRecommendation(t *testing.T) {
	weather := &models.WeatherSnapshot{Temperature: 24, Humidity: 60, WindSpeed: 25}

	report := alertsFor(createHealthyValues(), weather)
	set := recommendFor(createHealthyValues(), weather, nil)

	assert.Contains(t, titles(report.Critical), "High Wind Alert")
	require.NotEmpty(t, set[models.CategoryTiming])
	assert.Equal(t, "Cancel all spraying operations", set[models.CategoryTiming][0].Action)
	assert.Equal(t, models.PriorityHigh, set[models.CategoryTiming][0].Priority)
}
