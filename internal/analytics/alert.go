package analytics

import (
	"fmt"
	"math"
	"time"

	"agrobot-intelligence/internal/models"
)

const (
	messageAllClear = "All systems operating within normal parameters"
	messageNoData   = "No sensor data available"
)

type sensorInput struct {
	Temperature float64
	Humidity    float64
	PH          float64
	Nitrogen    float64
	Phosphorus  float64
	Potassium   float64
}

type weatherInput struct {
	WindSpeed  float64
	Rainfall1h float64
	AirTemp    float64
	SoilTemp   float64
}

type systemInput struct {
	Conductivity float64
	HasAge       bool
	AgeHours     float64
}

// AlertEngine classifies the current state into critical, warning and info
// alerts. Concerns are evaluated in a fixed order: sensor, data quality,
// anomaly, weather, system health.
type AlertEngine struct {
	now     func() time.Time
	sensor  []RuleChain[sensorInput, models.Alert]
	quality []RuleChain[models.DataQuality, models.Alert]
	anomaly RuleChain[models.Anomaly, models.Alert]
	weather []RuleChain[weatherInput, models.Alert]
	system  []RuleChain[systemInput, models.Alert]
}

func NewAlertEngine(th AlertThresholds, opts ...Option) *AlertEngine {
	o := applyOptions(opts)
	return &AlertEngine{
		now:     o.now,
		sensor:  sensorAlertRules(th),
		quality: qualityAlertRules(th),
		anomaly: anomalyAlertRules(),
		weather: weatherAlertRules(th),
		system:  systemAlertRules(th),
	}
}

func (e *AlertEngine) Alert(processed *models.ProcessedData, weather *models.WeatherSnapshot) models.AlertReport {
	report := models.AlertReport{
		Critical: make([]models.Alert, 0),
		Warning:  make([]models.Alert, 0),
		Info:     make([]models.Alert, 0),
	}
	if !processed.HasCurrent() {
		report.Message = messageNoData
		return report
	}

	current := processed.Current
	alerts := EvaluateAll(e.sensor, newSensorInput(current))
	alerts = append(alerts, EvaluateAll(e.quality, processed.DataQuality)...)
	for _, anomaly := range processed.Anomalies {
		if alert, ok := e.anomaly.Evaluate(anomaly); ok {
			alerts = append(alerts, alert)
		}
	}
	if weather != nil {
		alerts = append(alerts, EvaluateAll(e.weather, newWeatherInput(current, weather))...)
	}
	alerts = append(alerts, EvaluateAll(e.system, e.newSystemInput(current))...)

	for _, alert := range alerts {
		switch alert.Priority {
		case models.AlertCritical:
			report.Critical = append(report.Critical, alert)
		case models.AlertWarning:
			report.Warning = append(report.Warning, alert)
		default:
			report.Info = append(report.Info, alert)
		}
	}

	if report.Total() == 0 {
		report.AllClear = true
		report.Message = messageAllClear
	}
	return report
}

func newSensorInput(current *models.SensorReading) sensorInput {
	return sensorInput{
		Temperature: current.ValueOr(models.FieldTemperature, 25),
		Humidity:    current.ValueOr(models.FieldHumidity, 50),
		PH:          current.ValueOr(models.FieldPH, 7.0),
		Nitrogen:    current.ValueOr(models.FieldNitrogen, 20),
		Phosphorus:  current.ValueOr(models.FieldPhosphorus, 15),
		Potassium:   current.ValueOr(models.FieldPotassium, 20),
	}
}

func newWeatherInput(current *models.SensorReading, weather *models.WeatherSnapshot) weatherInput {
	return weatherInput{
		WindSpeed:  weather.WindSpeed,
		Rainfall1h: weather.Rainfall1h,
		AirTemp:    weather.Temperature,
		SoilTemp:   current.ValueOr(models.FieldTemperature, 25),
	}
}

func (e *AlertEngine) newSystemInput(current *models.SensorReading) systemInput {
	in := systemInput{Conductivity: current.ValueOr(models.FieldConductivity, 100)}
	if ts := current.ParsedTimestamp(); ts.OK() {
		in.HasAge = true
		in.AgeHours = e.now().Sub(ts.Time).Hours()
	}
	return in
}

func alert(priority models.AlertPriority, title, message, action string) models.Alert {
	return models.Alert{
		Priority: priority,
		Title:    title,
		Message:  message,
		Action:   action,
	}
}

// ============================================================================
// SENSOR
// ============================================================================

func sensorAlertRules(th AlertThresholds) []RuleChain[sensorInput, models.Alert] {
	temperature := RuleChain[sensorInput, models.Alert]{
		{
			Name: "extreme-cold",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Temperature, th.Temperature.CriticalLow, models.ThresholdLTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertCritical, "Extreme Cold Temperature",
					fmt.Sprintf("Temperature critically low at %.1f°C - crop damage possible", in.Temperature),
					"Activate heating systems, protect sensitive plants")
			},
		},
		{
			Name: "extreme-heat",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Temperature, th.Temperature.CriticalHigh, models.ThresholdGTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertCritical, "Extreme Heat Temperature",
					fmt.Sprintf("Temperature critically high at %.1f°C - heat stress likely", in.Temperature),
					"Increase irrigation, provide shade, improve ventilation")
			},
		},
		{
			Name: "low-temperature",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Temperature, th.Temperature.Low, models.ThresholdLTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertWarning, "Low Temperature Warning",
					fmt.Sprintf("Temperature below optimal at %.1f°C", in.Temperature),
					"Monitor closely, consider protection measures")
			},
		},
		{
			Name: "high-temperature",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Temperature, th.Temperature.High, models.ThresholdGTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertWarning, "High Temperature Warning",
					fmt.Sprintf("Temperature above optimal at %.1f°C", in.Temperature),
					"Increase irrigation frequency, monitor plant stress")
			},
		},
	}

	humidity := RuleChain[sensorInput, models.Alert]{
		{
			Name: "drought",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Humidity, th.Humidity.CriticalLow, models.ThresholdLTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertCritical, "Severe Drought Conditions",
					fmt.Sprintf("Soil moisture critically low at %.1f%%", in.Humidity),
					"Emergency irrigation required immediately")
			},
		},
		{
			Name: "low-moisture",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Humidity, th.Humidity.Low, models.ThresholdLTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertWarning, "Low Soil Moisture",
					fmt.Sprintf("Soil moisture below optimal at %.1f%%", in.Humidity),
					"Schedule irrigation within next few hours")
			},
		},
		{
			Name: "waterlogged",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Humidity, th.Humidity.CriticalHigh, models.ThresholdGTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertWarning, "Waterlogged Conditions",
					fmt.Sprintf("Soil moisture very high at %.1f%% - risk of root rot", in.Humidity),
					"Improve drainage, reduce irrigation")
			},
		},
	}

	soilPH := RuleChain[sensorInput, models.Alert]{
		{
			Name: "extremely-acidic",
			When: func(in sensorInput) bool { return checkThreshold(in.PH, th.PH.CriticalLow, models.ThresholdLTE) },
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertCritical, "Extremely Acidic Soil",
					fmt.Sprintf("Soil pH critically low at %.1f - nutrient lockout likely", in.PH),
					"Apply lime immediately to raise pH")
			},
		},
		{
			Name: "extremely-alkaline",
			When: func(in sensorInput) bool { return checkThreshold(in.PH, th.PH.CriticalHigh, models.ThresholdGTE) },
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertCritical, "Extremely Alkaline Soil",
					fmt.Sprintf("Soil pH critically high at %.1f - nutrient deficiency likely", in.PH),
					"Apply sulfur or acidifying agents")
			},
		},
		{
			Name: "suboptimal-ph",
			When: func(in sensorInput) bool {
				return checkThreshold(in.PH, th.PH.Low, models.ThresholdLTE) || checkThreshold(in.PH, th.PH.High, models.ThresholdGTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertWarning, "Suboptimal Soil pH",
					fmt.Sprintf("Soil pH at %.1f - outside optimal range (6.0-7.5)", in.PH),
					"Plan pH adjustment for next maintenance cycle")
			},
		},
	}

	nitrogen := RuleChain[sensorInput, models.Alert]{
		{
			Name: "nitrogen-critical",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Nitrogen, th.NitrogenCritical, models.ThresholdLTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertCritical, "Severe Nitrogen Deficiency",
					fmt.Sprintf("Nitrogen critically low at %.1f ppm", in.Nitrogen),
					"Apply nitrogen fertilizer immediately")
			},
		},
		{
			Name: "nitrogen-low",
			When: func(in sensorInput) bool { return checkThreshold(in.Nitrogen, th.NitrogenLow, models.ThresholdLTE) },
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertWarning, "Low Nitrogen Levels",
					fmt.Sprintf("Nitrogen below optimal at %.1f ppm", in.Nitrogen),
					"Schedule nitrogen fertilization")
			},
		},
	}

	phosphorus := RuleChain[sensorInput, models.Alert]{
		{
			Name: "phosphorus-low",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Phosphorus, th.PhosphorusCritical, models.ThresholdLTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertWarning, "Low Phosphorus Levels",
					fmt.Sprintf("Phosphorus low at %.1f ppm", in.Phosphorus),
					"Consider phosphorus supplementation")
			},
		},
	}

	potassium := RuleChain[sensorInput, models.Alert]{
		{
			Name: "potassium-low",
			When: func(in sensorInput) bool {
				return checkThreshold(in.Potassium, th.PotassiumCritical, models.ThresholdLTE)
			},
			Then: func(in sensorInput) models.Alert {
				return alert(models.AlertWarning, "Low Potassium Levels",
					fmt.Sprintf("Potassium low at %.1f ppm", in.Potassium),
					"Apply potassium-rich fertilizer")
			},
		},
	}

	return []RuleChain[sensorInput, models.Alert]{temperature, humidity, soilPH, nitrogen, phosphorus, potassium}
}

// ============================================================================
// DATA QUALITY
// ============================================================================

func qualityAlertRules(th AlertThresholds) []RuleChain[models.DataQuality, models.Alert] {
	completeness := RuleChain[models.DataQuality, models.Alert]{
		{
			Name: "incomplete",
			When: func(q models.DataQuality) bool {
				return checkThreshold(q.Completeness, th.CompletenessCritical, models.ThresholdLT)
			},
			Then: func(q models.DataQuality) models.Alert {
				return alert(models.AlertCritical, "Sensor Data Incomplete",
					fmt.Sprintf("Only %.0f%% of sensors reporting", q.Completeness),
					"Check sensor connections and power supply")
			},
		},
		{
			Name: "partially-offline",
			When: func(q models.DataQuality) bool {
				return checkThreshold(q.Completeness, th.CompletenessWarning, models.ThresholdLT)
			},
			Then: func(q models.DataQuality) models.Alert {
				return alert(models.AlertWarning, "Some Sensors Offline",
					fmt.Sprintf("%.0f%% sensor completeness", q.Completeness),
					"Verify all sensors are functioning")
			},
		},
	}

	freshness := RuleChain[models.DataQuality, models.Alert]{
		{
			Name: "stale",
			When: func(q models.DataQuality) bool { return q.Freshness == models.FreshnessPoor },
			Then: func(models.DataQuality) models.Alert {
				return alert(models.AlertCritical, "Stale Sensor Data",
					"Sensor data is more than 1 hour old",
					"Check robot connectivity and sensor operation")
			},
		},
		{
			Name: "outdated",
			When: func(q models.DataQuality) bool { return q.Freshness == models.FreshnessFair },
			Then: func(models.DataQuality) models.Alert {
				return alert(models.AlertWarning, "Outdated Sensor Data",
					"Sensor data may be outdated",
					"Verify real-time data transmission")
			},
		},
	}

	return []RuleChain[models.DataQuality, models.Alert]{completeness, freshness}
}

// ============================================================================
// ANOMALY
// ============================================================================

func anomalyAlertRules() RuleChain[models.Anomaly, models.Alert] {
	return RuleChain[models.Anomaly, models.Alert]{
		{
			Name: "high-severity",
			When: func(a models.Anomaly) bool { return a.Severity == models.AnomalyHigh },
			Then: func(a models.Anomaly) models.Alert {
				return alert(models.AlertWarning, fmt.Sprintf("Unusual %s Reading", a.Field),
					fmt.Sprintf("%s at %.1f is significantly different from normal patterns", a.Field, a.CurrentValue),
					"Verify sensor calibration and inspect field conditions")
			},
		},
	}
}

// ============================================================================
// WEATHER
// ============================================================================

func weatherAlertRules(th AlertThresholds) []RuleChain[weatherInput, models.Alert] {
	wind := RuleChain[weatherInput, models.Alert]{
		{
			Name: "high-wind",
			When: func(in weatherInput) bool { return checkThreshold(in.WindSpeed, th.WindCritical, models.ThresholdGT) },
			Then: func(in weatherInput) models.Alert {
				return alert(models.AlertCritical, "High Wind Alert",
					fmt.Sprintf("Wind speed at %.1f m/s - avoid spraying operations", in.WindSpeed),
					"Postpone pesticide/fertilizer applications, secure equipment")
			},
		},
		{
			Name: "moderate-wind",
			When: func(in weatherInput) bool { return checkThreshold(in.WindSpeed, th.WindWarning, models.ThresholdGT) },
			Then: func(in weatherInput) models.Alert {
				return alert(models.AlertWarning, "Moderate Wind Warning",
					fmt.Sprintf("Wind speed at %.1f m/s - may affect spray operations", in.WindSpeed),
					"Use caution with spray applications")
			},
		},
	}

	rain := RuleChain[weatherInput, models.Alert]{
		{
			Name: "heavy-rain",
			When: func(in weatherInput) bool {
				return checkThreshold(in.Rainfall1h, th.HeavyRainfall, models.ThresholdGT)
			},
			Then: func(in weatherInput) models.Alert {
				return alert(models.AlertInfo, "Heavy Rainfall Detected",
					fmt.Sprintf("Current rainfall at %.1f mm/h", in.Rainfall1h),
					"Skip irrigation, monitor for flooding")
			},
		},
	}

	differential := RuleChain[weatherInput, models.Alert]{
		{
			Name: "temperature-gap",
			When: func(in weatherInput) bool {
				return checkThreshold(math.Abs(in.AirTemp-in.SoilTemp), th.TemperatureGap, models.ThresholdGT)
			},
			Then: func(in weatherInput) models.Alert {
				return alert(models.AlertInfo, "Large Temperature Differential",
					fmt.Sprintf("Air (%.1f°C) and soil (%.1f°C) temperatures differ significantly", in.AirTemp, in.SoilTemp),
					"Monitor for rapid temperature changes")
			},
		},
	}

	return []RuleChain[weatherInput, models.Alert]{wind, rain, differential}
}

// ============================================================================
// SYSTEM HEALTH
// ============================================================================

func systemAlertRules(th AlertThresholds) []RuleChain[systemInput, models.Alert] {
	salinity := RuleChain[systemInput, models.Alert]{
		{
			Name: "high-salinity",
			When: func(in systemInput) bool {
				return checkThreshold(in.Conductivity, th.HighConductivity, models.ThresholdGT)
			},
			Then: func(in systemInput) models.Alert {
				return alert(models.AlertWarning, "High Soil Salinity",
					fmt.Sprintf("Electrical conductivity high at %.0f µS/cm", in.Conductivity),
					"Increase leaching irrigation to reduce salt buildup")
			},
		},
	}

	communication := RuleChain[systemInput, models.Alert]{
		{
			Name: "silent-robot",
			When: func(in systemInput) bool {
				return in.HasAge && checkThreshold(in.AgeHours, th.CommunicationHours, models.ThresholdGT)
			},
			Then: func(systemInput) models.Alert {
				return alert(models.AlertWarning, "Communication Issue",
					fmt.Sprintf("Robot has not reported data for over %g hours", th.CommunicationHours),
					"Check robot power and network connectivity")
			},
		},
	}

	return []RuleChain[systemInput, models.Alert]{salinity, communication}
}
