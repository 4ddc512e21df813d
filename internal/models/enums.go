package models

type SensorField string

const (
	FieldTemperature  SensorField = "Temperature"
	FieldHumidity     SensorField = "Humidity"
	FieldPH           SensorField = "pH"
	FieldNitrogen     SensorField = "Nitrogen"
	FieldPhosphorus   SensorField = "Phosphorus"
	FieldPotassium    SensorField = "Potassium"
	FieldConductivity SensorField = "Conductivity"
	FieldTDS          SensorField = "TDS"
)

// AllSensorFields is the canonical field order used for every per-field output.
var AllSensorFields = []SensorField{
	FieldTemperature,
	FieldHumidity,
	FieldPH,
	FieldNitrogen,
	FieldPhosphorus,
	FieldPotassium,
	FieldConductivity,
	FieldTDS,
}

// CriticalSensorFields weigh extra in completeness scoring.
var CriticalSensorFields = []SensorField{
	FieldTemperature,
	FieldHumidity,
	FieldPH,
}

// ParseSensorField checks a raw name against the enumerated field set.
func ParseSensorField(name string) (SensorField, bool) {
	for _, f := range AllSensorFields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

type ThresholdOperator string

const (
	ThresholdLT  ThresholdOperator = "<"
	ThresholdGT  ThresholdOperator = ">"
	ThresholdLTE ThresholdOperator = "<="
	ThresholdGTE ThresholdOperator = ">="
	ThresholdEQ  ThresholdOperator = "=="
	ThresholdNE  ThresholdOperator = "!="
)

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type AnomalySeverity string

const (
	AnomalyMedium AnomalySeverity = "medium"
	AnomalyHigh   AnomalySeverity = "high"
)

type Freshness string

const (
	FreshnessExcellent Freshness = "excellent"
	FreshnessGood      Freshness = "good"
	FreshnessFair      Freshness = "fair"
	FreshnessPoor      Freshness = "poor"
	FreshnessStale     Freshness = "stale"
	FreshnessUnknown   Freshness = "unknown"
)

type SensorStatus string

const (
	SensorOnline       SensorStatus = "online"
	SensorDelayed      SensorStatus = "delayed"
	SensorIntermittent SensorStatus = "intermittent"
	SensorOffline      SensorStatus = "offline"
	SensorError        SensorStatus = "error"
	SensorUnknown      SensorStatus = "unknown"
)

type RecommendationCategory string

const (
	CategoryIrrigation     RecommendationCategory = "irrigation"
	CategoryFertilization  RecommendationCategory = "fertilization"
	CategoryTiming         RecommendationCategory = "timing"
	CategoryRiskAssessment RecommendationCategory = "risk_assessment"
	CategoryGeneral        RecommendationCategory = "general"
)

// RecommendationCategories lists categories in dashboard order.
var RecommendationCategories = []RecommendationCategory{
	CategoryIrrigation,
	CategoryFertilization,
	CategoryTiming,
	CategoryRiskAssessment,
	CategoryGeneral,
}

type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// Rank orders priorities high first.
func (p RecommendationPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

type AlertPriority string

const (
	AlertCritical AlertPriority = "critical"
	AlertWarning  AlertPriority = "warning"
	AlertInfo     AlertPriority = "info"
)

type TimestampStatus string

const (
	TimestampOK      TimestampStatus = "ok"
	TimestampMissing TimestampStatus = "missing"
	TimestampInvalid TimestampStatus = "invalid"
)
