package analytics

import "agrobot-intelligence/internal/models"

// Thresholds is the full, read-only rule configuration. Components copy the
// part they need at construction.
type Thresholds struct {
	Trend          TrendThresholds
	Anomaly        AnomalyThresholds
	Quality        QualityThresholds
	Alerts         AlertThresholds
	Recommendation RecommendationThresholds
}

type TrendThresholds struct {
	MinPoints            int
	CorrelationCutoff    float64
	RecentChangeMinPoint int
	RecentWindow         int
}

type AnomalyThresholds struct {
	MinHistory int
	SigmaBand  float64
	HighZScore float64
}

// FreshnessBand maps readings younger than BelowMinutes to a label.
type FreshnessBand struct {
	BelowMinutes float64
	Freshness    models.Freshness
	Status       models.SensorStatus
}

// FieldRange describes the physically valid range of a sensor and an
// optional warning band inside it. WarnPenalty of 0 disables the band.
type FieldRange struct {
	ValidMin       float64
	ValidMax       float64
	InvalidPenalty float64
	WarnMin        float64
	WarnMax        float64
	WarnPenalty    float64
}

type QualityThresholds struct {
	FreshnessBands     []FreshnessBand
	BaseWeight         float64
	CriticalWeight     float64
	Ranges             map[models.SensorField]FieldRange
	MalformedPenalty   float64
	TDSPerEC           float64
	TDSTolerance       float64
	ConsistencyPenalty float64
}

// Band holds the four cut points used by sensor alerts. Inclusive on the
// alerting side.
type Band struct {
	CriticalLow  float64
	Low          float64
	High         float64
	CriticalHigh float64
}

type AlertThresholds struct {
	Temperature          Band
	Humidity             Band
	PH                   Band
	NitrogenCritical     float64
	NitrogenLow          float64
	PhosphorusCritical   float64
	PotassiumCritical    float64
	CompletenessCritical float64
	CompletenessWarning  float64
	WindCritical         float64
	WindWarning          float64
	HeavyRainfall        float64
	TemperatureGap       float64
	HighConductivity     float64
	CommunicationHours   float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Trend: TrendThresholds{
			MinPoints:            3,
			CorrelationCutoff:    0.1,
			RecentChangeMinPoint: 10,
			RecentWindow:         5,
		},
		Anomaly: AnomalyThresholds{
			MinHistory: 10,
			SigmaBand:  2,
			HighZScore: 3,
		},
		Quality:        DefaultQualityThresholds(),
		Alerts:         DefaultAlertThresholds(),
		Recommendation: DefaultRecommendationThresholds(),
	}
}

func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		FreshnessBands: []FreshnessBand{
			{BelowMinutes: 5, Freshness: models.FreshnessExcellent, Status: models.SensorOnline},
			{BelowMinutes: 15, Freshness: models.FreshnessGood, Status: models.SensorOnline},
			{BelowMinutes: 60, Freshness: models.FreshnessFair, Status: models.SensorDelayed},
			{BelowMinutes: 360, Freshness: models.FreshnessPoor, Status: models.SensorIntermittent},
		},
		BaseWeight:     0.6,
		CriticalWeight: 0.4,
		Ranges: map[models.SensorField]FieldRange{
			models.FieldTemperature:  {ValidMin: -20, ValidMax: 70, InvalidPenalty: 15, WarnMin: -10, WarnMax: 55, WarnPenalty: 5},
			models.FieldHumidity:     {ValidMin: 0, ValidMax: 100, InvalidPenalty: 15, WarnMin: 5, WarnMax: 95, WarnPenalty: 5},
			models.FieldPH:           {ValidMin: 0, ValidMax: 14, InvalidPenalty: 20, WarnMin: 3, WarnMax: 11, WarnPenalty: 10},
			models.FieldNitrogen:     {ValidMin: 0, ValidMax: 200, InvalidPenalty: 10},
			models.FieldPhosphorus:   {ValidMin: 0, ValidMax: 200, InvalidPenalty: 10},
			models.FieldPotassium:    {ValidMin: 0, ValidMax: 200, InvalidPenalty: 10},
			models.FieldConductivity: {ValidMin: 0, ValidMax: 5000, InvalidPenalty: 10},
			models.FieldTDS:          {ValidMin: 0, ValidMax: 3000, InvalidPenalty: 10},
		},
		MalformedPenalty:   15,
		TDSPerEC:           0.65,
		TDSTolerance:       0.5,
		ConsistencyPenalty: 8,
	}
}

func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		Temperature:          Band{CriticalLow: 10, Low: 15, High: 35, CriticalHigh: 40},
		Humidity:             Band{CriticalLow: 20, Low: 30, High: 80, CriticalHigh: 90},
		PH:                   Band{CriticalLow: 4.5, Low: 5.5, High: 8.0, CriticalHigh: 9.0},
		NitrogenCritical:     5,
		NitrogenLow:          15,
		PhosphorusCritical:   5,
		PotassiumCritical:    5,
		CompletenessCritical: 50,
		CompletenessWarning:  80,
		WindCritical:         20,
		WindWarning:          10,
		HeavyRainfall:        10,
		TemperatureGap:       15,
		HighConductivity:     300,
		CommunicationHours:   2,
	}
}

// RecommendationThresholds holds the cut points of every recommendation
// rule, grouped by category. Comparisons are strict.
type RecommendationThresholds struct {
	Irrigation    IrrigationThresholds
	Fertilization FertilizationThresholds
	Timing        TimingThresholds
	Risk          RiskThresholds
	General       GeneralThresholds
}

type IrrigationThresholds struct {
	CriticalMoisture    float64
	LowMoisture         float64
	WaterloggedMoisture float64
	HeavyRainExpected   float64
	RainExpected        float64
	UrgentSoilTemp      float64
	HeatStressTemp      float64
	HeatStressMoisture  float64
}

// NutrientCuts are ppm levels.
type NutrientCuts struct {
	Critical float64
	Low      float64
	Excess   float64
}

type FertilizationThresholds struct {
	Nitrogen         NutrientCuts
	Phosphorus       NutrientCuts
	Potassium        NutrientCuts
	AcidicPH         float64
	SlightlyAcidicPH float64
	AlkalinePH       float64
	SalinityGate     float64
}

type TimingThresholds struct {
	WindCancel      float64
	WindPostpone    float64
	SprayWindMin    float64
	SprayWindMax    float64
	SprayTempMax    float64
	ExtremeHeat     float64
	Cold            float64
	PlantingTempMin float64
	PlantingTempMax float64
	StableStd       float64
	UnstableStd     float64
}

type RiskThresholds struct {
	SevereSoilHeat        float64
	SoilHeat              float64
	SoilFrost             float64
	FungalSoilHumidity    float64
	FungalAirHumidity     float64
	FungalTempMin         float64
	FungalTempMax         float64
	FungalOptimumTemp     float64
	FungalHighScore       float64
	BacterialSoilHumidity float64
	BacterialTemp         float64
	Lockout               Band
	FloodRain             float64
	HeavyRain             float64
	StormWind             float64
	FreezeTemp            float64
}

type GeneralThresholds struct {
	SalinityCritical float64
	SalinityElevated float64
	TDSPerEC         float64
	TDSTolerance     float64
	MinCompleteness  float64
}

func DefaultRecommendationThresholds() RecommendationThresholds {
	return RecommendationThresholds{
		Irrigation: IrrigationThresholds{
			CriticalMoisture:    25,
			LowMoisture:         40,
			WaterloggedMoisture: 75,
			HeavyRainExpected:   10,
			RainExpected:        5,
			UrgentSoilTemp:      28,
			HeatStressTemp:      32,
			HeatStressMoisture:  50,
		},
		Fertilization: FertilizationThresholds{
			Nitrogen:         NutrientCuts{Critical: 10, Low: 20, Excess: 60},
			Phosphorus:       NutrientCuts{Critical: 8, Low: 15, Excess: 50},
			Potassium:        NutrientCuts{Critical: 12, Low: 20},
			AcidicPH:         5.8,
			SlightlyAcidicPH: 6.2,
			AlkalinePH:       7.8,
			SalinityGate:     250,
		},
		Timing: TimingThresholds{
			WindCancel:      20,
			WindPostpone:    15,
			SprayWindMin:    3,
			SprayWindMax:    10,
			SprayTempMax:    28,
			ExtremeHeat:     35,
			Cold:            5,
			PlantingTempMin: 15,
			PlantingTempMax: 28,
			StableStd:       5,
			UnstableStd:     8,
		},
		Risk: RiskThresholds{
			SevereSoilHeat:        38,
			SoilHeat:              33,
			SoilFrost:             8,
			FungalSoilHumidity:    75,
			FungalAirHumidity:     70,
			FungalTempMin:         18,
			FungalTempMax:         30,
			FungalOptimumTemp:     24,
			FungalHighScore:       15,
			BacterialSoilHumidity: 80,
			BacterialTemp:         25,
			Lockout:               Band{CriticalLow: 4.5, Low: 5.0, High: 8.5, CriticalHigh: 9.0},
			FloodRain:             75,
			HeavyRain:             40,
			StormWind:             60,
			FreezeTemp:            2,
		},
		General: GeneralThresholds{
			SalinityCritical: 300,
			SalinityElevated: 200,
			TDSPerEC:         0.67,
			TDSTolerance:     50,
			MinCompleteness:  70,
		},
	}
}

// OptimalRanges are the agronomic target bands shown next to live readings.
func OptimalRanges() []models.OptimalRange {
	return []models.OptimalRange{
		{Field: models.FieldTemperature, Min: 20, Max: 30, Unit: "°C"},
		{Field: models.FieldHumidity, Min: 40, Max: 70, Unit: "%"},
		{Field: models.FieldPH, Min: 6.0, Max: 7.5, Unit: "pH"},
		{Field: models.FieldNitrogen, Min: 20, Max: 50, Unit: "ppm"},
		{Field: models.FieldPhosphorus, Min: 15, Max: 40, Unit: "ppm"},
		{Field: models.FieldPotassium, Min: 20, Max: 50, Unit: "ppm"},
	}
}

// cloneRanges keeps a component's copy independent of the caller's map.
func cloneRanges(in map[models.SensorField]FieldRange) map[models.SensorField]FieldRange {
	out := make(map[models.SensorField]FieldRange, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
