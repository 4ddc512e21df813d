package analytics

import (
	"agrobot-intelligence/internal/models"

	"github.com/samber/lo"
)

const (
	forecastHorizon = 8 // 8 x 3h slots, about one day
	plantingWindow  = 5
	msToKmh         = 3.6
)

type irrigationInput struct {
	SoilHumidity float64
	SoilTemp     float64
	UpcomingRain float64
}

type fertilizationInput struct {
	Nitrogen     float64
	Phosphorus   float64
	Potassium    float64
	PH           float64
	Conductivity float64
}

type timingInput struct {
	AirTemp         float64
	WindKmh         float64
	HasPlantingData bool
	ForecastMean    float64
	ForecastStd     float64
}

type riskInput struct {
	SoilTemp     float64
	SoilHumidity float64
	PH           float64

	HasWeather  bool
	AirTemp     float64
	AirHumidity float64

	HasForecast bool
	TotalRain   float64
	MaxWindKmh  float64
	MinTemp     float64
}

type generalInput struct {
	Conductivity float64
	TDS          float64
	Freshness    models.Freshness
	Completeness float64
	Month        int
}

// RecommendationEngine turns processed signals plus weather into
// categorized, prioritized guidance. Each category is a list of independent
// concerns and each concern yields at most one recommendation.
type RecommendationEngine struct {
	irrigation    []RuleChain[irrigationInput, models.Recommendation]
	fertilization []RuleChain[fertilizationInput, models.Recommendation]
	timing        []RuleChain[timingInput, models.Recommendation]
	risk          []RuleChain[riskInput, models.Recommendation]
	general       []RuleChain[generalInput, models.Recommendation]
}

func NewRecommendationEngine(th RecommendationThresholds) *RecommendationEngine {
	return &RecommendationEngine{
		irrigation:    irrigationRules(th.Irrigation),
		fertilization: fertilizationRules(th.Fertilization),
		timing:        timingRules(th.Timing),
		risk:          riskRules(th.Risk),
		general:       generalRules(th.General),
	}
}

func (e *RecommendationEngine) Recommend(processed *models.ProcessedData, weather *models.WeatherSnapshot, forecast models.ForecastSeries) models.RecommendationSet {
	set := models.NewRecommendationSet()

	if !processed.HasCurrent() {
		set[models.CategoryGeneral] = append(set[models.CategoryGeneral], models.Recommendation{
			Category: models.CategoryGeneral,
			Priority: models.PriorityHigh,
			Action:   "Check sensor connectivity",
			Reason:   "No sensor data available - unable to generate recommendations",
			Timing:   "Immediate",
		})
		return set
	}

	current := processed.Current
	add(set, models.CategoryIrrigation, EvaluateAll(e.irrigation, newIrrigationInput(current, forecast)))
	add(set, models.CategoryFertilization, EvaluateAll(e.fertilization, newFertilizationInput(current)))
	if weather != nil {
		add(set, models.CategoryTiming, EvaluateAll(e.timing, newTimingInput(weather, forecast)))
	}
	add(set, models.CategoryRiskAssessment, EvaluateAll(e.risk, newRiskInput(current, weather, forecast)))
	add(set, models.CategoryGeneral, EvaluateAll(e.general, newGeneralInput(current, processed.DataQuality)))

	set.SortByPriority()
	return set
}

func add(set models.RecommendationSet, category models.RecommendationCategory, recs []models.Recommendation) {
	for _, r := range recs {
		r.Category = category
		set[category] = append(set[category], r)
	}
}

// ============================================================================
// INPUT BUILDERS
// ============================================================================

func newIrrigationInput(current *models.SensorReading, forecast models.ForecastSeries) irrigationInput {
	return irrigationInput{
		SoilHumidity: current.ValueOr(models.FieldHumidity, 0),
		SoilTemp:     current.ValueOr(models.FieldTemperature, 25),
		UpcomingRain: upcomingRain(forecast),
	}
}

func upcomingRain(forecast models.ForecastSeries) float64 {
	return lo.SumBy(forecast.Window(forecastHorizon), func(p models.ForecastPoint) float64 {
		return p.Rainfall
	})
}

func newFertilizationInput(current *models.SensorReading) fertilizationInput {
	return fertilizationInput{
		Nitrogen:     current.ValueOr(models.FieldNitrogen, 0),
		Phosphorus:   current.ValueOr(models.FieldPhosphorus, 0),
		Potassium:    current.ValueOr(models.FieldPotassium, 0),
		PH:           current.ValueOr(models.FieldPH, 7.0),
		Conductivity: current.ValueOr(models.FieldConductivity, 0),
	}
}

func newTimingInput(weather *models.WeatherSnapshot, forecast models.ForecastSeries) timingInput {
	in := timingInput{
		AirTemp: weather.Temperature,
		WindKmh: weather.WindSpeed * msToKmh,
	}
	if len(forecast) >= plantingWindow {
		temps := lo.Map(forecast.Window(plantingWindow), func(p models.ForecastPoint, _ int) float64 {
			return p.Temperature
		})
		in.HasPlantingData = true
		in.ForecastMean = mean(temps)
		in.ForecastStd = populationStd(temps)
	}
	return in
}

func newRiskInput(current *models.SensorReading, weather *models.WeatherSnapshot, forecast models.ForecastSeries) riskInput {
	in := riskInput{
		SoilTemp:     current.ValueOr(models.FieldTemperature, 25),
		SoilHumidity: current.ValueOr(models.FieldHumidity, 50),
		PH:           current.ValueOr(models.FieldPH, 7.0),
	}
	if weather != nil {
		in.HasWeather = true
		in.AirTemp = weather.Temperature
		in.AirHumidity = weather.Humidity
	}
	if window := forecast.Window(forecastHorizon); len(window) > 0 {
		in.HasForecast = true
		in.TotalRain = upcomingRain(window)
		in.MaxWindKmh = lo.Max(lo.Map(window, func(p models.ForecastPoint, _ int) float64 {
			return p.WindSpeed * msToKmh
		}))
		in.MinTemp = lo.Min(lo.Map(window, func(p models.ForecastPoint, _ int) float64 {
			return p.Temperature
		}))
	}
	return in
}

func newGeneralInput(current *models.SensorReading, quality models.DataQuality) generalInput {
	in := generalInput{
		Conductivity: current.ValueOr(models.FieldConductivity, 0),
		TDS:          current.ValueOr(models.FieldTDS, 0),
		Freshness:    quality.Freshness,
		Completeness: quality.Completeness,
	}
	if ts := current.ParsedTimestamp(); ts.OK() {
		in.Month = int(ts.Time.Month())
	}
	return in
}
