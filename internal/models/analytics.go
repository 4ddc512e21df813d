package models

import (
	"sort"
	"time"
)

type FieldStatistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
	Count  int     `json:"count"`
}

type Trend struct {
	Direction       TrendDirection `json:"direction"`
	Strength        float64        `json:"strength"`
	RecentChangePct float64        `json:"recent_change_pct"`
	Correlation     float64        `json:"correlation"`
}

type ExpectedRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type Anomaly struct {
	Field         SensorField     `json:"field"`
	CurrentValue  float64         `json:"current_value"`
	ExpectedRange ExpectedRange   `json:"expected_range"`
	ZScore        float64         `json:"z_score"`
	Severity      AnomalySeverity `json:"severity"`
}

type DataQuality struct {
	Freshness    Freshness    `json:"freshness"`
	Completeness float64      `json:"completeness"`
	Reliability  float64      `json:"reliability"`
	SensorStatus SensorStatus `json:"sensor_status"`
	AnomalyCount int          `json:"anomaly_count"`
	LastUpdate   *string      `json:"last_update"`
	AgeMinutes   *float64     `json:"age_minutes,omitempty"`
}

// AgriculturalIndices are derived soil and water indicators on a 0-100 scale.
// FertilityIndex is nil unless all of N, P and K are non-zero.
type AgriculturalIndices struct {
	FertilityIndex   *float64 `json:"fertility_index,omitempty"`
	SoilHealthScore  float64  `json:"soil_health_score"`
	WaterStressIndex float64  `json:"water_stress_index"`
}

// ProcessedData is the output of one analytics pass.
type ProcessedData struct {
	Current     *SensorReading                  `json:"current"`
	Statistics  map[SensorField]FieldStatistics `json:"statistics"`
	Trends      map[SensorField]Trend           `json:"trends"`
	Anomalies   []Anomaly                       `json:"anomalies"`
	DataQuality DataQuality                     `json:"data_quality"`
	Indices     *AgriculturalIndices            `json:"indices,omitempty"`
}

func (p *ProcessedData) HasCurrent() bool {
	return p != nil && !p.Current.IsEmpty()
}

// ============================================================================
// RECOMMENDATIONS
// ============================================================================

type Recommendation struct {
	Category   RecommendationCategory `json:"category"`
	Priority   RecommendationPriority `json:"priority"`
	Action     string                 `json:"action"`
	Reason     string                 `json:"reason"`
	Timing     string                 `json:"timing,omitempty"`
	Mitigation string                 `json:"mitigation,omitempty"`
}

// RecommendationSet maps every category to its ordered recommendations.
type RecommendationSet map[RecommendationCategory][]Recommendation

func NewRecommendationSet() RecommendationSet {
	set := make(RecommendationSet, len(RecommendationCategories))
	for _, c := range RecommendationCategories {
		set[c] = []Recommendation{}
	}
	return set
}

// SortByPriority orders each category high, medium, low, keeping insertion
// order inside a priority.
func (s RecommendationSet) SortByPriority() {
	for _, recs := range s {
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Priority.Rank() < recs[j].Priority.Rank()
		})
	}
}

func (s RecommendationSet) Total() int {
	total := 0
	for _, recs := range s {
		total += len(recs)
	}
	return total
}

// ============================================================================
// ALERTS
// ============================================================================

type Alert struct {
	Priority AlertPriority `json:"priority"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Action   string        `json:"action,omitempty"`
}

type AlertReport struct {
	Critical []Alert `json:"critical"`
	Warning  []Alert `json:"warning"`
	Info     []Alert `json:"info"`
	AllClear bool    `json:"all_clear"`
	Message  string  `json:"message,omitempty"`
}

func (r AlertReport) Total() int {
	return len(r.Critical) + len(r.Warning) + len(r.Info)
}

// Ordered returns alerts critical first, then warning, then info.
func (r AlertReport) Ordered() []Alert {
	out := make([]Alert, 0, r.Total())
	out = append(out, r.Critical...)
	out = append(out, r.Warning...)
	out = append(out, r.Info...)
	return out
}

// ============================================================================
// SNAPSHOT
// ============================================================================

// DashboardSnapshot is everything one refresh cycle produced.
type DashboardSnapshot struct {
	CycleID         string            `json:"cycle_id"`
	GeneratedAt     time.Time         `json:"generated_at"`
	Location        FarmLocation      `json:"location"`
	Processed       *ProcessedData    `json:"processed"`
	Weather         *WeatherSnapshot  `json:"weather"`
	Forecast        ForecastSeries    `json:"forecast"`
	Recommendations RecommendationSet `json:"recommendations"`
	Alerts          AlertReport       `json:"alerts"`
	OptimalRanges   []OptimalRange    `json:"optimal_ranges"`
}

type OptimalRange struct {
	Field SensorField `json:"field"`
	Min   float64     `json:"min"`
	Max   float64     `json:"max"`
	Unit  string      `json:"unit"`
}
