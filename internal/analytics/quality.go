package analytics

import (
	"fmt"
	"math"
	"time"

	"agrobot-intelligence/internal/models"
)

type freshnessOutcome struct {
	freshness models.Freshness
	status    models.SensorStatus
}

type rangeVerdict struct {
	penalty float64
	invalid bool
}

// DataQualityScorer rates a single reading on freshness, completeness and
// reliability.
type DataQualityScorer struct {
	cfg        QualityThresholds
	now        func() time.Time
	freshness  RuleChain[float64, freshnessOutcome]
	rangeRules map[models.SensorField]RuleChain[float64, rangeVerdict]
}

func NewDataQualityScorer(cfg QualityThresholds, now func() time.Time) *DataQualityScorer {
	if now == nil {
		now = time.Now
	}
	cfg.Ranges = cloneRanges(cfg.Ranges)
	cfg.FreshnessBands = append([]FreshnessBand(nil), cfg.FreshnessBands...)

	s := &DataQualityScorer{
		cfg:        cfg,
		now:        now,
		rangeRules: make(map[models.SensorField]RuleChain[float64, rangeVerdict]),
	}
	s.freshness = buildFreshnessRules(cfg.FreshnessBands)
	for field, r := range cfg.Ranges {
		s.rangeRules[field] = buildRangeRules(r)
	}
	return s
}

func buildFreshnessRules(bands []FreshnessBand) RuleChain[float64, freshnessOutcome] {
	chain := make(RuleChain[float64, freshnessOutcome], 0, len(bands)+1)
	for _, b := range bands {
		band := b
		chain = append(chain, Rule[float64, freshnessOutcome]{
			Name: string(band.Freshness),
			When: func(minutes float64) bool { return checkThreshold(minutes, band.BelowMinutes, models.ThresholdLT) },
			Then: func(float64) freshnessOutcome { return freshnessOutcome{band.Freshness, band.Status} },
		})
	}
	return append(chain, Rule[float64, freshnessOutcome]{
		Name: string(models.FreshnessStale),
		When: func(float64) bool { return true },
		Then: func(float64) freshnessOutcome { return freshnessOutcome{models.FreshnessStale, models.SensorOffline} },
	})
}

func buildRangeRules(r FieldRange) RuleChain[float64, rangeVerdict] {
	chain := RuleChain[float64, rangeVerdict]{
		{
			Name: "invalid",
			When: func(v float64) bool { return !between(v, r.ValidMin, r.ValidMax) },
			Then: func(float64) rangeVerdict { return rangeVerdict{penalty: r.InvalidPenalty, invalid: true} },
		},
	}
	if r.WarnPenalty > 0 {
		chain = append(chain, Rule[float64, rangeVerdict]{
			Name: "unusual",
			When: func(v float64) bool { return v < r.WarnMin || v > r.WarnMax },
			Then: func(float64) rangeVerdict { return rangeVerdict{penalty: r.WarnPenalty} },
		})
	}
	return chain
}

func (s *DataQualityScorer) Score(current *models.SensorReading) models.DataQuality {
	quality := models.DataQuality{
		Freshness:    models.FreshnessUnknown,
		SensorStatus: models.SensorUnknown,
	}
	if current.IsEmpty() {
		quality.SensorStatus = models.SensorOffline
		return quality
	}

	s.scoreFreshness(current.ParsedTimestamp(), &quality)
	quality.Completeness = s.completeness(current)
	quality.Reliability, quality.AnomalyCount = s.reliability(current)
	return quality
}

func (s *DataQualityScorer) scoreFreshness(ts models.TimestampParse, quality *models.DataQuality) {
	switch ts.Status {
	case models.TimestampMissing:
		return
	case models.TimestampInvalid:
		quality.Freshness = models.FreshnessUnknown
		quality.SensorStatus = models.SensorError
		return
	}

	minutes := s.now().Sub(ts.Time).Minutes()
	lastUpdate := fmt.Sprintf("%d minutes ago", int(minutes))
	quality.LastUpdate = &lastUpdate
	quality.AgeMinutes = &minutes

	outcome, _ := s.freshness.Evaluate(minutes)
	quality.Freshness = outcome.freshness
	quality.SensorStatus = outcome.status
}

func (s *DataQualityScorer) completeness(current *models.SensorReading) float64 {
	present := len(current.PresentFields())
	critical := 0
	for _, f := range models.CriticalSensorFields {
		if current.Has(f) {
			critical++
		}
	}
	base := float64(present) / float64(len(models.AllSensorFields)) * 100
	crit := float64(critical) / float64(len(models.CriticalSensorFields)) * 100
	return base*s.cfg.BaseWeight + crit*s.cfg.CriticalWeight
}

func (s *DataQualityScorer) reliability(current *models.SensorReading) (float64, int) {
	score := 100.0
	anomalies := 0

	for _, field := range current.PresentFields() {
		rules, ok := s.rangeRules[field]
		if !ok {
			continue
		}
		value, _ := current.Value(field)
		if verdict, hit := rules.Evaluate(value); hit {
			score -= verdict.penalty
			if verdict.invalid {
				anomalies++
			}
		}
	}

	for range current.MalformedFields() {
		score -= s.cfg.MalformedPenalty
		anomalies++
	}

	if s.inconsistentTDS(current) {
		score -= s.cfg.ConsistencyPenalty
	}

	return clamp(score, 0, 100), anomalies
}

// inconsistentTDS checks TDS against the value expected from conductivity.
func (s *DataQualityScorer) inconsistentTDS(current *models.SensorReading) bool {
	ec, okEC := current.Value(models.FieldConductivity)
	tds, okTDS := current.Value(models.FieldTDS)
	if !okEC || !okTDS {
		return false
	}
	expected := ec * s.cfg.TDSPerEC
	return math.Abs(tds-expected) > expected*s.cfg.TDSTolerance
}
