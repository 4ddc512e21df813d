package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SensorReading is one feed entry with values keyed by the fixed field set.
// Values holds numeric fields, Malformed holds fields that were present but
// could not be read as a finite number.
type SensorReading struct {
	EntryID   int64
	Timestamp string
	Values    map[SensorField]float64
	Malformed map[SensorField]string
}

// NewSensorReading builds a reading from raw field strings. Unknown keys and
// nil values are dropped.
func NewSensorReading(entryID int64, timestamp string, raw map[string]*string) *SensorReading {
	r := &SensorReading{
		EntryID:   entryID,
		Timestamp: timestamp,
		Values:    make(map[SensorField]float64),
		Malformed: make(map[SensorField]string),
	}
	for name, value := range raw {
		field, ok := ParseSensorField(name)
		if !ok || value == nil {
			continue
		}
		r.setRaw(field, *value)
	}
	return r
}

func (r *SensorReading) setRaw(field SensorField, raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		r.Malformed[field] = raw
		return
	}
	r.Values[field] = v
}

// Set stores a numeric value, replacing any malformed entry for the field.
func (r *SensorReading) Set(field SensorField, value float64) {
	if r.Values == nil {
		r.Values = make(map[SensorField]float64)
	}
	delete(r.Malformed, field)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		if r.Malformed == nil {
			r.Malformed = make(map[SensorField]string)
		}
		r.Malformed[field] = strconv.FormatFloat(value, 'f', -1, 64)
		delete(r.Values, field)
		return
	}
	r.Values[field] = value
}

func (r *SensorReading) Value(field SensorField) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Values[field]
	return v, ok
}

// ValueOr returns the field value or def when the field is absent or malformed.
func (r *SensorReading) ValueOr(field SensorField, def float64) float64 {
	if v, ok := r.Value(field); ok {
		return v
	}
	return def
}

func (r *SensorReading) Has(field SensorField) bool {
	_, ok := r.Value(field)
	return ok
}

func (r *SensorReading) IsMalformed(field SensorField) bool {
	if r == nil {
		return false
	}
	_, ok := r.Malformed[field]
	return ok
}

// IsEmpty reports a reading that carries nothing at all.
func (r *SensorReading) IsEmpty() bool {
	return r == nil || (len(r.Values) == 0 && len(r.Malformed) == 0 && strings.TrimSpace(r.Timestamp) == "")
}

// PresentFields returns numeric fields in canonical order.
func (r *SensorReading) PresentFields() []SensorField {
	fields := make([]SensorField, 0, len(AllSensorFields))
	for _, f := range AllSensorFields {
		if r.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (r *SensorReading) MalformedFields() []SensorField {
	fields := make([]SensorField, 0)
	for _, f := range AllSensorFields {
		if r.IsMalformed(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (r *SensorReading) ParsedTimestamp() TimestampParse {
	if r == nil {
		return ParseTimestamp("")
	}
	return ParseTimestamp(r.Timestamp)
}

// MarshalJSON writes the reading as a flat object, the shape the dashboard
// export uses: entry_id, timestamp, one key per present field.
func (r SensorReading) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+3)
	out["entry_id"] = r.EntryID
	out["timestamp"] = r.Timestamp
	for f, v := range r.Values {
		out[string(f)] = v
	}
	if len(r.Malformed) > 0 {
		malformed := make(map[string]string, len(r.Malformed))
		for f, raw := range r.Malformed {
			malformed[string(f)] = raw
		}
		out["malformed"] = malformed
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the flat shape. Field values may be numbers or
// numeric strings; anything else is kept as malformed.
func (r *SensorReading) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid sensor reading: %w", err)
	}

	*r = SensorReading{
		Values:    make(map[SensorField]float64),
		Malformed: make(map[SensorField]string),
	}

	if v, ok := raw["entry_id"]; ok && !isJSONNull(v) {
		if err := json.Unmarshal(v, &r.EntryID); err != nil {
			return fmt.Errorf("invalid entry_id: %w", err)
		}
	}
	for _, key := range []string{"timestamp", "created_at"} {
		if v, ok := raw[key]; ok && !isJSONNull(v) {
			if err := json.Unmarshal(v, &r.Timestamp); err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			break
		}
	}

	for name, v := range raw {
		field, ok := ParseSensorField(name)
		if !ok || isJSONNull(v) {
			continue
		}
		var num float64
		if err := json.Unmarshal(v, &num); err == nil {
			r.Set(field, num)
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			r.setRaw(field, s)
			continue
		}
		r.Malformed[field] = string(v)
	}
	return nil
}

func isJSONNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || string(bytes.TrimSpace(v)) == "null"
}

// ============================================================================
// TIMESTAMPS
// ============================================================================

// TimestampParse is the outcome of reading a feed timestamp. Time is only
// meaningful when Status is TimestampOK.
type TimestampParse struct {
	Raw    string
	Time   time.Time
	Status TimestampStatus
}

func (p TimestampParse) OK() bool {
	return p.Status == TimestampOK
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 timestamp. Timestamps without an offset
// are taken as UTC.
func ParseTimestamp(raw string) TimestampParse {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TimestampParse{Raw: raw, Status: TimestampMissing}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return TimestampParse{Raw: raw, Time: t, Status: TimestampOK}
		}
	}
	return TimestampParse{Raw: raw, Status: TimestampInvalid}
}

// ============================================================================
// HISTORY
// ============================================================================

// HistoricalSeries is a chronological list of readings.
type HistoricalSeries []SensorReading

// SortByTimestamp orders the series by time. Entries whose timestamp cannot
// be read keep their relative order ahead of dated entries.
func (s HistoricalSeries) SortByTimestamp() {
	sort.SliceStable(s, func(i, j int) bool {
		ti := ParseTimestamp(s[i].Timestamp)
		tj := ParseTimestamp(s[j].Timestamp)
		switch {
		case !ti.OK() && !tj.OK():
			return false
		case !ti.OK():
			return true
		case !tj.OK():
			return false
		default:
			return ti.Time.Before(tj.Time)
		}
	})
}

// FieldValues returns the non-null values of a field in series order.
func (s HistoricalSeries) FieldValues(field SensorField) []float64 {
	values := make([]float64, 0, len(s))
	for i := range s {
		if v, ok := s[i].Values[field]; ok {
			values = append(values, v)
		}
	}
	return values
}

// Since keeps entries at or after cutoff. Undated entries are dropped.
func (s HistoricalSeries) Since(cutoff time.Time) HistoricalSeries {
	out := make(HistoricalSeries, 0, len(s))
	for _, r := range s {
		ts := ParseTimestamp(r.Timestamp)
		if ts.OK() && !ts.Time.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
