// Package results models the backend's prediction payloads. The server
// is loose about shape: a prediction is any JSON object keyed by metric
// name, and batch endpoints sometimes return one object, sometimes a
// results array. This package is the single place those shapes are
// coerced into an ordered []Row.
package results

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Row is one prediction record. Keys are metric names (conversions,
// roi, actual_conversions, ...) plus optional context fields
// (campaign_type, region, impressions, clicks, ctr, time). Rows are
// produced only by the backend; the client displays and aggregates
// them but never constructs one.
type Row map[string]any

// Number returns the field as a float64, or 0 when the field is absent
// or not numeric. Every aggregation in the client goes through this, so
// a sparse row can never poison a sum with NaN.
func (r Row) Number(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// String returns the field as a string, or "" when absent or not a string.
func (r Row) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Has reports whether the field is present at all.
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Display formats the field for table rendering: numbers to two
// decimals, strings as-is, absent or null values as "N/A".
func (r Row) Display(key string) string {
	if !r.Has(key) {
		return "N/A"
	}
	switch t := r[key].(type) {
	case nil:
		return "N/A"
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Time parses the row's timestamp field. RFC3339 is what the backend
// emits; unix seconds and a date-time without zone are accepted as
// fallbacks. The zero time signals an unparseable or absent value.
func (r Row) Time(key string) time.Time {
	switch v := r[key].(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
		return time.Time{}
	case float64:
		return time.Unix(int64(v), 0)
	default:
		return time.Time{}
	}
}
