package results

import (
	"encoding/json"
	"fmt"
)

// Normalize coerces any backend response shape into an ordered []Row.
// Priority order:
//
//  1. an object with a "results" field uses that field,
//  2. an object with status == "success" is wrapped as a single row,
//  3. a bare array is used as-is,
//  4. any other object is wrapped as a single row.
//
// Row order from the backend is preserved; it doubles as the implicit
// x-axis ("Row 1, Row 2, ..."). An empty sequence is a valid result.
func Normalize(raw json.RawMessage) ([]Row, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return normalizeValue(payload)
}

// NormalizeRows re-normalizes an in-memory value, e.g. rows already
// decoded from a prior Normalize. Idempotent: NormalizeRows on the
// output of Normalize yields structurally equal rows.
func NormalizeRows(payload any) ([]Row, error) {
	return normalizeValue(payload)
}

func normalizeValue(payload any) ([]Row, error) {
	switch v := payload.(type) {
	case map[string]any:
		if inner, ok := v["results"]; ok {
			return sequence(inner)
		}
		if status, _ := v["status"].(string); status == "success" {
			return []Row{Row(v)}, nil
		}
		return []Row{Row(v)}, nil
	case []any:
		return sequence(v)
	case []Row:
		out := make([]Row, len(v))
		copy(out, v)
		return out, nil
	case nil:
		return []Row{}, nil
	default:
		return nil, fmt.Errorf("unexpected response payload of type %T", payload)
	}
}

func sequence(v any) ([]Row, error) {
	switch seq := v.(type) {
	case []any:
		rows := make([]Row, 0, len(seq))
		for i, el := range seq {
			obj, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("result %d is %T, expected object", i, el)
			}
			rows = append(rows, Row(obj))
		}
		return rows, nil
	case []Row:
		out := make([]Row, len(seq))
		copy(out, seq)
		return out, nil
	case map[string]any:
		// A "results" field holding one object instead of an array.
		return []Row{Row(seq)}, nil
	case nil:
		return []Row{}, nil
	default:
		return nil, fmt.Errorf("results field is %T, expected array", v)
	}
}
