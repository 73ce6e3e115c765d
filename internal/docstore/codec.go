package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// encodeFields serializes field data for backends that persist JSON.
func encodeFields(fields map[string]any) ([]byte, error) {
	return json.Marshal(fields)
}

// decodeFields parses persisted JSON back into field data. Numbers are
// normalized to int64 when integral and float64 otherwise, so documents read
// back through JSON keep the same shapes the memory store hands out.
func decodeFields(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode document fields: %w", err)
	}
	return normalizeValue(fields).(map[string]any), nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, inner := range val {
			val[k] = normalizeValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = normalizeValue(inner)
		}
		return val
	default:
		return v
	}
}
