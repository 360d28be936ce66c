package query

import (
	"fmt"
	"math"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
)

// NormalizeRow decodes one agtype result and reshapes it for JSON output.
// A vertex becomes {"node": ...}, an edge {"edge": ...}, a map is passed
// through key for key and anything else is wrapped as {"value": ...}.
func NormalizeRow(text string) (map[string]any, error) {
	v, err := age.DecodeAgtype(text)
	if err != nil {
		return nil, fmt.Errorf("decode result row: %w", err)
	}

	switch t := v.(type) {
	case age.NodeRecord:
		return map[string]any{"node": nodeMap(t)}, nil
	case age.EdgeRecord:
		return map[string]any{"edge": edgeMap(t)}, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeValue(item)
		}
		return out, nil
	default:
		return map[string]any{"value": normalizeValue(v)}, nil
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case age.NodeRecord:
		return nodeMap(t)
	case age.EdgeRecord:
		return edgeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeValue(item)
		}
		return out
	case float64:
		return finiteOrText(t)
	default:
		return v
	}
}

// finiteOrText keeps JSON-encodable floats and spells out NaN and the
// infinities the way agtype prints them.
func finiteOrText(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

func nodeMap(n age.NodeRecord) map[string]any {
	return map[string]any{
		"id":         n.ID,
		"label":      n.Label,
		"properties": normalizeProperties(n.Properties),
	}
}

func edgeMap(e age.EdgeRecord) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"label":      e.Label,
		"start_id":   e.StartID,
		"end_id":     e.EndID,
		"properties": normalizeProperties(e.Properties),
	}
}

func normalizeProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = normalizeValue(v)
	}
	return out
}
