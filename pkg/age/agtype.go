package age

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NodeRecord is a decoded vertex. ID is AGE's internal graph id; the logical
// id lives in Properties["id"].
type NodeRecord struct {
	ID         int64          `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
}

// EdgeRecord is a decoded edge.
type EdgeRecord struct {
	ID         int64          `json:"id"`
	Label      string         `json:"label"`
	StartID    int64          `json:"start_id"`
	EndID      int64          `json:"end_id"`
	Properties map[string]any `json:"properties"`
}

// DecodeAgtype parses the text form of an agtype value.
//
// Objects become map[string]any, arrays and paths []any, vertices NodeRecord
// and edges EdgeRecord. Integers decode to int64, floats to float64 and
// ::numeric values to json.Number so no precision is lost.
func DecodeAgtype(text string) (any, error) {
	p := &agtypeParser{s: text}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, p.errorf("unexpected trailing input")
	}
	return v, nil
}

type agtypeParser struct {
	s   string
	pos int
}

func (p *agtypeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("agtype: %s at offset %d", fmt.Sprintf(format, args...), p.pos)
}

func (p *agtypeParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *agtypeParser) value() (any, error) {
	if p.pos >= len(p.s) {
		return nil, p.errorf("unexpected end of input")
	}

	var (
		v   any
		err error
	)
	switch c := p.s[p.pos]; {
	case c == '{':
		v, err = p.object()
	case c == '[':
		v, err = p.array()
	case c == '"':
		v, err = p.str()
	case c == '-' || c == 'N' || c == 'I' || (c >= '0' && c <= '9'):
		v, err = p.number()
	default:
		v, err = p.literal()
	}
	if err != nil {
		return nil, err
	}
	return p.annotate(v)
}

func (p *agtypeParser) annotate(v any) (any, error) {
	num, isNum := v.(json.Number)
	if !strings.HasPrefix(p.s[p.pos:], "::") {
		if isNum {
			return numberValue(num)
		}
		return v, nil
	}
	p.pos += 2
	start := p.pos
	for p.pos < len(p.s) && (p.s[p.pos] == '_' || (p.s[p.pos] >= 'a' && p.s[p.pos] <= 'z')) {
		p.pos++
	}

	switch tag := p.s[start:p.pos]; tag {
	case "vertex":
		m, ok := v.(map[string]any)
		if !ok {
			return nil, p.errorf("::vertex on a non-object")
		}
		return toNode(m), nil
	case "edge":
		m, ok := v.(map[string]any)
		if !ok {
			return nil, p.errorf("::edge on a non-object")
		}
		return toEdge(m), nil
	case "path":
		if _, ok := v.([]any); !ok {
			return nil, p.errorf("::path on a non-array")
		}
		return v, nil
	case "numeric":
		if !isNum {
			return nil, p.errorf("::numeric on a non-number")
		}
		return num, nil
	default:
		return nil, p.errorf("unknown annotation ::%s", tag)
	}
}

func (p *agtypeParser) object() (map[string]any, error) {
	p.pos++ // {
	out := map[string]any{}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == '}' {
		p.pos++
		return out, nil
	}
	for {
		p.skipSpace()
		key, err := p.str()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != ':' {
			return nil, p.errorf("expected ':' after object key")
		}
		p.pos++
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[key] = v
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated object")
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '}' in object")
		}
	}
}

func (p *agtypeParser) array() ([]any, error) {
	p.pos++ // [
	out := []any{}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ']' {
		p.pos++
		return out, nil
	}
	for {
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated array")
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ']' in array")
		}
	}
}

func (p *agtypeParser) str() (string, error) {
	if p.pos >= len(p.s) || p.s[p.pos] != '"' {
		return "", p.errorf("expected string")
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			p.pos++
			var out string
			if err := json.Unmarshal([]byte(p.s[start:p.pos]), &out); err != nil {
				return "", p.errorf("invalid string: %v", err)
			}
			return out, nil
		default:
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *agtypeParser) number() (json.Number, error) {
	for _, special := range []string{"NaN", "-Infinity", "Infinity"} {
		if strings.HasPrefix(p.s[p.pos:], special) {
			p.pos += len(special)
			return json.Number(special), nil
		}
	}
	start := p.pos
	for p.pos < len(p.s) && strings.IndexByte("+-0123456789.eE", p.s[p.pos]) >= 0 {
		p.pos++
	}
	if start == p.pos {
		return "", p.errorf("invalid number")
	}
	return json.Number(p.s[start:p.pos]), nil
}

func (p *agtypeParser) literal() (any, error) {
	for lit, v := range map[string]any{"true": true, "false": false, "null": nil} {
		if strings.HasPrefix(p.s[p.pos:], lit) {
			p.pos += len(lit)
			return v, nil
		}
	}
	return nil, p.errorf("unexpected character %q", p.s[p.pos])
}

func numberValue(n json.Number) (any, error) {
	switch n {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return nil, fmt.Errorf("agtype: invalid number %q", string(n))
	}
	return f, nil
}

func toNode(m map[string]any) NodeRecord {
	return NodeRecord{
		ID:         asInt64(m["id"]),
		Label:      asString(m["label"]),
		Properties: asProperties(m["properties"]),
	}
}

func toEdge(m map[string]any) EdgeRecord {
	return EdgeRecord{
		ID:         asInt64(m["id"]),
		Label:      asString(m["label"]),
		StartID:    asInt64(m["start_id"]),
		EndID:      asInt64(m["end_id"]),
		Properties: asProperties(m["properties"]),
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asProperties(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
