package mutations

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// cypherBuilder renders operations as openCypher statements. literal is the
// only place values are escaped; labels and keys are already validated
// identifiers and ids match the id pattern.
type cypherBuilder struct{}

var numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// literal renders v as an openCypher literal.
func (b cypherBuilder) literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case string:
		x = strings.ReplaceAll(x, `\`, `\\`)
		x = strings.ReplaceAll(x, `'`, `\'`)
		return "'" + x + "'", nil
	case bool:
		return strconv.FormatBool(x), nil
	case json.Number:
		if !numberPattern.MatchString(string(x)) {
			return "", fmt.Errorf("invalid number %q", string(x))
		}
		return string(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return b.literal(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", fmt.Errorf("non-finite number %v", x)
		}
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			s, err := b.literal(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return b.literal(items)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return b.mapLiteral(keys, func(k string) any { return x[k] })
	case *Properties:
		return b.mapLiteral(x.Keys(), func(k string) any { v, _ := x.Get(k); return v })
	}
	return "", fmt.Errorf("unsupported property value of type %s", reflect.TypeOf(v))
}

func (b cypherBuilder) mapLiteral(keys []string, get func(string) any) (string, error) {
	parts := make([]string, len(keys))
	for i, k := range keys {
		val, err := b.literal(get(k))
		if err != nil {
			return "", err
		}
		parts[i] = mapKey(k) + ": " + val
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// mapKey backtick-quotes nested map keys that are not plain identifiers.
func mapKey(k string) string {
	if isPlainKey(k) {
		return k
	}
	return "`" + strings.ReplaceAll(k, "`", "``") + "`"
}

func isPlainKey(k string) bool {
	if k == "" {
		return false
	}
	for i, r := range k {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// str renders a string literal.
func (b cypherBuilder) str(s string) string {
	lit, _ := b.literal(s)
	return lit
}

// setClause renders "SET v.k1 = ..., v.k2 = ..." in insertion order, or ""
// when props is empty.
func (b cypherBuilder) setClause(variable string, props *Properties) (string, error) {
	if props.Len() == 0 {
		return "", nil
	}
	assignments := make([]string, 0, props.Len())
	for _, k := range props.Keys() {
		v, _ := props.Get(k)
		lit, err := b.literal(v)
		if err != nil {
			return "", fmt.Errorf("set_properties.%s: %w", k, err)
		}
		assignments = append(assignments, fmt.Sprintf("%s.%s = %s", variable, k, lit))
	}
	return " SET " + strings.Join(assignments, ", "), nil
}

func (b cypherBuilder) removeClause(variable string, keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = variable + "." + k
	}
	return " REMOVE " + strings.Join(parts, ", ")
}

func labelPart(label string) string {
	if label == "" {
		return ""
	}
	return ":" + label
}

// Statement renders the openCypher for op. DEFINE has no graph statement and
// returns "".
func (b cypherBuilder) Statement(op Operation) (string, error) {
	switch o := op.(type) {
	case *DefineOperation:
		return "", nil

	case *CreateNodeOperation:
		set, err := b.setClause("n", o.SetProperties)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("MERGE (n:%s {id: %s})%s RETURN n", o.Label, b.str(o.ID), set), nil

	case *CreateEdgeOperation:
		set, err := b.setClause("r", o.SetProperties)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("MATCH (a {id: %s}), (b {id: %s}) MERGE (a)-[r:%s {id: %s}]->(b)%s RETURN r",
			b.str(o.StartID), b.str(o.EndID), o.Label, b.str(o.ID), set), nil

	case *UpdateOperation:
		variable, pattern := "n", fmt.Sprintf("(n%s {id: %s})", labelPart(o.Label), b.str(o.ID))
		if o.EntityType == EntityEdge {
			variable, pattern = "r", fmt.Sprintf("()-[r%s {id: %s}]->()", labelPart(o.Label), b.str(o.ID))
		}
		set, err := b.setClause(variable, o.SetProperties)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("MATCH %s%s%s", pattern, set, b.removeClause(variable, o.RemoveProperties)), nil

	case *DeleteOperation:
		if o.EntityType == EntityEdge {
			return fmt.Sprintf("MATCH ()-[r {id: %s}]->() DELETE r", b.str(o.ID)), nil
		}
		return fmt.Sprintf("MATCH (n {id: %s}) DETACH DELETE n", b.str(o.ID)), nil
	}
	return "", fmt.Errorf("unsupported operation %T", op)
}
