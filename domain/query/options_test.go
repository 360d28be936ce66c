package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitsResolve(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		want Options
	}{
		{"zero uses defaults", Options{}, Options{TimeoutSeconds: 30, MaxRows: 1000}},
		{"negative uses defaults", Options{TimeoutSeconds: -1, MaxRows: -5}, Options{TimeoutSeconds: 30, MaxRows: 1000}},
		{"in range kept", Options{TimeoutSeconds: 5, MaxRows: 2}, Options{TimeoutSeconds: 5, MaxRows: 2}},
		{"clamped to caps", Options{TimeoutSeconds: 9999, MaxRows: 50000}, Options{TimeoutSeconds: 300, MaxRows: 10000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultLimits.Resolve(tt.in))
		})
	}
}

func TestScreen(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"MATCH (n) RETURN n", ""},
		{"CREATE (n:Test)", "CREATE"},
		{"match (n) detach delete n", "DELETE"},
		{"MATCH (n) Set n.x = 1", "SET"},
		{"MATCH (n) REMOVE n.x", "REMOVE"},
		{"merge (n {id: 1})", "MERGE"},
		{"MATCH (n) WHERE n.created_at > 0 RETURN n.reset", ""},
		{"MATCH (n) RETURN n SKIP 1 LIMIT 5 // OFFSET", ""},
		{"MATCH (n) WHERE n.name = 'please delete me' RETURN n", "DELETE"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Screen(tt.query))
		})
	}
}

func TestMaskLiterals(t *testing.T) {
	in := "RETURN 'a\\'b', `x`, /* c */ 1 // d"
	out := maskLiterals(in)
	assert.Len(t, out, len(in))
	assert.Equal(t, "RETURN", out[:6])
	assert.NotContains(t, out, "a")
	assert.NotContains(t, out, "c")
	assert.NotContains(t, out, "d")
}

func TestBoundRows(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"appends", "MATCH (n) RETURN n", "MATCH (n) RETURN n\nLIMIT 10"},
		{"trims semicolon", "MATCH (n) RETURN n;  \n", "MATCH (n) RETURN n\nLIMIT 10"},
		{"keeps existing", "MATCH (n) RETURN n LIMIT 3", "MATCH (n) RETURN n LIMIT 3"},
		{"keeps lowercase", "MATCH (n) RETURN n limit 50000", "MATCH (n) RETURN n limit 50000"},
		{"identifier is not a clause", "MATCH (n) RETURN n.limit_value", "MATCH (n) RETURN n.limit_value\nLIMIT 10"},
		{"trailing line comment", "MATCH (n) RETURN n // all nodes", "MATCH (n) RETURN n // all nodes\nLIMIT 10"},
		{"limit inside string literal", "MATCH (n) WHERE n.name <> 'LIMIT 1' RETURN n", "MATCH (n) WHERE n.name <> 'LIMIT 1' RETURN n\nLIMIT 10"},
		{"limit inside escaped literal", `MATCH (n) WHERE n.name = "a\" LIMIT 1" RETURN n`, "MATCH (n) WHERE n.name = \"a\\\" LIMIT 1\" RETURN n\nLIMIT 10"},
		{"limit inside block comment", "MATCH (n) /* LIMIT 1 */ RETURN n", "MATCH (n) /* LIMIT 1 */ RETURN n\nLIMIT 10"},
		{"limit inside line comment", "MATCH (n) // LIMIT 1\nRETURN n", "MATCH (n) // LIMIT 1\nRETURN n\nLIMIT 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoundRows(tt.query, 10))
		})
	}
}
