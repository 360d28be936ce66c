package mutations

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"string", "Ada", "'Ada'"},
		{"single quote", "O'Brien", `'O\'Brien'`},
		{"backslash", `C:\path`, `'C:\\path'`},
		{"injection attempt", `x'}) DETACH DELETE n //`, `'x\'}) DETACH DELETE n //'`},
		{"true", true, "true"},
		{"false", false, "false"},
		{"json number", json.Number("42"), "42"},
		{"json float", json.Number("-1.5e3"), "-1.5e3"},
		{"int", 7, "7"},
		{"int64", int64(-9), "-9"},
		{"float", 2.5, "2.5"},
		{"list", []any{"a", json.Number("1"), nil}, "['a', 1, null]"},
		{"string list", []string{"x", "y"}, "['x', 'y']"},
		{"map sorted", map[string]any{"b": 1, "a": "z"}, "{a: 'z', b: 1}"},
		{"map odd key", map[string]any{"odd key": true}, "{`odd key`: true}"},
		{"ordered properties", NewProperties("z", 1, "a", 2), "{z: 1, a: 2}"},
	}

	var b cypherBuilder
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.literal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteral_Rejects(t *testing.T) {
	var b cypherBuilder
	for _, v := range []any{math.NaN(), math.Inf(1), json.Number("1; DROP"), struct{}{},
		json.Number("NaN"), json.Number("Inf"), json.Number("-Infinity"), json.Number("0x10"), json.Number("1_000"), json.Number("+1"), json.Number("")} {
		_, err := b.literal(v)
		assert.Error(t, err, "%v", v)
	}
}

func TestStatement(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{
			name: "create node",
			op:   &CreateNodeOperation{ID: nodeID, Label: "person", SetProperties: NewProperties("slug", "ada", "age", json.Number("36"))},
			want: "MERGE (n:person {id: 'person:0123456789abcdef'}) SET n.slug = 'ada', n.age = 36 RETURN n",
		},
		{
			name: "create edge",
			op:   &CreateEdgeOperation{ID: edgeID, Label: "knows", StartID: nodeID, EndID: nodeID2, SetProperties: NewProperties("since", json.Number("2020"))},
			want: "MATCH (a {id: 'person:0123456789abcdef'}), (b {id: 'person:fedcba9876543210'}) MERGE (a)-[r:knows {id: 'knows:00000000000000aa'}]->(b) SET r.since = 2020 RETURN r",
		},
		{
			name: "update node with label",
			op:   &UpdateOperation{EntityType: EntityNode, ID: nodeID, Label: "person", SetProperties: NewProperties("name", "Ada"), RemoveProperties: []string{"nickname", "alias"}},
			want: "MATCH (n:person {id: 'person:0123456789abcdef'}) SET n.name = 'Ada' REMOVE n.nickname, n.alias",
		},
		{
			name: "update edge without label",
			op:   &UpdateOperation{EntityType: EntityEdge, ID: edgeID, RemoveProperties: []string{"weight"}},
			want: "MATCH ()-[r {id: 'knows:00000000000000aa'}]->() REMOVE r.weight",
		},
		{
			name: "delete node",
			op:   &DeleteOperation{EntityType: EntityNode, ID: nodeID},
			want: "MATCH (n {id: 'person:0123456789abcdef'}) DETACH DELETE n",
		},
		{
			name: "delete edge",
			op:   &DeleteOperation{EntityType: EntityEdge, ID: edgeID},
			want: "MATCH ()-[r {id: 'knows:00000000000000aa'}]->() DELETE r",
		},
		{
			name: "define has no statement",
			op:   &DefineOperation{EntityType: EntityNode, Label: "person", Description: "x"},
			want: "",
		},
	}

	var b cypherBuilder
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Statement(tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
