package age

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAgtype_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"integer", "42", int64(42)},
		{"negative", "-7", int64(-7)},
		{"float", "3.5", 3.5},
		{"exponent", "1e3", 1000.0},
		{"numeric", "12345678901234567890.5::numeric", json.Number("12345678901234567890.5")},
		{"string", `"hello"`, "hello"},
		{"escaped string", `"it's a \"quote\""`, `it's a "quote"`},
		{"string containing annotation", `"x::vertex"`, "x::vertex"},
		{"true", "true", true},
		{"false", "false", false},
		{"null", "null", nil},
		{"list", `[1, "a", null]`, []any{int64(1), "a", nil}},
		{"map", `{"a": 1, "b": [true]}`, map[string]any{"a": int64(1), "b": []any{true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAgtype(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeAgtype_SpecialFloats(t *testing.T) {
	v, err := DecodeAgtype("NaN")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.(float64)))

	v, err = DecodeAgtype("-Infinity")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.(float64), -1))
}

func TestDecodeAgtype_Vertex(t *testing.T) {
	in := `{"id": 844424930131969, "label": "Person", "properties": {"id": "person:0123456789abcdef", "name": "Ada"}}::vertex`

	got, err := DecodeAgtype(in)
	require.NoError(t, err)
	assert.Equal(t, NodeRecord{
		ID:    844424930131969,
		Label: "Person",
		Properties: map[string]any{
			"id":   "person:0123456789abcdef",
			"name": "Ada",
		},
	}, got)
}

func TestDecodeAgtype_Edge(t *testing.T) {
	in := `{"id": 1125899906842625, "label": "KNOWS", "end_id": 844424930131970, "start_id": 844424930131969, "properties": {}}::edge`

	got, err := DecodeAgtype(in)
	require.NoError(t, err)
	assert.Equal(t, EdgeRecord{
		ID:         1125899906842625,
		Label:      "KNOWS",
		StartID:    844424930131969,
		EndID:      844424930131970,
		Properties: map[string]any{},
	}, got)
}

func TestDecodeAgtype_Path(t *testing.T) {
	in := `[{"id": 1, "label": "A", "properties": {}}::vertex, {"id": 3, "label": "R", "end_id": 2, "start_id": 1, "properties": {}}::edge, {"id": 2, "label": "B", "properties": {}}::vertex]::path`

	got, err := DecodeAgtype(in)
	require.NoError(t, err)
	path, ok := got.([]any)
	require.True(t, ok)
	require.Len(t, path, 3)
	assert.IsType(t, NodeRecord{}, path[0])
	assert.IsType(t, EdgeRecord{}, path[1])
	assert.Equal(t, "B", path[2].(NodeRecord).Label)
}

func TestDecodeAgtype_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"unterminated object", `{"a": 1`},
		{"unterminated string", `"abc`},
		{"trailing input", `1 2`},
		{"unknown annotation", `1::widget`},
		{"vertex on scalar", `1::vertex`},
		{"numeric on string", `"1"::numeric`},
		{"garbage", `@`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAgtype(tt.in)
			assert.Error(t, err)
		})
	}
}
