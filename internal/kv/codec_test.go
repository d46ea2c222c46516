package kv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_PreservesTypes(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{name: "null", value: nil, want: nil},
		{name: "string", value: "hello", want: "hello"},
		{name: "number", value: 42, want: float64(42)},
		{name: "float", value: 1.5, want: 1.5},
		{name: "bool", value: true, want: true},
		{name: "array", value: []any{1, "two", false}, want: []any{float64(1), "two", false}},
		{
			name:  "nested",
			value: map[string]any{"a": map[string]any{"b": []int{1, 2}}},
			want:  map[string]any{"a": map[string]any{"b": []any{float64(1), float64(2)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Encode(tt.value)
			require.NoError(t, err)

			got, err := Decode(text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_Unserializable(t *testing.T) {
	_, err := Encode(math.Inf(1))
	require.Error(t, err)

	_, err = Encode(make(chan int))
	require.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	for _, text := range []string{"", "not json", `{"a":`, `"unterminated`, `1 2`} {
		_, err := Decode(text)
		assert.Error(t, err, "Decode(%q)", text)
	}
}

func TestDecodeInto(t *testing.T) {
	var got struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeInto(`{"name":"kv"}`, &got))
	assert.Equal(t, "kv", got.Name)
}
