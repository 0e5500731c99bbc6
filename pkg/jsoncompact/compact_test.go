package jsoncompact

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/swagman-mcp/pkg/example"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  *Options
		want  string
	}{
		{
			name:  "trims arrays",
			input: `{"items": [1, 2, 3, 4, 5, 6, 7, 8, 9, 10]}`,
			opts:  &Options{MaxArrayItems: 3},
			want:  `{"items": [1, 2, 3, "... (7 more items)"]}`,
		},
		{
			name:  "array within limit",
			input: `{"items": [1, 2, 3]}`,
			opts:  &Options{MaxArrayItems: 5},
			want:  `{"items": [1, 2, 3]}`,
		},
		{
			name:  "nested arrays",
			input: `{"users": [{"tags": ["a", "b", "c"]}, {"tags": []}, {"tags": ["x"]}]}`,
			opts:  &Options{MaxArrayItems: 2},
			want:  `{"users": [{"tags": ["a", "b", "... (1 more items)"]}, {"tags": []}, "... (1 more items)"]}`,
		},
		{
			name:  "limits disabled",
			input: `[1, 2, 3, 4, 5]`,
			opts:  &Options{},
			want:  `[1, 2, 3, 4, 5]`,
		},
		{
			name:  "max depth replaces containers only",
			input: `{"a": {"b": {"c": 1}}, "n": 2}`,
			opts:  &Options{MaxDepth: 2},
			want:  `{"a": {"b": "[max depth]"}, "n": 2}`,
		},
		{
			name:  "scalars untouched",
			input: `{"s": "x", "n": 1.5, "b": true, "z": null}`,
			opts:  nil,
			want:  `{"s": "x", "n": 1.5, "b": true, "z": null}`,
		},
		{
			name:  "truncates strings",
			input: `{"s": "abcdefghij"}`,
			opts:  &Options{MaxStringLen: 4},
			want:  `{"s": "abcd... (6 more chars)"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compact([]byte(tt.input), tt.opts)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestCompact_KeepsKeyOrderAndNumbers(t *testing.T) {
	got, err := Compact([]byte(`{"z": 1, "a": 10000000000000000001, "m": [1, 2, 3, 4]}`), nil)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":10000000000000000001,"m":[1,2,3,"... (1 more items)"]}`, string(got))
}

func TestCompact_EmptyAndInvalid(t *testing.T) {
	got, err := Compact(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Compact([]byte(`{"a": `), nil)
	assert.Error(t, err)
}

func TestCompactValue(t *testing.T) {
	t.Run("example object", func(t *testing.T) {
		in := example.ObjectOf("b", []any{"x", "y"}, "a", strings.Repeat("é", 3))
		out := CompactValue(in, &Options{MaxArrayItems: 1, MaxStringLen: 3})

		obj, ok := out.(*example.Object)
		require.True(t, ok)
		assert.Equal(t, "b", obj.Oldest().Key)
		b, _ := obj.Get("b")
		assert.Equal(t, []any{"x", "... (1 more items)"}, b)
		a, _ := obj.Get("a")
		// "é" is two bytes, so the cut backs off to a rune boundary
		assert.Equal(t, "é... (4 more chars)", a)

		// input untouched
		orig, _ := in.Get("b")
		assert.Len(t, orig, 2)
	})

	t.Run("generic map", func(t *testing.T) {
		var in any
		require.NoError(t, json.Unmarshal([]byte(`{"list": [1, 2, 3, 4, 5]}`), &in))
		out := CompactValue(in, nil)
		assert.Equal(t, map[string]any{"list": []any{float64(1), float64(2), float64(3), "... (2 more items)"}}, out)
	})
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, DefaultMaxArrayItems, opts.MaxArrayItems)
	assert.Equal(t, DefaultMaxStringLen, opts.MaxStringLen)
	assert.Zero(t, opts.MaxDepth)
}
