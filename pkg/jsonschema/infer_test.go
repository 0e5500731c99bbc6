package jsonschema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/swagman-mcp/pkg/example"
)

func mustMarshal(t *testing.T, s *jsonschema.Schema) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func propertyKeys(s *jsonschema.Schema) []string {
	var keys []string
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func TestInfer_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"null", nil, `{"type":"string","nullable":true}`},
		{"true", true, `{"type":"boolean","format":"null"}`},
		{"false", false, `{"type":"boolean","format":"null"}`},
		{"json number", json.Number("5"), `{"type":"integer","format":"int32"}`},
		{"whole float", float64(3), `{"type":"integer","format":"int32"}`},
		{"exponent literal", json.Number("1e3"), `{"type":"integer","format":"int32"}`},
		{"whole decimal literal", json.Number("1.0"), `{"type":"integer","format":"int32"}`},
		{"go int", 42, `{"type":"integer","format":"int32"}`},
		{"string", "x", `{"type":"string"}`},
		{"empty string", "", `{"type":"string"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Infer(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, mustMarshal(t, s))
		})
	}
}

func TestInfer_NullFallback(t *testing.T) {
	s, err := Infer(nil)
	require.NoError(t, err)
	assert.Equal(t, TypeString, s.Type)
	assert.True(t, IsNullable(s))

	s, err = Infer("not null")
	require.NoError(t, err)
	assert.False(t, IsNullable(s))
}

func TestInfer_FractionalNumberFails(t *testing.T) {
	for _, v := range []any{json.Number("1.5"), float64(0.25), float32(2.5)} {
		_, err := Infer(v)
		var typeErr *TypeMappingError
		require.True(t, errors.As(err, &typeErr), "value %v", v)
		assert.Equal(t, v, typeErr.Value)
	}
}

func TestInfer_UnknownGoValueFails(t *testing.T) {
	_, err := Infer(struct{}{})
	var typeErr *TypeMappingError
	assert.True(t, errors.As(err, &typeErr))

	_, err = Infer(example.ObjectOf("nested", []any{complex(1, 2)}))
	assert.True(t, errors.As(err, &typeErr))
}

func TestInfer_ObjectRequiredFollowsKeyOrder(t *testing.T) {
	obj := example.ObjectOf(
		"zeta", "z",
		"alpha", json.Number("1"),
		"mid", true,
	)

	s, err := Infer(obj)
	require.NoError(t, err)

	assert.Equal(t, TypeObject, s.Type)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, s.Required)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, propertyKeys(s))

	alpha, ok := s.Properties.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, TypeInteger, alpha.Type)
	assert.Equal(t, FormatInt32, alpha.Format)
}

func TestInfer_EmptyObject(t *testing.T) {
	s, err := Infer(example.NewObject())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{}}`, mustMarshal(t, s))
	assert.Nil(t, s.Required)
}

func TestInfer_PlainMapSortedKeys(t *testing.T) {
	s, err := Infer(map[string]any{"b": "x", "a": float64(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Required)
}

func TestInfer_NestedObject(t *testing.T) {
	doc := []byte(`{"user": {"id": 1, "profile": {"name": "Bob", "tags": ["a"]}}}`)

	s, err := InferJSON(doc)
	require.NoError(t, err)

	expected := `{
		"type": "object",
		"required": ["user"],
		"properties": {
			"user": {
				"type": "object",
				"required": ["id", "profile"],
				"properties": {
					"id": {"type": "integer", "format": "int32"},
					"profile": {
						"type": "object",
						"required": ["name", "tags"],
						"properties": {
							"name": {"type": "string"},
							"tags": {"type": "array", "items": {"type": "string"}}
						}
					}
				}
			}
		}
	}`
	assert.JSONEq(t, expected, mustMarshal(t, s))
}

func TestInfer_Arrays(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s, err := Infer([]any{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"array","items":{}}`, mustMarshal(t, s))
		assert.True(t, IsEmpty(s.Items))
	})

	t.Run("homogeneous uses first element", func(t *testing.T) {
		s, err := Infer([]any{json.Number("1"), json.Number("2"), json.Number("3")})
		require.NoError(t, err)

		first, err := Infer(json.Number("1"))
		require.NoError(t, err)
		assert.Equal(t, mustMarshal(t, first), mustMarshal(t, s.Items))
	})

	t.Run("homogeneous objects use representative", func(t *testing.T) {
		s, err := InferJSON([]byte(`[{"id": 1}, {"id": 2, "extra": "ignored"}]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, s.Items.Required)
	})

	t.Run("heterogeneous lists every element", func(t *testing.T) {
		s, err := Infer([]any{json.Number("1"), "a", json.Number("2")})
		require.NoError(t, err)

		require.NotNil(t, s.Items)
		require.Len(t, s.Items.AllOf, 3)
		assert.Nil(t, s.Items.AnyOf)
		assert.JSONEq(t, `{"type":"integer","format":"int32"}`, mustMarshal(t, s.Items.AllOf[0]))
		assert.JSONEq(t, `{"type":"string"}`, mustMarshal(t, s.Items.AllOf[1]))
		assert.JSONEq(t, `{"type":"integer","format":"int32"}`, mustMarshal(t, s.Items.AllOf[2]))
	})

	t.Run("null elements count as strings", func(t *testing.T) {
		s, err := Infer([]any{nil, "a"})
		require.NoError(t, err)
		assert.Equal(t, TypeString, s.Items.Type)
		assert.True(t, IsNullable(s.Items))
	})

	t.Run("booleans and integers are distinct kinds", func(t *testing.T) {
		s, err := Infer([]any{true, json.Number("1")})
		require.NoError(t, err)
		assert.Len(t, s.Items.AllOf, 2)
	})
}

func TestInfer_IgnorePropertySentinel(t *testing.T) {
	s, err := Infer(example.IgnoreProperty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"additionalProperties":{}}`, mustMarshal(t, s))

	nested, err := Infer(example.ObjectOf("meta", example.IgnoreProperty))
	require.NoError(t, err)
	meta, ok := nested.Properties.Get("meta")
	require.True(t, ok)
	assert.JSONEq(t, `{"additionalProperties":{}}`, mustMarshal(t, meta))
	assert.Equal(t, []string{"meta"}, nested.Required)
}

func TestInfer_IgnorePropertyKeyValueSentinel(t *testing.T) {
	obj := example.ObjectOf(
		"id", json.Number("7"),
		"labels", example.IgnorePropertyKeyValue,
	)

	s, err := Infer(obj)
	require.NoError(t, err)

	assert.Equal(t, []string{"id"}, s.Required)
	assert.Equal(t, []string{"id", AdditionalPropertiesKey}, propertyKeys(s))

	slot, ok := s.Properties.Get(AdditionalPropertiesKey)
	require.True(t, ok)
	assert.Equal(t, "{}", mustMarshal(t, slot))
}

func TestInfer_SentinelSpellingIsNotASentinel(t *testing.T) {
	s, err := Infer(example.IgnorePropertyMarker)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"string"}`, mustMarshal(t, s))

	s, err = InferJSON([]byte(`"__IGNOREPROPSWAGMAN"`), example.WithSentinelMarkers())
	require.NoError(t, err)
	assert.JSONEq(t, `{"additionalProperties":{}}`, mustMarshal(t, s))
}

func TestInfer_Deterministic(t *testing.T) {
	doc := []byte(`{"a": [1, "x", {"b": null}], "c": {"d": [true, false]}, "e": []}`)

	v, err := example.Decode(doc)
	require.NoError(t, err)

	first, err := Infer(v)
	require.NoError(t, err)
	second, err := Infer(v)
	require.NoError(t, err)

	assert.Equal(t, mustMarshal(t, first), mustMarshal(t, second))
	assert.NotSame(t, first, second)
	if diff := cmp.Diff(mustMarshal(t, first), mustMarshal(t, second)); diff != "" {
		t.Errorf("inference not deterministic (-first +second):\n%s", diff)
	}
}

func TestInfer_DoesNotMutateInput(t *testing.T) {
	obj := example.ObjectOf("list", []any{json.Number("1"), "a"}, "skip", example.IgnorePropertyKeyValue)
	before, err := json.Marshal(obj)
	require.NoError(t, err)

	_, err = Infer(obj)
	require.NoError(t, err)

	after, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestInferJSON_InvalidInput(t *testing.T) {
	_, err := InferJSON([]byte(`not valid json`))
	assert.ErrorIs(t, err, example.ErrInvalidJSON)
}

func TestKind(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, TypeString},
		{"s", TypeString},
		{true, TypeBoolean},
		{json.Number("10"), TypeInteger},
		{[]any{}, TypeArray},
		{example.NewObject(), TypeObject},
		{example.IgnorePropertyKeyValue, TypeString},
	}

	for _, tt := range tests {
		kind, err := Kind(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, kind, "value %#v", tt.value)
	}
}
