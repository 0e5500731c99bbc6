// Package example models the JSON sample values that schemas are inferred from.
//
// A decoded value is one of:
//
//	nil                 JSON null
//	bool                JSON true/false
//	json.Number         JSON number, kept verbatim
//	string              JSON string
//	[]any               JSON array
//	*Object             JSON object, keys in document order
//	Sentinel            marker requesting a special schema shape
//
// Objects keep their key order so that inferred "required" lists follow the
// order in which fields appear in the recorded example.
package example

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object with insertion-ordered keys.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// ObjectOf builds an ordered object from alternating key/value arguments.
// It panics on an odd argument count or a non-string key; it is meant for
// literals in code and tests.
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("example.ObjectOf: odd number of arguments")
	}
	obj := orderedmap.New[string, any](len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("example.ObjectOf: key %v is not a string", kv[i]))
		}
		obj.Set(key, kv[i+1])
	}
	return obj
}

// Sentinel is a reserved marker value. Sentinels are compared by value on
// this type only; a plain string with the same spelling is not a sentinel.
type Sentinel int

const (
	// IgnoreProperty replaces the schema of the value it stands for with
	// {"additionalProperties": {}}.
	IgnoreProperty Sentinel = iota + 1
	// IgnorePropertyKeyValue, used as the value of an object entry, drops that
	// entry and adds an "additionalProperties" slot to the object's properties.
	IgnorePropertyKeyValue
)

// Marker spellings recognized by Decode when WithSentinelMarkers is set.
const (
	IgnorePropertyMarker         = "__IGNOREPROPSWAGMAN"
	IgnorePropertyKeyValueMarker = "__IGNOREPROPSWAGMANKEYVAL"
)

// String returns the marker spelling of the sentinel.
func (s Sentinel) String() string {
	switch s {
	case IgnoreProperty:
		return IgnorePropertyMarker
	case IgnorePropertyKeyValue:
		return IgnorePropertyKeyValueMarker
	default:
		return fmt.Sprintf("Sentinel(%d)", int(s))
	}
}

// MarshalJSON encodes the sentinel as its marker string.
func (s Sentinel) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// IsSentinel reports whether v is the given sentinel.
func IsSentinel(v any, s Sentinel) bool {
	got, ok := v.(Sentinel)
	return ok && got == s
}

// sentinelForMarker maps a marker spelling to its sentinel.
func sentinelForMarker(s string) (Sentinel, bool) {
	switch s {
	case IgnorePropertyMarker:
		return IgnoreProperty, true
	case IgnorePropertyKeyValueMarker:
		return IgnorePropertyKeyValue, true
	}
	return 0, false
}
