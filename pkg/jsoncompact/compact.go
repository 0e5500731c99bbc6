// Package jsoncompact shortens example values for previews: long arrays are
// cut to their first elements and long strings are truncated, with a marker
// saying how much was dropped. Object key order is preserved.
package jsoncompact

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/usestring/swagman-mcp/pkg/example"
)

// Options controls how far values are shortened. Zero fields disable the
// corresponding limit.
type Options struct {
	MaxArrayItems int
	MaxStringLen  int
	MaxDepth      int
}

// Default limits.
const (
	DefaultMaxArrayItems = 3
	DefaultMaxStringLen  = 500
)

// DefaultOptions returns the default limits.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
	}
}

// Compact decodes a JSON document, shortens it and re-encodes it. Numbers
// are kept verbatim.
func Compact(data []byte, opts *Options) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	v, err := example.Decode(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(CompactValue(v, opts))
}

// CompactValue shortens a decoded value. It accepts example values as well
// as the generic map[string]any form encoding/json produces. The input is
// not modified.
func CompactValue(v any, opts *Options) any {
	if opts == nil {
		opts = DefaultOptions()
	}
	return opts.value(v, 0)
}

func (o *Options) value(v any, depth int) any {
	if o.MaxDepth > 0 && depth >= o.MaxDepth {
		switch v.(type) {
		case []any, map[string]any, *example.Object:
			return "[max depth]"
		}
	}

	switch val := v.(type) {
	case *example.Object:
		out := example.NewObject()
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, o.value(pair.Value, depth+1))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = o.value(elem, depth+1)
		}
		return out
	case []any:
		return o.array(val, depth)
	case string:
		return o.string(val)
	default:
		return v
	}
}

func (o *Options) array(arr []any, depth int) []any {
	keep := len(arr)
	if o.MaxArrayItems > 0 && keep > o.MaxArrayItems {
		keep = o.MaxArrayItems
	}

	out := make([]any, 0, keep+1)
	for _, elem := range arr[:keep] {
		out = append(out, o.value(elem, depth+1))
	}
	if dropped := len(arr) - keep; dropped > 0 {
		out = append(out, fmt.Sprintf("... (%d more items)", dropped))
	}
	return out
}

func (o *Options) string(s string) string {
	if o.MaxStringLen <= 0 || len(s) <= o.MaxStringLen {
		return s
	}
	// cut on a rune boundary
	cut := o.MaxStringLen
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + fmt.Sprintf("... (%d more chars)", len(s)-cut)
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
