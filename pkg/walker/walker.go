// Package walker flattens a collection tree into an ordered map keyed per
// leaf item, with pluggable keying, per-item transforms and a first-match
// search mode.
package walker

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/usestring/swagman-mcp/pkg/collection"
)

// Map is the flattened, insertion-ordered walk output.
type Map[V any] = orderedmap.OrderedMap[string, V]

// Entry is the default per-item value: the request and its recorded
// responses.
type Entry struct {
	Request   *collection.Request   `json:"request"`
	Responses []collection.Response `json:"responses"`
}

// ErrValueType is returned when Modify is nil and V cannot hold an Entry.
var ErrValueType = errors.New("walker: default transform needs V to accept Entry")

// Options configures Walk. All fields are optional.
type Options[V any] struct {
	// Key derives the map key of a leaf. Default: the request's raw URI.
	Key func(*collection.Item) (string, error)

	// Modify produces the stored value of a leaf. Default: Entry, which
	// requires V to be Entry or an interface Entry satisfies.
	Modify func(*collection.Item) (V, error)

	// Filter is evaluated on the accumulated map right after each leaf is
	// stored. Returning true stops the walk with that leaf as the match.
	Filter func(acc *Map[V]) bool

	// Substitute rewrites a leaf before keying, e.g. environment expansion.
	Substitute func(collection.Item) collection.Item

	// MergeFolders merges a folder's entries into the accumulator. When
	// false, a folder's result replaces everything collected so far at
	// that level, so earlier siblings are dropped.
	MergeFolders bool
}

// Result is the outcome of a walk. When Matched is set the walk stopped
// early: Match holds the matching leaf's value and Key its key, and Items is
// the map of the level the match happened at.
type Result[V any] struct {
	Items   *Map[V]
	Match   V
	Key     string
	Matched bool
}

// Walk traverses nodes depth-first. Folders contribute no entries of their
// own. A filter match anywhere in the tree ends the whole walk.
func Walk[V any](nodes []collection.Item, opts Options[V]) (Result[V], error) {
	acc := orderedmap.New[string, V]()

	for i := range nodes {
		node := &nodes[i]

		if node.IsFolder() {
			sub, err := Walk(node.Item, opts)
			if err != nil {
				return Result[V]{}, err
			}
			if sub.Matched {
				return sub, nil
			}
			if opts.MergeFolders {
				for pair := sub.Items.Oldest(); pair != nil; pair = pair.Next() {
					acc.Set(pair.Key, pair.Value)
				}
			} else {
				acc = sub.Items
			}
			continue
		}

		item := *node
		if opts.Substitute != nil {
			item = opts.Substitute(item)
		}

		key, err := keyOf(&item, opts.Key)
		if err != nil {
			return Result[V]{}, err
		}
		value, err := valueOf(&item, opts.Modify)
		if err != nil {
			return Result[V]{}, err
		}
		acc.Set(key, value)

		if opts.Filter != nil && opts.Filter(acc) {
			match, _ := acc.Get(key)
			return Result[V]{Items: acc, Match: match, Key: key, Matched: true}, nil
		}
	}

	return Result[V]{Items: acc}, nil
}

func keyOf(item *collection.Item, fn func(*collection.Item) (string, error)) (string, error) {
	if fn != nil {
		key, err := fn(item)
		if err != nil {
			return "", fmt.Errorf("deriving key for %q: %w", item.Name, err)
		}
		return key, nil
	}
	if item.Request == nil {
		return "", &collection.MissingFieldError{Item: item.Name, Field: "request"}
	}
	if item.Request.URL == nil {
		return "", &collection.MissingFieldError{Item: item.Name, Field: "request.url"}
	}
	return item.Request.URI(), nil
}

func valueOf[V any](item *collection.Item, fn func(*collection.Item) (V, error)) (V, error) {
	if fn != nil {
		return fn(item)
	}

	var zero V
	entry, err := DefaultEntry(item)
	if err != nil {
		return zero, err
	}
	v, ok := any(entry).(V)
	if !ok {
		return zero, ErrValueType
	}
	return v, nil
}

// DefaultEntry is the transform used when Options.Modify is nil.
func DefaultEntry(item *collection.Item) (Entry, error) {
	if err := collection.CheckLeaf(item); err != nil {
		return Entry{}, err
	}
	return Entry{Request: item.Request, Responses: item.Response}, nil
}
