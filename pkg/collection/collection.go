// Package collection models Postman v2.x collection documents and the
// request, response and environment views the schema tooling reads from them.
package collection

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// DefaultSchema is the info.schema value assumed when a collection omits it.
const DefaultSchema = "2.1.0.json"

// Collection is a parsed Postman collection.
type Collection struct {
	Info     Info       `json:"info"`
	Item     []Item     `json:"item"`
	Variable []Variable `json:"variable,omitempty"`

	raw []byte
}

// Info is the collection's info block.
type Info struct {
	PostmanID   string `json:"_postman_id,omitempty"`
	Name        string `json:"name"`
	Schema      string `json:"schema,omitempty"`
	Description Text   `json:"description,omitempty"`
	Version     Text   `json:"version,omitempty"`

	// Presence of optional keys, so accessors can tell "" from absent.
	HasName        bool `json:"-"`
	HasDescription bool `json:"-"`
	HasVersion     bool `json:"-"`
}

// UnmarshalJSON records which optional info keys are present.
func (i *Info) UnmarshalJSON(data []byte) error {
	type plain Info
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*i = Info(p)
	_, i.HasName = keys["name"]
	_, i.HasDescription = keys["description"]
	_, i.HasVersion = keys["version"]
	return nil
}

// Item is a collection node. It is a folder when Item is non-nil, otherwise a
// leaf carrying one request and its recorded responses.
type Item struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Description Text       `json:"description,omitempty"`
	Item        []Item     `json:"item,omitempty"`
	Request     *Request   `json:"request,omitempty"`
	Response    []Response `json:"response,omitempty"`
}

// IsFolder reports whether the node groups other nodes.
func (it *Item) IsFolder() bool {
	return it.Item != nil
}

// Variable is a collection or URL variable.
type Variable struct {
	Key      string `json:"key"`
	Value    any    `json:"value,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Text is a field Postman writes either as a plain string or as an object
// such as {"content": "...", "type": "text/markdown"} (descriptions) or
// {"major": 1, "minor": 2, "patch": 3} (versions). It is flattened to a string.
type Text string

// UnmarshalJSON accepts both encodings.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	var obj struct {
		Content    *string `json:"content"`
		Major      *int    `json:"major"`
		Minor      *int    `json:"minor"`
		Patch      *int    `json:"patch"`
		Identifier string  `json:"identifier"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("text field: %w", err)
	}
	switch {
	case obj.Content != nil:
		*t = Text(*obj.Content)
	case obj.Major != nil:
		v := fmt.Sprintf("%d.%d.%d", *obj.Major, deref(obj.Minor), deref(obj.Patch))
		if obj.Identifier != "" {
			v += "-" + obj.Identifier
		}
		*t = Text(v)
	default:
		*t = ""
	}
	return nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Parse decodes a collection document. The raw bytes are retained for
// validation against the reference schema.
func Parse(data []byte) (*Collection, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing collection: %w", err)
	}
	c.raw = append([]byte(nil), data...)
	return &c, nil
}

// Load reads and parses a collection file.
func Load(ctx context.Context, path string) (*Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Raw returns the document the collection was parsed from, or nil for
// collections built in code.
func (c *Collection) Raw() []byte {
	return c.raw
}

// Leaves returns every leaf item in depth-first order.
func (c *Collection) Leaves() []*Item {
	var out []*Item
	var walk func(items []Item)
	walk = func(items []Item) {
		for i := range items {
			if items[i].IsFolder() {
				walk(items[i].Item)
				continue
			}
			out = append(out, &items[i])
		}
	}
	walk(c.Item)
	return out
}
