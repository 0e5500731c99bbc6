// Package parser turns a Postman collection into flattened item maps and
// per-response schema maps.
package parser

import (
	"regexp"
	"strconv"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/usestring/swagman-mcp/pkg/collection"
	"github.com/usestring/swagman-mcp/pkg/example"
	schemainfer "github.com/usestring/swagman-mcp/pkg/jsonschema"
	"github.com/usestring/swagman-mcp/pkg/naming"
	"github.com/usestring/swagman-mcp/pkg/walker"
)

// Info defaults for collections that leave them out.
const (
	DefaultTitle       = ""
	DefaultDescription = "TODO: Add Description"
	DefaultVersion     = "1.0.0"
	DefaultHost        = "example.com"
	DefaultBasePath    = "/"
)

// DefaultSchemes is returned by Schemes.
var DefaultSchemes = []string{"http"}

var schemaURLPattern = regexp.MustCompile(`^http[s].//.*/(.*)/collection\.json`)

// Schemas maps schema names ("UsersId200") to fragments.
type Schemas = orderedmap.OrderedMap[string, *jsonschema.Schema]

// Parser reads items and schemas out of a collection.
type Parser struct {
	c            *collection.Collection
	env          *collection.Environment
	normalizeIDs bool
	mergeFolders bool
	decodeOpts   []example.DecodeOption
}

// Option configures a Parser.
type Option func(*Parser)

// WithEnvironment expands {{name}} placeholders in request URLs before
// keys and paths are derived.
func WithEnvironment(env *collection.Environment) Option {
	return func(p *Parser) {
		p.env = env
	}
}

// WithNormalizeIDs templates literal numeric, UUID and hex path segments in
// schema names.
func WithNormalizeIDs(enabled bool) Option {
	return func(p *Parser) {
		p.normalizeIDs = enabled
	}
}

// WithMergeFolders merges sibling folder results instead of letting each
// folder replace what was collected before it.
func WithMergeFolders(enabled bool) Option {
	return func(p *Parser) {
		p.mergeFolders = enabled
	}
}

// WithSentinelMarkers maps sentinel marker strings in response bodies to
// sentinels before inference.
func WithSentinelMarkers(enabled bool) Option {
	return func(p *Parser) {
		if enabled {
			p.decodeOpts = []example.DecodeOption{example.WithSentinelMarkers()}
		} else {
			p.decodeOpts = nil
		}
	}
}

// New creates a parser over c. The collection is not modified.
func New(c *collection.Collection, opts ...Option) *Parser {
	p := &Parser{c: c}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Collection returns the parsed collection.
func (p *Parser) Collection() *collection.Collection {
	return p.c
}

// ItemsResult is the outcome of GetItems. Match is set when a path was given
// and an item with that key exists; otherwise Items holds the flattened map.
type ItemsResult struct {
	Items *walker.Map[walker.Entry]
	Match *walker.Entry
	Key   string
}

// GetItems flattens the collection into {key: {request, responses}}, keyed
// by raw request URI. With a non-empty path the walk stops at the first item
// whose key equals path.
func (p *Parser) GetItems(path string) (*ItemsResult, error) {
	opts := walker.Options[walker.Entry]{
		Substitute:   p.substitute(),
		MergeFolders: p.mergeFolders,
	}
	if path != "" {
		opts.Filter = func(acc *walker.Map[walker.Entry]) bool {
			_, ok := acc.Get(path)
			return ok
		}
	}

	res, err := walker.Walk(p.c.Item, opts)
	if err != nil {
		return nil, err
	}
	out := &ItemsResult{Items: res.Items}
	if res.Matched {
		out.Match = &res.Match
		out.Key = res.Key
	}
	return out, nil
}

// SchemasResult is the outcome of GetSchemas. Match is set when a path was
// given and found; otherwise Items holds {uri: schemas} for every item.
type SchemasResult struct {
	Items *walker.Map[*Schemas]
	Match *Schemas
	Key   string
}

// GetSchemas infers one schema per recorded response, named
// Camelize(normalized path) + status code, grouped by request URI. With a
// non-empty path the walk stops at the first item whose URI is path or whose
// schemas include one named path.
func (p *Parser) GetSchemas(path string) (*SchemasResult, error) {
	opts := walker.Options[*Schemas]{
		Modify:       p.ResponseSchemas,
		Substitute:   p.substitute(),
		MergeFolders: p.mergeFolders,
	}
	if path != "" {
		opts.Filter = func(acc *walker.Map[*Schemas]) bool {
			if _, ok := acc.Get(path); ok {
				return true
			}
			newest := acc.Newest()
			if newest == nil {
				return false
			}
			_, ok := newest.Value.Get(path)
			return ok
		}
	}

	res, err := walker.Walk(p.c.Item, opts)
	if err != nil {
		return nil, err
	}
	out := &SchemasResult{Items: res.Items}
	if res.Matched {
		out.Match = res.Match
		out.Key = res.Key
	}
	return out, nil
}

// SchemaDefinitions returns every inferred schema in one map, in walk order.
// Folder handling follows the parser's merge setting.
func (p *Parser) SchemaDefinitions() (*Schemas, error) {
	res, err := p.GetSchemas("")
	if err != nil {
		return nil, err
	}
	defs := orderedmap.New[string, *jsonschema.Schema]()
	for item := res.Items.Oldest(); item != nil; item = item.Next() {
		for s := item.Value.Oldest(); s != nil; s = s.Next() {
			defs.Set(s.Key, s.Value)
		}
	}
	return defs, nil
}

// SchemaName returns the schema name of one response of item.
func (p *Parser) SchemaName(item *collection.Item, code int) string {
	return naming.Camelize(item.Request.NormalizedPath(p.normalizeIDs)) + strconv.Itoa(code)
}

// ResponseSchemas infers the schemas of every recorded response of a leaf
// item. Empty or non-JSON bodies get the {} fragment.
func (p *Parser) ResponseSchemas(item *collection.Item) (*Schemas, error) {
	if err := collection.CheckLeaf(item); err != nil {
		return nil, err
	}

	schemas := orderedmap.New[string, *jsonschema.Schema]()
	for i := range item.Response {
		resp := &item.Response[i]

		value, ok, err := resp.DecodeBody(p.decodeOpts...)
		if err != nil {
			return nil, err
		}

		schema := schemainfer.Empty()
		if ok {
			schema, err = schemainfer.Infer(value)
			if err != nil {
				return nil, err
			}
		}
		schemas.Set(p.SchemaName(item, resp.Code), schema)
	}
	return schemas, nil
}

// Leaves returns every leaf item of the collection in walk order, with
// environment substitution applied and all folders included regardless of
// the merge setting.
func (p *Parser) Leaves() ([]*collection.Item, error) {
	var leaves []*collection.Item
	_, err := walker.Walk(p.c.Item, walker.Options[int]{
		Key: func(*collection.Item) (string, error) {
			return strconv.Itoa(len(leaves)), nil
		},
		Modify: func(item *collection.Item) (int, error) {
			leaf := *item
			leaves = append(leaves, &leaf)
			return len(leaves) - 1, nil
		},
		Substitute:   p.substitute(),
		MergeFolders: true,
	})
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

// NormalizeIDs reports whether literal IDs in paths are templated.
func (p *Parser) NormalizeIDs() bool {
	return p.normalizeIDs
}

// MergeFolders reports whether folder results merge into their parent.
func (p *Parser) MergeFolders() bool {
	return p.mergeFolders
}

// DecodeOptions returns the body decoding options in effect.
func (p *Parser) DecodeOptions() []example.DecodeOption {
	return p.decodeOpts
}

func (p *Parser) substitute() func(collection.Item) collection.Item {
	if p.env == nil {
		return nil
	}
	return p.env.Apply
}
