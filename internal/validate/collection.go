// Package validate checks collections against the Postman reference schemas
// and example payloads against inferred schema fragments.
package validate

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/usestring/swagman-mcp/pkg/collection"
	"github.com/usestring/swagman-mcp/pkg/parser"
)

// DefaultVersion is the reference schema used when a collection does not
// name a recognizable one.
const DefaultVersion = "2.1.0"

//go:embed schemas/*.json
var embedded embed.FS

// UnsupportedVersionError is returned when no reference schema exists for a
// collection's format version.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("no reference schema for collection format %q", e.Version)
}

// CollectionValidator validates collection documents against versioned
// reference schemas. Compiled schemas are cached per version.
type CollectionValidator struct {
	fsys           fs.FS
	defaultVersion string

	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// Option configures a CollectionValidator.
type Option func(*CollectionValidator)

// WithSchemaDir loads reference schemas ("<version>.json") from dir instead
// of the built-in set.
func WithSchemaDir(dir string) Option {
	return func(v *CollectionValidator) {
		if dir != "" {
			v.fsys = os.DirFS(dir)
		}
	}
}

// WithDefaultVersion sets the version used for collections whose info.schema
// does not carry one.
func WithDefaultVersion(version string) Option {
	return func(v *CollectionValidator) {
		if version != "" {
			v.defaultVersion = strings.TrimPrefix(version, "v")
		}
	}
}

// NewCollectionValidator creates a validator over the built-in reference
// schemas unless configured otherwise.
func NewCollectionValidator(opts ...Option) *CollectionValidator {
	sub, _ := fs.Sub(embedded, "schemas")
	v := &CollectionValidator{
		fsys:           sub,
		defaultVersion: DefaultVersion,
		compiled:       make(map[string]*jsonschema.Schema),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VersionOf returns the reference schema version a collection is checked
// against.
func (v *CollectionValidator) VersionOf(c *collection.Collection) string {
	if version := parser.New(c).VersionNumber(); version != "" {
		return version
	}
	return v.defaultVersion
}

// Validate checks the collection document. Schema violations are returned
// as the *jsonschema.ValidationError produced by the validator, unwrapped.
func (v *CollectionValidator) Validate(c *collection.Collection) error {
	sch, err := v.schemaFor(v.VersionOf(c))
	if err != nil {
		return err
	}

	raw := c.Raw()
	if raw == nil {
		raw, err = json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding collection: %w", err)
		}
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decoding collection: %w", err)
	}
	return sch.Validate(doc)
}

// Versions lists the available reference schema versions.
func (v *CollectionValidator) Versions() ([]string, error) {
	matches, err := fs.Glob(v.fsys, "*.json")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(m, ".json"))
	}
	return out, nil
}

func (v *CollectionValidator) schemaFor(version string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if sch, ok := v.compiled[version]; ok {
		return sch, nil
	}

	name := version + ".json"
	data, err := fs.ReadFile(v.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &UnsupportedVersionError{Version: version}
		}
		return nil, fmt.Errorf("reading reference schema %s: %w", name, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing reference schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	loc := "postman/" + name
	if err := compiler.AddResource(loc, doc); err != nil {
		return nil, fmt.Errorf("adding reference schema %s: %w", name, err)
	}
	sch, err := compiler.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("compiling reference schema %s: %w", name, err)
	}

	v.compiled[version] = sch
	return sch, nil
}
