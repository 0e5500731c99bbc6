// Package openapi assembles OpenAPI documents from parsed collections and
// renders them as JSON or YAML, optionally patched by overlays.
package openapi

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/usestring/swagman-mcp/pkg/collection"
	"github.com/usestring/swagman-mcp/pkg/example"
	schemainfer "github.com/usestring/swagman-mcp/pkg/jsonschema"
	"github.com/usestring/swagman-mcp/pkg/naming"
	"github.com/usestring/swagman-mcp/pkg/parser"
)

const (
	schemaRefPrefix = "#/components/schemas/"
	contentJSON     = "application/json"
)

// Build assembles a document from every leaf of the parser's collection.
// Each recorded response with a JSON body contributes a component schema
// named like the parser's schema map keys.
func Build(p *parser.Parser) (*Document, error) {
	leaves, err := p.Leaves()
	if err != nil {
		return nil, err
	}

	doc := &Document{
		OpenAPI: Version,
		Info: Info{
			Title:       p.Title(),
			Description: p.Description(),
			Version:     p.Version(),
		},
		Paths: orderedmap.New[string, *PathItem](),
		Components: Components{
			Schemas: orderedmap.New[string, *jsonschema.Schema](),
		},
	}
	for _, scheme := range p.Schemes() {
		doc.Servers = append(doc.Servers, Server{URL: scheme + "://" + p.Host() + p.BasePath()})
	}

	seenTags := make(map[string]bool)
	for _, item := range leaves {
		if err := collection.CheckLeaf(item); err != nil {
			return nil, err
		}

		method := strings.ToLower(item.Request.Method)
		if method == "" {
			method = "get"
		}
		path := "/" + item.Request.NormalizedPath(p.NormalizeIDs())

		pathItem, ok := doc.Paths.Get(path)
		if !ok {
			pathItem = &PathItem{}
			doc.Paths.Set(path, pathItem)
		}
		slot := pathItem.operation(method)
		if slot == nil {
			slog.Debug("skipping unsupported method", slog.String("method", method), slog.String("path", path))
			continue
		}
		if *slot != nil {
			slog.Debug("skipping duplicate operation", slog.String("method", method), slog.String("path", path), slog.String("item", item.Name))
			continue
		}

		op, err := buildOperation(p, doc, item, method, path)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
		}
		*slot = op

		for _, tag := range op.Tags {
			if !seenTags[tag] {
				seenTags[tag] = true
				doc.Tags = append(doc.Tags, Tag{Name: tag})
			}
		}
	}

	return doc, nil
}

func buildOperation(p *parser.Parser, doc *Document, item *collection.Item, method, path string) (*Operation, error) {
	op := &Operation{
		Summary:     item.Name,
		Description: string(item.Request.Description),
		OperationID: naming.Camelize(method + " " + path),
		Parameters:  parameters(item.Request, path),
		Responses:   orderedmap.New[string, *Response](),
	}
	if op.Description == "" {
		op.Description = string(item.Description)
	}
	if tag := firstSegment(path); tag != "" {
		op.Tags = []string{tag}
	}

	body, err := requestBody(p, doc, item.Request, method, path)
	if err != nil {
		return nil, err
	}
	op.RequestBody = body

	schemas, err := p.ResponseSchemas(item)
	if err != nil {
		return nil, err
	}
	for i := range item.Response {
		resp := &item.Response[i]
		name := p.SchemaName(item, resp.Code)

		out := &Response{Description: describe(resp)}
		if schema, ok := schemas.Get(name); ok && !schemainfer.IsEmpty(schema) {
			key, err := addComponent(doc, schema, name, naming.Camelize(method)+name)
			if err != nil {
				return nil, err
			}
			out.Content = map[string]MediaType{contentJSON: {Schema: ref(key)}}
		}
		op.Responses.Set(statusKey(resp.Code), out)
	}
	if op.Responses.Len() == 0 {
		op.Responses.Set("default", &Response{Description: "No recorded response"})
	}
	return op, nil
}

func requestBody(p *parser.Parser, doc *Document, req *collection.Request, method, path string) (*RequestBody, error) {
	if req.Body == nil || req.Body.Mode != "raw" || strings.TrimSpace(req.Body.Raw) == "" {
		return nil, nil
	}
	value, err := example.Decode([]byte(req.Body.Raw), p.DecodeOptions()...)
	if err != nil {
		// raw bodies in other languages (xml, text) carry no schema
		return nil, nil
	}
	schema, err := schemainfer.Infer(value)
	if err != nil {
		return nil, err
	}

	name := naming.Camelize(path) + "Request"
	key, err := addComponent(doc, schema, name, naming.Camelize(method)+name)
	if err != nil {
		return nil, err
	}
	return &RequestBody{
		Content:  map[string]MediaType{contentJSON: {Schema: ref(key)}},
		Required: true,
	}, nil
}

// addComponent stores schema under name and returns the key it ended up
// under. Operations sharing a path share names, so when name already holds a
// different schema the method-qualified name is tried, then that name with a
// numeric suffix. An identical schema is reused rather than duplicated.
func addComponent(doc *Document, schema *jsonschema.Schema, name, qualified string) (string, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}
	for i := 0; ; i++ {
		key := name
		switch {
		case i == 1:
			key = qualified
		case i > 1:
			key = qualified + "_" + strconv.Itoa(i)
		}
		existing, ok := doc.Components.Schemas.Get(key)
		if !ok {
			doc.Components.Schemas.Set(key, schema)
			return key, nil
		}
		held, err := json.Marshal(existing)
		if err != nil {
			return "", err
		}
		if bytes.Equal(held, data) {
			return key, nil
		}
	}
}

func parameters(req *collection.Request, path string) []Parameter {
	var params []Parameter
	for _, seg := range strings.Split(path, "/") {
		if len(seg) > 2 && strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			params = append(params, Parameter{
				Name:     seg[1 : len(seg)-1],
				In:       "path",
				Required: true,
				Schema:   &jsonschema.Schema{Type: schemainfer.TypeString},
			})
		}
	}
	for _, q := range req.URL.Query {
		if q.Disabled || q.Key == "" {
			continue
		}
		param := Parameter{
			Name:   q.Key,
			In:     "query",
			Schema: &jsonschema.Schema{Type: schemainfer.TypeString},
		}
		if q.Value != nil && *q.Value != "" {
			param.Example = *q.Value
		}
		params = append(params, param)
	}
	return params
}

func describe(resp *collection.Response) string {
	switch {
	case resp.Name != "":
		return resp.Name
	case resp.Status != "":
		return resp.Status
	default:
		return "Response " + strconv.Itoa(resp.Code)
	}
}

func statusKey(code int) string {
	if code == 0 {
		return "default"
	}
	return strconv.Itoa(code)
}

func firstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" && !strings.HasPrefix(seg, "{") {
			return seg
		}
	}
	return ""
}

func ref(name string) *jsonschema.Schema {
	return &jsonschema.Schema{Ref: schemaRefPrefix + name}
}
