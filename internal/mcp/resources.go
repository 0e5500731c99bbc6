package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/mcp/tools"
	"github.com/usestring/swagman-mcp/internal/openapi"
	"github.com/usestring/swagman-mcp/internal/query"
	"github.com/usestring/swagman-mcp/pkg/jsoncompact"
)

// Resource URI scheme: swagman://
// Resources read the configured default collection.
// Supported URIs:
//   swagman://openapi/{format}
//   swagman://schema/{name}
//   swagman://item/{index}

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "swagman://openapi/{format}",
		Name:        "OpenAPI Document",
		Description: "OpenAPI 3.0 document of the configured collection, format json or yaml. High context cost - swagman_generate_openapi can write it to a file instead.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceOpenAPI)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "swagman://schema/{name}",
		Name:        "Inferred Schema",
		Description: "One inferred response schema of the configured collection by name, e.g. UsersId200.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.7,
		},
	}, s.handleResourceSchema)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "swagman://item/{index}",
		Name:        "Collection Item",
		Description: "Request and decoded example responses of one item, by the index swagman_list_items reports. Long arrays and strings in bodies are shortened.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceItem)
}

// Resource handlers

func (s *Server) handleResourceOpenAPI(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	format, err := openapi.ParseFormat(params["format"])
	if err != nil {
		return nil, tools.ErrInvalidInput(err.Error())
	}

	l, err := s.deps.Load(ctx, "", "")
	if err != nil {
		return nil, err
	}
	doc, err := openapi.Build(l.Parser)
	if err != nil {
		return nil, tools.WrapError(err)
	}
	data, err := openapi.Render(doc, format)
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	mime := tools.MimeJSON
	if format == openapi.FormatYAML {
		mime = tools.MimeYAML
	}
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{URI: req.Params.URI, MIMEType: mime, Text: string(data)},
		},
	}, nil
}

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	l, err := s.deps.Load(ctx, "", "")
	if err != nil {
		return nil, err
	}
	defs, err := l.Parser.SchemaDefinitions()
	if err != nil {
		return nil, tools.WrapError(err)
	}
	schema, ok := defs.Get(params["name"])
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	return toResourceResult(req.Params.URI, schema)
}

func (s *Server) handleResourceItem(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	index, err := strconv.Atoi(params["index"])
	if err != nil || index < 0 {
		return nil, tools.ErrInvalidInput("item index must be a non-negative integer")
	}

	l, err := s.deps.Load(ctx, "", "")
	if err != nil {
		return nil, err
	}
	sel, err := query.Select(l.Parser, l.Index, nil)
	if err != nil {
		return nil, tools.WrapError(err)
	}
	if index >= len(sel.Items) {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	single := &query.Selection{
		Items: sel.Items[index : index+1],
		Metas: sel.Metas[index : index+1],
	}
	docs, err := single.Documents(l.Parser, query.TargetItem)
	if err != nil {
		return nil, tools.WrapError(err)
	}
	if len(docs) == 0 {
		return nil, tools.WrapError(fmt.Errorf("item %d: %s", index, single.Skipped[0].SkipReason))
	}

	return toResourceResult(req.Params.URI, jsoncompact.CompactValue(docs[0].Value, nil))
}

// Helper functions

// parseResourceURI extracts parameters from a swagman:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, "swagman://") {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected swagman://")
	}

	path := strings.TrimPrefix(uri, "swagman://")
	parts := strings.Split(path, "/")

	params := make(map[string]string)
	resourceType := parts[0]

	switch resourceType {
	case "openapi":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("openapi URI requires a format")
		}
		params["format"] = parts[1]

	case "schema":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("schema URI requires a schema name")
		}
		params["name"] = parts[1]

	case "item":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("item URI requires an index")
		}
		params["index"] = parts[1]

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
