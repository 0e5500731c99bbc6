package mcpsrv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/swagman-mcp/internal/config"
)

const collectionJSON = `{
	"info": {"name": "Orders", "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"},
	"item": [
		{
			"name": "List orders",
			"request": {"method": "GET", "url": "https://api.example.com/orders"},
			"response": [{"code": 200, "_postman_previewlanguage": "json", "body": "[{\"id\": 7}]"}]
		}
	]
}`

type countInput struct {
	Collection string `json:"collection,omitempty"`
}

type countOutput struct {
	Items int `json:"items"`
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(collectionJSON), 0o644))

	cfg := config.Load()
	cfg.CollectionPath = path
	cfg.LogLevel = "error"
	cfg.LogFile = ""
	return cfg
}

func TestNewServer(t *testing.T) {
	cfg := testConfig(t)

	var registered *Deps
	s, err := NewServer(
		WithConfig(cfg),
		WithDepsTool(&mcp.Tool{Name: "count_items", Description: "Count items"},
			func(d *Deps) func(context.Context, *mcp.CallToolRequest, countInput) (*mcp.CallToolResult, countOutput, error) {
				registered = d
				return func(ctx context.Context, req *mcp.CallToolRequest, in countInput) (*mcp.CallToolResult, countOutput, error) {
					l, err := d.Load(ctx, in.Collection, "")
					if err != nil {
						return nil, countOutput{}, err
					}
					return nil, countOutput{Items: l.Index.DocCount()}, nil
				}
			}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NotNil(t, registered)
	assert.Same(t, s.Deps(), registered)
	assert.Same(t, cfg, s.Deps().Config)
	assert.NotNil(t, s.MCPServer())

	l, err := s.Deps().Load(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Orders", l.Collection.Info.Name)
	assert.Equal(t, 1, l.Index.DocCount())
}

func TestNewServer_OptionsOverrideConfig(t *testing.T) {
	cfg := testConfig(t)

	s, err := NewServer(
		WithConfig(cfg),
		WithCollection("other.json"),
		WithEnvironment("env.json"),
		WithMergeFolders(true),
		WithNormalizeIDs(true),
		WithCacheSize(3),
		WithCacheSize(0),
		WithoutBuiltinTools(),
		WithoutBuiltinPrompts(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, "other.json", s.Deps().Config.CollectionPath)
	assert.Equal(t, "env.json", s.Deps().Config.EnvironmentPath)
	assert.True(t, s.Deps().Config.MergeFolders)
	assert.True(t, s.Deps().Config.NormalizeIDs)
	assert.Equal(t, 3, s.Deps().Config.CollectionCacheMaxItems)
}

func TestDeps_LoadWithoutCollection(t *testing.T) {
	cfg := testConfig(t)
	cfg.CollectionPath = ""

	s, err := NewServer(WithConfig(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Deps().Load(context.Background(), "", "")
	assert.Error(t, err)
}

func TestNewServer_Extensions(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	s, err := NewServer(
		WithConfig(cfg),
		WithoutBuiltinPrompts(),
		WithTool(&mcp.Tool{Name: "echo", Description: "Echo input"},
			func(ctx context.Context, req *mcp.CallToolRequest, in countInput) (*mcp.CallToolResult, countInput, error) {
				return nil, in, nil
			}),
		WithPrompt(&mcp.Prompt{Name: "review_schemas", Description: "Review schemas"},
			func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
				return &mcp.GetPromptResult{}, nil
			}),
		WithResourceTemplate(&mcp.ResourceTemplate{Name: "notes", URITemplate: "notes://{id}"},
			func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
				return nil, mcp.ResourceNotFoundError(req.Params.URI)
			}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	_, err = s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	session, err := mcp.NewClient(&mcp.Implementation{Name: "test"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	toolList, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var toolNames []string
	for _, tool := range toolList.Tools {
		toolNames = append(toolNames, tool.Name)
	}
	assert.Contains(t, toolNames, "swagman_get_schemas")
	assert.Contains(t, toolNames, "echo")

	promptList, err := session.ListPrompts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, promptList.Prompts, 1)
	assert.Equal(t, "review_schemas", promptList.Prompts[0].Name)

	templates, err := session.ListResourceTemplates(ctx, nil)
	require.NoError(t, err)
	var uris []string
	for _, tmpl := range templates.ResourceTemplates {
		uris = append(uris, tmpl.URITemplate)
	}
	assert.Contains(t, uris, "notes://{id}")
	assert.Contains(t, uris, "swagman://schema/{name}")
}
