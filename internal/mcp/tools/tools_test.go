package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/swagman-mcp/internal/cache"
	"github.com/usestring/swagman-mcp/internal/config"
	"github.com/usestring/swagman-mcp/internal/query"
	"github.com/usestring/swagman-mcp/internal/validate"
)

const usersCollection = `{
	"info": {
		"name": "Users",
		"schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"
	},
	"item": [
		{
			"name": "Get user",
			"request": {"method": "GET", "url": {"raw": "{{baseUrl}}/users/:id", "host": ["{{baseUrl}}"], "path": ["users", ":id"]}},
			"response": [
				{"name": "ok", "code": 200, "header": [{"key": "Content-Type", "value": "application/json"}], "body": "{\"id\": 1, \"name\": \"Ann\", \"tags\": [\"admin\"]}"},
				{"name": "missing", "code": 404, "header": [{"key": "Content-Type", "value": "application/json"}], "body": "{\"error\": \"not found\"}"}
			]
		},
		{
			"name": "Create user",
			"request": {"method": "POST", "url": {"raw": "{{baseUrl}}/users", "host": ["{{baseUrl}}"], "path": ["users"]}},
			"response": [
				{"name": "created", "code": 201, "header": [{"key": "Content-Type", "value": "application/json"}], "body": "{\"id\": 2}"}
			]
		}
	]
}`

const getUserKey = "{{baseUrl}}/users/:id"

func newDeps(t *testing.T) *Deps {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(usersCollection), 0o644))

	cfg := &config.Config{
		CollectionPath:     path,
		OpenAPIFormat:      "json",
		DefaultSearchLimit: config.DefaultSearchLimitValue,
		DefaultListLimit:   config.DefaultListLimitValue,
		QueryMaxResults:    config.QueryMaxResultsValue,
	}
	c, err := cache.NewCollectionCache(4, 0)
	require.NoError(t, err)

	return &Deps{
		Config:    cfg,
		Cache:     c,
		Query:     query.NewEngine(),
		Validator: validate.NewCollectionValidator(),
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var coded *CodedError
	require.True(t, errors.As(err, &coded), "error %v is not coded", err)
	assert.Equal(t, code, coded.Code)
}

func TestRegister(t *testing.T) {
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test", Version: "0.0.0"}, nil)
	assert.NotPanics(t, func() {
		Register(srv, newDeps(t))
	})
}

func TestWrapError_PassesCodedErrorsThrough(t *testing.T) {
	orig := ErrNotFound("item", "x")
	assert.Same(t, orig, WrapError(orig))
	assert.Nil(t, WrapError(nil))
}

func TestCollectionInfo(t *testing.T) {
	d := newDeps(t)
	_, out, err := ToolCollectionInfo(d)(context.Background(), nil, CollectionInfoInput{Validate: true})
	require.NoError(t, err)

	assert.Equal(t, "Users", out.Title)
	assert.Equal(t, "v2.1.0", out.SchemaVersion)
	assert.Equal(t, 2, out.ItemCount)
	assert.Empty(t, out.Folders)
	assert.True(t, out.Validated)
	assert.True(t, out.Valid, "errors: %v", out.ValidationErrors)
	assert.Equal(t, "2.1.0", out.ValidatedVersion)
}

func TestCollectionInfo_Errors(t *testing.T) {
	d := newDeps(t)

	_, _, err := ToolCollectionInfo(d)(context.Background(), nil, CollectionInfoInput{
		Collection: filepath.Join(t.TempDir(), "missing.json"),
	})
	requireCode(t, err, ErrCodeNotFound)

	d.Config.CollectionPath = ""
	_, _, err = ToolCollectionInfo(d)(context.Background(), nil, CollectionInfoInput{})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestListItems(t *testing.T) {
	d := newDeps(t)
	tool := ToolListItems(d)

	_, out, err := tool(context.Background(), nil, ListItemsInput{})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, getUserKey, out.Items[0].Key)
	assert.Equal(t, "GET", out.Items[0].Method)
	assert.Equal(t, []int{200, 404}, out.Items[0].StatusCodes)

	_, out, err = tool(context.Background(), nil, ListItemsInput{Where: `method == "POST"`})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Create user", out.Items[0].Name)

	_, out, err = tool(context.Background(), nil, ListItemsInput{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 1, out.Items[0].Index)

	_, _, err = tool(context.Background(), nil, ListItemsInput{Where: `method ==`})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestSearchItems(t *testing.T) {
	d := newDeps(t)
	_, out, err := ToolSearchItems(d)(context.Background(), nil, SearchItemsInput{
		Filters: &SearchItemsFilters{Status: 404},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, getUserKey, out.Results[0].Summary.Key)
	assert.Contains(t, out.Hint, "Single match")
}

func TestGetSchemas(t *testing.T) {
	d := newDeps(t)
	tool := ToolGetSchemas(d)

	_, out, err := tool(context.Background(), nil, GetSchemasInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.ItemCount)
	assert.Equal(t, 3, out.SchemaCount)

	_, out, err = tool(context.Background(), nil, GetSchemasInput{Path: "UsersId404"})
	require.NoError(t, err)
	assert.Equal(t, getUserKey, out.Key)
	assert.Equal(t, 2, out.SchemaCount)

	data, err := json.Marshal(out.Schemas)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"UsersId200": {"type": "object", "properties": {"id": {"type": "integer", "format": "int32"}, "name": {"type": "string"}, "tags": {"type": "array", "items": {"type": "string"}}}, "required": ["id", "name", "tags"]},
		"UsersId404": {"type": "object", "properties": {"error": {"type": "string"}}, "required": ["error"]}
	}`, string(data))

	_, _, err = tool(context.Background(), nil, GetSchemasInput{Path: "Nope200"})
	requireCode(t, err, ErrCodeNotFound)
}

func TestInferSchema(t *testing.T) {
	d := newDeps(t)
	tool := ToolInferSchema(d)

	_, out, err := tool(context.Background(), nil, InferSchemaInput{Sample: `{"a": 1, "b": [true]}`})
	require.NoError(t, err)
	require.NotNil(t, out.Schema)
	paths := make([]string, 0, len(out.Fields))
	for _, f := range out.Fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"a", "b"}, paths)

	_, out, err = tool(context.Background(), nil, InferSchemaInput{Key: getUserKey, Status: 404})
	require.NoError(t, err)
	assert.Contains(t, out.Hint, "UsersId404")

	_, _, err = tool(context.Background(), nil, InferSchemaInput{Sample: `{"n": 1.5}`})
	requireCode(t, err, ErrCodeInferenceError)

	_, _, err = tool(context.Background(), nil, InferSchemaInput{Sample: `{`})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = tool(context.Background(), nil, InferSchemaInput{Key: getUserKey, Status: 500})
	requireCode(t, err, ErrCodeNotFound)

	_, _, err = tool(context.Background(), nil, InferSchemaInput{})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestValidateSample(t *testing.T) {
	d := newDeps(t)
	tool := ToolValidateSample(d)

	tests := []struct {
		name  string
		input ValidateSampleInput
		valid bool
	}{
		{"named schema match", ValidateSampleInput{Sample: `{"id": 3, "name": "Bo", "tags": []}`, SchemaName: "UsersId200"}, true},
		{"named schema mismatch", ValidateSampleInput{Sample: `{"id": "3"}`, SchemaName: "UsersId200"}, false},
		{"inline schema", ValidateSampleInput{Sample: `{"id": null}`, Schema: `{"type": "object", "properties": {"id": {"type": "string", "nullable": true}}}`}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := tool(context.Background(), nil, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, out.Valid, "errors: %v", out.Errors)
			if !tt.valid {
				assert.NotEmpty(t, out.Errors)
			}
		})
	}

	_, _, err := tool(context.Background(), nil, ValidateSampleInput{Sample: `{}`, SchemaName: "Missing200"})
	requireCode(t, err, ErrCodeNotFound)

	_, _, err = tool(context.Background(), nil, ValidateSampleInput{Sample: `{`, SchemaName: "UsersId200"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = tool(context.Background(), nil, ValidateSampleInput{Sample: `{}`})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestGenerateOpenAPI(t *testing.T) {
	d := newDeps(t)
	tool := ToolGenerateOpenAPI(d)

	_, out, err := tool(context.Background(), nil, GenerateOpenAPIInput{
		Overlays: []string{`{"info": {"title": "Renamed"}}`},
	})
	require.NoError(t, err)
	assert.Equal(t, "json", out.Format)
	assert.Equal(t, 3, out.SchemaCount)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Document), &doc))
	assert.Equal(t, "Renamed", doc["info"].(map[string]any)["title"])

	outPath := filepath.Join(t.TempDir(), "out", "openapi.yaml")
	_, out, err = tool(context.Background(), nil, GenerateOpenAPIInput{Format: "yaml", OutputPath: outPath})
	require.NoError(t, err)
	assert.Empty(t, out.Document)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.0.3")

	_, _, err = tool(context.Background(), nil, GenerateOpenAPIInput{Format: "xml"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = tool(context.Background(), nil, GenerateOpenAPIInput{Overlays: []string{`[{"op": "bogus"}]`}})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestGenerateOpenAPI_OutputPathMatchesDocument(t *testing.T) {
	d := newDeps(t)
	tool := ToolGenerateOpenAPI(d)
	overlays := []string{`[{"op": "add", "path": "/servers/-", "value": {"url": "https://extra.example.com"}}]`}

	_, inline, err := tool(context.Background(), nil, GenerateOpenAPIInput{Overlays: overlays})
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "openapi.json")
	_, written, err := tool(context.Background(), nil, GenerateOpenAPIInput{Overlays: overlays, OutputPath: outPath})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, inline.Document, string(data))
	assert.Equal(t, written.Bytes, len(data))

	var doc struct {
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	var extra int
	for _, s := range doc.Servers {
		if s.URL == "https://extra.example.com" {
			extra++
		}
	}
	assert.Equal(t, 1, extra)
}

func TestQuery(t *testing.T) {
	d := newDeps(t)
	tool := ToolQuery(d)

	_, out, err := tool(context.Background(), nil, QueryInput{
		Expression: ".body.id",
		Target:     "responses",
		Where:      `200 in codes || 201 in codes`,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{1, 2}, normalizeNumbers(out.Values))

	_, out, err = tool(context.Background(), nil, QueryInput{
		Expression: "[range(10)]",
		Where:      `method == "GET"`,
		Compact:    true,
	})
	require.NoError(t, err)
	require.Len(t, out.Values, 1)
	assert.Len(t, out.Values[0], 4)

	_, _, err = tool(context.Background(), nil, QueryInput{Expression: ".", Target: "nope"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = tool(context.Background(), nil, QueryInput{Expression: ".", Mode: "css"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = tool(context.Background(), nil, QueryInput{Expression: ".[[["})
	requireCode(t, err, ErrCodeInvalidInput)
}

// normalizeNumbers maps whole floats to ints so decoded JSON numbers compare
// equal to literals.
func normalizeNumbers(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			out[i] = int(f)
			continue
		}
		out[i] = v
	}
	return out
}
