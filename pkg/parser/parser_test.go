package parser

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/swagman-mcp/pkg/collection"
	schemainfer "github.com/usestring/swagman-mcp/pkg/jsonschema"
)

const usersCollection = `{
	"info": {
		"name": "Users",
		"schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"
	},
	"item": [
		{
			"name": "Get user",
			"request": {
				"method": "GET",
				"url": {"raw": "{{baseUrl}}/users/:id", "host": ["{{baseUrl}}"], "path": ["users", ":id"]}
			},
			"response": [
				{"name": "ok", "code": 200, "_postman_previewlanguage": "json", "body": "{\"id\": 1}"},
				{"name": "missing", "code": 404, "body": ""}
			]
		},
		{
			"name": "admin",
			"item": [
				{
					"name": "List audit",
					"request": "https://api.example.com/admin/audit",
					"response": [
						{"code": 200, "body": "[{\"at\": \"2024-01-01\", \"actor\": null}]"}
					]
				}
			]
		}
	]
}`

func mustParser(t *testing.T, doc string, opts ...Option) *Parser {
	t.Helper()
	c, err := collection.Parse([]byte(doc))
	require.NoError(t, err)
	return New(c, opts...)
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func schemaKeys(s *Schemas) []string {
	var out []string
	for pair := s.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func TestGetSchemas_KeyingScenario(t *testing.T) {
	doc := `{"info": {"name": "x"}, "item": [{
		"name": "user",
		"request": {"url": {"raw": "http://h.io/users/{id}", "path": ["users", "{id}"]}},
		"response": [{"code": 200, "body": "{\"id\": 1}"}]
	}]}`
	p := mustParser(t, doc)

	res, err := p.GetSchemas("")
	require.NoError(t, err)
	require.Nil(t, res.Match)

	schemas, ok := res.Items.Get("http://h.io/users/{id}")
	require.True(t, ok)
	assert.Equal(t, []string{"UsersId200"}, schemaKeys(schemas))

	schema, _ := schemas.Get("UsersId200")
	assert.JSONEq(t,
		`{"type":"object","properties":{"id":{"type":"integer","format":"int32"}},"required":["id"]}`,
		marshal(t, schema))
}

func TestGetSchemas_FullCollection(t *testing.T) {
	// admin folder replaces what was collected before it
	p := mustParser(t, usersCollection)
	res, err := p.GetSchemas("")
	require.NoError(t, err)
	require.Equal(t, 1, res.Items.Len())

	audit, ok := res.Items.Get("https://api.example.com/admin/audit")
	require.True(t, ok)
	schema, ok := audit.Get("AdminAudit200")
	require.True(t, ok)
	assert.JSONEq(t, `{
		"type": "array",
		"items": {
			"type": "object",
			"properties": {"at": {"type": "string"}, "actor": {"type": "string", "nullable": true}},
			"required": ["at", "actor"]
		}
	}`, marshal(t, schema))
}

func TestGetSchemas_MergeFolders(t *testing.T) {
	p := mustParser(t, usersCollection, WithMergeFolders(true))
	res, err := p.GetSchemas("")
	require.NoError(t, err)
	require.Equal(t, 2, res.Items.Len())

	user, ok := res.Items.Get("{{baseUrl}}/users/:id")
	require.True(t, ok)
	assert.Equal(t, []string{"UsersId200", "UsersId404"}, schemaKeys(user))

	notFound, _ := user.Get("UsersId404")
	assert.Equal(t, "{}", marshal(t, notFound))
	assert.True(t, schemainfer.IsEmpty(notFound))
}

func TestGetSchemas_FilterByURIAndName(t *testing.T) {
	p := mustParser(t, usersCollection)

	res, err := p.GetSchemas("{{baseUrl}}/users/:id")
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, "{{baseUrl}}/users/:id", res.Key)
	assert.Equal(t, []string{"UsersId200", "UsersId404"}, schemaKeys(res.Match))

	res, err = p.GetSchemas("AdminAudit200")
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, "https://api.example.com/admin/audit", res.Key)

	res, err = p.GetSchemas("Nope200")
	require.NoError(t, err)
	assert.Nil(t, res.Match)
	assert.NotNil(t, res.Items)
}

func TestGetSchemas_Environment(t *testing.T) {
	env := collection.EnvironmentFromVariables([]collection.Variable{{Key: "baseUrl", Value: "https://api.example.com/v2"}})
	p := mustParser(t, usersCollection, WithEnvironment(env), WithMergeFolders(true))

	res, err := p.GetItems("https://api.example.com/v2/users/:id")
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, "GET", res.Match.Request.Method)
}

func TestGetSchemas_NormalizeIDs(t *testing.T) {
	doc := `{"info": {}, "item": [{
		"request": "https://h.io/orders/1234/items",
		"response": [{"code": 201, "body": "{}"}]
	}]}`

	res, err := mustParser(t, doc).GetSchemas("")
	require.NoError(t, err)
	s, _ := res.Items.Get("https://h.io/orders/1234/items")
	assert.Equal(t, []string{"Orders1234Items201"}, schemaKeys(s))

	res, err = mustParser(t, doc, WithNormalizeIDs(true)).GetSchemas("")
	require.NoError(t, err)
	s, _ = res.Items.Get("https://h.io/orders/1234/items")
	assert.Equal(t, []string{"OrdersIdItems201"}, schemaKeys(s))
}

func TestGetSchemas_SentinelMarkers(t *testing.T) {
	doc := `{"info": {}, "item": [{
		"request": "https://h.io/things",
		"response": [{"code": 200, "body": "{\"id\": 1, \"extra\": \"__IGNOREPROPSWAGMANKEYVAL\"}"}]
	}]}`

	res, err := mustParser(t, doc, WithSentinelMarkers(true)).GetSchemas("Things200")
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	schema, _ := res.Match.Get("Things200")
	assert.Equal(t, []string{"id"}, schema.Required)
	_, ok := schema.Properties.Get(schemainfer.AdditionalPropertiesKey)
	assert.True(t, ok)
}

func TestGetSchemas_Errors(t *testing.T) {
	t.Run("fractional number", func(t *testing.T) {
		doc := `{"info": {}, "item": [{"request": "http://h/x", "response": [{"code": 200, "body": "{\"price\": 9.99}"}]}]}`
		_, err := mustParser(t, doc).GetSchemas("")
		var typeErr *schemainfer.TypeMappingError
		assert.True(t, errors.As(err, &typeErr))
	})

	t.Run("missing response", func(t *testing.T) {
		doc := `{"info": {}, "item": [{"name": "lonely", "request": "http://h/x"}]}`
		_, err := mustParser(t, doc).GetSchemas("")
		var missing *collection.MissingFieldError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "response", missing.Field)
	})

	t.Run("broken json body", func(t *testing.T) {
		doc := `{"info": {}, "item": [{"request": "http://h/x", "response": [{"code": 200, "_postman_previewlanguage": "json", "body": "{"}]}]}`
		_, err := mustParser(t, doc).GetSchemas("")
		var decodeErr *collection.BodyDecodeError
		assert.True(t, errors.As(err, &decodeErr))
	})
}

func TestGetItems(t *testing.T) {
	p := mustParser(t, usersCollection, WithMergeFolders(true))

	res, err := p.GetItems("")
	require.NoError(t, err)
	assert.Nil(t, res.Match)
	require.Equal(t, 2, res.Items.Len())
	assert.Equal(t, "{{baseUrl}}/users/:id", res.Items.Oldest().Key)

	res, err = p.GetItems("https://api.example.com/admin/audit")
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	require.Len(t, res.Match.Responses, 1)
	assert.Equal(t, 200, res.Match.Responses[0].Code)

	res, err = p.GetItems("https://nowhere")
	require.NoError(t, err)
	assert.Nil(t, res.Match)
}

func TestSchemaDefinitions(t *testing.T) {
	p := mustParser(t, usersCollection, WithMergeFolders(true))
	defs, err := p.SchemaDefinitions()
	require.NoError(t, err)
	assert.Equal(t, []string{"UsersId200", "UsersId404", "AdminAudit200"}, schemaKeys(defs))
}

func TestInfoAccessors(t *testing.T) {
	p := mustParser(t, usersCollection)
	assert.Equal(t, "Users", p.Title())
	assert.Equal(t, DefaultDescription, p.Description())
	assert.Equal(t, DefaultVersion, p.Version())
	assert.Equal(t, "example.com", p.Host())
	assert.Equal(t, "/", p.BasePath())
	assert.Equal(t, []string{"http"}, p.Schemes())
	assert.Equal(t, "v2.1.0", p.SchemaVersion())
	assert.Equal(t, "2.1.0", p.VersionNumber())

	bare := mustParser(t, `{"info": {"description": "", "version": "3.0"}, "item": []}`)
	assert.Equal(t, "", bare.Title())
	assert.Equal(t, "", bare.Description())
	assert.Equal(t, "3.0", bare.Version())
	assert.Equal(t, collection.DefaultSchema, bare.Schema())
	assert.Equal(t, "", bare.SchemaVersion())
}

func TestSchemaVersion_RequiresHTTPS(t *testing.T) {
	p := mustParser(t, `{"info": {"schema": "http://schema.getpostman.com/json/collection/v2.0.0/collection.json"}, "item": []}`)
	assert.Equal(t, "", p.SchemaVersion())
}

func TestLeaves(t *testing.T) {
	env := collection.EnvironmentFromVariables([]collection.Variable{{Key: "baseUrl", Value: "https://api.example.com"}})
	p := mustParser(t, usersCollection, WithEnvironment(env))

	leaves, err := p.Leaves()
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	assert.Equal(t, "https://api.example.com/users/:id", leaves[0].Request.URI())
	assert.Equal(t, "List audit", leaves[1].Name)

	// the collection keeps its placeholders
	assert.Equal(t, "{{baseUrl}}/users/:id", p.Collection().Item[0].Request.URI())
}
