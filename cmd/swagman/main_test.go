package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersCollection = `{
	"info": {
		"name": "Users",
		"schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"
	},
	"item": [
		{
			"name": "Get user",
			"request": {"method": "GET", "url": "{{baseUrl}}/users/:id"},
			"response": [
				{"name": "ok", "code": 200, "_postman_previewlanguage": "json", "body": "{\"id\": 1, \"name\": \"Ann\"}"}
			]
		},
		{
			"name": "Create user",
			"request": {"method": "POST", "url": "{{baseUrl}}/users"},
			"response": [
				{"name": "created", "code": 201, "_postman_previewlanguage": "json", "body": "{\"id\": 2}"}
			]
		}
	]
}`

func writeCollection(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(usersCollection), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	color.NoColor = true
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("SWAGMAN_COLLECTION", "")

	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no args", nil, 2},
		{"unknown command", []string{"bogus"}, 2},
		{"help", []string{"help"}, 0},
		{"missing collection", []string{"items"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRun_Items(t *testing.T) {
	path := writeCollection(t)

	code, stdout, stderr := runCLI(t, "items", "-collection", path)
	require.Equal(t, 0, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "GET")
	assert.Contains(t, lines[0], "/users/{id}")
	assert.Contains(t, lines[0], "UsersId200")
	assert.Contains(t, lines[1], "POST")
	assert.Contains(t, stderr, "2 items")

	code, stdout, _ = runCLI(t, "items", "-collection", path, "-where", `method == "POST"`)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Users201")
	assert.NotContains(t, stdout, "UsersId200")

	code, _, stderr = runCLI(t, "items", "-collection", path, "-where", "method +")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error: ")
}

func TestRun_Schemas(t *testing.T) {
	path := writeCollection(t)

	code, stdout, stderr := runCLI(t, "schemas", "-collection", path, "-path", "Users201")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t,
		`{"Users201": {"type": "object", "properties": {"id": {"type": "integer", "format": "int32"}}, "required": ["id"]}}`,
		stdout)

	code, stdout, _ = runCLI(t, "schemas", "-collection", path)
	require.Equal(t, 0, code)
	var all map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &all))
	assert.Len(t, all, 2)

	code, _, stderr = runCLI(t, "schemas", "-collection", path, "-path", "Nope404")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Nope404")
}

func TestRun_Generate(t *testing.T) {
	path := writeCollection(t)
	dir := t.TempDir()

	overlay := filepath.Join(dir, "overlay.json")
	require.NoError(t, os.WriteFile(overlay, []byte(`{"info": {"title": "Users API"}}`), 0o644))

	code, stdout, stderr := runCLI(t, "generate", "-collection", path, "-format", "json", "-overlay", overlay)
	require.Equal(t, 0, code, stderr)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Equal(t, "Users API", doc["info"].(map[string]any)["title"])

	out := filepath.Join(dir, "openapi.yaml")
	code, stdout, stderr = runCLI(t, "generate", "-collection", path, "-format", "yaml", "-output", out)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "openapi: 3.0.3\n"))

	code, _, _ = runCLI(t, "generate", "-collection", path, "-format", "xml")
	assert.Equal(t, 1, code)
}

func TestRun_Validate(t *testing.T) {
	path := writeCollection(t)

	code, _, stderr := runCLI(t, "validate", "-collection", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, path+": valid v2.1.0 collection")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"info": {"schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"}, "item": []}`), 0o644))

	code, stdout, stderr := runCLI(t, "validate", "-collection", path, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, path+": valid")
	assert.Contains(t, stderr, "1 of 2 collections invalid")
	assert.Contains(t, stdout, bad+": ")

	code, _, _ = runCLI(t, "validate")
	assert.Equal(t, 2, code)
}
