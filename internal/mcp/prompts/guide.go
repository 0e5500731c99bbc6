package prompts

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleGuide serves the tool usage guide.
// Folder and ID notes depend on how the server infers schemas.
func HandleGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Efficient Tool Usage Guide\n\n")

		sb.WriteString("## Choosing a Collection\n")
		if cfg.DefaultCollection != "" {
			sb.WriteString("- Tools default to `" + cfg.DefaultCollection + "`; pass `collection` to use another file\n")
		} else {
			sb.WriteString("- No default collection is configured: pass `collection` (a file path) to every tool\n")
		}
		sb.WriteString("- Pass `environment` to substitute `{{variables}}` in request URLs before keying\n")

		// --- Item Discovery ---
		sb.WriteString("\n## Item Discovery: Parameter Decision Table\n\n")
		sb.WriteString("| Goal | Tool | Example |\n")
		sb.WriteString("|------|------|--------|\n")
		sb.WriteString("| Overview, version, validity | `swagman_collection_info` | `validate: true` |\n")
		sb.WriteString("| Browse items in order | `swagman_list_items` | `limit: 20` |\n")
		sb.WriteString("| Filter by item fields | `swagman_list_items` | `where: \"method == \\\"POST\\\" && json\"` |\n")
		sb.WriteString("| Find items by words | `swagman_search_items` | `query: \"user orders\"` |\n")
		sb.WriteString("| Find items by status | `swagman_search_items` | `filters: {status: 404}` |\n")

		sb.WriteString("\n**Key rules**:\n")
		sb.WriteString("- `query` tokens are ANDed; each may match the URL path, item name, or a schema name\n")
		sb.WriteString("- `where` fields: index, key, name, folder, method, path, codes, schemas, headers, json\n")
		sb.WriteString("- Item `key` is the raw request URI; it is the `path` argument of `swagman_get_schemas`\n")

		// --- Schemas ---
		sb.WriteString("\n## Schemas\n")
		sb.WriteString("- Each recorded response yields one schema named Camelize(path) + status, e.g. `/users/{id}` 200 -> `UsersId200`\n")
		sb.WriteString("- `swagman_get_schemas(path: \"UsersId200\")` stops at the first item owning that schema\n")
		sb.WriteString("- Empty or non-JSON bodies produce the empty schema `{}`\n")
		sb.WriteString("- Integers carry `format: int32`; `nullable: true` marks fields recorded as null\n")
		if !cfg.MergeFolders {
			sb.WriteString("- A folder replaces the items collected before it at the same level. Use `swagman_list_items` to see every item.\n")
		}
		if cfg.NormalizeIDs {
			sb.WriteString("- Literal IDs in paths are templated: `/users/42` -> `/users/{id}`\n")
		}

		// --- Workflows ---
		sb.WriteString("\n## Recommended Workflows\n")
		sb.WriteString("\n### Document an API\n")
		sb.WriteString("1. `swagman_collection_info(validate: true)`\n")
		sb.WriteString("2. `swagman_get_schemas()` to review inferred schemas\n")
		sb.WriteString("3. `swagman_generate_openapi(format: \"yaml\", overlays: [...])`\n")
		sb.WriteString("\n### Check a Payload\n")
		sb.WriteString("1. `swagman_search_items(query: ...)` to find the endpoint\n")
		sb.WriteString("2. `swagman_validate_sample(sample: ..., schema_name: \"UsersId200\")`\n")
		sb.WriteString("\n### Extract Values\n")
		sb.WriteString("- `swagman_query(expression: \".body.id\", target: \"responses\")`\n")
		sb.WriteString("- `target: \"schemas\"` queries inferred schemas, e.g. `.schemas | keys`\n")
		sb.WriteString("- `target: \"bodies\"` queries raw bodies: CSS for HTML, XPath for XML, regex for text\n")

		// --- JQ Quick Reference ---
		sb.WriteString("\n## JQ Quick Reference\n")
		sb.WriteString("- `.responses[].code` - Status codes of an item\n")
		sb.WriteString("- `.responses[] | select(.code >= 400) | .body` - Error bodies\n")
		sb.WriteString("- `.body | keys` - Top-level keys of a response body\n")

		return &sdkmcp.GetPromptResult{
			Description: "Essential guide for efficient tool usage",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
