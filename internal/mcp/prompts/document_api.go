package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleDocumentAPI implements the OpenAPI documentation workflow.
func HandleDocumentAPI(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		collection := cfg.DefaultCollection
		format := "yaml"
		if args != nil {
			if v, ok := args["collection"]; ok && v != "" {
				collection = v
			}
			if v, ok := args["format"]; ok && v != "" {
				format = v
			}
		}

		collArg := ""
		if collection != "" {
			collArg = fmt.Sprintf("collection=%q", collection)
		}
		call := func(tool string, extra ...string) string {
			parts := append([]string(nil), extra...)
			if collArg != "" {
				parts = append([]string{collArg}, parts...)
			}
			return fmt.Sprintf("%s(%s)\n", tool, strings.Join(parts, ", "))
		}

		var sb strings.Builder

		sb.WriteString("# Document an API from a Postman Collection\n\n")
		sb.WriteString("You are an API technical writer turning recorded Postman examples into an OpenAPI document. ")
		sb.WriteString("Schemas are inferred from one example per response, so your job is to review them and patch what examples cannot show.\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString("1. **Inspect the collection** - confirm it parses and matches its reference schema\n")
		sb.WriteString("2. **Review items** - note folders, methods, and which responses lack JSON bodies\n")
		sb.WriteString("3. **Review schemas** - look for fields that should be optional, enums, or nullable\n")
		sb.WriteString("4. **Generate** - render the document, applying overlays for corrections\n\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		sb.WriteString("# Step 1\n")
		sb.WriteString(call("swagman_collection_info", "validate=true"))
		sb.WriteString("\n# Step 2\n")
		sb.WriteString(call("swagman_list_items"))
		sb.WriteString(call("swagman_list_items", `where="!json"`))
		sb.WriteString("\n# Step 3\n")
		sb.WriteString(call("swagman_get_schemas"))
		sb.WriteString(call("swagman_query", `target="schemas"`, `expression=".schemas | to_entries[] | select(.value == {}) | .key"`))
		sb.WriteString("\n# Step 4\n")
		sb.WriteString(call("swagman_generate_openapi", fmt.Sprintf("format=%q", format), `overlays=["{\"info\": {\"description\": \"...\"}}"]`))
		sb.WriteString("```\n\n")

		sb.WriteString("## Overlays\n\n")
		sb.WriteString("- A JSON object is a merge patch: `{\"components\": {\"schemas\": {\"Users200\": {\"required\": null}}}}` drops a required list\n")
		sb.WriteString("- A JSON array is a JSON patch: `[{\"op\": \"add\", \"path\": \"/servers\", \"value\": [{\"url\": \"https://api.example.com\"}]}]`\n")
		sb.WriteString("- Overlays apply in order; later ones see earlier results\n\n")

		sb.WriteString("## Constraints\n\n")
		sb.WriteString("- Do NOT invent fields that no example shows; mark uncertain ones in descriptions instead\n")
		sb.WriteString("- Keep schema names as generated; operations reference them by name\n\n")

		sb.WriteString("## If Things Go Wrong\n\n")
		sb.WriteString("- **VALIDATION_ERROR?** The collection does not match its Postman schema version; inference may still work\n")
		sb.WriteString("- **INFERENCE_ERROR?** An example holds a fractional number or a body labeled JSON that is not JSON\n")
		sb.WriteString("- **Missing items in schemas?** A folder replaced earlier siblings; compare with `swagman_list_items`\n\n")

		sb.WriteString("## Success Criteria\n\n")
		sb.WriteString("Task is complete when the generated document covers every item and each schema was reviewed.\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for documenting a collection as OpenAPI",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
