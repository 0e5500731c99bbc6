package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Tool 1: swagman_collection_info
	AddTool(srv, &sdkmcp.Tool{
		Name:        "swagman_collection_info",
		Description: "Describe a Postman collection: title, description, version, schema version, item count, and folders. Set validate=true to check it against the Postman reference schema of its version. Start here.",
	}, ToolCollectionInfo(d))

	// Tool 2: swagman_list_items
	AddTool(srv, &sdkmcp.Tool{
		Name:        "swagman_list_items",
		Description: "List request items in collection order with method, normalized path, status codes, and schema names. Use where (e.g. method == \"GET\" && json) to filter. Keys returned here are the path argument of swagman_get_schemas.",
	}, ToolListItems(d))

	// Tool 3: swagman_search_items
	AddTool(srv, &sdkmcp.Tool{
		Name:        "swagman_search_items",
		Description: "Search request items by free text (URL path, item name, schema name; tokens ANDed) and structured filters (method, status, folder, header_name, path_contains, json_only). Results are ranked; ties keep collection order.",
	}, ToolSearchItems(d))

	// Tool 4: swagman_get_schemas
	AddTool(srv, &sdkmcp.Tool{
		Name:        "swagman_get_schemas",
		Description: "Infer one JSON schema per recorded response, named Camelize(path)+status (e.g. UsersId200) and grouped by request URI. Pass path (an item key or schema name) to stop at the first match; omit it for the whole collection.",
	}, ToolGetSchemas(d))

	// Tool 5: swagman_infer_schema
	AddTool(srv, &sdkmcp.Tool{
		Name:        "swagman_infer_schema",
		Description: "Infer a schema fragment and a flattened field table (path, type, format, required, nullable, example) from one JSON sample, or from a recorded response chosen by item key and status.",
	}, ToolInferSchema(d))

	// Tool 6: swagman_validate_sample
	AddTool(srv, &sdkmcp.Tool{
		Name:        "swagman_validate_sample",
		Description: "Validate a JSON payload against a schema fragment (schema) or an inferred collection schema (schema_name). Returns valid plus per-path errors.",
	}, ToolValidateSample(d))

	// Tool 7: swagman_generate_openapi
	AddTool(srv, &sdkmcp.Tool{
		Name:        "swagman_generate_openapi",
		Description: "Generate an OpenAPI 3.0 document (JSON or YAML) from the collection with inferred response schemas as components. Overlays (JSON merge patch or JSON patch) are applied in order. Set output_path to write a file instead of returning the document.",
	}, ToolGenerateOpenAPI(d))

	// Tool 8: swagman_query
	AddTool(srv, &sdkmcp.Tool{
		Name:        "swagman_query",
		Description: "Extract values across items with a JQ expression. target selects the documents: item (default), responses, schemas, or bodies (raw bodies; CSS/XPath/regex/form auto-detected by content-type). Filter items first with where. Returns values, per-item counts, errors, and hints.",
	}, ToolQuery(d))
}
