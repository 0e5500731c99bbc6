package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	// Prompt 1: Tool usage guide
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "swagman_guide",
		Description: "RECOMMENDED: How the swagman tools fit together, how schemas are named, and which tool answers which question. Start here.",
	}, HandleGuide(cfg))

	// Prompt 2: Document an API as OpenAPI
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "document_api",
		Description: "Turn a Postman collection into a reviewed OpenAPI document: inspect, review inferred schemas, then generate with overlays.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "collection",
				Description: "Path to the collection file (default: the configured collection)",
				Required:    false,
			},
			{
				Name:        "format",
				Description: "Output format: json or yaml (default: yaml)",
				Required:    false,
			},
		},
	}, HandleDocumentAPI(cfg))
}
