// Package mcpsrv embeds the swagman MCP server in another program.
//
// A server answers questions about Postman collections: what requests a
// collection holds, what JSON schema each recorded response implies, and
// what OpenAPI document the whole collection adds up to. Collections are
// read from disk on first use and kept in an LRU cache, so tools can name any
// collection file and repeated calls stay cheap.
//
//	srv, err := mcpsrv.NewServer(
//	    mcpsrv.WithCollection("petstore.postman_collection.json"),
//	    mcpsrv.WithNormalizeIDs(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Settings not given as options come from the environment (SWAGMAN_COLLECTION,
// SWAGMAN_ENVIRONMENT, LOG_LEVEL and so on), see internal/config.
//
// # Custom tools
//
// WithDepsTool hands a tool the same [Deps] the builtin tools use. This one
// reports how many named response schemas a collection produces:
//
//	type schemaCountOutput struct {
//	    Schemas int `json:"schemas"`
//	}
//
//	mcpsrv.WithDepsTool(&mcp.Tool{Name: "schema_count", Description: "Count response schemas"},
//	    func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, schemaCountOutput, error) {
//	        return func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, schemaCountOutput, error) {
//	            l, err := d.Load(ctx, "", "")
//	            if err != nil {
//	                return nil, schemaCountOutput{}, err
//	            }
//	            defs, err := l.Parser.SchemaDefinitions()
//	            if err != nil {
//	                return nil, schemaCountOutput{}, err
//	            }
//	            return nil, schemaCountOutput{Schemas: defs.Len()}, nil
//	        }
//	    })
//
// Tools registered this way go through [AddTool], which rejects output types
// the SDK cannot describe. examples/body-search is a complete program built on
// this package.
package mcpsrv
