package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/config"
)

// registration adds one extension once Deps exist. Extensions are added in
// option order, after the builtins.
type registration func(*mcp.Server, *Deps)

type serverConfig struct {
	config *config.Config

	logLevel string
	logFile  string

	noBuiltinTools   bool
	noBuiltinPrompts bool

	registrations []registration
}

// Option configures the server.
type Option func(*serverConfig)

// WithConfig replaces the configuration loaded from the environment.
// Options applied after it still override its fields.
func WithConfig(c *config.Config) Option {
	return func(cfg *serverConfig) {
		if c != nil {
			cfg.config = c
		}
	}
}

// WithCollection sets the collection file tools read when a call names none.
func WithCollection(path string) Option {
	return func(cfg *serverConfig) { cfg.config.CollectionPath = path }
}

// WithEnvironment sets the Postman environment file whose variables are
// substituted into request URLs.
func WithEnvironment(path string) Option {
	return func(cfg *serverConfig) { cfg.config.EnvironmentPath = path }
}

// WithMergeFolders merges folder contents into their parent instead of
// letting a later folder replace an earlier one with the same name.
func WithMergeFolders(merge bool) Option {
	return func(cfg *serverConfig) { cfg.config.MergeFolders = merge }
}

// WithNormalizeIDs replaces numeric, UUID and hex path segments with
// placeholders, so /users/42 and /users/43 share one schema.
func WithNormalizeIDs(normalize bool) Option {
	return func(cfg *serverConfig) { cfg.config.NormalizeIDs = normalize }
}

// WithCacheSize bounds how many parsed collections are kept in memory.
// Values below one are ignored.
func WithCacheSize(n int) Option {
	return func(cfg *serverConfig) {
		if n > 0 {
			cfg.config.CollectionCacheMaxItems = n
		}
	}
}

// WithLogLevel sets the log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) { cfg.logLevel = level }
}

// WithLogFile sets the log file path. Logs always go to stderr as well.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) { cfg.logFile = path }
}

// WithoutBuiltinTools leaves out the swagman_* tools.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) { cfg.noBuiltinTools = true }
}

// WithoutBuiltinPrompts leaves out the swagman_guide and document_api prompts.
func WithoutBuiltinPrompts() Option {
	return func(cfg *serverConfig) { cfg.noBuiltinPrompts = true }
}

// WithTool registers a tool whose handler needs nothing from swagman. The
// output type is checked as described at [AddTool].
//
//	type echoInput struct {
//	    Text string `json:"text"`
//	}
//
//	mcpsrv.WithTool(&mcp.Tool{Name: "echo", Description: "Echo text"},
//	    func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, echoInput, error) {
//	        return nil, in, nil
//	    })
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server, _ *Deps) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a tool built from Deps, for handlers that load
// collections or run queries. build is called once, at server creation.
//
//	mcpsrv.WithDepsTool(&mcp.Tool{Name: "count_uris", Description: "Count request URIs with schemas"},
//	    func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, countInput) (*mcp.CallToolResult, countOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in countInput) (*mcp.CallToolResult, countOutput, error) {
//	            l, err := d.Load(ctx, in.Collection, "")
//	            if err != nil {
//	                return nil, countOutput{}, err
//	            }
//	            res, err := l.Parser.GetSchemas("")
//	            if err != nil {
//	                return nil, countOutput{}, err
//	            }
//	            return nil, countOutput{Count: res.Items.Len()}, nil
//	        }
//	    })
func WithDepsTool[In, Out any](tool *mcp.Tool, build func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server, d *Deps) {
			AddTool(srv, tool, build(d))
		})
	}
}

// WithPrompt registers a prompt next to the builtin ones.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server, _ *Deps) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResourceTemplate registers a resource template next to the builtin
// swagman:// ones. Handlers should return mcp.ResourceNotFoundError for
// URIs they cannot resolve.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server, _ *Deps) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
