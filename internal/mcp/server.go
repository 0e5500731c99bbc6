package mcp

import (
	"context"
	"errors"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/mcp/prompts"
	"github.com/usestring/swagman-mcp/internal/mcp/tools"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server serves the swagman tools, prompts and swagman:// resources over MCP.
type Server struct {
	mcpServer *sdkmcp.Server
	deps      *tools.Deps
}

type serverOptions struct {
	tools    bool
	prompts  bool
	register []func(*sdkmcp.Server)
}

// ServerOption configures NewServer.
type ServerOption func(*serverOptions)

// WithBuiltinTools registers the swagman_* tools and the swagman://
// resource templates.
func WithBuiltinTools() ServerOption {
	return func(o *serverOptions) { o.tools = true }
}

// WithBuiltinPrompts registers the swagman_guide and document_api prompts.
func WithBuiltinPrompts() ServerOption {
	return func(o *serverOptions) { o.prompts = true }
}

// WithCustomRegistration runs fn against the SDK server after the builtins
// are registered.
func WithCustomRegistration(fn func(*sdkmcp.Server)) ServerOption {
	return func(o *serverOptions) { o.register = append(o.register, fn) }
}

// NewServer builds a server over deps. Nothing is registered unless an
// option asks for it.
func NewServer(deps *tools.Deps, opts ...ServerOption) (*Server, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("mcp: deps with a config are required")
	}
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		mcpServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: "swagman-mcp", Version: Version}, nil),
		deps:      deps,
	}
	s.mcpServer.AddReceivingMiddleware(LoggingMiddleware())

	if o.tools {
		tools.Register(s.mcpServer, deps)
		s.registerResources()
	}
	if o.prompts {
		prompts.Register(s.mcpServer, &prompts.Config{
			DefaultCollection: deps.Config.CollectionPath,
			MergeFolders:      deps.Config.MergeFolders,
			NormalizeIDs:      deps.Config.NormalizeIDs,
		})
	}
	for _, fn := range o.register {
		fn(s.mcpServer)
	}
	return s, nil
}

// Run serves over stdio until ctx is done. The default collection, if one is
// configured, is loaded first so the first tool call finds it cached. A
// failed preload is only logged; the tools report it on use.
func (s *Server) Run(ctx context.Context) error {
	if path := s.deps.Config.CollectionPath; path != "" {
		if _, err := s.deps.Cache.Get(ctx, path, s.deps.Config.EnvironmentPath); err != nil {
			slog.Warn("preloading collection failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.mcpServer
}
