package mcpsrv

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/cache"
	"github.com/usestring/swagman-mcp/internal/config"
	"github.com/usestring/swagman-mcp/internal/logging"
	"github.com/usestring/swagman-mcp/internal/mcp"
	"github.com/usestring/swagman-mcp/internal/mcp/tools"
	"github.com/usestring/swagman-mcp/internal/query"
	"github.com/usestring/swagman-mcp/internal/validate"
)

// Server is the swagman MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with builtin swagman tools.
//
// Configuration is loaded from the environment; use functional options to
// pick a collection, configure logging, add custom tools, etc.
func NewServer(opts ...Option) (*Server, error) {
	cfg := &serverConfig{
		config: config.Load(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logCfg := logging.FromConfig(cfg.config)
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	collections, err := cache.NewCollectionCache(
		cfg.config.CollectionCacheMaxItems,
		cfg.config.LoadTimeout,
		cfg.config.ParserOptions()...,
	)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create collection cache: %w", err)
	}

	toolDeps := &tools.Deps{
		Config:    cfg.config,
		Cache:     collections,
		Query:     query.NewEngine(),
		Validator: validate.NewCollectionValidator(cfg.config.ValidatorOptions()...),
	}

	// Public deps share the same values
	deps := &Deps{
		Config:    toolDeps.Config,
		Cache:     toolDeps.Cache,
		Query:     toolDeps.Query,
		Validator: toolDeps.Validator,
		tools:     toolDeps,
	}

	var internalOpts []mcp.ServerOption
	if !cfg.noBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.noBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}
	for _, register := range cfg.registrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			register(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
