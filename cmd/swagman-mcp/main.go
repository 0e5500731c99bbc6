// Command swagman-mcp serves Postman collection schema inference over MCP on
// stdio. Flags override the environment; see internal/config for the rest.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/swagman-mcp/pkg/mcpsrv"
)

func main() {
	var opts []mcpsrv.Option
	stringOpt := func(name, usage string, apply func(string) mcpsrv.Option) {
		flag.Func(name, usage, func(v string) error {
			opts = append(opts, apply(v))
			return nil
		})
	}
	boolOpt := func(name, usage string, apply func(bool) mcpsrv.Option) {
		flag.BoolFunc(name, usage, func(v string) error {
			on := v != "false" && v != "0"
			opts = append(opts, apply(on))
			return nil
		})
	}
	stringOpt("collection", "default Postman collection file (overrides SWAGMAN_COLLECTION)", mcpsrv.WithCollection)
	stringOpt("env", "default Postman environment file (overrides SWAGMAN_ENVIRONMENT)", mcpsrv.WithEnvironment)
	stringOpt("log-level", "debug, info, warn or error (overrides LOG_LEVEL)", mcpsrv.WithLogLevel)
	stringOpt("log-file", "also write logs to this file (overrides LOG_FILE)", mcpsrv.WithLogFile)
	boolOpt("merge-folders", "merge folder contents into the parent (overrides SWAGMAN_MERGE_FOLDERS)", mcpsrv.WithMergeFolders)
	boolOpt("normalize-ids", "replace id-like path segments with placeholders (overrides SWAGMAN_NORMALIZE_IDS)", mcpsrv.WithNormalizeIDs)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server, err := mcpsrv.NewServer(opts...)
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	slog.Info("starting swagman MCP server on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
