package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoggingMiddleware logs every incoming request with its duration. Tool
// calls, resource reads and prompt requests also log what they target.
// Protocol errors are logged at error level, tool results flagged IsError
// at warn level.
func LoggingMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)

			attrs := append(targetAttrs(req),
				slog.String("method", method),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))

			level, msg := slog.LevelInfo, "request handled"
			switch res, _ := result.(*sdkmcp.CallToolResult); {
			case err != nil:
				level, msg = slog.LevelError, "request failed"
				attrs = append(attrs, slog.String("error", err.Error()))
			case res != nil && res.IsError:
				level, msg = slog.LevelWarn, "tool reported an error"
			}
			slog.LogAttrs(ctx, level, msg, attrs...)
			return result, err
		}
	}
}

// targetAttrs names the tool, resource or prompt a request is for.
func targetAttrs(req sdkmcp.Request) []slog.Attr {
	switch r := req.(type) {
	case *sdkmcp.CallToolRequest:
		if r.Params != nil {
			return []slog.Attr{slog.String("tool", r.Params.Name)}
		}
	case *sdkmcp.ReadResourceRequest:
		if r.Params != nil {
			return []slog.Attr{slog.String("uri", r.Params.URI)}
		}
	case *sdkmcp.GetPromptRequest:
		if r.Params != nil {
			return []slog.Attr{slog.String("prompt", r.Params.Name)}
		}
	}
	return nil
}
