package mcp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		method string
		req    sdkmcp.Request
		result sdkmcp.Result
		err    error
		want   []string
	}{
		{
			name:   "tool call",
			method: "tools/call",
			req:    &sdkmcp.CallToolRequest{Params: &sdkmcp.CallToolParamsRaw{Name: "swagman_list_items"}},
			result: &sdkmcp.CallToolResult{},
			want:   []string{"level=INFO", `msg="request handled"`, "tool=swagman_list_items", "method=tools/call"},
		},
		{
			name:   "tool error",
			method: "tools/call",
			req:    &sdkmcp.CallToolRequest{Params: &sdkmcp.CallToolParamsRaw{Name: "swagman_query"}},
			result: &sdkmcp.CallToolResult{IsError: true},
			want:   []string{"level=WARN", "tool=swagman_query"},
		},
		{
			name:   "resource read failure",
			method: "resources/read",
			req:    &sdkmcp.ReadResourceRequest{Params: &sdkmcp.ReadResourceParams{URI: "swagman://schema/Nope200"}},
			err:    errors.New("not found"),
			want:   []string{"level=ERROR", "uri=swagman://schema/Nope200", `error="not found"`},
		},
		{
			name:   "prompt",
			method: "prompts/get",
			req:    &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{Name: "swagman_guide"}},
			result: &sdkmcp.GetPromptResult{},
			want:   []string{"level=INFO", "prompt=swagman_guide"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			next := func(context.Context, string, sdkmcp.Request) (sdkmcp.Result, error) {
				return tt.result, tt.err
			}

			result, err := LoggingMiddleware()(next)(context.Background(), tt.method, tt.req)
			assert.Equal(t, tt.result, result)
			assert.Equal(t, tt.err, err)
			for _, w := range tt.want {
				assert.Contains(t, logs.String(), w)
			}
		})
	}
}
