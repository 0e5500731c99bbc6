package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/mcp/tools"
)

// AddTool registers a typed tool on srv. It panics at startup when Out could
// not match the output schema the SDK infers: a nil slice without omitzero,
// or a field whose type encodes itself such as json.RawMessage or an
// ordered map. Use any for those and fill it with types.ToAny.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
