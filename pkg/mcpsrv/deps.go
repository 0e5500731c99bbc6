package mcpsrv

import (
	"context"

	"github.com/usestring/swagman-mcp/internal/cache"
	"github.com/usestring/swagman-mcp/internal/config"
	"github.com/usestring/swagman-mcp/internal/mcp/tools"
	"github.com/usestring/swagman-mcp/internal/query"
	"github.com/usestring/swagman-mcp/internal/validate"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Config    *config.Config
	Cache     *cache.CollectionCache
	Query     *query.Engine
	Validator *validate.CollectionValidator

	tools *tools.Deps
}

// Load returns the collection at collectionPath with the environment at
// envPath applied, falling back to the configured defaults for empty paths.
// Errors carry the same codes builtin tools report.
func (d *Deps) Load(ctx context.Context, collectionPath, envPath string) (*cache.Loaded, error) {
	return d.tools.Load(ctx, collectionPath, envPath)
}
