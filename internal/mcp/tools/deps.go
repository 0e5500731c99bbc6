package tools

import (
	"context"

	"github.com/usestring/swagman-mcp/internal/cache"
	"github.com/usestring/swagman-mcp/internal/config"
	"github.com/usestring/swagman-mcp/internal/query"
	"github.com/usestring/swagman-mcp/internal/validate"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config    *config.Config
	Cache     *cache.CollectionCache
	Query     *query.Engine
	Validator *validate.CollectionValidator
}

// Load resolves the collection and environment paths of a tool call,
// falling back to the configured defaults, and returns the cached collection.
func (d *Deps) Load(ctx context.Context, collectionPath, envPath string) (*cache.Loaded, error) {
	if collectionPath == "" {
		collectionPath = d.Config.CollectionPath
	}
	if collectionPath == "" {
		return nil, ErrInvalidInput("collection is required (no SWAGMAN_COLLECTION configured)")
	}
	if envPath == "" {
		envPath = d.Config.EnvironmentPath
	}

	l, err := d.Cache.Get(ctx, collectionPath, envPath)
	if err != nil {
		return nil, WrapError(err)
	}
	return l, nil
}
