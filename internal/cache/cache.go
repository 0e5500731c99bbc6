// Package cache provides caching utilities for the MCP server.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/swagman-mcp/internal/indexer"
	"github.com/usestring/swagman-mcp/pkg/collection"
	"github.com/usestring/swagman-mcp/pkg/parser"
)

// Loaded is a parsed collection with everything derived from it. It is
// immutable once cached.
type Loaded struct {
	Path        string
	Collection  *collection.Collection
	Environment *collection.Environment
	Parser      *parser.Parser
	Index       *indexer.Indexer
}

// CollectionCache provides thread-safe LRU caching of loaded collections.
// Concurrent loads of the same file are deduplicated.
type CollectionCache struct {
	cache   *lru.Cache[string, *Loaded]
	group   singleflight.Group
	timeout time.Duration
	opts    []parser.Option
}

// NewCollectionCache creates a cache holding at most maxItems collections.
// timeout bounds each file load; zero means no bound. opts are applied to
// every parser the cache builds.
func NewCollectionCache(maxItems int, timeout time.Duration, opts ...parser.Option) (*CollectionCache, error) {
	c, err := lru.New[string, *Loaded](maxItems)
	if err != nil {
		return nil, err
	}
	return &CollectionCache{cache: c, timeout: timeout, opts: opts}, nil
}

// Get returns the collection at path with the environment at envPath applied
// (envPath may be empty), loading it on a miss.
func (c *CollectionCache) Get(ctx context.Context, path, envPath string) (*Loaded, error) {
	key := cacheKey(path, envPath)
	if l, ok := c.cache.Get(key); ok {
		return l, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// Another caller may have finished the load while we waited
		if l, ok := c.cache.Get(key); ok {
			return l, nil
		}
		l, err := c.load(ctx, path, envPath)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, l)
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("collection load shared", slog.String("path", path))
	}
	return v.(*Loaded), nil
}

// LoadAll loads several collections concurrently. Results are in the order
// of paths; the first failure cancels the rest.
func (c *CollectionCache) LoadAll(ctx context.Context, paths []string, envPath string) ([]*Loaded, error) {
	out := make([]*Loaded, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			l, err := c.Get(gctx, path, envPath)
			if err != nil {
				return err
			}
			out[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Store builds and caches an in-memory collection under name.
func (c *CollectionCache) Store(name string, col *collection.Collection, env *collection.Environment) (*Loaded, error) {
	l, err := c.build(name, col, env)
	if err != nil {
		return nil, err
	}
	c.cache.Add(cacheKey(name, ""), l)
	return l, nil
}

// Len returns the current number of collections in the cache.
func (c *CollectionCache) Len() int {
	return c.cache.Len()
}

func (c *CollectionCache) load(ctx context.Context, path, envPath string) (*Loaded, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	col, err := collection.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	var env *collection.Environment
	if envPath != "" {
		env, err = collection.LoadEnvironment(ctx, envPath)
		if err != nil {
			return nil, err
		}
	}

	l, err := c.build(path, col, env)
	if err != nil {
		return nil, err
	}

	slog.Info("collection loaded",
		slog.String("path", path),
		slog.String("name", col.Info.Name),
		slog.Int("items", l.Index.DocCount()),
		slog.Duration("duration", time.Since(start)),
	)
	return l, nil
}

func (c *CollectionCache) build(path string, col *collection.Collection, env *collection.Environment) (*Loaded, error) {
	opts := append([]parser.Option{parser.WithEnvironment(env)}, c.opts...)
	p := parser.New(col, opts...)

	idx, err := indexer.Build(p)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", path, err)
	}

	return &Loaded{
		Path:        path,
		Collection:  col,
		Environment: env,
		Parser:      p,
		Index:       idx,
	}, nil
}

func cacheKey(path, envPath string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if envPath == "" {
		return path
	}
	if abs, err := filepath.Abs(envPath); err == nil {
		envPath = abs
	}
	return path + "\x00" + envPath
}
