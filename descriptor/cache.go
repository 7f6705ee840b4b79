package descriptor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/assetmatch/ai"
	"github.com/poiesic/assetmatch/core"
	"golang.org/x/sync/singleflight"
)

// DescribeFunc produces a textual description for the asset behind a
// resolved path.
type DescribeFunc func(ctx context.Context) (string, error)

// EmbedFunc produces an embedding vector for a description.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

const defaultMaxEntries = 4096

// Cache memoizes describe+embed results per resolved asset path.
//
// Concurrent GetOrCompute calls for the same path share one in-flight
// computation (single-flight); calls for different paths proceed in
// parallel. Failures are never cached, so a later call retries. Entry
// count is bounded; the oldest entry is evicted when the bound is hit.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*core.Descriptor
	order      []string // Insertion order for FIFO eviction
	maxEntries int
	dimension  int
	group      singleflight.Group
	logger     *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries bounds the number of cached descriptors.
// Default is 4096; values below 1 are ignored.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n >= 1 {
			c.maxEntries = n
		}
	}
}

// WithDimension sets the embedding dimensionality vectors are corrected to
// before caching. Default is core.DefaultDimension.
func WithDimension(dim int) Option {
	return func(c *Cache) {
		if dim >= 1 {
			c.dimension = dim
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache creates a descriptor cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]*core.Descriptor),
		maxEntries: defaultMaxEntries,
		dimension:  core.DefaultDimension,
		logger:     slog.Default().With("component", "descriptor-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached descriptor for resolvedPath, computing it
// with describe and embed on a miss. The external functions are invoked at
// most once per distinct path regardless of concurrent callers; callers for
// the same path wait for the one in-flight computation and share its result.
func (c *Cache) GetOrCompute(ctx context.Context, resolvedPath string, describe DescribeFunc, embed EmbedFunc) (*core.Descriptor, error) {
	if resolvedPath == "" {
		return nil, fmt.Errorf("%w: empty resolved path", core.ErrInvalidInput)
	}
	if describe == nil || embed == nil {
		return nil, fmt.Errorf("%w: describe and embed functions required", core.ErrInvalidInput)
	}

	if d, ok := c.lookup(resolvedPath); ok {
		return d, nil
	}

	v, err, _ := c.group.Do(resolvedPath, func() (any, error) {
		// Re-check under the flight: a prior flight may have stored the
		// entry between the fast-path lookup and here.
		if d, ok := c.lookup(resolvedPath); ok {
			return d, nil
		}

		text, err := describe(ctx)
		if err != nil {
			if errors.Is(err, ai.ErrDescribeFailed) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %w", ai.ErrDescribeFailed, resolvedPath, err)
		}

		vector, err := embed(ctx, text)
		if err != nil {
			if errors.Is(err, ai.ErrEmbedFailed) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %w", ai.ErrEmbedFailed, resolvedPath, err)
		}

		if len(vector) != c.dimension {
			c.logger.Warn("embedding dimension mismatch, correcting",
				"path", resolvedPath, "got", len(vector), "want", c.dimension)
			vector = core.FitDimension(vector, c.dimension)
		}

		d := &core.Descriptor{Text: text, Embedding: vector}
		c.store(resolvedPath, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Descriptor), nil
}

// Len returns the number of cached descriptors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(path string) (*core.Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[path]
	return d, ok
}

func (c *Cache) store(path string, d *core.Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[path]; exists {
		c.entries[path] = d
		return
	}

	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[path] = d
	c.order = append(c.order, path)
}
