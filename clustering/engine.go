package clustering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/vectorstore"
)

// Engine groups stored embeddings into similarity clusters using a
// density-based pass (DBSCAN) over cosine distance.
type Engine struct {
	store  vectorstore.Store
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a clustering engine.
func NewEngine(store vectorstore.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	e := &Engine{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Cluster retrieves the embeddings for ids and groups them into clusters
// whose members are pairwise density-reachable at minSimilarity. Ids with
// no stored embedding are skipped with a log entry. When fewer retrievable
// embeddings exist than minClusterSize, every id is returned as noise and
// the cluster list is empty; insufficient data is not an error.
func (e *Engine) Cluster(ctx context.Context, ids []core.ContentID, minSimilarity float64, minClusterSize int) ([][]core.ContentID, []core.ContentID, error) {
	if minSimilarity < 0 || minSimilarity > 1 {
		return nil, nil, fmt.Errorf("%w: minSimilarity must be in [0,1]", core.ErrInvalidInput)
	}
	if minClusterSize < 1 {
		return nil, nil, fmt.Errorf("%w: minClusterSize must be at least 1", core.ErrInvalidInput)
	}

	points := make([]point, 0, len(ids))
	for _, id := range ids {
		vector, _, err := e.store.Retrieve(ctx, id)
		if err != nil {
			if errors.Is(err, vectorstore.ErrNotFound) {
				e.logger.Warn("skipping id with no stored embedding", "content_id", id)
				continue
			}
			return nil, nil, err
		}
		points = append(points, point{id: id, vector: vector})
	}

	if len(points) < minClusterSize {
		noise := make([]core.ContentID, len(points))
		for i, p := range points {
			noise[i] = p.id
		}
		return nil, noise, nil
	}

	eps := 1 - minSimilarity
	clusters, noise := dbscan(points, eps, minClusterSize)
	e.logger.Debug("clustering complete",
		"points", len(points), "clusters", len(clusters), "noise", len(noise))
	return clusters, noise, nil
}
