package vectorstore

import (
	"context"

	"github.com/poiesic/assetmatch/core"
)

// ScoredRecord is one search hit: a stored record id with its similarity
// score against the query vector and the record's metadata.
type ScoredRecord struct {
	ContentID core.ContentID
	Score     float32
	Metadata  map[string]string
}

// Store provides upsert/retrieve/search over embedding records.
// Implementations must be thread-safe and support concurrent access.
//
// The store never retries failed backend calls; retry policy belongs to
// the caller.
type Store interface {
	// Upsert writes an embedding record under the given content id.
	// The write is idempotent: upserting the same id overwrites the prior
	// record (last write wins).
	Upsert(ctx context.Context, id core.ContentID, vector []float32, metadata map[string]string) error

	// Retrieve returns the vector for the first id present in the store,
	// trying ids in order. The first id is the primary; any following ids
	// are legacy fallbacks and a match against one is logged as a
	// migration warning. Returns ErrNotFound when no id is present.
	Retrieve(ctx context.Context, ids ...core.ContentID) ([]float32, core.ContentID, error)

	// Search returns up to limit records ranked by cosine similarity to
	// the query, descending. A zero scoreThreshold disables threshold
	// filtering. A non-empty filter keeps only records whose metadata
	// contains every key/value pair in it.
	Search(ctx context.Context, query []float32, limit int, scoreThreshold float32, filter map[string]string) ([]ScoredRecord, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
