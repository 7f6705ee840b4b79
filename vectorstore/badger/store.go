package badger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/vectorstore"
)

// Store implements vectorstore.Store on a local BadgerDB backend.
// Search is a full scan over stored records; suitable for the asset counts
// this system handles (thousands, not millions).
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a vector store on the given backend.
func NewStore(backend *Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	s := &Store{
		backend: backend,
		logger:  slog.Default().With("component", "badger-vectorstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases resources. The backend is owned by the caller and is not
// closed here.
func (s *Store) Close() error {
	return nil
}

// Upsert writes an embedding record, overwriting any prior record under the
// same id (last write wins).
func (s *Store) Upsert(ctx context.Context, id core.ContentID, vector []float32, metadata map[string]string) error {
	if strings.TrimSpace(string(id)) == "" {
		return fmt.Errorf("%w: empty content id", vectorstore.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", vectorstore.ErrInvalidQuery)
	}

	record := &core.EmbeddingRecord{
		ContentID: id,
		Vector:    vector,
		Metadata:  metadata,
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeRecordKey(id), vectorstore.MarshalRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %w", vectorstore.ErrUnavailable, id, err)
	}
	return nil
}

// Retrieve returns the vector for the first present id, trying ids in order.
// A match against any id after the first is a legacy hit and is logged as a
// migration warning.
func (s *Store) Retrieve(ctx context.Context, ids ...core.ContentID) ([]float32, core.ContentID, error) {
	if len(ids) == 0 {
		return nil, "", fmt.Errorf("%w: no ids given", vectorstore.ErrInvalidQuery)
	}

	var vector []float32
	var foundID core.ContentID

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for i, id := range ids {
			record, err := readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if i > 0 {
				s.logger.Warn("record matched by legacy id; re-ingest to migrate",
					"primaryID", ids[0], "legacyID", id)
			}
			vector = record.Vector
			foundID = id
			return nil
		}
		return vectorstore.ErrNotFound
	}, false)

	if err != nil {
		if err == vectorstore.ErrNotFound {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: retrieve: %w", vectorstore.ErrUnavailable, err)
	}
	return vector, foundID, nil
}

// Search scans all records and returns up to limit hits ranked by cosine
// similarity descending. A zero scoreThreshold disables threshold filtering;
// a non-empty filter requires metadata equality on every pair.
func (s *Store) Search(ctx context.Context, query []float32, limit int, scoreThreshold float32, filter map[string]string) ([]vectorstore.ScoredRecord, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", vectorstore.ErrInvalidQuery)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", vectorstore.ErrInvalidQuery)
	}

	var results []vectorstore.ScoredRecord

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = vectorstore.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			if !matchesFilter(record.Metadata, filter) {
				continue
			}

			score := core.CosineSimilarity(query, record.Vector)
			if scoreThreshold != 0 && score < scoreThreshold {
				continue
			}

			results = append(results, vectorstore.ScoredRecord{
				ContentID: record.ContentID,
				Score:     score,
				Metadata:  record.Metadata,
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", vectorstore.ErrUnavailable, err)
	}

	// Sort by similarity descending; stable so equal scores keep scan order
	slices.SortStableFunc(results, func(a, b vectorstore.ScoredRecord) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// matchesFilter reports whether metadata contains every key/value pair of filter.
func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// readRecord reads an embedding record from the transaction.
// Returns (nil, nil) when the key is absent.
func readRecord(tx *badger.Txn, key []byte) (*core.EmbeddingRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.EmbeddingRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = vectorstore.UnmarshalRecord(val)
		return err
	})
	return record, err
}
