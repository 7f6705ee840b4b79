package badger

import (
	"context"
	"testing"

	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	store, err := NewStore(backend)
	require.NoError(t, err)
	return store
}

func mustID(t *testing.T, uri string) core.ContentID {
	t.Helper()
	id, err := core.ContentIDFromURI(uri)
	require.NoError(t, err)
	return id
}

func TestStore_UpsertRetrieveRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id := mustID(t, "s3://bucket/input_001.png")
	vector := []float32{0.125, -0.25, 0.5, 0.9375}
	metadata := map[string]string{
		core.MetaFilename: "input_001.png",
		core.MetaKind:     string(core.AssetKindSource),
	}

	require.NoError(t, store.Upsert(ctx, id, vector, metadata))

	got, foundID, err := store.Retrieve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, foundID)
	// Bit-for-bit identical: no dimension correction happened in the store
	assert.Equal(t, vector, got)
}

func TestStore_Upsert_LastWriteWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id := mustID(t, "s3://bucket/input_001.png")
	require.NoError(t, store.Upsert(ctx, id, []float32{1, 0, 0}, nil))
	require.NoError(t, store.Upsert(ctx, id, []float32{0, 1, 0}, nil))

	got, _, err := store.Retrieve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, got)
}

func TestStore_Upsert_Validation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, "", []float32{1}, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidQuery)

	err = store.Upsert(ctx, "some-id", nil, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidQuery)
}

func TestStore_Retrieve_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, _, err := store.Retrieve(context.Background(), mustID(t, "s3://bucket/missing.png"))
	assert.ErrorIs(t, err, vectorstore.ErrNotFound)
}

func TestStore_Retrieve_LegacyFallback(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	uri := "s3://bucket/input_001.png"
	legacy := core.LegacyContentID(uri)
	primary := mustID(t, uri)

	// Record exists only under the legacy id, as if written by the old scheme.
	require.NoError(t, store.Upsert(ctx, legacy, []float32{0.5, 0.5}, nil))

	got, foundID, err := store.Retrieve(ctx, primary, legacy)
	require.NoError(t, err)
	assert.Equal(t, legacy, foundID)
	assert.Equal(t, []float32{0.5, 0.5}, got)
}

func TestStore_Retrieve_PrimaryPreferred(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	uri := "s3://bucket/input_001.png"
	legacy := core.LegacyContentID(uri)
	primary := mustID(t, uri)

	require.NoError(t, store.Upsert(ctx, legacy, []float32{1, 0}, nil))
	require.NoError(t, store.Upsert(ctx, primary, []float32{0, 1}, nil))

	got, foundID, err := store.Retrieve(ctx, primary, legacy)
	require.NoError(t, err)
	assert.Equal(t, primary, foundID)
	assert.Equal(t, []float32{0, 1}, got)
}

func TestStore_Search_RanksByCosineDescending(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, mustID(t, "a"), []float32{1, 0, 0}, nil))
	require.NoError(t, store.Upsert(ctx, mustID(t, "b"), []float32{0.9, 0.1, 0}, nil))
	require.NoError(t, store.Upsert(ctx, mustID(t, "c"), []float32{0, 0, 1}, nil))

	results, err := store.Search(ctx, []float32{1, 0, 0}, 10, 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, mustID(t, "a"), results[0].ContentID)
	assert.Equal(t, mustID(t, "b"), results[1].ContentID)
	assert.Equal(t, mustID(t, "c"), results[2].ContentID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
}

func TestStore_Search_ThresholdAndLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, mustID(t, "a"), []float32{1, 0}, nil))
	require.NoError(t, store.Upsert(ctx, mustID(t, "b"), []float32{0.7, 0.7}, nil))
	require.NoError(t, store.Upsert(ctx, mustID(t, "c"), []float32{0, 1}, nil))

	// Threshold filters out the orthogonal record
	results, err := store.Search(ctx, []float32{1, 0}, 10, 0.5, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Zero threshold means no filtering
	results, err = store.Search(ctx, []float32{1, 0}, 10, 0, nil)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// Limit truncates after ranking
	results, err = store.Search(ctx, []float32{1, 0}, 1, 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, mustID(t, "a"), results[0].ContentID)
}

func TestStore_Search_MetadataFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, mustID(t, "src"), []float32{1, 0},
		map[string]string{core.MetaKind: "source"}))
	require.NoError(t, store.Upsert(ctx, mustID(t, "gen"), []float32{1, 0},
		map[string]string{core.MetaKind: "generated"}))

	results, err := store.Search(ctx, []float32{1, 0}, 10, 0,
		map[string]string{core.MetaKind: "generated"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, mustID(t, "gen"), results[0].ContentID)
	assert.Equal(t, "generated", results[0].Metadata[core.MetaKind])
}

func TestStore_Search_Validation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Search(ctx, nil, 10, 0, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidQuery)

	_, err = store.Search(ctx, []float32{1}, 0, 0, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidQuery)
}
