package assetmatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/assetmatch/ai/mock"
	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/ingestion"
	"github.com/poiesic/assetmatch/pairing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func writeSourceAssets(t *testing.T, dir string, names ...string) []*core.Asset {
	t.Helper()
	assets := make([]*core.Asset, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("pixels of "+name), 0o644))
		assets[i] = &core.Asset{
			URI:      "file://" + path,
			Filename: name,
			ByteSize: int64(len(name)),
			Kind:     core.AssetKindSource,
		}
	}
	return assets
}

func TestLibraryIngestPairCluster(t *testing.T) {
	lib := openTestLibrary(t)

	srcDir := t.TempDir()
	mat, err := ingestion.NewLocalMaterializer(t.TempDir())
	require.NoError(t, err)

	names := make([]string, 6)
	for i := range names {
		names[i] = fmt.Sprintf("frame_%03d.png", i+1)
	}
	assets := writeSourceAssets(t, srcDir, names...)
	// Mark half the batch as generated candidates.
	for i := 3; i < 6; i++ {
		assets[i].Kind = core.AssetKindGenerated
	}

	pipeline, err := lib.NewIngestionPipeline(mat)
	require.NoError(t, err)
	defer pipeline.Release()

	manifest := pipeline.Ingest(context.Background(), assets)
	require.Len(t, manifest.Succeeded(), 6)
	require.Empty(t, manifest.Failed())

	// Pairing runs against the same store the pipeline wrote to.
	sourceID, err := core.ContentIDFromURI(assets[0].URI)
	require.NoError(t, err)
	vector, _, err := lib.VectorStore().Retrieve(context.Background(), sourceID)
	require.NoError(t, err)

	engine, err := lib.NewPairingEngine()
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), &pairing.PairRequest{
		Source:           &core.Descriptor{Embedding: vector},
		SourceID:         sourceID,
		SourceFilename:   assets[0].Filename,
		CandidatesOfKind: core.AssetKindGenerated,
		TopK:             2,
		MinConfidence:    0,
	})
	require.NoError(t, err)
	if pair != nil {
		assert.Equal(t, sourceID, pair.SourceContentID)
		assert.NotEmpty(t, pair.TargetContentIDs)
	}

	// Clustering over everything that was stored.
	clusterer, err := lib.NewClusteringEngine()
	require.NoError(t, err)

	ids := manifest.Succeeded()
	clusters, noise, err := clusterer.Cluster(context.Background(), ids, 0.99, 2)
	require.NoError(t, err)
	assert.Equal(t, len(ids), countMembers(clusters)+len(noise))
}

func countMembers(clusters [][]core.ContentID) int {
	total := 0
	for _, c := range clusters {
		total += len(c)
	}
	return total
}

func TestLibraryCloseIsIdempotentPerComponent(t *testing.T) {
	lib, err := Open("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	assert.NoError(t, lib.Close())
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	lib, err := Open(filepath.Join(dir, "store"), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer lib.Close()

	id, err := core.ContentIDFromURI("s3://assets/persisted.png")
	require.NoError(t, err)
	require.NoError(t, lib.VectorStore().Upsert(context.Background(), id,
		[]float32{1, 2, 3}, map[string]string{core.MetaKind: "source"}))

	vector, matched, err := lib.VectorStore().Retrieve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, matched)
	assert.Equal(t, []float32{1, 2, 3}, vector)
}
