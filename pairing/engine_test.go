package pairing

import (
	"context"
	"sync"
	"testing"

	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore scripts Search results and records the queries it receives.
type fakeStore struct {
	mu         sync.Mutex
	hits       []vectorstore.ScoredRecord
	searchErr  error
	lastLimit  int
	lastFilter map[string]string
}

var _ vectorstore.Store = (*fakeStore)(nil)

func (f *fakeStore) Upsert(context.Context, core.ContentID, []float32, map[string]string) error {
	return nil
}

func (f *fakeStore) Retrieve(context.Context, ...core.ContentID) ([]float32, core.ContentID, error) {
	return nil, "", vectorstore.ErrNotFound
}

func (f *fakeStore) Search(_ context.Context, _ []float32, limit int, _ float32, filter map[string]string) ([]vectorstore.ScoredRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.lastLimit = limit
	f.lastFilter = filter
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeStore) Close() error { return nil }

func hit(id string, score float32, filename, description string) vectorstore.ScoredRecord {
	return vectorstore.ScoredRecord{
		ContentID: core.ContentID(id),
		Score:     score,
		Metadata: map[string]string{
			core.MetaFilename:    filename,
			core.MetaKind:        string(core.AssetKindGenerated),
			core.MetaDescription: description,
		},
	}
}

func sourceRequest(topK int, minConfidence float64) *PairRequest {
	return &PairRequest{
		Source:           &core.Descriptor{Text: "src", Embedding: []float32{1, 0, 0}},
		SourceID:         "source-id",
		SourceFilename:   "input_001.png",
		CandidatesOfKind: core.AssetKindGenerated,
		TopK:             topK,
		MinConfidence:    minConfidence,
	}
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewEngine(&fakeStore{}, WithWeights(Weights{Embedding: 0.5, Filename: 0.2, Metadata: 0.2}))
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = NewEngine(&fakeStore{}, WithWeights(DefaultWeights()))
	assert.NoError(t, err)

	_, err = NewEngine(&fakeStore{}, WithReviewThreshold(1.5))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestPairRanksByFinalScore(t *testing.T) {
	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		// Highest raw similarity but unrelated filename.
		hit("cand-a", 0.95, "output_999_z.png", "a watercolor landscape"),
		// Slightly lower similarity but shares the numeric token and the
		// description mentions the source stem.
		hit("cand-b", 0.90, "output_001_a.png", "derived from input 001"),
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(2, 0))
	require.NoError(t, err)
	require.NotNil(t, pair)

	// cand-a: 0.6*0.95 + 0.2*0 + 0.2*0    = 0.570
	// cand-b: 0.6*0.90 + 0.2*0.7 + 0.2*1  = 0.880
	assert.Equal(t, []core.ContentID{"cand-b", "cand-a"}, pair.TargetContentIDs)
	assert.InDelta(t, 0.725, pair.Confidence, 1e-6)
}

func TestPairProvenanceCarriesMetadataSignal(t *testing.T) {
	// Equal similarity, unrelated filenames, empty descriptions: the only
	// discriminating signal is the provenance URI written at ingestion.
	withProvenance := hit("cand-far", 0.8, "render_a.png", "")
	withProvenance.Metadata[core.MetaProvenance] = "file:///assets/input_001.png"
	withoutProvenance := hit("cand-near", 0.8, "render_b.png", "")
	withoutProvenance.Metadata[core.MetaProvenance] = "file:///assets/unrelated.png"

	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		withoutProvenance,
		withProvenance,
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(2, 0))
	require.NoError(t, err)
	require.NotNil(t, pair)

	// cand-far: 0.6*0.8 + 0.2*0 + 0.2*1.0 = 0.68
	// cand-near: 0.6*0.8 + 0.2*0 + 0.2*0  = 0.48
	assert.Equal(t, []core.ContentID{"cand-far", "cand-near"}, pair.TargetContentIDs)
	assert.InDelta(t, 0.58, pair.Confidence, 1e-6)
}

func TestPairOverFetchesAndFilters(t *testing.T) {
	store := &fakeStore{}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	_, err = engine.Pair(context.Background(), sourceRequest(5, 0))
	require.NoError(t, err)

	assert.Equal(t, 10, store.lastLimit)
	assert.Equal(t, string(core.AssetKindGenerated), store.lastFilter[core.MetaKind])
}

func TestPairEmptyPoolIsNotAnError(t *testing.T) {
	engine, err := NewEngine(&fakeStore{})
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(3, 0))
	assert.NoError(t, err)
	assert.Nil(t, pair)
}

func TestPairExcludesSelfMatch(t *testing.T) {
	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		hit("source-id", 1.0, "input_001.png", ""),
		hit("cand-a", 0.8, "output_001.png", ""),
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(2, 0))
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.Equal(t, []core.ContentID{"cand-a"}, pair.TargetContentIDs)
}

func TestPairDiscardsBelowMinConfidence(t *testing.T) {
	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		hit("cand-a", 0.9, "output_001_a.png", "derived from input 001"),
		hit("cand-b", 0.1, "output_999_z.png", ""),
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(2, 0.5))
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.Equal(t, []core.ContentID{"cand-a"}, pair.TargetContentIDs)
}

func TestPairAllDiscardedYieldsNoPair(t *testing.T) {
	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		hit("cand-a", 0.1, "output_999_z.png", ""),
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(2, 0.9))
	assert.NoError(t, err)
	assert.Nil(t, pair)
}

func TestPairTruncatesToTopK(t *testing.T) {
	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		hit("cand-a", 0.95, "output_001_a.png", "input 001"),
		hit("cand-b", 0.90, "output_001_b.png", "input 001"),
		hit("cand-c", 0.85, "output_001_c.png", "input 001"),
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(2, 0))
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.Len(t, pair.TargetContentIDs, 2)
	assert.Equal(t, core.ContentID("cand-a"), pair.TargetContentIDs[0])
}

func TestPairTiesPreserveStoreRanking(t *testing.T) {
	// Identical metadata on every hit makes the final scores depend only
	// on the (equal) similarity scores; ordering must follow the store.
	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		hit("cand-a", 0.8, "output_001_a.png", "input 001"),
		hit("cand-b", 0.8, "output_001_b.png", "input 001"),
		hit("cand-c", 0.8, "output_001_c.png", "input 001"),
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(3, 0))
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.Equal(t, []core.ContentID{"cand-a", "cand-b", "cand-c"}, pair.TargetContentIDs)
}

func TestPairFlagsLowConfidenceForReview(t *testing.T) {
	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		hit("cand-a", 0.5, "output_999_z.png", ""),
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	pair, err := engine.Pair(context.Background(), sourceRequest(1, 0))
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.True(t, pair.NeedsReview)

	store.hits = []vectorstore.ScoredRecord{
		hit("cand-a", 1.0, "output_001_a.png", "derived from input 001"),
	}
	pair, err = engine.Pair(context.Background(), sourceRequest(1, 0))
	require.NoError(t, err)
	require.NotNil(t, pair)

	// 0.6*1.0 + 0.2*0.7 + 0.2*1.0 = 0.94 >= 0.7
	assert.False(t, pair.NeedsReview)
}

func TestPairPropagatesStoreFailure(t *testing.T) {
	store := &fakeStore{searchErr: vectorstore.ErrUnavailable}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	_, err = engine.Pair(context.Background(), sourceRequest(1, 0))
	assert.ErrorIs(t, err, vectorstore.ErrUnavailable)
}

func TestPairRequestValidation(t *testing.T) {
	engine, err := NewEngine(&fakeStore{})
	require.NoError(t, err)

	_, err = engine.Pair(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	req := sourceRequest(1, 0)
	req.Source = nil
	_, err = engine.Pair(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	req = sourceRequest(0, 0)
	_, err = engine.Pair(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	req = sourceRequest(1, 0)
	req.CandidatesOfKind = ""
	_, err = engine.Pair(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

type recordingMonitor struct {
	started   bool
	searched  int
	scored    []core.ContentID
	discarded []core.ContentID
	finished  *core.Pair
}

var _ PairMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(core.ContentID) { m.started = true }
func (m *recordingMonitor) AfterCandidateSearch(hits []vectorstore.ScoredRecord) {
	m.searched = len(hits)
}
func (m *recordingMonitor) CandidateScored(id core.ContentID, _, _, _, _ float64) {
	m.scored = append(m.scored, id)
}
func (m *recordingMonitor) CandidateDiscarded(id core.ContentID, _ float64) {
	m.discarded = append(m.discarded, id)
}
func (m *recordingMonitor) Finish(pair *core.Pair) { m.finished = pair }

func TestPairWithMonitorCallbacks(t *testing.T) {
	store := &fakeStore{hits: []vectorstore.ScoredRecord{
		hit("cand-a", 0.9, "output_001_a.png", "input 001"),
		hit("cand-b", 0.1, "output_999_z.png", ""),
	}}

	engine, err := NewEngine(store)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	pair, err := engine.PairWithMonitor(context.Background(), sourceRequest(2, 0.5), monitor)
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.True(t, monitor.started)
	assert.Equal(t, 2, monitor.searched)
	assert.Equal(t, []core.ContentID{"cand-a", "cand-b"}, monitor.scored)
	assert.Equal(t, []core.ContentID{"cand-b"}, monitor.discarded)
	assert.Same(t, pair, monitor.finished)
}
