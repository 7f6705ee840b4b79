package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/vectorstore"
)

const (
	defaultReviewThreshold = 0.7
	weightTolerance        = 1e-6
)

// Weights distributes the contribution of each scoring factor to a
// candidate's final score. The three weights must sum to 1.0.
type Weights struct {
	Embedding float64
	Filename  float64
	Metadata  float64
}

// DefaultWeights returns the standard factor distribution.
func DefaultWeights() Weights {
	return Weights{Embedding: 0.6, Filename: 0.2, Metadata: 0.2}
}

func (w Weights) validate() error {
	sum := w.Embedding + w.Filename + w.Metadata
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: got %.6f", ErrInvalidWeights, sum)
	}
	return nil
}

// PairRequest describes one pairing computation.
type PairRequest struct {
	// Source is the descriptor of the asset to pair from. Its embedding
	// drives the candidate search.
	Source *core.Descriptor

	// SourceID excludes the source itself from the candidate pool.
	SourceID core.ContentID

	// SourceFilename feeds the filename and metadata scoring factors.
	SourceFilename string

	// CandidatesOfKind restricts candidates to one asset kind.
	CandidatesOfKind core.AssetKind

	// TopK bounds how many targets the resulting pair may name.
	TopK int

	// MinConfidence discards candidates whose final score falls below it.
	MinConfidence float64
}

func (r *PairRequest) validate() error {
	if r.Source == nil || len(r.Source.Embedding) == 0 {
		return fmt.Errorf("%w: source descriptor with embedding required", core.ErrInvalidInput)
	}
	if r.CandidatesOfKind == "" {
		return fmt.Errorf("%w: candidate kind required", core.ErrInvalidInput)
	}
	if r.TopK < 1 {
		return fmt.Errorf("%w: topK must be at least 1", core.ErrInvalidInput)
	}
	return nil
}

// candidate is the transient scoring record for one search hit.
type candidate struct {
	id             core.ContentID
	embeddingScore float64
	filenameScore  float64
	metadataScore  float64
	finalScore     float64
}

// Engine matches source assets to stored candidates by a weighted
// combination of embedding, filename, and metadata similarity. An Engine
// is stateless apart from read-only store access; concurrent Pair calls
// are safe.
type Engine struct {
	store           vectorstore.Store
	weights         Weights
	reviewThreshold float64
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithWeights overrides the default factor weights.
func WithWeights(weights Weights) Option {
	return func(e *Engine) error {
		if err := weights.validate(); err != nil {
			return err
		}
		e.weights = weights
		return nil
	}
}

// WithReviewThreshold sets the confidence below which a computed pair is
// flagged for human review. Default is 0.7.
func WithReviewThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: review threshold must be in [0,1]", core.ErrInvalidInput)
		}
		e.reviewThreshold = threshold
		return nil
	}
}

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

// NewEngine creates a pairing engine.
func NewEngine(store vectorstore.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	e := &Engine{
		store:           store,
		weights:         DefaultWeights(),
		reviewThreshold: defaultReviewThreshold,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Pair finds the best candidate targets for the request's source asset.
// An empty candidate pool is a valid outcome and yields (nil, nil).
func (e *Engine) Pair(ctx context.Context, req *PairRequest) (*core.Pair, error) {
	return e.PairWithMonitor(ctx, req, nil)
}

// PairWithMonitor runs Pair with monitoring. The monitor receives callbacks
// at each stage of the pairing computation.
func (e *Engine) PairWithMonitor(ctx context.Context, req *PairRequest, monitor PairMonitor) (*core.Pair, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", core.ErrInvalidInput)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	monitor.Start(req.SourceID)

	// Over-fetch beyond topK: re-ranking by the combined score can promote
	// hits the raw similarity ranking placed lower.
	filter := map[string]string{core.MetaKind: string(req.CandidatesOfKind)}
	hits, err := e.store.Search(ctx, req.Source.Embedding, 2*req.TopK, 0, filter)
	if err != nil {
		e.logger.Error("candidate search failed", "source_id", req.SourceID, "err", err)
		return nil, err
	}
	monitor.AfterCandidateSearch(hits)

	kept := make([]candidate, 0, len(hits))
	for _, hit := range hits {
		if hit.ContentID == req.SourceID {
			continue
		}

		c := candidate{
			id:             hit.ContentID,
			embeddingScore: clamp01(float64(hit.Score)),
			filenameScore:  filenameSimilarity(req.SourceFilename, hit.Metadata[core.MetaFilename]),
			metadataScore: metadataCorrelation(req.SourceFilename,
				hit.Metadata[core.MetaDescription], hit.Metadata[core.MetaProvenance]),
		}
		c.finalScore = e.weights.Embedding*c.embeddingScore +
			e.weights.Filename*c.filenameScore +
			e.weights.Metadata*c.metadataScore
		monitor.CandidateScored(c.id, c.embeddingScore, c.filenameScore, c.metadataScore, c.finalScore)

		if c.finalScore < req.MinConfidence {
			monitor.CandidateDiscarded(c.id, c.finalScore)
			continue
		}
		kept = append(kept, c)
	}

	// Stable sort: ties preserve the store's similarity ranking order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].finalScore > kept[j].finalScore
	})
	if len(kept) > req.TopK {
		kept = kept[:req.TopK]
	}

	if len(kept) == 0 {
		monitor.Finish(nil)
		return nil, nil
	}

	targets := make([]core.ContentID, len(kept))
	var total float64
	for i, c := range kept {
		targets[i] = c.id
		total += c.finalScore
	}
	confidence := total / float64(len(kept))

	pair := &core.Pair{
		SourceContentID:  req.SourceID,
		TargetContentIDs: targets,
		Confidence:       confidence,
		NeedsReview:      confidence < e.reviewThreshold,
	}
	monitor.Finish(pair)

	return pair, nil
}
