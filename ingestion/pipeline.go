package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/assetmatch/ai"
	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/descriptor"
	"github.com/poiesic/assetmatch/vectorstore"
)

const (
	defaultConcurrency = 8
	defaultBatchSize   = 32
	defaultCallTimeout = 60 * time.Second
)

// Pipeline ingests assets with bounded concurrency: each asset is
// materialized, described, embedded, and stored. A single asset failure
// never aborts the batch or other in-flight workers.
type Pipeline struct {
	store        vectorstore.Store
	provider     ai.Provider
	materializer Materializer
	provenance   ProvenanceSink
	cache        *descriptor.Cache
	pool         *ants.Pool
	batchSize    int
	callTimeout  time.Duration
	overwrite    bool
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is 8, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize bounds how many tasks are dispatched per wave; the next
// wave starts once the previous one has fully terminated. Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithCallTimeout bounds every external call (materialize, describe,
// embed, store) issued by a worker. Default is 60 seconds.
func WithCallTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: call timeout must be positive", core.ErrInvalidInput)
		}
		p.callTimeout = timeout
		return nil
	}
}

// WithOverwrite forces re-materialization even when a local copy of the
// asset already exists. Default is false.
func WithOverwrite(overwrite bool) Option {
	return func(p *Pipeline) error {
		p.overwrite = overwrite
		return nil
	}
}

// WithProvenanceSink sets the sink that receives one tuple per stored
// asset. Sink failures are logged, never treated as ingestion failures.
func WithProvenanceSink(sink ProvenanceSink) Option {
	return func(p *Pipeline) error {
		p.provenance = sink
		return nil
	}
}

// WithCache sets the descriptor cache shared across batches. Default is a
// fresh cache with default bounds.
func WithCache(cache *descriptor.Cache) Option {
	return func(p *Pipeline) error {
		if cache != nil {
			p.cache = cache
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	store vectorstore.Store,
	provider ai.Provider,
	materializer Materializer,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if materializer == nil {
		return nil, ErrMaterializerRequired
	}

	pool, err := ants.NewPool(defaultConcurrency)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:        store,
		provider:     provider,
		materializer: materializer,
		pool:         pool,
		batchSize:    defaultBatchSize,
		callTimeout:  defaultCallTimeout,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.cache == nil {
		p.cache = descriptor.NewCache(descriptor.WithLogger(p.logger))
	}

	return p, nil
}

// Ingest processes the assets and returns a manifest with a terminal
// outcome for every one of them. Cancelling ctx stops the dispatch of new
// tasks; already-dispatched tasks run to completion and are recorded, and
// undispatched assets are recorded as failed.
func (p *Pipeline) Ingest(ctx context.Context, assets []*core.Asset) *Manifest {
	manifest := &Manifest{}

	for start := 0; start < len(assets); start += p.batchSize {
		end := min(start+p.batchSize, len(assets))

		var wg sync.WaitGroup
		for _, asset := range assets[start:end] {
			if ctx.Err() != nil {
				manifest.addFailed(asset, StagePending, ErrCanceled)
				continue
			}

			wg.Add(1)
			a := asset
			if err := p.pool.Submit(func() {
				defer wg.Done()
				p.process(ctx, a, manifest)
			}); err != nil {
				wg.Done()
				manifest.addFailed(a, StagePending, err)
			}
		}
		wg.Wait()
	}

	return manifest
}

// callContext detaches from ctx's cancellation so a task dispatched before
// cancellation finishes its current call, bounded only by the call timeout.
func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), p.callTimeout)
}

func (p *Pipeline) process(ctx context.Context, asset *core.Asset, manifest *Manifest) {
	if err := core.ValidateAsset(asset); err != nil {
		manifest.addFailed(asset, StagePending, err)
		return
	}

	path, err := p.materialize(ctx, asset)
	if err != nil {
		manifest.addFailed(asset, StageMaterializing, err)
		return
	}

	desc, err := p.describeAndEmbed(ctx, path)
	if err != nil {
		stage := StageDescribing
		if errors.Is(err, ai.ErrEmbedFailed) {
			stage = StageEmbedding
		}
		manifest.addFailed(asset, stage, err)
		return
	}

	id, err := core.ContentIDFromURI(asset.URI)
	if err != nil {
		manifest.addFailed(asset, StageStoring, err)
		return
	}

	metadata := map[string]string{
		core.MetaFilename:    asset.Filename,
		core.MetaKind:        string(asset.Kind),
		core.MetaDescription: desc.Text,
		core.MetaProvenance:  asset.URI,
	}

	storeCtx, cancel := p.callContext(ctx)
	defer cancel()
	if err := p.store.Upsert(storeCtx, id, desc.Embedding, metadata); err != nil {
		manifest.addFailed(asset, StageStoring, err)
		return
	}

	p.emitProvenance(ctx, asset, id, desc.Text)
	manifest.addSucceeded(id)
	p.logger.Debug("asset stored", "content_id", id, "filename", asset.Filename)
}

func (p *Pipeline) materialize(ctx context.Context, asset *core.Asset) (string, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	path, exists, err := p.materializer.Exists(callCtx, asset)
	if err != nil {
		return "", err
	}
	if exists && !p.overwrite {
		return path, nil
	}

	matCtx, matCancel := p.callContext(ctx)
	defer matCancel()
	return p.materializer.Materialize(matCtx, asset)
}

func (p *Pipeline) describeAndEmbed(ctx context.Context, path string) (*core.Descriptor, error) {
	return p.cache.GetOrCompute(ctx, path,
		func(c context.Context) (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			callCtx, cancel := p.callContext(c)
			defer cancel()
			return p.provider.Describer().Describe(callCtx, data)
		},
		func(c context.Context, text string) ([]float32, error) {
			callCtx, cancel := p.callContext(c)
			defer cancel()
			return p.provider.Embedder().EmbedText(callCtx, text)
		})
}

func (p *Pipeline) emitProvenance(ctx context.Context, asset *core.Asset, id core.ContentID, description string) {
	if p.provenance == nil {
		return
	}

	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	tuple := core.ProvenanceTuple{
		ContentID:   id,
		URI:         asset.URI,
		Kind:        asset.Kind,
		Description: description,
		ByteSize:    asset.ByteSize,
	}
	if err := p.provenance.Record(callCtx, tuple); err != nil {
		p.logger.Warn("provenance sink rejected tuple", "content_id", id, "err", err)
	}
}

// Release releases the worker pool. The pipeline must not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
