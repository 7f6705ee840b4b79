// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package assetmatch is a content-addressable embedding store and
// similarity-pairing engine for visual assets. The Library facade opens
// the local store and AI provider and hands out the ingestion, pairing,
// and clustering components wired to them.
package assetmatch

import (
	"log/slog"

	"github.com/poiesic/assetmatch/ai"
	"github.com/poiesic/assetmatch/ai/openai"
	"github.com/poiesic/assetmatch/clustering"
	"github.com/poiesic/assetmatch/descriptor"
	"github.com/poiesic/assetmatch/ingestion"
	"github.com/poiesic/assetmatch/pairing"
	"github.com/poiesic/assetmatch/vectorstore"
	"github.com/poiesic/assetmatch/vectorstore/badger"
)

// Library bundles the vector store, AI provider, and descriptor cache
// shared by the matching components.
type Library struct {
	backend  *badger.Backend
	store    vectorstore.Store
	provider ai.Provider
	cache    *descriptor.Cache
	logger   *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the provider configuration used when no provider is
// injected.
func WithAIConfig(config *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects an already-constructed AI provider instead of
// building one from config. The Library takes ownership and closes it.
func WithProvider(provider ai.Provider) LibraryOption {
	return func(o *libraryOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the store in memory, discarding all data on Close.
func WithInMemory() LibraryOption {
	return func(o *libraryOptions) {
		o.inMemory = true
	}
}

// Open creates a Library backed by the store at filePath.
func Open(filePath string, opts ...LibraryOption) (*Library, error) {
	options := &libraryOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	logger := slog.Default()
	cache := descriptor.NewCache(
		descriptor.WithDimension(options.aiConfig.Dimension),
		descriptor.WithLogger(logger),
	)

	return &Library{
		backend:  backend,
		store:    store,
		provider: provider,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Close releases the provider and the underlying store.
func (l *Library) Close() error {
	if err := l.provider.Close(); err != nil {
		l.logger.Error("error closing AI provider", "err", err)
	}
	if err := l.store.Close(); err != nil {
		l.logger.Error("error closing vector store", "err", err)
	}
	if err := l.backend.Close(); err != nil {
		l.logger.Error("error closing storage backend", "err", err)
		return err
	}
	return nil
}

// VectorStore returns the store shared by all components.
func (l *Library) VectorStore() vectorstore.Store {
	return l.store
}

// Provider returns the AI provider shared by all components.
func (l *Library) Provider() ai.Provider {
	return l.provider
}

// NewIngestionPipeline creates an ingestion pipeline on the library's store,
// provider, and descriptor cache.
func (l *Library) NewIngestionPipeline(materializer ingestion.Materializer, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithCache(l.cache),
		ingestion.WithLogger(l.logger),
	}
	return ingestion.NewPipeline(l.store, l.provider, materializer, append(base, opts...)...)
}

// NewPairingEngine creates a pairing engine on the library's store.
func (l *Library) NewPairingEngine(opts ...pairing.Option) (*pairing.Engine, error) {
	return pairing.NewEngine(l.store, opts...)
}

// NewClusteringEngine creates a clustering engine on the library's store.
func (l *Library) NewClusteringEngine(opts ...clustering.Option) (*clustering.Engine, error) {
	return clustering.NewEngine(l.store, opts...)
}
