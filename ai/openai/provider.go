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


package openai

import (
	"log/slog"

	"github.com/poiesic/assetmatch/ai"
	"golang.org/x/time/rate"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages describer and embedder instances, optionally throttling
// outbound calls through a shared rate limiter.
type Provider struct {
	config    *ai.Config
	describer *Describer
	embedder  *Embedder
	logger    *slog.Logger
}

// Option configures a Provider.
type Option func(*providerOptions)

type providerOptions struct {
	limiter *rate.Limiter
}

// WithRequestsPerSecond throttles describe and embed calls to at most rps
// requests per second, shared across both services. Zero or negative rps
// disables throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(o *providerOptions) {
		if rps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...Option) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	options := &providerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	describer, err := newDescriber(config, options.limiter)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config, options.limiter)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		describer: describer,
		embedder:  embedder,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Describer returns the asset description service.
func (p *Provider) Describer() ai.Describer {
	return p.describer
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
