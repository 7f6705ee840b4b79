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


// Package ai provides abstractions for the AI services used by assetmatch.
//
// This package defines interfaces for describing visual assets and embedding
// the resulting text. It follows the dependency inversion principle, allowing
// the ingestion and pairing logic to depend on abstractions rather than
// concrete implementations.
//
// The package is designed around three key interfaces:
//
//   - Describer: Produces a text description of a visual asset
//   - Embedder: Generates vector embeddings from text
//   - Provider: Aggregates AI services for convenient initialization
//
// Two implementation sub-packages exist:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public openai constructors return interface types to enforce abstraction;
// mock constructors return concrete types so tests can inject behavior and
// assert call counts.
//
// Usage:
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	text, err := provider.Describer().Describe(ctx, assetBytes)
//	vector, err := provider.Embedder().EmbedText(ctx, text)
package ai
