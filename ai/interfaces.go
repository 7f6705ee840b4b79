package ai

import "context"

// Describer produces a textual description of a visual asset.
// Implementations must be thread-safe for concurrent use.
type Describer interface {
	// Describe analyzes raw asset bytes and returns a natural-language
	// description suitable for embedding.
	// Returns an error if description generation fails.
	Describe(ctx context.Context, data []byte) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Describer and Embedder instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Describer returns the asset description service.
	// The returned Describer is safe for concurrent use.
	Describer() Describer

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
