// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Describer, ai.Embedder,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	text, err := mockProvider.Describer().Describe(ctx, assetBytes)
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockDescriber: Returns a deterministic description based on the content hash
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockProvider: Aggregates mock describer and embedder
package mock
