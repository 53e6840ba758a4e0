// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder and
// ai.EmbeddingProvider for use in unit tests. The mocks allow tests to run
// without an external embedding service and enable controlled, deterministic
// behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embedding, err := mockProvider.Embedder().EmbedText(ctx, "test")
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
// MockEmbedder returns deterministic vectors derived from a hash of the
// input text, so identical texts always embed identically.
package mock
