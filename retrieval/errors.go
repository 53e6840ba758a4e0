package retrieval

import "errors"

var (
	// ErrRepositoryRequired is returned when an entry repository is not provided.
	ErrRepositoryRequired = errors.New("entry repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyQuery is returned when a search query is empty or whitespace.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrInvalidTopK is returned when the requested result count is not positive.
	ErrInvalidTopK = errors.New("top-k must be positive")

	// ErrEmbeddingMismatch is returned when the embedder returns a different
	// number of vectors than texts submitted.
	ErrEmbeddingMismatch = errors.New("embedding count does not match record count")
)
