package mock

import (
	"context"
	"math"

	"github.com/qabase/qabase/core"
)

// defaultDimension is the width of generated vectors, matching the
// output width of the default embedding model.
const defaultDimension = 768

// MockEmbedder is a test double for ai.Embedder. Behavior can be
// overridden per test via the function fields; when they are nil, every
// call yields a deterministic unit vector derived from the input text.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockEmbedder().
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns a deterministic embedding for the text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return textVector(text), nil
}

// EmbedTexts returns deterministic embeddings, index-aligned with texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = textVector(text)
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// textVector derives a unit vector from the text's content ID, so
// identical texts always embed identically and distinct texts almost
// never collide.
func textVector(text string) []float32 {
	state := uint64(core.IDFromContent(text))
	if state == 0 {
		state = 1 // xorshift never leaves zero
	}

	vector := make([]float32, defaultDimension)
	var sumSquares float64
	for i := range vector {
		// xorshift64 step per element
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v := float32(state%2000)/1000.0 - 1.0
		vector[i] = v
		sumSquares += float64(v) * float64(v)
	}

	if sumSquares > 0 {
		scale := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= scale
		}
	}

	return vector
}
