package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedText(ctx, "What is encryption?")
	require.NoError(t, err)
	second, err := embedder.EmbedText(ctx, "What is encryption?")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := embedder.EmbedText(ctx, "How are backups handled?")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
	assert.Equal(t, 3, embedder.CallCount())
}

func TestMockEmbedder_UnitVectors(t *testing.T) {
	embedder := NewMockEmbedder()

	vectors, err := embedder.EmbedTexts(context.Background(), []string{
		"question: A\nanswer: B",
		"データの暗号化方式は？",
		"",
	})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, vector := range vectors {
		require.Len(t, vector, defaultDimension)

		var sumSquares float64
		for _, v := range vector {
			sumSquares += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-3, "vector %d", i)
	}
}

func TestMockEmbedder_Injection(t *testing.T) {
	embedder := NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.5, 0.5}, nil
	}

	vector, err := embedder.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vector)

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())
	assert.Nil(t, embedder.EmbedTextFunc)
}
