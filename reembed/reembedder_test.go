package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qabase/qabase/ai/mock"
	"github.com/qabase/qabase/core"
	"github.com/qabase/qabase/storage"
	"github.com/qabase/qabase/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) storage.EntryRepository {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository("security_qa")
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func seedEntries(t *testing.T, repo storage.EntryRepository, n int) []*core.StoredEntry {
	t.Helper()

	entries := make([]*core.StoredEntry, n)
	for i := range entries {
		entries[i] = &core.StoredEntry{
			Record: core.QARecord{
				Question: "What is safeguard " + string(rune('A'+i)) + "?",
				Answer:   "A named control in the policy.",
				Source:   "policy.txt",
			},
			Embedding: []float32{9, 9, 9},
		}
	}
	added, err := repo.AddEntries(context.Background(), entries...)
	require.NoError(t, err)
	return added
}

func TestReembedder_Run(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	seedEntries(t, repo, 10)

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), config, &buf)
	require.NoError(t, reembedder.Run(ctx))

	updated, err := repo.AllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, updated, 10)

	for _, entry := range updated {
		require.NotEmpty(t, entry.Embedding)

		// Old placeholder vectors are gone and the new ones are normalized
		var magnitude float64
		for _, v := range entry.Embedding {
			magnitude += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, magnitude, 1e-5)
	}

	assert.Contains(t, buf.String(), "Reembedding complete")
}

func TestReembedder_EmptyCollection(t *testing.T) {
	repo := setupTestRepository(t)

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, reembedder.Run(context.Background()))

	assert.Contains(t, buf.String(), "No entries found")
}

func TestReembedder_RetriesTransientFailures(t *testing.T) {
	repo := setupTestRepository(t)
	seedEntries(t, repo, 2)

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient embedding failure")
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}

	var buf bytes.Buffer
	config := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 3, RetryDelay: time.Millisecond}
	reembedder := NewReembedder(repo, embedder, config, &buf)
	require.NoError(t, reembedder.Run(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestReembedder_GivesUpAfterMaxRetries(t *testing.T) {
	repo := setupTestRepository(t)
	seedEntries(t, repo, 1)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	var buf bytes.Buffer
	config := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond}
	reembedder := NewReembedder(repo, embedder, config, &buf)

	err := reembedder.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}
