// Copyright 2026 Qabase Authors
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


package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/qabase/qabase/ai"
	"github.com/qabase/qabase/core"
	"github.com/qabase/qabase/storage"
)

const (
	// DefaultBatchSize is the number of records embedded per round trip
	// when none is specified.
	DefaultBatchSize = 100

	// DefaultTopK is the default maximum number of search results.
	DefaultTopK = 5

	// DefaultScoreThreshold admits every hit; callers raise it to trim
	// weak matches.
	DefaultScoreThreshold = 0.0
)

// Retriever provides embedding-based ingestion and search over a Q&A
// collection.
type Retriever struct {
	repository storage.EntryRepository
	embedder   ai.Embedder
	logger     *slog.Logger

	// mu serializes mutating operations. Searches run lock-free against
	// the repository's snapshot isolation.
	mu sync.Mutex
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever over the given repository,
// embedding texts with the provider's embedder.
func NewRetriever(
	repository storage.EntryRepository,
	provider ai.EmbeddingProvider,
	opts ...Option,
) (*Retriever, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		repository: repository,
		embedder:   provider.Embedder(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// AddRecords embeds and stores records in batches, returning the number
// stored. Records are trimmed and validated before embedding; a zero or
// negative batchSize falls back to DefaultBatchSize. An empty input is a
// no-op.
func (r *Retriever) AddRecords(ctx context.Context, records []core.QARecord, batchSize int) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := 0
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		batch := records[start:end]

		texts := make([]string, len(batch))
		entries := make([]*core.StoredEntry, len(batch))
		for i, record := range batch {
			trimmed := record.Trimmed()
			if err := core.ValidateQARecord(&trimmed); err != nil {
				return stored, err
			}
			texts[i] = trimmed.EmbeddingText()
			entries[i] = &core.StoredEntry{Record: trimmed}
		}

		embeddings, err := r.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			r.logger.Error("error embedding records", "batch", len(batch), "err", err)
			return stored, err
		}
		if len(embeddings) != len(batch) {
			return stored, ErrEmbeddingMismatch
		}
		for i := range entries {
			entries[i].Embedding = embeddings[i]
		}

		if _, err := r.repository.AddEntries(ctx, entries...); err != nil {
			r.logger.Error("error storing records", "batch", len(batch), "err", err)
			return stored, err
		}

		stored += len(batch)
		r.logger.Info("stored records", "progress", stored, "total", len(records))
	}

	return stored, nil
}

// Search returns up to topK records similar to the query, best first.
// Hits scoring below threshold are dropped. Searching an empty
// collection returns an empty slice.
func (r *Retriever) Search(ctx context.Context, query string, topK int, threshold float32) ([]*core.SearchResult, error) {
	return r.SearchWithMonitor(ctx, query, topK, threshold, nil)
}

// SearchWithMonitor is Search with observation hooks. The monitor
// receives callbacks at each stage of the search.
func (r *Retriever) SearchWithMonitor(ctx context.Context, query string, topK int, threshold float32, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	monitor.Start(query)

	count, err := r.repository.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		r.logger.Info("collection is empty, nothing to search",
			"collection", r.repository.CollectionName())
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error embedding query", "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(vector)

	matches, err := r.repository.NearestNeighbors(ctx, vector, topK)
	if err != nil {
		r.logger.Error("error querying nearest neighbors", "err", err)
		return nil, err
	}
	monitor.AfterNearestNeighbors(matches)

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		score := 1 - match.Distance
		if score < threshold {
			continue
		}
		results = append(results, &core.SearchResult{
			Question: match.Entry.Record.Question,
			Answer:   match.Entry.Record.Answer,
			Source:   match.Entry.Record.Source,
			Score:    score,
		})
	}

	monitor.Finish(results)
	return results, nil
}

// Clear removes every record in the collection and resets identifier
// numbering.
func (r *Retriever) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("clearing collection", "collection", r.repository.CollectionName())
	return r.repository.DeleteAll(ctx)
}

// Stats returns a snapshot of the collection.
func (r *Retriever) Stats(ctx context.Context) (*core.Stats, error) {
	count, err := r.repository.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &core.Stats{
		Count:          count,
		CollectionName: r.repository.CollectionName(),
		Directory:      r.repository.Directory(),
	}, nil
}

// SourceCounts returns the number of stored records per provenance label.
func (r *Retriever) SourceCounts(ctx context.Context) (map[string]int, error) {
	return r.repository.SourceCounts(ctx)
}
