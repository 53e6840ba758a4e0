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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/qabase/qabase/ai"
	"github.com/qabase/qabase/core"
	"github.com/qabase/qabase/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of entries to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of entries)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the embeddings of every entry in a collection.
type Reembedder struct {
	repo     storage.EntryRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.EntryRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		repo:     repo,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run reembeds every entry in the collection in place. Record text,
// sources and identifiers are untouched; only the vectors change.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	entries, err := r.repo.AllEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	total := len(entries)
	if total == 0 {
		fmt.Fprintf(r.progress, "No entries found in collection %q\n", r.repo.CollectionName())
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d entries (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	for start := 0; start < total; start += r.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+r.config.BatchSize, total)
		batch := entries[start:end]

		if err := r.processBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(batch)
		tracker.Update(processed)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d entries in %v (%.1f entries/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// processBatch embeds one batch with retry and writes the normalized
// vectors back under the entries' existing identifiers.
func (r *Reembedder) processBatch(ctx context.Context, batch []*core.StoredEntry) error {
	texts := make([]string, len(batch))
	for i, entry := range batch {
		texts[i] = entry.Record.EmbeddingText()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	for i := range batch {
		batch[i].Embedding = NormalizeVector(embeddings[i])
	}

	return r.repo.UpdateEmbeddings(ctx, batch...)
}
