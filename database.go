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


package qabase

import (
	"context"
	"log/slog"
	"os"

	"github.com/qabase/qabase/ai"
	"github.com/qabase/qabase/ai/openai"
	"github.com/qabase/qabase/extract"
	"github.com/qabase/qabase/retrieval"
	"github.com/qabase/qabase/storage"
	"github.com/qabase/qabase/storage/badger"
)

// DefaultCollection is the collection used when none is specified.
const DefaultCollection = "security_qa"

// Database is the top-level entry point. It owns the storage backend,
// the entry repository for one collection and the embedding provider,
// and hands out retrievers and extractors built on them.
type Database struct {
	backend  *badger.Backend
	entries  storage.EntryRepository
	provider ai.EmbeddingProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	collection string
	aiConfig   *ai.Config
	provider   ai.EmbeddingProvider
}

// WithCollection selects the collection name.
// Default is DefaultCollection.
func WithCollection(name string) DatabaseOption {
	return func(o *databaseOptions) {
		o.collection = name
	}
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a pre-built embedding provider, bypassing the
// OpenAI-compatible default. Used mainly for testing with mocks.
func WithProvider(provider ai.EmbeddingProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// Open opens or creates a database at filePath.
func Open(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		collection: DefaultCollection,
		aiConfig:   ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	entries, err := badger.NewEntryRepository(backend, options.collection)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			entries.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		entries:  entries,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.entries.Close(); err != nil {
		db.logger.Error("error closing entry repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Entries returns the entry repository for the open collection.
func (db *Database) Entries() storage.EntryRepository {
	return db.entries
}

// NewRetriever builds a retriever over the open collection.
func (db *Database) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(db.entries, db.provider, opts...)
}

// NewExtractor builds a document extractor.
func (db *Database) NewExtractor(opts ...extract.Option) (*extract.Extractor, error) {
	return extract.New(opts...)
}

// BuildResult summarizes an ingestion run.
type BuildResult struct {
	Files   []extract.FileResult
	Stored  int
	Skipped int
}

// BuildFromDirectory extracts every supported document under dataDir and
// stores the resulting records. When clearExisting is true the collection
// is emptied first, which also resets identifier numbering.
func BuildFromDirectory(ctx context.Context, db *Database, dataDir string, clearExisting bool, batchSize int) (*BuildResult, error) {
	return BuildFromPaths(ctx, db, []string{dataDir}, clearExisting, batchSize)
}

// BuildFromPaths extracts the given documents and stores the resulting
// records. Each path may be a single file or a directory swept
// recursively. A path that does not exist fails the whole run; a file
// that fails to parse is recorded in its FileResult and skipped.
func BuildFromPaths(ctx context.Context, db *Database, paths []string, clearExisting bool, batchSize int) (*BuildResult, error) {
	retriever, err := db.NewRetriever()
	if err != nil {
		return nil, err
	}

	extractor, err := db.NewExtractor()
	if err != nil {
		return nil, err
	}
	defer extractor.Release()

	if clearExisting {
		if err := retriever.Clear(ctx); err != nil {
			return nil, err
		}
	}

	var files []extract.FileResult
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			results, err := extractor.ExtractDirectory(ctx, path)
			if err != nil {
				return nil, err
			}
			files = append(files, results...)
			continue
		}

		records, extractErr := extractor.ExtractFile(path)
		if extractErr != nil {
			db.logger.Error("skipping document", "path", path, "err", extractErr)
		}
		files = append(files, extract.FileResult{Path: path, Records: records, Err: extractErr})
	}

	skipped := 0
	for _, file := range files {
		if file.Err != nil {
			skipped++
		}
	}

	stored, err := retriever.AddRecords(ctx, extract.Flatten(files), batchSize)
	if err != nil {
		return nil, err
	}

	return &BuildResult{Files: files, Stored: stored, Skipped: skipped}, nil
}
