package storage

import (
	"context"

	"github.com/qabase/qabase/core"
)

// EntryRepository provides operations for a single named collection of
// stored Q&A entries inside a directory-backed vector store.
// Implementations must be thread-safe for concurrent reads; callers must
// not interleave AddEntries and DeleteAll against the same collection.
type EntryRepository interface {
	// AddEntries appends new entries to the collection.
	// IDs are assigned from a persisted sequence and InsertedAt is set.
	// Returns the entries with IDs and timestamps populated.
	AddEntries(ctx context.Context, entries ...*core.StoredEntry) ([]*core.StoredEntry, error)

	// NearestNeighbors returns up to k entries ordered by ascending
	// distance to the query vector (nearest first). Ties keep the
	// store's native key order. An empty collection yields an empty
	// slice, not an error.
	NearestNeighbors(ctx context.Context, vector []float32, k int) ([]*core.EntryMatch, error)

	// AllEntries returns every entry in the collection in key order
	// (insertion order). Intended for maintenance sweeps such as
	// re-embedding, not for serving queries.
	AllEntries(ctx context.Context) ([]*core.StoredEntry, error)

	// UpdateEmbeddings rewrites the stored embedding of existing entries
	// in place, keyed by Id. Returns ErrNotFound if any entry is not in
	// the collection. Question, answer and source are not changed.
	UpdateEmbeddings(ctx context.Context, entries ...*core.StoredEntry) error

	// DeleteAll drops every entry in the collection and resets the
	// identifier sequence. The collection remains usable under the same
	// name; subsequent adds restart numbering from the baseline.
	DeleteAll(ctx context.Context) error

	// Count returns the number of live entries in the collection.
	Count(ctx context.Context) (int, error)

	// SourceCounts returns the number of live entries per provenance
	// label, e.g. {"faq.xlsx - Sheet1": 12}.
	SourceCounts(ctx context.Context) (map[string]int, error)

	// CollectionName returns the name of the collection.
	CollectionName() string

	// Directory returns the filesystem path backing the store, or an
	// empty string for in-memory stores.
	Directory() string

	// Close releases resources held by the repository.
	Close() error
}
