package badger

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/qabase/qabase/core"
	"github.com/qabase/qabase/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
// It owns one named collection inside the backing directory.
type EntryRepository struct {
	backend    *Backend
	collection string
	idSeq      *badger.Sequence
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a repository for the named collection.
// The collection is created lazily on first write; reopening an existing
// directory with the same name finds the persisted entries and sequence.
func NewEntryRepository(backend *Backend, collection string) (*EntryRepository, error) {
	if collection == "" {
		return nil, storage.ErrEmptyCollectionName
	}

	idSeq, err := backend.GetSequence(string(sequenceKey(collection)))
	if err != nil {
		return nil, err
	}

	return &EntryRepository{
		backend:    backend,
		collection: collection,
		idSeq:      idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *EntryRepository) Close() error {
	return r.idSeq.Release()
}

// CollectionName returns the collection this repository operates on.
func (r *EntryRepository) CollectionName() string {
	return r.collection
}

// Directory returns the directory backing the store.
func (r *EntryRepository) Directory() string {
	return r.backend.Path()
}

// AddEntries appends entries to the collection. IDs come from the
// persisted sequence, so concurrent or retried batches can never collide
// the way live-count arithmetic would.
func (r *EntryRepository) AddEntries(ctx context.Context, entries ...*core.StoredEntry) ([]*core.StoredEntry, error) {
	for _, entry := range entries {
		if err := core.ValidateStoredEntry(entry); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			entry.Id = core.ID(nextID)
			entry.InsertedAt = time.Now().UTC()

			key := makeEntryKey(r.collection, entry.Id)
			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}

			srcKey := makeSourceKey(r.collection, entry.Record.Source, entry.Id)
			if err := tx.Set(srcKey, []byte(entry.Record.Source)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// NearestNeighbors scans the collection and returns up to k entries by
// ascending cosine distance. Ties keep key order (insertion order, since
// entry keys are big-endian IDs).
func (r *EntryRepository) NearestNeighbors(ctx context.Context, vector []float32, k int) ([]*core.EntryMatch, error) {
	if k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var matches []*core.EntryMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryPrefix(r.collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.StoredEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Embedding) == 0 {
				continue
			}

			matches = append(matches, &core.EntryMatch{
				Entry:    entry,
				Distance: cosineDistance(vector, entry.Embedding),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Stable: equal distances stay in key order
	slices.SortStableFunc(matches, func(a, b *core.EntryMatch) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// AllEntries returns every entry in key order. Entry keys are big-endian
// IDs, so this is insertion order.
func (r *EntryRepository) AllEntries(ctx context.Context) ([]*core.StoredEntry, error) {
	var entries []*core.StoredEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryPrefix(r.collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateEmbeddings rewrites existing entries under their current keys.
// Record text, source and InsertedAt are preserved from the stored copy;
// only the embedding changes.
func (r *EntryRepository) UpdateEmbeddings(ctx context.Context, entries ...*core.StoredEntry) error {
	for _, entry := range entries {
		if err := core.ValidateStoredEntry(entry); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			key := makeEntryKey(r.collection, entry.Id)

			item, err := tx.Get(key)
			if err != nil {
				if err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				}
				return err
			}

			var stored *core.StoredEntry
			err = item.Value(func(val []byte) error {
				var err error
				stored, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}

			stored.Embedding = entry.Embedding
			if err := tx.Set(key, storage.MarshalEntry(stored)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteAll drops the whole collection, including the sequence state, and
// recreates the sequence so numbering restarts from the reset baseline.
func (r *EntryRepository) DeleteAll(ctx context.Context) error {
	if err := r.idSeq.Release(); err != nil {
		return err
	}

	if err := r.backend.DropPrefix(collectionPrefix(r.collection)); err != nil {
		return err
	}

	idSeq, err := r.backend.GetSequence(string(sequenceKey(r.collection)))
	if err != nil {
		return err
	}
	r.idSeq = idSeq
	return nil
}

// Count returns the number of live entries.
func (r *EntryRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryPrefix(r.collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SourceCounts returns the number of live entries per source label.
func (r *EntryRepository) SourceCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = sourcePrefix(r.collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				counts[string(val)]++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// cosineDistance returns 1 - cosine similarity. Vectors with zero norm
// are treated as maximally distant.
func cosineDistance(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
