package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entries.
// Primary entry IDs come from a persisted database sequence; content-based
// IDs (IDFromContent) are used for secondary index keys.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// QARecord is the atomic unit of knowledge: a curated question, its
// approved answer, and a provenance label (file name, optionally
// qualified by sheet or section).
type QARecord struct {
	Question string
	Answer   string
	Source   string
}

// EmbeddingText returns the composite text that is embedded for this
// record. Question and answer are combined so a query can match either.
func (r QARecord) EmbeddingText() string {
	return "question: " + r.Question + "\nanswer: " + r.Answer
}

// Trimmed returns a copy of the record with question, answer and source
// trimmed of surrounding whitespace.
func (r QARecord) Trimmed() QARecord {
	return QARecord{
		Question: strings.TrimSpace(r.Question),
		Answer:   strings.TrimSpace(r.Answer),
		Source:   strings.TrimSpace(r.Source),
	}
}

// StoredEntry is the persisted form of a QARecord plus retrieval metadata.
// Record text is immutable after insertion; the embedding may be rewritten
// when the collection is migrated to a new embedding model.
type StoredEntry struct {
	Id         ID
	Record     QARecord
	Embedding  []float32 // fixed-dimension vector produced from EmbeddingText
	InsertedAt time.Time
}

// EntryMatch pairs a stored entry with its distance to a query vector.
// Smaller distance means more similar.
type EntryMatch struct {
	Entry    *StoredEntry
	Distance float32
}

// SearchResult is the caller-facing hit shape. It copies the matched
// entry's metadata and carries a similarity score of 1 - distance.
// The score is nominally in [0,1] but callers must tolerate out-of-range
// values when the underlying distance is not bounded.
type SearchResult struct {
	Question string
	Answer   string
	Source   string
	Score    float32
}

// Stats is a read-only snapshot of a collection.
type Stats struct {
	Count          int
	CollectionName string
	Directory      string
}
