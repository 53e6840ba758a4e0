package badger

import (
	"encoding/binary"

	"github.com/qabase/qabase/core"
)

// Key layout. Every key is namespaced by collection so multiple
// collections can share one directory and be dropped independently:
//
//	c:{collection}:ent:{id}        -> marshaled StoredEntry
//	c:{collection}:src:{hash}{id}  -> source label (secondary index)
//	c:{collection}:entseq          -> badger sequence state
const (
	entrySegment    = "ent:"
	sourceSegment   = "src:"
	sequenceSegment = "entseq"
)

// collectionPrefix returns the namespace prefix for a collection.
// Dropping this prefix erases the collection including its sequence.
func collectionPrefix(collection string) []byte {
	return []byte("c:" + collection + ":")
}

// entryPrefix returns the prefix under which all entries of a collection live.
func entryPrefix(collection string) []byte {
	return append(collectionPrefix(collection), entrySegment...)
}

// makeEntryKey generates a key for an entry by ID.
// IDs are big-endian so iteration order follows insertion order.
func makeEntryKey(collection string, id core.ID) []byte {
	prefix := entryPrefix(collection)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// sourcePrefix returns the prefix of the source secondary index.
func sourcePrefix(collection string) []byte {
	return append(collectionPrefix(collection), sourceSegment...)
}

// makeSourceKey generates a composite key for the source index.
// Format: prefix + blake2b(source) + entry id, both big-endian.
func makeSourceKey(collection string, source string, id core.ID) []byte {
	prefix := sourcePrefix(collection)
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(source)))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// sequenceKey returns the key under which the entry ID sequence lives.
func sequenceKey(collection string) []byte {
	return append(collectionPrefix(collection), sequenceSegment...)
}
