// Package retrieval implements embedding-based semantic search over a
// collection of question/answer records.
//
// The Retriever embeds records on the way in and queries on the way out,
// delegating persistence and nearest-neighbor lookup to a
// storage.EntryRepository. Scores are similarities in [0,1]; hits below
// the caller's threshold are never returned.
package retrieval
