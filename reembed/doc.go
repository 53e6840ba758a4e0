// Package reembed provides functionality for reembedding stored Q&A
// entries with a new or updated embedding model.
//
// Switching embedding models invalidates every stored vector; this
// package regenerates them in place without touching the record text or
// identifiers. It supports batch processing, progress tracking, retry
// logic with exponential backoff, and vector normalization to keep
// cosine similarity search well behaved.
package reembed
