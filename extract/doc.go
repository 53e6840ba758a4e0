// Package extract reads question/answer pairs out of knowledge base
// documents.
//
// The Extractor type handles PDF, Word, Excel, CSV and plain text files.
// Structured formats (Excel sheets and CSV files with recognizable
// question/answer columns) are read row by row; everything else is
// flattened to text and scanned with a cascade of Q&A labeling patterns,
// with a paragraph fallback for documents that carry no labels at all.
//
// Directory sweeps run concurrently using a worker pool. Errors in a
// single file are logged and skipped so one bad document never aborts a
// whole ingestion run.
package extract
