package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("doc.pdf"))
	assert.True(t, IsSupported("DOC.XLSX"))
	assert.True(t, IsSupported("notes.txt"))
	assert.False(t, IsSupported("archive.zip"))
	assert.False(t, IsSupported("noextension"))
}

func TestExtractFile_Text(t *testing.T) {
	e := newTestExtractor(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "crypto.txt",
		"Q: What is encryption?\nA: It is data obfuscation using keys.")

	records, err := e.ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "What is encryption?", records[0].Question)
	assert.Equal(t, "crypto.txt", records[0].Source)
}

func TestExtractFile_Idempotent(t *testing.T) {
	e := newTestExtractor(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "crypto.txt",
		"Q: What is encryption?\nA: It is data obfuscation using keys.")

	first, err := e.ExtractFile(path)
	require.NoError(t, err)
	second, err := e.ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractFile_UnsupportedFormat(t *testing.T) {
	e := newTestExtractor(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "archive.zip", "not a document")

	_, err := e.ExtractFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractFile_CSVWithHeaders(t *testing.T) {
	e := newTestExtractor(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "faq.csv",
		"質問,回答\n暗号化とは何ですか,鍵でデータを秘匿する技術です\nnan,空の行はスキップされます\n")

	records, err := e.ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "暗号化とは何ですか", records[0].Question)
	assert.Equal(t, "鍵でデータを秘匿する技術です", records[0].Answer)
	assert.Equal(t, "faq.csv", records[0].Source)
}

func TestExtractFile_CSVShiftJIS(t *testing.T) {
	e := newTestExtractor(t)
	dir := t.TempDir()

	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(),
		"質問,回答\nパスワードの最小長は,十二文字以上が推奨されます\n")
	require.NoError(t, err)
	path := writeFile(t, dir, "legacy.csv", encoded)

	records, err := e.ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "パスワードの最小長は", records[0].Question)
}

func TestExtractDirectory(t *testing.T) {
	e := newTestExtractor(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Q: What is a honeypot system?\nA: A decoy host set up to attract attackers.")
	writeFile(t, dir, "b.txt", "Q: What does TLS protect against?\nA: Eavesdropping and tampering in transit.")
	writeFile(t, dir, "ignored.bin", "binary junk")

	results, err := e.ExtractDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// WalkDir visits lexically, so order is stable.
	assert.Equal(t, filepath.Join(dir, "a.txt"), results[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.txt"), results[1].Path)

	records := Flatten(results)
	require.Len(t, records, 2)
	assert.Equal(t, "What is a honeypot system?", records[0].Question)
	assert.Equal(t, "What does TLS protect against?", records[1].Question)
}

func TestExtractDirectory_Missing(t *testing.T) {
	e := newTestExtractor(t)

	_, err := e.ExtractDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrDirectoryNotFound)
}

func TestExtractDirectory_BadFileDoesNotAbort(t *testing.T) {
	e := newTestExtractor(t)
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", "this is not a pdf")
	writeFile(t, dir, "ok.txt", "Q: What is least privilege about?\nA: Granting only the access a task needs.")

	results, err := e.ExtractDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)

	records := Flatten(results)
	require.Len(t, records, 1)
	assert.Equal(t, "What is least privilege about?", records[0].Question)
}
