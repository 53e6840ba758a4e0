package extract

import (
	"os"
	"strings"
)

// readText loads a plain text file, dropping any invalid UTF-8 sequences
// rather than failing on them.
func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}
