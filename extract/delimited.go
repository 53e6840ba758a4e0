package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/qabase/qabase/core"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// readDelimited processes a CSV file. Headers naming question and answer
// columns give one record per data row; anything else is flattened and
// run through the pattern cascade. Files that are not valid UTF-8 are
// retried as Shift-JIS, the usual encoding of Japanese spreadsheet
// exports.
func readDelimited(path, fileName string) ([]core.QARecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(raw) {
		decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
		if err != nil {
			return nil, fmt.Errorf("decode shift-jis: %w", err)
		}
		raw = decoded
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	questionCol, answerCol, ok := findQAColumns(rows[0])
	if ok {
		return rowsToRecords(rows[1:], questionCol, answerCol, fileName), nil
	}

	return ExtractPairs(serializeRows(rows), fileName), nil
}
