package extract

import (
	"fmt"
	"strings"

	"github.com/qabase/qabase/core"
	"github.com/xuri/excelize/v2"
)

// readExcel processes every sheet of a workbook. Sheets whose header row
// names a question and an answer column yield one record per data row;
// any other sheet is flattened to text and run through the pattern
// cascade. The source label carries both the file and the sheet name.
func readExcel(path, fileName string) ([]core.QARecord, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	var records []core.QARecord
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		source := fmt.Sprintf("%s - %s", fileName, sheet)

		questionCol, answerCol, ok := findQAColumns(rows[0])
		if ok {
			records = append(records, rowsToRecords(rows[1:], questionCol, answerCol, source)...)
			continue
		}

		records = append(records, ExtractPairs(serializeRows(rows), source)...)
	}

	return records, nil
}

// rowsToRecords turns data rows into records, skipping rows where either
// cell is absent or holds a null marker.
func rowsToRecords(rows [][]string, questionCol, answerCol int, source string) []core.QARecord {
	var records []core.QARecord
	for _, row := range rows {
		question := cellAt(row, questionCol)
		answer := cellAt(row, answerCol)
		if isMissing(question) || isMissing(answer) {
			continue
		}

		records = append(records, core.QARecord{
			Question: strings.TrimSpace(question),
			Answer:   strings.TrimSpace(answer),
			Source:   source,
		})
	}
	return records
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

// serializeRows renders a table as tab-separated lines for the pattern
// cascade.
func serializeRows(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return strings.Join(lines, "\n")
}
