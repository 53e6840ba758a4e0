package extract

import "strings"

// ColumnKind classifies a tabular header as a question column, an answer
// column, or neither.
type ColumnKind int

const (
	ColumnNone ColumnKind = iota
	ColumnQuestion
	ColumnAnswer
)

var questionKeywords = []string{"質問", "q", "question", "query"}
var answerKeywords = []string{"回答", "a", "answer", "response"}

// ClassifyColumn decides what a header cell names. Matching is
// case-insensitive substring containment, and question keywords take
// precedence over answer keywords.
func ClassifyColumn(header string) ColumnKind {
	lower := strings.ToLower(header)
	for _, keyword := range questionKeywords {
		if strings.Contains(lower, keyword) {
			return ColumnQuestion
		}
	}
	for _, keyword := range answerKeywords {
		if strings.Contains(lower, keyword) {
			return ColumnAnswer
		}
	}
	return ColumnNone
}

// findQAColumns locates the question and answer columns in a header row.
// When several headers match a kind, the rightmost one wins. Returns
// (-1, -1, false) when either column is missing.
func findQAColumns(headers []string) (questionCol, answerCol int, ok bool) {
	questionCol, answerCol = -1, -1
	for i, header := range headers {
		switch ClassifyColumn(header) {
		case ColumnQuestion:
			questionCol = i
		case ColumnAnswer:
			answerCol = i
		}
	}
	if questionCol < 0 || answerCol < 0 {
		return -1, -1, false
	}
	return questionCol, answerCol, true
}

// isMissing reports whether a cell holds no usable value. Spreadsheet
// exports routinely render empty cells as the literal string "nan".
func isMissing(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	return trimmed == "" || strings.EqualFold(trimmed, "nan")
}
