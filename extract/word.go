package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// readWord extracts paragraph text followed by table contents. Table
// cells are joined with tabs so labeled rows still read as one line.
func readWord(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		if paragraph, ok := item.(*docx.Paragraph); ok {
			if text := strings.TrimSpace(paragraph.String()); text != "" {
				lines = append(lines, text)
			}
		}
	}

	for _, item := range doc.Document.Body.Items {
		table, ok := item.(*docx.Table)
		if !ok {
			continue
		}
		for _, row := range table.TableRows {
			var cells []string
			for _, cell := range row.TableCells {
				var parts []string
				for _, paragraph := range cell.Paragraphs {
					if text := strings.TrimSpace(paragraph.String()); text != "" {
						parts = append(parts, text)
					}
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			lines = append(lines, strings.Join(cells, "\t"))
		}
	}

	return strings.Join(lines, "\n"), nil
}
