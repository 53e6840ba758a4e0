package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// readPDF extracts the plain text of every page, joined in page order.
func readPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
