package ingest

import (
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/luiscosio/CiteIQ/internal/reference"
)

// pdfMaxPages bounds how many pages are scanned for the reference list.
const pdfMaxPages = 50

// referenceHeadings are the section titles that mark the reference list.
var referenceHeadings = []string{"references", "bibliography", "works cited"}

// PDF extracts text from a PDF, locates the reference section, and runs the
// plaintext splitter over it. Without a recognizable section heading the
// whole document text is used.
func PDF(path string) ([]reference.Reference, error) {
	text, err := pdfText(path, pdfMaxPages)
	if err != nil {
		return nil, err
	}
	return Plaintext(strings.NewReader(referencesSection(text)), filepath.Base(path))
}

// pdfText concatenates plain text from the first maxPages pages. Pages that
// fail text extraction are skipped.
func pdfText(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// referencesSection returns the text after the last reference-section
// heading, or the full text when no heading is found. Headings must be
// short standalone lines so body sentences mentioning references do not
// trigger; numbered forms like "7. References" count.
func referencesSection(text string) string {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		heading := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(line)), ":")
		if len(heading) > 24 {
			continue
		}
		for _, want := range referenceHeadings {
			if heading == want || strings.HasSuffix(heading, " "+want) || strings.HasSuffix(heading, "."+want) {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return text
	}
	return strings.Join(lines[start+1:], "\n")
}
