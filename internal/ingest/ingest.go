// Package ingest reads raw references from plaintext lists, BibTeX
// databases, and PDFs, producing minimal pre-enrichment references.
package ingest

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/luiscosio/CiteIQ/internal/reference"
)

var (
	// Numbered entry start: "[12] ..." or "12. ..." at line head.
	entryStartPattern = regexp.MustCompile(`^\s*\[?(\d+)\]?\s*(.+)`)

	doiPattern   = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)
	pmidPattern  = regexp.MustCompile(`(?i)PMID\s*[:\s]\s*(\d+)`)
	arxivPattern = regexp.MustCompile(`(?i)arXiv\s*[:\s]\s*([0-9]+\.[0-9]+|[a-z-]+/[0-9]+)`)
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Plaintext reads an IEEE-style numbered reference list. An entry starts at
// a line-leading "[n]" or bare number; unnumbered lines continue the current
// entry. Identifiers and a publication year are scraped from each entry's
// text. Input without any entries falls back to blank-line chunking.
func Plaintext(r io.Reader, sourceLabel string) ([]reference.Reference, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(data)

	entries := splitNumberedEntries(text)
	if len(entries) == 0 {
		position := 0
		for _, chunk := range strings.Split(text, "\n\n") {
			chunk = strings.TrimSpace(chunk)
			if chunk == "" {
				continue
			}
			position++
			entries = append(entries, numberedEntry{index: reference.IntPtr(position), text: chunk})
		}
	}

	refs := make([]reference.Reference, 0, len(entries))
	for _, entry := range entries {
		refs = append(refs, scrapeReference(entry.text, entry.index, sourceLabel))
	}
	return refs, nil
}

// FromFile ingests one input file, choosing the parser by extension: .bib is
// BibTeX, .pdf runs text extraction first, anything else is treated as a
// plaintext reference list.
func FromFile(path string) ([]reference.Reference, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return BibTeX(f, filepath.Base(path))
	case ".pdf":
		return PDF(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return Plaintext(f, filepath.Base(path))
	}
}

type numberedEntry struct {
	index *int
	text  string
}

func splitNumberedEntries(text string) []numberedEntry {
	var entries []numberedEntry
	var index *int
	var chunks []string

	flush := func() {
		if len(chunks) == 0 {
			return
		}
		entries = append(entries, numberedEntry{index: index, text: strings.Join(chunks, " ")})
		chunks = nil
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		m := entryStartPattern.FindStringSubmatch(line)
		if m == nil {
			chunks = append(chunks, line)
			continue
		}
		flush()
		n, _ := strconv.Atoi(m[1])
		index = reference.IntPtr(n)
		if remainder := strings.TrimSpace(m[2]); remainder != "" {
			chunks = append(chunks, remainder)
		}
	}
	flush()
	return entries
}

// scrapeReference builds the minimal pre-enrichment reference for one entry.
func scrapeReference(text string, index *int, sourceLabel string) reference.Reference {
	ref := reference.Reference{
		Raw:         text,
		Index:       index,
		SourceFile:  sourceLabel,
		Identifiers: scrapeIdentifiers(text),
	}
	if m := yearPattern.FindString(text); m != "" {
		if year, err := strconv.Atoi(m); err == nil {
			ref.Year = year
		}
	}
	return ref
}

// scrapeIdentifiers pulls the first DOI, PMID, and arXiv id plus every URL
// out of raw reference text.
func scrapeIdentifiers(text string) []reference.Identifier {
	var ids []reference.Identifier
	if m := doiPattern.FindString(text); m != "" {
		ids = append(ids, reference.Identifier{Type: "DOI", Value: m})
	}
	if m := pmidPattern.FindStringSubmatch(text); m != nil {
		ids = append(ids, reference.Identifier{Type: "PMID", Value: m[1]})
	}
	if m := arxivPattern.FindStringSubmatch(text); m != nil {
		ids = append(ids, reference.Identifier{Type: "arXiv", Value: m[1]})
	}
	for _, m := range urlPattern.FindAllString(text, -1) {
		ids = append(ids, reference.Identifier{Type: "URL", Value: m})
	}
	return ids
}
