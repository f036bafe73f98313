package ingest

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/luiscosio/CiteIQ/internal/reference"
)

var (
	// Entry start: @type{key,
	bibEntryPattern = regexp.MustCompile(`^\s*@(\w+)\s*\{\s*([^,\s{}]*)\s*,?`)
	// Field line: name = {value} or name = "value" or a bare value,
	// optionally ending in a comma.
	bibFieldPattern = regexp.MustCompile(`^\s*(\w+)\s*=\s*(.+?)\s*,?\s*$`)
)

// BibTeX reads a BibTeX database. Fields must sit on a single line, which
// covers tool-exported bibliographies; @comment, @string, and @preamble
// blocks are skipped. The raw text falls back from the note field to the
// title to the citation key.
func BibTeX(r io.Reader, sourceLabel string) ([]reference.Reference, error) {
	var refs []reference.Reference

	var entryType, entryKey string
	fields := make(map[string]string)
	inEntry := false

	flush := func() {
		if !inEntry {
			return
		}
		refs = append(refs, bibtexReference(entryType, entryKey, fields, sourceLabel))
		fields = make(map[string]string)
		inEntry = false
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if m := bibEntryPattern.FindStringSubmatch(line); m != nil {
			flush()
			entryType = strings.ToLower(m[1])
			entryKey = m[2]
			switch entryType {
			case "comment", "string", "preamble":
				continue
			}
			inEntry = true
			continue
		}
		if !inEntry {
			continue
		}
		if m := bibFieldPattern.FindStringSubmatch(line); m != nil {
			fields[strings.ToLower(m[1])] = stripBibDelims(m[2])
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

func bibtexReference(entryType, key string, fields map[string]string, sourceLabel string) reference.Reference {
	title := fields["title"]

	raw := fields["note"]
	if raw == "" {
		raw = title
	}
	if raw == "" {
		raw = key
	}

	var ids []reference.Identifier
	if doi := fields["doi"]; doi != "" {
		ids = append(ids, reference.Identifier{Type: "DOI", Value: doi})
	}
	if url := fields["url"]; url != "" {
		ids = append(ids, reference.Identifier{Type: "URL", Value: url})
	}

	venue := fields["booktitle"]
	if venue == "" {
		venue = fields["journal"]
	}

	ref := reference.Reference{
		Raw:         raw,
		SourceFile:  sourceLabel,
		Title:       title,
		Venue:       venue,
		Publisher:   fields["publisher"],
		Type:        entryType,
		Identifiers: ids,
		URL:         fields["url"],
	}
	if year, err := strconv.Atoi(fields["year"]); err == nil {
		ref.Year = year
	}
	if issn := fields["issn"]; issn != "" {
		ref.ISSNISBN = []string{issn}
	}
	return ref
}

// stripBibDelims removes brace or quote wrapping, one level at a time, plus
// any trailing comma.
func stripBibDelims(value string) string {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ","))
	for len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '{' && last == '}') || (first == '"' && last == '"') {
			value = strings.TrimSpace(value[1 : len(value)-1])
			continue
		}
		break
	}
	return value
}
