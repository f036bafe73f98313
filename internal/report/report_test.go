package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/luiscosio/CiteIQ/internal/citation"
	"github.com/luiscosio/CiteIQ/internal/reference"
)

func sampleRecords() []*citation.Record {
	low := &citation.Record{
		Reference: reference.Reference{
			Raw:   "[2] Unresolvable entry",
			Index: reference.IntPtr(2),
		},
		Score: citation.Score{Penalties: -30},
		Flags: []citation.Flag{citation.FlagDOIUnresolved},
	}
	high := &citation.Record{
		Reference: reference.Reference{
			Raw:        "[1] A. Smith, Sampling, 2021.",
			Index:      reference.IntPtr(1),
			Title:      "Sampling",
			Authors:    []reference.Author{{Name: "A. Smith"}, {Name: "B. Jones"}},
			Year:       2021,
			Venue:      "J. Complex Netw.",
			Type:       "journal-article",
			Identifiers: []reference.Identifier{
				{Type: "DOI", Value: "10.1/abc"},
				{Type: "URL", Value: "https://example.org"},
			},
			ISSNISBN:      []string{"1234-5678"},
			IsOpenAccess:  reference.BoolPtr(true),
			CitationCount: reference.IntPtr(12),
			Topics:        []string{"networks"},
		},
		Score: citation.Score{Provenance: 15, MetadataConsistency: 20, Currency: 15, Reliability: 18},
	}
	return []*citation.Record{low, high}
}

func TestCSV_ScoreOrderAndCells(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus two records", len(rows))
	}
	for i, want := range Columns {
		if rows[0][i] != want {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], want)
		}
	}

	// Highest total first.
	first := rows[1]
	if first[0] != "1" {
		t.Errorf("index cell = %q, want the high scorer first", first[0])
	}
	if first[3] != "A. Smith; B. Jones" {
		t.Errorf("authors cell = %q", first[3])
	}
	if first[8] != "10.1/abc" {
		t.Errorf("doi cell = %q", first[8])
	}
	if first[9] != "DOI:10.1/abc; URL:https://example.org" {
		t.Errorf("identifiers cell = %q", first[9])
	}
	if first[11] != "true" {
		t.Errorf("is_open_access cell = %q", first[11])
	}
	if first[13] != "12" {
		t.Errorf("citation_count cell = %q", first[13])
	}
	if first[16] != "68" {
		t.Errorf("score_total cell = %q, want plain integer formatting", first[16])
	}

	second := rows[2]
	if second[4] != "" || second[11] != "" || second[13] != "" {
		t.Errorf("optional cells = %q/%q/%q, want empty", second[4], second[11], second[13])
	}
	if second[15] != "doi_unresolved" {
		t.Errorf("flags cell = %q", second[15])
	}
	if second[23] != "-30" {
		t.Errorf("score_penalties cell = %q", second[23])
	}
}

func TestJSONL_KeepsInputOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONL(&buf, sampleRecords()); err != nil {
		t.Fatalf("JSONL() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var first citation.Record
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 not valid JSON: %v", err)
	}
	// Input order preserved: the low scorer was passed first.
	if first.Reference.Raw != "[2] Unresolvable entry" {
		t.Errorf("first line raw = %q, want input order kept", first.Reference.Raw)
	}
	var second citation.Record
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 not valid JSON: %v", err)
	}
	if second.Reference.Title != "Sampling" {
		t.Errorf("second line title = %q", second.Reference.Title)
	}
}
