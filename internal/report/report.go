// Package report renders scored records as CSV, JSONL, and a Markdown
// quality report.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/luiscosio/CiteIQ/internal/citation"
)

// Columns is the CSV header: the flattened reference fields followed by the
// score components.
var Columns = []string{
	"index",
	"raw",
	"title",
	"authors",
	"year",
	"venue",
	"publisher",
	"type",
	"doi",
	"identifiers",
	"issn_isbn",
	"is_open_access",
	"best_oa_location",
	"citation_count",
	"topics",
	"flags",
	"score_total",
	"score_provenance",
	"score_metadata",
	"score_currency",
	"score_reliability",
	"score_impact",
	"score_type",
	"score_penalties",
}

// CSV writes records as a table ordered by descending total score.
func CSV(w io.Writer, records []*citation.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, record := range byScore(records) {
		if err := cw.Write(csvRow(record)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONL writes one JSON document per record, keeping the input order so the
// dump reflects the pipeline's sort mode.
func JSONL(w io.Writer, records []*citation.Record) error {
	enc := json.NewEncoder(w)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return nil
}

// byScore copies records into descending total-score order; ties keep their
// input order.
func byScore(records []*citation.Record) []*citation.Record {
	out := make([]*citation.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Total() > out[j].Score.Total()
	})
	return out
}

func csvRow(record *citation.Record) []string {
	ref := record.Reference

	index := ""
	if ref.Index != nil {
		index = strconv.Itoa(*ref.Index)
	}
	year := ""
	if ref.Year != 0 {
		year = strconv.Itoa(ref.Year)
	}
	openAccess := ""
	if ref.IsOpenAccess != nil {
		openAccess = strconv.FormatBool(*ref.IsOpenAccess)
	}
	citationCount := ""
	if ref.CitationCount != nil {
		citationCount = strconv.Itoa(*ref.CitationCount)
	}

	authors := make([]string, 0, len(ref.Authors))
	for _, author := range ref.Authors {
		authors = append(authors, author.Name)
	}
	identifiers := make([]string, 0, len(ref.Identifiers))
	for _, id := range ref.Identifiers {
		identifiers = append(identifiers, id.Type+":"+id.Value)
	}
	flags := make([]string, 0, len(record.Flags))
	for _, flag := range record.Flags {
		flags = append(flags, string(flag))
	}

	return []string{
		index,
		ref.Raw,
		ref.Title,
		strings.Join(authors, "; "),
		year,
		ref.Venue,
		ref.Publisher,
		ref.Type,
		ref.DOI(),
		strings.Join(identifiers, "; "),
		strings.Join(ref.ISSNISBN, "; "),
		openAccess,
		ref.BestOALocation,
		citationCount,
		strings.Join(ref.Topics, "; "),
		strings.Join(flags, "; "),
		formatScore(record.Score.Total()),
		formatScore(record.Score.Provenance),
		formatScore(record.Score.MetadataConsistency),
		formatScore(record.Score.Currency),
		formatScore(record.Score.Reliability),
		formatScore(record.Score.Impact),
		formatScore(record.Score.TypeBonus),
		formatScore(record.Score.Penalties),
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
