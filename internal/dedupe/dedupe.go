// Package dedupe flags likely duplicate records across a scored set.
package dedupe

import (
	"github.com/luiscosio/CiteIQ/internal/citation"
	"github.com/luiscosio/CiteIQ/internal/reference"
	"github.com/luiscosio/CiteIQ/internal/similarity"
)

// Threshold is the token-sort similarity at or above which two records are
// treated as likely duplicates.
const Threshold = 0.95

// Detect flags likely duplicates and returns the matched index pairs in
// detection order. Two passes run over the set: records sharing a DOI
// (case-insensitive) pair with the first record that carried it, then every
// unordered pair is compared by token-sort similarity over the title, falling
// back to the raw text. The passes are independent, so a pair matching both
// is reported twice; AddFlag keeps each record's possible_duplicate flag
// single. Pair indices refer to positions in the input slice.
func Detect(records []*citation.Record) []citation.DuplicatePair {
	var pairs []citation.DuplicatePair

	seen := make(map[string]int)
	for idx, record := range records {
		doi := record.Reference.DOI()
		if doi == "" {
			continue
		}
		key := reference.NormalizeDOI(doi)
		first, ok := seen[key]
		if !ok {
			seen[key] = idx
			continue
		}
		pairs = append(pairs, citation.DuplicatePair{First: first, Second: idx})
		records[first].AddFlag(citation.FlagPossibleDuplicate)
		records[idx].AddFlag(citation.FlagPossibleDuplicate)
	}

	for i := range records {
		textI := titleOrRaw(records[i])
		for j := i + 1; j < len(records); j++ {
			if similarity.TokenSortRatio(textI, titleOrRaw(records[j])) < Threshold {
				continue
			}
			pairs = append(pairs, citation.DuplicatePair{First: i, Second: j})
			records[i].AddFlag(citation.FlagPossibleDuplicate)
			records[j].AddFlag(citation.FlagPossibleDuplicate)
		}
	}

	return pairs
}

func titleOrRaw(record *citation.Record) string {
	if record.Reference.Title != "" {
		return record.Reference.Title
	}
	return record.Reference.Raw
}
