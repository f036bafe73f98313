// Package score implements the rule-based citation quality rubric.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/luiscosio/CiteIQ/internal/citation"
	"github.com/luiscosio/CiteIQ/internal/reference"
	"github.com/luiscosio/CiteIQ/internal/similarity"
)

// Inputs carries the per-reference signals the rubric consumes. They are
// collected by the pipeline after enrichment so the scorer itself stays free
// of lookup concerns.
type Inputs struct {
	RawReference        string
	TitleForSimilarity  string
	MetadataTitle       string
	MetadataYear        int
	ParsedYear          int
	Authors             []string
	DOIResolved         bool
	HasPublishedVersion bool
	HasNewerVersion     bool
	IsPreprint          bool
	IsPeerReviewed      bool
	IsRetracted         bool
	IsOpenAccess        *bool
	IndexedIn           []string
	CitationCount       *int
}

// PeerReviewed reports whether a reference type implies peer review.
func PeerReviewed(refType string) bool {
	switch refType {
	case "journal-article", "proceedings-article", "book-chapter":
		return true
	}
	return false
}

// Scorer evaluates references against the rubric. Now is injectable so the
// currency component is testable; it defaults to the wall clock.
type Scorer struct {
	Now func() time.Time
}

// NewScorer returns a scorer using the wall clock.
func NewScorer() *Scorer {
	return &Scorer{Now: time.Now}
}

func (s *Scorer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Compute applies the rubric in its fixed order and returns the component
// score plus the flags raised along the way. The returned flag list is raw
// rule output; BuildRecord deduplicates it.
func (s *Scorer) Compute(ref reference.Reference, in Inputs) (citation.Score, []citation.Flag) {
	var flags []citation.Flag
	var sc citation.Score

	// Provenance
	if in.DOIResolved || ref.DOI() != "" {
		sc.Provenance += 15
	} else {
		sc.Penalties -= 30
		flags = append(flags, citation.FlagDOIUnresolved)
	}

	// Metadata consistency
	candidate := in.TitleForSimilarity
	if candidate == "" {
		candidate = in.RawReference
	}
	titleMatch := titleSimilarity(candidate, in.MetadataTitle)
	switch {
	case titleMatch >= 0.9:
		sc.MetadataConsistency += 10
	case titleMatch >= 0.75:
		sc.MetadataConsistency += 5
	default:
		sc.Penalties -= 15
		flags = append(flags, citation.FlagMetadataMismatch)
	}

	presence := authorPresence(in.RawReference, in.Authors)
	if presence >= 0.8 {
		sc.MetadataConsistency += 5
	} else if presence < 0.3 && len(in.Authors) > 0 {
		sc.Penalties -= 5
		flags = append(flags, citation.FlagMetadataMismatch)
	}

	// Year check
	if in.MetadataYear != 0 && in.ParsedYear != 0 {
		delta := in.MetadataYear - in.ParsedYear
		if delta < 0 {
			delta = -delta
		}
		switch {
		case delta == 0:
			sc.MetadataConsistency += 5
		case delta == 1:
			sc.MetadataConsistency += 2
		default:
			sc.Penalties -= 10
		}
	}

	// Currency
	if in.MetadataYear != 0 {
		yearsSince := s.now().UTC().Year() - in.MetadataYear
		if yearsSince < 0 {
			yearsSince = 0
		}
		sc.Currency += math.Max(0, 20-float64(yearsSince))
	}

	if in.HasNewerVersion {
		sc.Penalties -= 20
		flags = append(flags, citation.FlagHasNewerVersion)
	}

	// Reliability
	if in.IsRetracted {
		// Hard stop
		sc.Penalties -= 100
		flags = append(flags, citation.FlagRetracted)
	} else {
		if in.IsPeerReviewed {
			sc.Reliability += 10
		}
		if len(in.IndexedIn) > 0 {
			sc.Reliability += 5
		}
		if in.IsOpenAccess != nil && *in.IsOpenAccess {
			sc.Reliability += 3
		}
	}

	if in.IsPreprint && in.HasPublishedVersion {
		flags = append(flags, citation.FlagPrefersPublishedVersion)
	}

	// Impact
	if in.CitationCount != nil && *in.CitationCount > 0 {
		sc.Impact += math.Min(10, 2*math.Sqrt(float64(*in.CitationCount)))
	}

	// Type bonuses
	switch ref.Type {
	case "standard", "guideline":
		sc.TypeBonus += 10
	case "journal-article", "proceedings-article":
		sc.TypeBonus += 5
	}

	return sc, flags
}

// BuildRecord computes the score and assembles the citation record. Flags
// enter through AddFlag so the record holds an ordered set even when a rule
// fired more than once.
func (s *Scorer) BuildRecord(ref reference.Reference, in Inputs) *citation.Record {
	sc, flags := s.Compute(ref, in)
	record := &citation.Record{Reference: ref, Score: sc}
	for _, flag := range flags {
		record.AddFlag(flag)
	}
	return record
}

func titleSimilarity(candidate, metadataTitle string) float64 {
	if candidate == "" || metadataTitle == "" {
		return 0.0
	}
	return similarity.TokenSortRatio(candidate, metadataTitle)
}

// authorPresence checks how many of the first five author surnames appear in
// the raw reference text.
func authorPresence(raw string, authors []string) float64 {
	if len(authors) == 0 {
		return 0.0
	}
	limit := len(authors)
	if limit > 5 {
		limit = 5
	}
	lowerRaw := strings.ToLower(raw)
	matches := 0
	for _, author := range authors[:limit] {
		fields := strings.Fields(author)
		if len(fields) == 0 {
			continue
		}
		surname := strings.ToLower(fields[len(fields)-1])
		if surname != "" && strings.Contains(lowerRaw, surname) {
			matches++
		}
	}
	return float64(matches) / float64(limit)
}
