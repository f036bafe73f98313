// Package citation defines scored citation records and their quality flags.
package citation

import "github.com/luiscosio/CiteIQ/internal/reference"

// Flag marks a quality concern attached to a citation record.
type Flag string

// The closed set of quality flags a record can carry.
const (
	FlagDOIUnresolved           Flag = "doi_unresolved"
	FlagMetadataMismatch        Flag = "metadata_mismatch"
	FlagPossibleDuplicate       Flag = "possible_duplicate"
	FlagRetracted               Flag = "retracted"
	FlagHasNewerVersion         Flag = "has_newer_version"
	FlagPrefersPublishedVersion Flag = "prefers_published_version"
	FlagPreprint                Flag = "preprint"
	FlagLacksIdentifier         Flag = "lacks_identifier"
)

// Score breaks a citation quality score into named components. Penalties is
// the only component that may go negative; it never goes positive.
type Score struct {
	Provenance          float64 `json:"provenance"`
	MetadataConsistency float64 `json:"metadata_consistency"`
	Currency            float64 `json:"currency"`
	Reliability         float64 `json:"reliability"`
	Impact              float64 `json:"impact"`
	TypeBonus           float64 `json:"type_bonus"`
	Penalties           float64 `json:"penalties"`
}

// Total sums all components and clamps the result to [0, 100].
func (s Score) Total() float64 {
	total := s.Provenance +
		s.MetadataConsistency +
		s.Currency +
		s.Reliability +
		s.Impact +
		s.TypeBonus +
		s.Penalties
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

// Record pairs a reference snapshot with its score and quality flags. Flags
// form an ordered set: insertion order is preserved and duplicates are
// rejected, so re-adding a flag during duplicate detection is a no-op.
type Record struct {
	Reference reference.Reference `json:"reference"`
	Score     Score               `json:"score"`
	Flags     []Flag              `json:"flags"`
}

// AddFlag appends flag unless the record already carries it.
func (r *Record) AddFlag(flag Flag) {
	if r.HasFlag(flag) {
		return
	}
	r.Flags = append(r.Flags, flag)
}

// HasFlag reports whether the record carries the given flag.
func (r *Record) HasFlag(flag Flag) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// DuplicatePair records two record indices flagged as likely duplicates.
// Indices refer to the record order at detection time, before any sorting.
type DuplicatePair struct {
	First  int `json:"first"`
	Second int `json:"second"`
}
