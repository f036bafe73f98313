// Package reference defines the core domain types for bibliographic references.
package reference

import "strings"

// Identifier is a typed external identifier attached to a reference, such as
// a DOI, PMID, arXiv id, URL, or a provider relation-type string. Values are
// stored exactly as received; DOI comparisons are case-insensitive at the
// point of use.
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Reference is the normalized form of a single bibliographic entry.
//
// A reference starts life with only raw text, an optional document position,
// and a source label, and accumulates metadata as provider payloads are
// merged in. Merge operations work on copies (see Clone) and never replace a
// populated field with an empty value.
type Reference struct {
	Raw        string `json:"raw"`
	Index      *int   `json:"index,omitempty"`
	SourceFile string `json:"source_file,omitempty"`

	Title       string       `json:"title,omitempty"`
	Authors     []Author     `json:"authors,omitempty"`
	Year        int          `json:"year,omitempty"`
	Venue       string       `json:"venue,omitempty"`
	Publisher   string       `json:"publisher,omitempty"`
	Type        string       `json:"type,omitempty"`
	Identifiers []Identifier `json:"identifiers,omitempty"`
	ISSNISBN    []string     `json:"issn_isbn,omitempty"`
	URL         string       `json:"url,omitempty"`
	Abstract    string       `json:"abstract,omitempty"`
	Topics      []string     `json:"topics,omitempty"`

	Affiliations []Affiliation `json:"affiliations,omitempty"`

	CitationCount  *int   `json:"citation_count,omitempty"`
	IsOpenAccess   *bool  `json:"is_open_access,omitempty"`
	BestOALocation string `json:"best_oa_location,omitempty"`

	RelatedIdentifiers []Identifier `json:"related_identifiers,omitempty"`
	IsRetracted        *bool        `json:"is_retracted,omitempty"`
	IsPreprint         *bool        `json:"is_preprint,omitempty"`
	Updates            []Identifier `json:"updates,omitempty"`
	VersionOf          []Identifier `json:"version_of,omitempty"`
	IndexedIn          []string     `json:"indexed_in,omitempty"`
}

// DOI returns the value of the first identifier whose type is DOI (matched
// case-insensitively), or "" if the reference carries no DOI.
func (r Reference) DOI() string {
	for _, id := range r.Identifiers {
		if strings.EqualFold(id.Type, "doi") {
			return id.Value
		}
	}
	return ""
}

// Clone returns a deep copy of the reference. Merge functions clone the
// input and modify the copy, so callers keep their snapshot unchanged.
func (r Reference) Clone() Reference {
	out := r
	out.Index = cloneIntPtr(r.Index)
	out.Authors = cloneAuthors(r.Authors)
	out.Identifiers = cloneIdentifiers(r.Identifiers)
	out.ISSNISBN = cloneStrings(r.ISSNISBN)
	out.Topics = cloneStrings(r.Topics)
	out.Affiliations = cloneAffiliations(r.Affiliations)
	out.CitationCount = cloneIntPtr(r.CitationCount)
	out.IsOpenAccess = cloneBoolPtr(r.IsOpenAccess)
	out.RelatedIdentifiers = cloneIdentifiers(r.RelatedIdentifiers)
	out.IsRetracted = cloneBoolPtr(r.IsRetracted)
	out.IsPreprint = cloneBoolPtr(r.IsPreprint)
	out.Updates = cloneIdentifiers(r.Updates)
	out.VersionOf = cloneIdentifiers(r.VersionOf)
	out.IndexedIn = cloneStrings(r.IndexedIn)
	return out
}

// NormalizeDOI normalizes a DOI to a consistent format for comparison.
// It removes common URL prefixes (https://doi.org/, DOI:) and converts to
// lowercase.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}

// IntPtr returns a pointer to v, for optional numeric fields.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v, for optional boolean fields.
func BoolPtr(v bool) *bool { return &v }

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneIdentifiers(in []Identifier) []Identifier {
	if in == nil {
		return nil
	}
	out := make([]Identifier, len(in))
	copy(out, in)
	return out
}

func cloneAffiliations(in []Affiliation) []Affiliation {
	if in == nil {
		return nil
	}
	out := make([]Affiliation, len(in))
	copy(out, in)
	return out
}

func cloneAuthors(in []Author) []Author {
	if in == nil {
		return nil
	}
	out := make([]Author, len(in))
	for i, a := range in {
		out[i] = a
		out[i].Affiliations = cloneStrings(a.Affiliations)
		out[i].AffiliationROR = cloneStrings(a.AffiliationROR)
	}
	return out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBoolPtr(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
