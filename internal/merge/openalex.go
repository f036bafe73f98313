package merge

import (
	"strings"

	"github.com/luiscosio/CiteIQ/internal/metadata"
	"github.com/luiscosio/CiteIQ/internal/reference"
)

// OpenAlex folds an OpenAlex work into the reference.
//
// Display name, publication year, and host venue override only when
// non-empty. Authorships replace the author list wholesale when any are
// present and also populate the work-level affiliation set (unique by name,
// ROR, and type, in first-seen order). Concepts become topics and the
// inverted abstract index is reconstructed into plain text, each only
// overriding when non-empty. The OpenAlex id is always appended to the
// identifier list; the DOI joins only when no equal one is present. A
// repository host venue forces the preprint flag on, never off. The
// is_retracted boolean overrides whenever the payload carries it. Related
// works are classified into version-of and updates buckets; other
// relationships are ignored.
func OpenAlex(ref reference.Reference, work *metadata.OpenAlexWork) reference.Reference {
	if work == nil {
		return ref
	}
	out := ref.Clone()

	if work.DisplayName != "" {
		out.Title = work.DisplayName
	}
	if work.PublicationYear != 0 {
		out.Year = work.PublicationYear
	}
	if work.CitedByCount != nil && *work.CitedByCount != 0 {
		out.CitationCount = reference.IntPtr(*work.CitedByCount)
	}

	authors, affiliations := openalexAuthorships(work.Authorships)
	if len(authors) > 0 {
		out.Authors = authors
	}
	if len(affiliations) > 0 {
		out.Affiliations = affiliations
	}

	if topics := openalexTopics(work.Concepts); len(topics) > 0 {
		out.Topics = topics
	}
	if abstract := ReconstructAbstract(work.AbstractInvertedIndex); abstract != "" {
		out.Abstract = abstract
	}

	if work.ID != "" {
		out.Identifiers = append(out.Identifiers, reference.Identifier{Type: "OpenAlex", Value: work.ID})
	}
	if work.DOI != "" {
		out.Identifiers = appendDOI(out.Identifiers, work.DOI)
	}

	if work.HostVenue.Type == "repository" {
		out.IsPreprint = reference.BoolPtr(true)
	}
	if work.IsRetracted != nil {
		out.IsRetracted = reference.BoolPtr(*work.IsRetracted)
	}

	for _, rel := range work.RelatedWorks {
		switch rel.Relationship {
		case "has_version", "is_version_of":
			out.VersionOf = append(out.VersionOf, reference.Identifier{Type: rel.Relationship, Value: rel.ID})
		case "updates":
			out.Updates = append(out.Updates, reference.Identifier{Type: rel.Relationship, Value: rel.ID})
		}
	}

	if work.OpenAccess.IsOA != nil {
		out.IsOpenAccess = reference.BoolPtr(*work.OpenAccess.IsOA)
	}
	if work.OpenAccess.OAURL != "" {
		out.BestOALocation = work.OpenAccess.OAURL
	}

	if work.HostVenue.DisplayName != "" {
		out.Venue = work.HostVenue.DisplayName
	}

	for _, index := range work.IndexedIn {
		out.IndexedIn = appendUnique(out.IndexedIn, index)
	}

	return out
}

func openalexAuthorships(entries []metadata.OpenAlexAuthorship) ([]reference.Author, []reference.Affiliation) {
	if len(entries) == 0 {
		return nil, nil
	}
	authors := make([]reference.Author, 0, len(entries))
	var affiliations []reference.Affiliation
	for _, entry := range entries {
		var names, rors []string
		for _, inst := range entry.Institutions {
			if inst.DisplayName != "" {
				names = append(names, inst.DisplayName)
			}
			if inst.ROR != "" {
				rors = append(rors, inst.ROR)
			}
		}
		authors = append(authors, reference.Author{
			Name:           entry.Author.DisplayName,
			ORCID:          entry.Author.ORCID,
			Affiliations:   names,
			AffiliationROR: rors,
		})

		for _, inst := range entry.Institutions {
			if inst.DisplayName == "" {
				continue
			}
			aff := reference.Affiliation{Name: inst.DisplayName, ROR: inst.ROR, Type: inst.Type}
			if !containsAffiliation(affiliations, aff) {
				affiliations = append(affiliations, aff)
			}
		}
	}
	return authors, affiliations
}

func containsAffiliation(affiliations []reference.Affiliation, aff reference.Affiliation) bool {
	for _, existing := range affiliations {
		if existing == aff {
			return true
		}
	}
	return false
}

func openalexTopics(concepts []metadata.OpenAlexConcept) []string {
	var topics []string
	for _, concept := range concepts {
		if concept.DisplayName != "" {
			topics = append(topics, concept.DisplayName)
		}
	}
	return topics
}

// ReconstructAbstract rebuilds abstract text from OpenAlex's inverted word
// index. Positions missing from the index are left as empty words, matching
// the provider's sparse payloads.
func ReconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	maxPos := -1
	for _, positions := range index {
		for _, pos := range positions {
			if pos > maxPos {
				maxPos = pos
			}
		}
	}
	if maxPos < 0 {
		return ""
	}
	words := make([]string, maxPos+1)
	for word, positions := range index {
		for _, pos := range positions {
			if pos >= 0 && pos <= maxPos {
				words[pos] = word
			}
		}
	}
	return strings.Join(words, " ")
}
