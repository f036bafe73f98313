package merge

import (
	"strings"

	"github.com/luiscosio/CiteIQ/internal/metadata"
	"github.com/luiscosio/CiteIQ/internal/reference"
)

// crossrefRelationOrder fixes the bucket fill order so merges stay
// deterministic regardless of payload map iteration.
var crossrefRelationOrder = []string{
	"is-preprint-of",
	"has-preprint",
	"is-version-of",
	"has-version",
	"updates",
	"is-updated-by",
}

// Crossref folds a Crossref work into the reference.
//
// Titles, venues, publishers, types, years, and URLs override only when
// non-empty. The author list is replaced wholesale when the payload carries
// any contributors, with given+family names falling back to the raw name
// field. The DOI joins the identifier list unless an equal one is present;
// ISSN and ISBN values join the shared set in first-seen order. Relation
// buckets are classified into related, version-of, and updates lists;
// unknown relation types are ignored. A first assertion labelled
// "retraction" marks the reference retracted, otherwise the existing value
// is retained. A posted-content type forces the preprint flag on, never off.
func Crossref(ref reference.Reference, work *metadata.CrossrefWork) reference.Reference {
	if work == nil {
		return ref
	}
	out := ref.Clone()

	if title := firstNonEmpty(work.Title); title != "" {
		out.Title = title
	}
	if venue := firstNonEmpty(work.ContainerTitle); venue != "" {
		out.Venue = venue
	}
	if year := work.Issued.Year(); year != 0 {
		out.Year = year
	}
	if work.Publisher != "" {
		out.Publisher = work.Publisher
	}
	if work.Type != "" {
		out.Type = work.Type
	}
	if authors := crossrefAuthors(work.Author); len(authors) > 0 {
		out.Authors = authors
	}

	if work.DOI != "" {
		out.Identifiers = appendDOI(out.Identifiers, work.DOI)
	}
	for _, issn := range work.ISSN {
		out.ISSNISBN = appendUnique(out.ISSNISBN, issn)
	}
	for _, isbn := range work.ISBN {
		out.ISSNISBN = appendUnique(out.ISSNISBN, isbn)
	}

	for _, relationType := range crossrefRelationOrder {
		entries, ok := work.Relation[relationType]
		if !ok {
			continue
		}
		for _, entry := range entries {
			identifier := reference.Identifier{Type: relationType, Value: entry.Value()}
			switch relationType {
			case "is-preprint-of", "has-preprint":
				out.RelatedIdentifiers = append(out.RelatedIdentifiers, identifier)
			case "is-version-of", "has-version":
				out.VersionOf = append(out.VersionOf, identifier)
			case "updates", "is-updated-by":
				out.Updates = append(out.Updates, identifier)
			}
		}
	}

	if work.IsReferencedByCount != nil && *work.IsReferencedByCount != 0 {
		out.CitationCount = reference.IntPtr(*work.IsReferencedByCount)
	}
	if work.URL != "" {
		out.URL = work.URL
	}

	if len(work.Assertion) > 0 && work.Assertion[0].Label == "retraction" {
		out.IsRetracted = reference.BoolPtr(true)
	}
	if work.Type == "posted-content" {
		out.IsPreprint = reference.BoolPtr(true)
	}

	return out
}

func crossrefAuthors(entries []metadata.CrossrefAuthor) []reference.Author {
	if len(entries) == 0 {
		return nil
	}
	authors := make([]reference.Author, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Given + " " + entry.Family)
		if name == "" {
			name = entry.Name
		}
		var affiliations []string
		for _, aff := range entry.Affiliation {
			if aff.Name != "" {
				affiliations = append(affiliations, aff.Name)
			}
		}
		authors = append(authors, reference.Author{
			Name:         name,
			ORCID:        entry.ORCID,
			Affiliations: affiliations,
		})
	}
	return authors
}
