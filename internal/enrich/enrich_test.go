package enrich

import (
	"context"
	"testing"

	"github.com/luiscosio/CiteIQ/internal/metadata"
	"github.com/luiscosio/CiteIQ/internal/reference"
)

type fakeSource struct {
	workByDOI    func(doi string) *metadata.CrossrefWork
	search       func(query string) []*metadata.CrossrefWork
	workByID     func(identifier string) *metadata.OpenAlexWork
	workSearch   func(doi, title string) *metadata.OpenAlexWork
	oaByDOI      func(doi string) *metadata.UnpaywallResponse
	calls        []string
	lastOpenAlex string
}

func (f *fakeSource) CrossrefWorkByDOI(_ context.Context, doi string) *metadata.CrossrefWork {
	f.calls = append(f.calls, "crossref-doi")
	if f.workByDOI == nil {
		return nil
	}
	return f.workByDOI(doi)
}

func (f *fakeSource) CrossrefSearchBibliographic(_ context.Context, query string) []*metadata.CrossrefWork {
	f.calls = append(f.calls, "crossref-search")
	if f.search == nil {
		return nil
	}
	return f.search(query)
}

func (f *fakeSource) OpenAlexWorkByID(_ context.Context, identifier string) *metadata.OpenAlexWork {
	f.calls = append(f.calls, "openalex-id")
	f.lastOpenAlex = identifier
	if f.workByID == nil {
		return nil
	}
	return f.workByID(identifier)
}

func (f *fakeSource) OpenAlexSearch(_ context.Context, doi, title string) *metadata.OpenAlexWork {
	f.calls = append(f.calls, "openalex-search")
	if f.workSearch == nil {
		return nil
	}
	return f.workSearch(doi, title)
}

func (f *fakeSource) UnpaywallByDOI(_ context.Context, doi string) *metadata.UnpaywallResponse {
	f.calls = append(f.calls, "unpaywall")
	if f.oaByDOI == nil {
		return nil
	}
	return f.oaByDOI(doi)
}

func hasCall(calls []string, name string) bool {
	for _, c := range calls {
		if c == name {
			return true
		}
	}
	return false
}

func TestEnrich_DirectDOIHit(t *testing.T) {
	source := &fakeSource{
		workByDOI: func(doi string) *metadata.CrossrefWork {
			return &metadata.CrossrefWork{Title: []string{"Resolved Title"}, DOI: doi}
		},
	}
	ref := reference.Reference{
		Raw:         "[1] something",
		Identifiers: []reference.Identifier{{Type: "DOI", Value: "10.1234/x"}},
	}

	res := New(source, nil).Enrich(context.Background(), ref)
	if !res.DOIResolved {
		t.Error("DOIResolved = false, want true for direct hit")
	}
	if res.Reference.Title != "Resolved Title" {
		t.Errorf("Title = %q, payload not merged", res.Reference.Title)
	}
	if hasCall(source.calls, "crossref-search") {
		t.Error("search fallback ran despite direct hit")
	}
}

func TestEnrich_SearchFallbackWithDOI(t *testing.T) {
	source := &fakeSource{
		search: func(query string) []*metadata.CrossrefWork {
			return []*metadata.CrossrefWork{{Title: []string{"Found"}, DOI: "10.9/found"}}
		},
	}
	ref := reference.Reference{Raw: "Smith, Found, 2020"}

	res := New(source, nil).Enrich(context.Background(), ref)
	if !res.DOIResolved {
		t.Error("DOIResolved = false, want true when search best carries a DOI")
	}
	if res.Reference.DOI() != "10.9/found" {
		t.Errorf("DOI() = %q, search DOI not merged", res.Reference.DOI())
	}
	// The search-contributed DOI must drive the OpenAlex lookup.
	if source.lastOpenAlex != "doi:10.9/found" {
		t.Errorf("OpenAlex identifier = %q, want doi form", source.lastOpenAlex)
	}
}

func TestEnrich_SearchFallbackWithoutDOI(t *testing.T) {
	source := &fakeSource{
		search: func(query string) []*metadata.CrossrefWork {
			return []*metadata.CrossrefWork{{Title: []string{"Titled But Unidentified"}}}
		},
	}
	res := New(source, nil).Enrich(context.Background(), reference.Reference{Raw: "opaque"})
	if res.DOIResolved {
		t.Error("DOIResolved = true, want false when best candidate lacks a DOI")
	}
	if res.Reference.Title == "" {
		t.Error("search payload should still merge")
	}
}

func TestEnrich_OpenAlexTitleFallback(t *testing.T) {
	var gotDOI, gotTitle string
	source := &fakeSource{
		workSearch: func(doi, title string) *metadata.OpenAlexWork {
			gotDOI, gotTitle = doi, title
			return &metadata.OpenAlexWork{ID: "https://openalex.org/W1", PublicationYear: 2018}
		},
	}
	ref := reference.Reference{Raw: "raw", Title: "Known Title"}

	res := New(source, nil).Enrich(context.Background(), ref)
	if hasCall(source.calls, "openalex-id") {
		t.Error("OpenAlex id lookup ran without a DOI")
	}
	if !hasCall(source.calls, "openalex-search") {
		t.Error("OpenAlex title search did not run")
	}
	if gotDOI != "" || gotTitle != "Known Title" {
		t.Errorf("search args = (%q, %q), want title-only", gotDOI, gotTitle)
	}
	if res.Reference.Year != 2018 {
		t.Errorf("Year = %d, OpenAlex payload not merged", res.Reference.Year)
	}
}

func TestEnrich_OpenAlexSkippedWithoutTitleOrDOI(t *testing.T) {
	source := &fakeSource{}
	New(source, nil).Enrich(context.Background(), reference.Reference{Raw: "bare"})
	if hasCall(source.calls, "openalex-id") || hasCall(source.calls, "openalex-search") {
		t.Errorf("OpenAlex lookups ran with nothing to look up: %v", source.calls)
	}
}

func TestEnrich_UnpaywallGatedOnDOI(t *testing.T) {
	withDOI := &fakeSource{
		oaByDOI: func(doi string) *metadata.UnpaywallResponse {
			return &metadata.UnpaywallResponse{IsOA: reference.BoolPtr(true)}
		},
	}
	ref := reference.Reference{
		Raw:         "raw",
		Identifiers: []reference.Identifier{{Type: "DOI", Value: "10.1/oa"}},
	}
	res := New(withDOI, nil).Enrich(context.Background(), ref)
	if !hasCall(withDOI.calls, "unpaywall") {
		t.Error("unpaywall lookup did not run for a DOI-bearing reference")
	}
	if res.Reference.IsOpenAccess == nil || !*res.Reference.IsOpenAccess {
		t.Errorf("IsOpenAccess = %v, unpaywall payload not merged", res.Reference.IsOpenAccess)
	}

	withoutDOI := &fakeSource{}
	New(withoutDOI, nil).Enrich(context.Background(), reference.Reference{Raw: "bare"})
	if hasCall(withoutDOI.calls, "unpaywall") {
		t.Error("unpaywall lookup ran without a DOI")
	}
}

func TestEnrich_HasPublishedVersion(t *testing.T) {
	source := &fakeSource{
		workByDOI: func(doi string) *metadata.CrossrefWork {
			return &metadata.CrossrefWork{
				Type: "posted-content",
				Relation: map[string][]metadata.CrossrefRelation{
					"is-preprint-of": {{ID: "10.1/published"}},
				},
			}
		},
	}
	ref := reference.Reference{
		Raw:         "raw",
		Identifiers: []reference.Identifier{{Type: "DOI", Value: "10.1/preprint"}},
	}

	res := New(source, nil).Enrich(context.Background(), ref)
	if !res.HasPublishedVersion {
		t.Error("HasPublishedVersion = false, want true for is-preprint-of relation")
	}
	if res.Reference.IsPreprint == nil || !*res.Reference.IsPreprint {
		t.Errorf("IsPreprint = %v, want true", res.Reference.IsPreprint)
	}
}
