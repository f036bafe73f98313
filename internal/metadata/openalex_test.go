package metadata

import (
	"context"
	"net/http"
	"net/url"
	"testing"
)

func TestOpenAlexWorkByID_SingleShape(t *testing.T) {
	var gotPath string
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{
			"id":"https://openalex.org/W123",
			"doi":"https://doi.org/10.1234/x",
			"display_name":"Single Work",
			"publication_year":2019,
			"cited_by_count":7,
			"is_retracted":false
		}`))
	}))

	work := svc.OpenAlexWorkByID(context.Background(), "doi:10.1234/x")
	if work == nil {
		t.Fatal("OpenAlexWorkByID() = nil, want work")
	}
	if gotPath != "/works/doi:10.1234/x" {
		t.Errorf("request path = %q", gotPath)
	}
	if work.DisplayName != "Single Work" {
		t.Errorf("DisplayName = %q", work.DisplayName)
	}
	if work.CitedByCount == nil || *work.CitedByCount != 7 {
		t.Errorf("CitedByCount = %v, want 7", work.CitedByCount)
	}
	if work.IsRetracted == nil || *work.IsRetracted {
		t.Errorf("IsRetracted = %v, want false", work.IsRetracted)
	}
}

func TestOpenAlexSearch_ByTitle(t *testing.T) {
	var gotQuery url.Values
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"results":[
			{"id":"https://openalex.org/W1","display_name":"Best Match"},
			{"id":"https://openalex.org/W2","display_name":"Runner Up"}
		]}`))
	}))

	work := svc.OpenAlexSearch(context.Background(), "", "best match")
	if work == nil {
		t.Fatal("OpenAlexSearch() = nil, want first result")
	}
	if work.DisplayName != "Best Match" {
		t.Errorf("DisplayName = %q, want first result", work.DisplayName)
	}
	if gotQuery.Get("search") != "best match" || gotQuery.Get("per-page") != "3" {
		t.Errorf("query = %v, want search with per-page", gotQuery)
	}
}

func TestOpenAlexSearch_DOIFilterWins(t *testing.T) {
	var gotQuery url.Values
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"results":[{"id":"https://openalex.org/W3","display_name":"Filtered"}]}`))
	}))

	work := svc.OpenAlexSearch(context.Background(), "10.1234/x", "ignored title")
	if work == nil || work.DisplayName != "Filtered" {
		t.Fatalf("OpenAlexSearch() = %+v, want filtered result", work)
	}
	if gotQuery.Get("filter") != "doi:10.1234/x" {
		t.Errorf("filter = %q, want doi form", gotQuery.Get("filter"))
	}
	if gotQuery.Has("search") {
		t.Errorf("query = %v, title search should not run alongside the filter", gotQuery)
	}
}

func TestOpenAlexSearch_EmptyResults(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))

	if work := svc.OpenAlexSearch(context.Background(), "", "no such work"); work != nil {
		t.Errorf("OpenAlexSearch() = %+v, want nil", work)
	}
}

func TestOpenAlexSearch_NothingToSearch(t *testing.T) {
	requested := false
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))

	if work := svc.OpenAlexSearch(context.Background(), "", ""); work != nil {
		t.Errorf("OpenAlexSearch() = %+v, want nil", work)
	}
	if requested {
		t.Error("a request was made with nothing to search for")
	}
}

func TestOpenAlexRelatedWorksBothForms(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id":"https://openalex.org/W5",
			"related_works":[
				"https://openalex.org/W6",
				{"id":"https://openalex.org/W7","relationship":"has_version"}
			]
		}`))
	}))

	work := svc.OpenAlexWorkByID(context.Background(), "W5")
	if work == nil {
		t.Fatal("OpenAlexWorkByID() = nil")
	}
	if len(work.RelatedWorks) != 2 {
		t.Fatalf("RelatedWorks len = %d, want 2", len(work.RelatedWorks))
	}
	if work.RelatedWorks[0].ID != "https://openalex.org/W6" || work.RelatedWorks[0].Relationship != "" {
		t.Errorf("string form = %+v", work.RelatedWorks[0])
	}
	if work.RelatedWorks[1].Relationship != "has_version" {
		t.Errorf("object form = %+v", work.RelatedWorks[1])
	}
}

func TestOpenAlexAbstractIndexDecodes(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id":"https://openalex.org/W8",
			"abstract_inverted_index":{"Deep":[0],"learning":[1],"works":[2]}
		}`))
	}))

	work := svc.OpenAlexWorkByID(context.Background(), "W8")
	if work == nil {
		t.Fatal("OpenAlexWorkByID() = nil")
	}
	if got := work.AbstractInvertedIndex["learning"]; len(got) != 1 || got[0] != 1 {
		t.Errorf("inverted index entry = %v", got)
	}
}
