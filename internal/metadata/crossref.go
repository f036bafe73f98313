package metadata

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// CrossrefSearchRows is the number of candidates requested from
// bibliographic search.
const CrossrefSearchRows = 3

// CrossrefWork is the subset of a Crossref work record the engine consumes.
type CrossrefWork struct {
	Title               []string                      `json:"title"`
	ContainerTitle      []string                      `json:"container-title"`
	Publisher           string                        `json:"publisher"`
	Type                string                        `json:"type"`
	DOI                 string                        `json:"DOI"`
	URL                 string                        `json:"URL"`
	ISSN                []string                      `json:"ISSN"`
	ISBN                []string                      `json:"ISBN"`
	Author              []CrossrefAuthor              `json:"author"`
	Issued              CrossrefDate                  `json:"issued"`
	IsReferencedByCount *int                          `json:"is-referenced-by-count"`
	Relation            map[string][]CrossrefRelation `json:"relation"`
	Assertion           []CrossrefAssertion           `json:"assertion"`
}

// CrossrefAuthor is one contributor entry.
type CrossrefAuthor struct {
	Given       string                `json:"given"`
	Family      string                `json:"family"`
	Name        string                `json:"name"`
	ORCID       string                `json:"ORCID"`
	Affiliation []CrossrefAffiliation `json:"affiliation"`
}

// CrossrefAffiliation is a contributor affiliation entry.
type CrossrefAffiliation struct {
	Name string `json:"name"`
}

// CrossrefDate carries Crossref's date-parts representation.
type CrossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the year component, or 0 when absent.
func (d CrossrefDate) Year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}

// CrossrefRelation is one entry of a relation bucket.
type CrossrefRelation struct {
	ID     string `json:"id"`
	IDType string `json:"id-type"`
	DOI    string `json:"DOI"`
}

// Value returns the relation target identifier.
func (r CrossrefRelation) Value() string {
	if r.ID != "" {
		return r.ID
	}
	return r.DOI
}

// CrossrefAssertion is one publisher assertion entry.
type CrossrefAssertion struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type crossrefWorkEnvelope struct {
	Message *CrossrefWork `json:"message"`
}

type crossrefSearchEnvelope struct {
	Message struct {
		Items []*CrossrefWork `json:"items"`
	} `json:"message"`
}

// CrossrefWorkByDOI fetches a work record by DOI. The DOI is lowercased
// before the request so equivalent spellings share a cache entry. Returns
// nil when the provider has no data or the lookup failed.
func (s *Service) CrossrefWorkByDOI(ctx context.Context, doi string) *CrossrefWork {
	doi = strings.ToLower(doi)
	payload := s.fetch(ctx, "crossref", s.crossrefBase+"/works/"+doi, nil)
	if payload == nil {
		return nil
	}

	var envelope crossrefWorkEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn("crossref work payload did not decode", "doi", doi, "error", err)
		return nil
	}
	return envelope.Message
}

// CrossrefSearchBibliographic searches works by a free-text bibliographic
// query and returns the candidate list, best match first. Returns nil when
// nothing matched or the lookup failed.
func (s *Service) CrossrefSearchBibliographic(ctx context.Context, query string) []*CrossrefWork {
	params := url.Values{}
	params.Set("query.bibliographic", query)
	params.Set("rows", strconv.Itoa(CrossrefSearchRows))

	payload := s.fetch(ctx, "crossref", s.crossrefBase+"/works", params)
	if payload == nil {
		return nil
	}

	var envelope crossrefSearchEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn("crossref search payload did not decode", "query", query, "error", err)
		return nil
	}
	return envelope.Message.Items
}
