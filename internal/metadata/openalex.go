package metadata

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// OpenAlexSearchRows is the number of candidates requested from title search.
const OpenAlexSearchRows = 3

// OpenAlexWork is the subset of an OpenAlex work record the engine consumes.
type OpenAlexWork struct {
	ID                    string                `json:"id"`
	DOI                   string                `json:"doi"`
	DisplayName           string                `json:"display_name"`
	PublicationYear       int                   `json:"publication_year"`
	CitedByCount          *int                  `json:"cited_by_count"`
	Authorships           []OpenAlexAuthorship  `json:"authorships"`
	Concepts              []OpenAlexConcept     `json:"concepts"`
	AbstractInvertedIndex map[string][]int      `json:"abstract_inverted_index"`
	HostVenue             OpenAlexHostVenue     `json:"host_venue"`
	IsRetracted           *bool                 `json:"is_retracted"`
	RelatedWorks          []OpenAlexRelatedWork `json:"related_works"`
	OpenAccess            OpenAlexOpenAccess    `json:"open_access"`
	IndexedIn             []string              `json:"indexed_in"`
}

// OpenAlexAuthorship is one authorship entry with institution affiliations.
type OpenAlexAuthorship struct {
	Author       OpenAlexAuthor        `json:"author"`
	Institutions []OpenAlexInstitution `json:"institutions"`
}

// OpenAlexAuthor is the author half of an authorship.
type OpenAlexAuthor struct {
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
}

// OpenAlexInstitution is an institution attached to an authorship.
type OpenAlexInstitution struct {
	DisplayName string `json:"display_name"`
	ROR         string `json:"ror"`
	Type        string `json:"type"`
}

// OpenAlexConcept is a tagged subject concept.
type OpenAlexConcept struct {
	DisplayName string `json:"display_name"`
}

// OpenAlexHostVenue describes where the work is hosted.
type OpenAlexHostVenue struct {
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

// OpenAlexRelatedWork references a related work. The API serves either a
// bare identifier string or an object carrying a relationship label; both
// decode into the same struct.
type OpenAlexRelatedWork struct {
	ID           string `json:"id"`
	Relationship string `json:"relationship"`
}

// UnmarshalJSON accepts both the string and the object form.
func (r *OpenAlexRelatedWork) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.ID = id
		r.Relationship = ""
		return nil
	}
	type plain OpenAlexRelatedWork
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = OpenAlexRelatedWork(decoded)
	return nil
}

// OpenAlexOpenAccess carries the open-access block of a work.
type OpenAlexOpenAccess struct {
	IsOA  *bool  `json:"is_oa"`
	OAURL string `json:"oa_url"`
}

// decodeOpenAlexWork resolves the payload shape ambiguity once: a search
// wrapper yields its first result, a bare work yields itself, anything else
// yields nil.
func decodeOpenAlexWork(payload json.RawMessage) (*OpenAlexWork, error) {
	var wrapper struct {
		Results []*OpenAlexWork `json:"results"`
	}
	if err := json.Unmarshal(payload, &wrapper); err == nil && len(wrapper.Results) > 0 {
		return wrapper.Results[0], nil
	}

	var work OpenAlexWork
	if err := json.Unmarshal(payload, &work); err != nil {
		return nil, err
	}
	if work.ID == "" {
		return nil, nil
	}
	return &work, nil
}

func (s *Service) openalexWork(ctx context.Context, rawURL string, params url.Values, attr string, value string) *OpenAlexWork {
	payload := s.fetch(ctx, "openalex", rawURL, params)
	if payload == nil {
		return nil
	}

	work, err := decodeOpenAlexWork(payload)
	if err != nil {
		s.logger.Warn("openalex payload did not decode", attr, value, "error", err)
		return nil
	}
	return work
}

// OpenAlexWorkByID fetches a work by an OpenAlex identifier, including the
// "doi:10.x" form. Returns nil when no data is available.
func (s *Service) OpenAlexWorkByID(ctx context.Context, identifier string) *OpenAlexWork {
	return s.openalexWork(ctx, s.openalexBase+"/works/"+identifier, nil, "identifier", identifier)
}

// OpenAlexSearch searches works and returns the best match, or nil when no
// data is available. A DOI filter takes precedence over a title search;
// with neither given, no request is made.
func (s *Service) OpenAlexSearch(ctx context.Context, doi, title string) *OpenAlexWork {
	params := url.Values{}
	switch {
	case doi != "":
		params.Set("filter", "doi:"+doi)
		return s.openalexWork(ctx, s.openalexBase+"/works", params, "doi", doi)
	case title != "":
		params.Set("search", title)
		params.Set("per-page", strconv.Itoa(OpenAlexSearchRows))
		return s.openalexWork(ctx, s.openalexBase+"/works", params, "title", title)
	}
	return nil
}
