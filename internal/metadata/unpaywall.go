package metadata

import (
	"context"
	"encoding/json"
	"net/url"
)

// UnpaywallResponse is the subset of an Unpaywall record the engine consumes.
type UnpaywallResponse struct {
	IsOA           *bool              `json:"is_oa"`
	BestOALocation *UnpaywallLocation `json:"best_oa_location"`
}

// UnpaywallLocation describes one open-access copy of a work.
type UnpaywallLocation struct {
	URL       string `json:"url"`
	URLForPDF string `json:"url_for_pdf"`
}

// BestURL prefers the direct PDF link over the landing page.
func (l *UnpaywallLocation) BestURL() string {
	if l == nil {
		return ""
	}
	if l.URLForPDF != "" {
		return l.URLForPDF
	}
	return l.URL
}

// UnpaywallByDOI fetches the open-access record for a DOI. Unpaywall
// requires a contact email; without one the lookup is skipped without any
// request. Returns nil when no data is available.
func (s *Service) UnpaywallByDOI(ctx context.Context, doi string) *UnpaywallResponse {
	if s.email == "" {
		s.logger.Debug("skipping unpaywall lookup without contact email", "doi", doi)
		return nil
	}

	params := url.Values{}
	params.Set("email", s.email)

	payload := s.fetch(ctx, "unpaywall", s.unpaywallBase+"/v2/"+doi, params)
	if payload == nil {
		return nil
	}

	var resp UnpaywallResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		s.logger.Warn("unpaywall payload did not decode", "doi", doi, "error", err)
		return nil
	}
	return &resp
}
