package reference

import "strings"

// Author represents a single author with optional affiliation data. The
// Affiliations and AffiliationROR lists are parallel where a provider
// supplies both.
type Author struct {
	Name           string   `json:"name"`
	ORCID          string   `json:"orcid,omitempty"`
	Affiliations   []string `json:"affiliations,omitempty"`
	AffiliationROR []string `json:"affiliation_ror,omitempty"`
}

// Surname returns the final whitespace-separated token of the author's name,
// or "" for an empty name. Used for sorting and raw-text presence checks.
func (a Author) Surname() string {
	fields := strings.Fields(a.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Affiliation represents an institutional affiliation. Two affiliations are
// equal when name, ROR id, and type all match.
type Affiliation struct {
	Name string `json:"name"`
	ROR  string `json:"ror,omitempty"`
	Type string `json:"type,omitempty"`
}
