// Package merge folds provider payloads into a normalized reference.
//
// Each merge function is pure: it clones the input reference, applies the
// provider's fields, and returns the new snapshot. A nil payload returns the
// input unchanged. Populated fields are never replaced by empty provider
// data, identifier lists are append-only, and the preprint and retraction
// flags follow the provider-specific rules documented on each function.
package merge

import (
	"strings"

	"github.com/luiscosio/CiteIQ/internal/reference"
)

// appendDOI appends a DOI identifier unless an equal one (type and value
// compared case-insensitively) is already present.
func appendDOI(identifiers []reference.Identifier, doi string) []reference.Identifier {
	for _, id := range identifiers {
		if strings.EqualFold(id.Type, "doi") && strings.EqualFold(id.Value, doi) {
			return identifiers
		}
	}
	return append(identifiers, reference.Identifier{Type: "DOI", Value: doi})
}

// appendUnique appends value unless already present, preserving first-seen
// order.
func appendUnique(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}

// firstNonEmpty returns the first non-empty string in values, or "".
func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
