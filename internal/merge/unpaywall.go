package merge

import (
	"github.com/luiscosio/CiteIQ/internal/metadata"
	"github.com/luiscosio/CiteIQ/internal/reference"
)

// Unpaywall folds an Unpaywall record into the reference. Only the
// open-access flag and best location are touched, and each only when the
// payload carries it, so OpenAlex-derived values survive a thin response.
// The best location prefers the direct PDF link over the landing page.
func Unpaywall(ref reference.Reference, resp *metadata.UnpaywallResponse) reference.Reference {
	if resp == nil {
		return ref
	}
	out := ref.Clone()

	if resp.IsOA != nil {
		out.IsOpenAccess = reference.BoolPtr(*resp.IsOA)
	}
	if oaURL := resp.BestOALocation.BestURL(); oaURL != "" {
		out.BestOALocation = oaURL
	}

	return out
}
