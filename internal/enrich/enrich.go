// Package enrich drives the provider lookup and merge sequence for a single
// reference.
package enrich

import (
	"context"
	"log/slog"

	"github.com/luiscosio/CiteIQ/internal/logging"
	"github.com/luiscosio/CiteIQ/internal/merge"
	"github.com/luiscosio/CiteIQ/internal/metadata"
	"github.com/luiscosio/CiteIQ/internal/reference"
)

// Source is the provider surface the enricher consumes. *metadata.Service
// implements it; tests substitute fakes.
type Source interface {
	CrossrefWorkByDOI(ctx context.Context, doi string) *metadata.CrossrefWork
	CrossrefSearchBibliographic(ctx context.Context, query string) []*metadata.CrossrefWork
	OpenAlexWorkByID(ctx context.Context, identifier string) *metadata.OpenAlexWork
	OpenAlexSearch(ctx context.Context, doi, title string) *metadata.OpenAlexWork
	UnpaywallByDOI(ctx context.Context, doi string) *metadata.UnpaywallResponse
}

// Result is the outcome of enriching one reference.
type Result struct {
	Reference           reference.Reference
	DOIResolved         bool
	HasPublishedVersion bool
}

// Enricher runs the fixed provider sequence: Crossref by DOI, Crossref
// bibliographic search as fallback, OpenAlex by DOI then by title, and
// Unpaywall last. Each successful payload is merged before the next provider
// runs, so later lookups see identifiers earlier merges contributed.
type Enricher struct {
	source Source
	logger *slog.Logger
}

// New creates an enricher over the given source.
func New(source Source, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{source: source, logger: logger}
}

// Enrich looks up and merges provider metadata for ref. DOIResolved reports
// whether the direct DOI lookup returned data or the search fallback's best
// candidate carried a DOI. HasPublishedVersion reports whether the merged
// relations point at a published version of a preprint.
func (e *Enricher) Enrich(ctx context.Context, ref reference.Reference) Result {
	doiResolved := false

	var crossrefWork *metadata.CrossrefWork
	if doi := ref.DOI(); doi != "" {
		crossrefWork = e.source.CrossrefWorkByDOI(ctx, doi)
		doiResolved = crossrefWork != nil
	}
	if crossrefWork == nil && ref.Raw != "" {
		if items := e.source.CrossrefSearchBibliographic(ctx, ref.Raw); len(items) > 0 && items[0] != nil {
			crossrefWork = items[0]
			doiResolved = crossrefWork.DOI != ""
		}
	}
	if crossrefWork != nil {
		ref = merge.Crossref(ref, crossrefWork)
	}

	var openalexWork *metadata.OpenAlexWork
	if doi := ref.DOI(); doi != "" {
		openalexWork = e.source.OpenAlexWorkByID(ctx, "doi:"+doi)
	}
	if openalexWork == nil && ref.Title != "" {
		openalexWork = e.source.OpenAlexSearch(ctx, "", ref.Title)
	}
	if openalexWork != nil {
		ref = merge.OpenAlex(ref, openalexWork)
	}

	if doi := ref.DOI(); doi != "" {
		if resp := e.source.UnpaywallByDOI(ctx, doi); resp != nil {
			ref = merge.Unpaywall(ref, resp)
		}
	}

	hasPublished := false
	for _, identifier := range ref.RelatedIdentifiers {
		if identifier.Type == "is-preprint-of" || identifier.Type == "has-published-version" {
			hasPublished = true
			break
		}
	}

	e.logger.Debug("reference enriched",
		"doi", ref.DOI(),
		"doi_resolved", doiResolved,
		"has_published_version", hasPublished)

	return Result{
		Reference:           ref,
		DOIResolved:         doiResolved,
		HasPublishedVersion: hasPublished,
	}
}
