package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luiscosio/CiteIQ/internal/citation"
	"github.com/luiscosio/CiteIQ/internal/config"
	"github.com/luiscosio/CiteIQ/internal/enrich"
	"github.com/luiscosio/CiteIQ/internal/metadata"
	"github.com/luiscosio/CiteIQ/internal/reference"
	"github.com/luiscosio/CiteIQ/internal/score"
)

var (
	lookupEmail    string
	lookupCacheDir string
)

func init() {
	lookupCmd.Flags().StringVarP(&lookupEmail, "email", "e", "", "Contact email sent to Unpaywall and the polite pools")
	lookupCmd.Flags().StringVar(&lookupCacheDir, "cache-dir", "", "Metadata payload cache to reuse (default none)")
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <doi>",
	Short: "Enrich and score a single DOI without running the pipeline",
	Long: `Enrich and score a single DOI without running the pipeline.

Useful for checking what the providers know about a reference before
adding it, or for spot-checking a low score from a report.

Examples:
  citeiq lookup 10.1038/nature12373
  citeiq lookup https://doi.org/10.1038/nature12373 --human
  citeiq lookup doi:10.1101/2021.01.01.425001 --cache-dir output/cache`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	doi := normalizeDOI(args[0])
	if doi == "" {
		exitWithError(ExitError, "empty DOI")
	}
	logger := newLogger()

	email := lookupEmail
	if email == "" {
		email = config.GetEmail()
	}

	opts := []metadata.ServiceOption{
		metadata.WithLogger(logger),
		metadata.WithEndpoints(config.GetCrossrefEndpoint(), config.GetOpenAlexEndpoint(), config.GetUnpaywallEndpoint()),
	}
	if email != "" {
		opts = append(opts, metadata.WithEmail(email))
	}
	if lookupCacheDir != "" {
		cache, err := metadata.NewCache(lookupCacheDir, logger)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if err := cache.Acquire(); err != nil {
			if errors.Is(err, metadata.ErrCacheBusy) {
				exitWithError(ExitCacheBusy, "%v", err)
			}
			exitWithError(ExitError, "%v", err)
		}
		defer cache.Release()
		opts = append(opts, metadata.WithCache(cache))
	}

	enricher := enrich.New(metadata.NewService(opts...), logger)
	res := enricher.Enrich(context.Background(), reference.Reference{
		Identifiers: []reference.Identifier{{Type: "DOI", Value: doi}},
	})
	if !res.DOIResolved {
		exitWithError(ExitError, "DOI not found: %s", doi)
	}

	enriched := res.Reference
	var authors []string
	for _, author := range enriched.Authors {
		if author.Name != "" {
			authors = append(authors, author.Name)
		}
	}

	record := score.NewScorer().BuildRecord(enriched, score.Inputs{
		RawReference:        enriched.Raw,
		TitleForSimilarity:  enriched.Title,
		MetadataTitle:       enriched.Title,
		MetadataYear:        enriched.Year,
		Authors:             authors,
		DOIResolved:         res.DOIResolved,
		HasPublishedVersion: res.HasPublishedVersion,
		HasNewerVersion:     len(enriched.Updates) > 0,
		IsPreprint:          enriched.IsPreprint != nil && *enriched.IsPreprint,
		IsPeerReviewed:      score.PeerReviewed(enriched.Type),
		IsRetracted:         enriched.IsRetracted != nil && *enriched.IsRetracted,
		IsOpenAccess:        enriched.IsOpenAccess,
		IndexedIn:           enriched.IndexedIn,
		CitationCount:       enriched.CitationCount,
	})

	if humanOutput {
		printLookupHuman(record)
	} else {
		outputJSON(record)
	}

	return nil
}

// normalizeDOI strips URL and scheme prefixes from a DOI argument.
func normalizeDOI(arg string) string {
	doi := strings.TrimSpace(arg)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			return doi[len(prefix):]
		}
	}
	return doi
}

func printLookupHuman(record *citation.Record) {
	ref := record.Reference

	title := ref.Title
	if title == "" {
		title = "(no title)"
	}
	fmt.Println(truncateString(title, DetailTitleMaxLen))

	if len(ref.Authors) > 0 {
		var names []string
		for _, author := range ref.Authors {
			names = append(names, author.Name)
		}
		fmt.Printf("  Authors: %s\n", formatAuthorsShort(names, 5))
	}
	if ref.Year > 0 {
		fmt.Printf("  Year: %d\n", ref.Year)
	}
	if ref.Venue != "" {
		fmt.Printf("  Venue: %s\n", ref.Venue)
	}
	if doi := ref.DOI(); doi != "" {
		fmt.Printf("  DOI: %s\n", doi)
	}
	if ref.CitationCount != nil && *ref.CitationCount > 0 {
		fmt.Printf("  Citations: %d\n", *ref.CitationCount)
	}
	if ref.IsOpenAccess != nil && *ref.IsOpenAccess {
		fmt.Printf("  Open access: yes\n")
	}
	fmt.Printf("  Score: %s\n", formatScore(record.Score.Total()))
	if len(record.Flags) > 0 {
		fmt.Printf("  Flags: %s\n", formatFlags(record.Flags))
	}
}
