// Package pipeline orchestrates a full CiteIQ run: ingest reference files,
// enrich each reference from the metadata providers, score it, flag
// duplicates across the set, then write the report, exports, and records
// database.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/luiscosio/CiteIQ/internal/citation"
	"github.com/luiscosio/CiteIQ/internal/cluster"
	"github.com/luiscosio/CiteIQ/internal/dedupe"
	"github.com/luiscosio/CiteIQ/internal/enrich"
	"github.com/luiscosio/CiteIQ/internal/ingest"
	"github.com/luiscosio/CiteIQ/internal/logging"
	"github.com/luiscosio/CiteIQ/internal/metadata"
	"github.com/luiscosio/CiteIQ/internal/reference"
	"github.com/luiscosio/CiteIQ/internal/report"
	"github.com/luiscosio/CiteIQ/internal/score"
	"github.com/luiscosio/CiteIQ/internal/store"
)

const (
	// DefaultSortMode orders the final records by first author surname.
	DefaultSortMode = "author"

	// DefaultTopicClusters is the desired topic group count.
	DefaultTopicClusters = 8
)

// Config drives one pipeline run. Zero values for SortMode, TopicClusters,
// CacheDir, and Timeout fall back to defaults; a zero PerRequestPause
// disables request pacing.
type Config struct {
	InputFiles      []string      `validate:"required,min=1,dive,required"`
	OutputDir       string        `validate:"required"`
	CacheDir        string        // defaults to OutputDir/cache
	Email           string        `validate:"omitempty,email"`
	SortMode        string        `validate:"oneof=author year order"`
	TopicClusters   int           `validate:"min=1"`
	PerRequestPause time.Duration `validate:"min=0"`
	Timeout         time.Duration `validate:"min=0"`

	// Provider base URL overrides; empty selects the provider default.
	CrossrefEndpoint  string
	OpenAlexEndpoint  string
	UnpaywallEndpoint string
}

// withDefaults fills unset fields with the standard defaults.
func (c Config) withDefaults() Config {
	if c.SortMode == "" {
		c.SortMode = DefaultSortMode
	}
	if c.TopicClusters == 0 {
		c.TopicClusters = DefaultTopicClusters
	}
	if c.Timeout == 0 {
		c.Timeout = metadata.DefaultTimeout
	}
	if c.CacheDir == "" && c.OutputDir != "" {
		c.CacheDir = filepath.Join(c.OutputDir, "cache")
	}
	return c
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Result captures one pipeline run's outputs.
type Result struct {
	RunID          string
	Records        []*citation.Record
	AuthorClusters []cluster.Summary
	OrgClusters    []cluster.Summary
	TopicClusters  []cluster.Summary
	DuplicatePairs []citation.DuplicatePair
	ReportPath     string
	CSVPath        string
	JSONLPath      string
	DBPath         string
}

// Runner executes the pipeline over a fixed configuration.
type Runner struct {
	config  Config
	logger  *slog.Logger
	cache   *metadata.Cache
	service *metadata.Service
}

// New validates the configuration and prepares the payload cache and the
// provider client.
func New(cfg Config, logger *slog.Logger) (*Runner, error) {
	cfg = cfg.withDefaults()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	cache, err := metadata.NewCache(cfg.CacheDir, logger)
	if err != nil {
		return nil, err
	}

	opts := []metadata.ServiceOption{
		metadata.WithCache(cache),
		metadata.WithPacing(cfg.PerRequestPause),
		metadata.WithLogger(logger),
		metadata.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		metadata.WithEndpoints(cfg.CrossrefEndpoint, cfg.OpenAlexEndpoint, cfg.UnpaywallEndpoint),
	}
	if cfg.Email != "" {
		opts = append(opts, metadata.WithEmail(cfg.Email))
	}

	return &Runner{
		config:  cfg,
		logger:  logger,
		cache:   cache,
		service: metadata.NewService(opts...),
	}, nil
}

// Run executes the pipeline. The cache lock is held for the whole run; a
// concurrent run over the same cache directory fails fast.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.cache.Acquire(); err != nil {
		return nil, err
	}
	defer r.cache.Release()
	r.logger.Debug("payload cache locked", "dir", r.cache.Dir())

	refs, parsedYears, orderIndices, err := r.ingestAll()
	if err != nil {
		return nil, err
	}
	r.logger.Info("references ingested", "count", len(refs), "files", len(r.config.InputFiles))

	enricher := enrich.New(r.service, r.logger)
	scorer := score.NewScorer()

	records := make([]*citation.Record, 0, len(refs))
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := enricher.Enrich(ctx, ref)
		enriched := res.Reference

		inputs := score.Inputs{
			RawReference:        enriched.Raw,
			TitleForSimilarity:  enriched.Title,
			MetadataTitle:       enriched.Title,
			MetadataYear:        enriched.Year,
			ParsedYear:          parsedYears[i],
			Authors:             authorNames(enriched.Authors),
			DOIResolved:         res.DOIResolved,
			HasPublishedVersion: res.HasPublishedVersion,
			HasNewerVersion:     len(enriched.Updates) > 0,
			IsPreprint:          enriched.IsPreprint != nil && *enriched.IsPreprint,
			IsPeerReviewed:      score.PeerReviewed(enriched.Type),
			IsRetracted:         enriched.IsRetracted != nil && *enriched.IsRetracted,
			IsOpenAccess:        enriched.IsOpenAccess,
			IndexedIn:           enriched.IndexedIn,
			CitationCount:       enriched.CitationCount,
		}
		records = append(records, scorer.BuildRecord(enriched, inputs))
	}

	pairs := dedupe.Detect(records)
	// Pair indices refer to detection-time order; resolve their display text
	// before sorting reorders the records.
	pairTexts := duplicateTexts(records, pairs)
	records = sortRecords(records, orderIndices, r.config.SortMode)

	refsSorted := referencesOf(records)
	result := &Result{
		RunID:          uuid.New().String(),
		Records:        records,
		AuthorClusters: cluster.Authors(refsSorted),
		OrgClusters:    cluster.Organisations(refsSorted),
		TopicClusters:  cluster.Topics(refsSorted, r.config.TopicClusters),
		DuplicatePairs: pairs,
	}

	if err := r.writeOutputs(result, pairTexts); err != nil {
		return nil, err
	}

	r.logger.Info("pipeline finished",
		"run_id", result.RunID,
		"records", len(result.Records),
		"duplicate_pairs", len(pairs))
	return result, nil
}

// ingestAll reads every input file in order, remembering each reference's
// pre-enrichment year and document position.
func (r *Runner) ingestAll() ([]reference.Reference, []int, []int, error) {
	var refs []reference.Reference
	var parsedYears []int
	var orderIndices []int
	position := 0

	for _, path := range r.config.InputFiles {
		items, err := ingest.FromFile(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("ingesting %s: %w", path, err)
		}
		for _, item := range items {
			refs = append(refs, item)
			parsedYears = append(parsedYears, item.Year)
			orderIndices = append(orderIndices, position)
			position++
		}
	}
	return refs, parsedYears, orderIndices, nil
}

// sortRecords orders records in place per the sort mode: author surname then
// year, year descending, or original document order. Sorting is stable, and
// an unknown mode leaves the order untouched.
func sortRecords(records []*citation.Record, orderIndices []int, mode string) []*citation.Record {
	switch mode {
	case "author":
		sort.SliceStable(records, func(i, j int) bool {
			si, sj := surnameKey(records[i]), surnameKey(records[j])
			if si != sj {
				return si < sj
			}
			return records[i].Reference.Year < records[j].Reference.Year
		})
	case "year":
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Reference.Year > records[j].Reference.Year
		})
	case "order":
		type indexed struct {
			record *citation.Record
			order  int
		}
		combined := make([]indexed, len(records))
		for i, record := range records {
			combined[i] = indexed{record: record, order: orderIndices[i]}
		}
		sort.SliceStable(combined, func(i, j int) bool { return combined[i].order < combined[j].order })
		for i, item := range combined {
			records[i] = item.record
		}
	}
	return records
}

// surnameKey is the first author's surname, lowercased, or "" when the
// record has no usable author.
func surnameKey(record *citation.Record) string {
	authors := record.Reference.Authors
	if len(authors) == 0 {
		return ""
	}
	return strings.ToLower(authors[0].Surname())
}

func duplicateTexts(records []*citation.Record, pairs []citation.DuplicatePair) [][2]string {
	var texts [][2]string
	for _, pair := range pairs {
		texts = append(texts, [2]string{
			titleOrRaw(records[pair.First]),
			titleOrRaw(records[pair.Second]),
		})
	}
	return texts
}

func titleOrRaw(record *citation.Record) string {
	if record.Reference.Title != "" {
		return record.Reference.Title
	}
	return record.Reference.Raw
}

func referencesOf(records []*citation.Record) []reference.Reference {
	refs := make([]reference.Reference, len(records))
	for i, record := range records {
		refs[i] = record.Reference
	}
	return refs
}

func authorNames(authors []reference.Author) []string {
	var names []string
	for _, author := range authors {
		if author.Name != "" {
			names = append(names, author.Name)
		}
	}
	return names
}

// writeOutputs writes the CSV and JSONL exports, the Markdown report, and
// the records database into the output directory.
func (r *Runner) writeOutputs(result *Result, pairTexts [][2]string) error {
	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	result.CSVPath = filepath.Join(r.config.OutputDir, "references.csv")
	err := writeTo(result.CSVPath, func(w io.Writer) error { return report.CSV(w, result.Records) })
	if err != nil {
		return fmt.Errorf("writing %s: %w", result.CSVPath, err)
	}

	result.JSONLPath = filepath.Join(r.config.OutputDir, "records.jsonl")
	err = writeTo(result.JSONLPath, func(w io.Writer) error { return report.JSONL(w, result.Records) })
	if err != nil {
		return fmt.Errorf("writing %s: %w", result.JSONLPath, err)
	}

	markdown := report.Markdown(report.Data{
		RunID:          result.RunID,
		Records:        result.Records,
		AuthorClusters: result.AuthorClusters,
		OrgClusters:    result.OrgClusters,
		TopicClusters:  result.TopicClusters,
		DuplicatePairs: pairTexts,
	})
	result.ReportPath = filepath.Join(r.config.OutputDir, "report.md")
	if err := os.WriteFile(result.ReportPath, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", result.ReportPath, err)
	}

	result.DBPath = filepath.Join(r.config.OutputDir, "records.db")
	db, err := store.Open(result.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	run := store.Run{
		ID:         result.RunID,
		StartedAt:  time.Now(),
		SortMode:   r.config.SortMode,
		InputFiles: r.config.InputFiles,
		Records:    len(result.Records),
	}
	if err := db.InsertRun(run); err != nil {
		return err
	}
	return db.InsertRecords(result.RunID, result.Records)
}

func writeTo(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
