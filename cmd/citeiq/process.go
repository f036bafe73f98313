package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/luiscosio/CiteIQ/internal/config"
	"github.com/luiscosio/CiteIQ/internal/metadata"
	"github.com/luiscosio/CiteIQ/internal/pipeline"
)

var (
	processOutputDir     string
	processCacheDir      string
	processEmail         string
	processSortMode      string
	processTopicClusters int
	processPause         time.Duration
)

func init() {
	processCmd.Flags().StringVarP(&processOutputDir, "output-dir", "o", "output", "Directory to write the report, exports, and records database")
	processCmd.Flags().StringVar(&processCacheDir, "cache-dir", "", "Directory for the metadata payload cache (default <output-dir>/cache)")
	processCmd.Flags().StringVarP(&processEmail, "email", "e", "", "Contact email sent to Unpaywall and the polite pools")
	processCmd.Flags().StringVarP(&processSortMode, "sort", "s", "", "Sort mode: author, year, or order (default author)")
	processCmd.Flags().IntVarP(&processTopicClusters, "topic-clusters", "k", 0, "Desired number of topic clusters (default 8)")
	processCmd.Flags().DurationVar(&processPause, "pause", metadata.DefaultPause, "Pause between provider requests (0 disables pacing)")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Run the full pipeline over reference files",
	Long: `Run the full pipeline over one or more reference files.

Input files may be plaintext reference lists (.txt), BibTeX databases
(.bib), or PDFs. Every reference is enriched, scored, and checked for
duplicates; the output directory receives report.md, references.csv,
records.jsonl, and records.db.

Examples:
  citeiq process refs.txt
  citeiq process refs.txt library.bib -o review --sort year
  citeiq process paper.pdf --email me@lab.org --pause 500ms`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

// ProcessResponse summarizes one pipeline run.
type ProcessResponse struct {
	RunID          string `json:"run_id"`
	Records        int    `json:"records"`
	Flagged        int    `json:"flagged"`
	DuplicatePairs int    `json:"duplicate_pairs"`
	ReportPath     string `json:"report_path"`
	CSVPath        string `json:"csv_path"`
	JSONLPath      string `json:"jsonl_path"`
	DBPath         string `json:"db_path"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			exitWithError(ExitDataError, "input file %s: %v", path, err)
		}
	}

	cfg := pipeline.Config{
		InputFiles:        args,
		OutputDir:         processOutputDir,
		CacheDir:          processCacheDir,
		Email:             processEmail,
		SortMode:          processSortMode,
		TopicClusters:     processTopicClusters,
		PerRequestPause:   processPause,
		CrossrefEndpoint:  config.GetCrossrefEndpoint(),
		OpenAlexEndpoint:  config.GetOpenAlexEndpoint(),
		UnpaywallEndpoint: config.GetUnpaywallEndpoint(),
	}

	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if cfg.Email == "" {
		cfg.Email = config.GetEmail()
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = config.GetCacheDir()
	}
	if cfg.SortMode == "" {
		cfg.SortMode = global.SortMode
	}
	if cfg.TopicClusters == 0 {
		cfg.TopicClusters = global.TopicClusters
	}
	if !cmd.Flags().Changed("pause") && global.Pause != "" {
		if err := config.ValidatePause(global.Pause); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.PerRequestPause, _ = time.ParseDuration(global.Pause)
	}

	runner, err := pipeline.New(cfg, newLogger())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, metadata.ErrCacheBusy) {
			exitWithError(ExitCacheBusy, "%v", err)
		}
		exitWithError(ExitError, "%v", err)
	}

	flagged := 0
	for _, record := range result.Records {
		if len(record.Flags) > 0 {
			flagged++
		}
	}

	resp := ProcessResponse{
		RunID:          result.RunID,
		Records:        len(result.Records),
		Flagged:        flagged,
		DuplicatePairs: len(result.DuplicatePairs),
		ReportPath:     result.ReportPath,
		CSVPath:        result.CSVPath,
		JSONLPath:      result.JSONLPath,
		DBPath:         result.DBPath,
	}

	if humanOutput {
		fmt.Printf("Processed %d references.\n", resp.Records)
		if resp.Flagged > 0 {
			fmt.Printf("Flagged %d for review (%d possible duplicate pairs).\n", resp.Flagged, resp.DuplicatePairs)
		}
		fmt.Printf("Report saved to %s\n", resp.ReportPath)
	} else {
		outputJSON(resp)
	}

	return nil
}
