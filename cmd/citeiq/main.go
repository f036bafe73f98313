// Package main provides the citeiq CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/luiscosio/CiteIQ/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

var (
	logLevel  string
	logFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// With SilenceErrors set, cobra's own errors (bad flags, wrong
		// argument counts) would otherwise vanish.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citeiq",
	Short: "Reference list enrichment, scoring, and deduplication",
	Long: `citeiq analyses bibliographic reference lists.

It ingests plaintext, BibTeX, and PDF reference lists, enriches each
entry from Crossref, OpenAlex, and Unpaywall, scores citation quality,
flags duplicates and retractions, and writes a Markdown report plus
CSV/JSONL exports and a queryable SQLite snapshot.

Commands output JSON when piped; on a terminal (or with --human) they
print human-readable output instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for CITEIQ_EMAIL etc.)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", stdoutIsTerminal(), "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
	rootCmd.Version = Version
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newLogger builds the stderr logger configured by the persistent flags.
func newLogger() *slog.Logger {
	logger, err := logging.New(logging.Options{Level: logLevel, Format: logFormat})
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return logger
}
