package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luiscosio/CiteIQ/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set global configuration values",
	Long: `Get or set global configuration values.

Values are stored in ` + "`~/.config/citeiq/config.yml`" + ` and can be
overridden per invocation by CITEIQ_* environment variables and flags.

Usage:
  citeiq config                      # Show all config
  citeiq config email                # Get specific value
  citeiq config email me@lab.org     # Set value

Keys:
  email               Contact email for Unpaywall and the polite pools
  cache-dir           Metadata payload cache directory
  sort-mode           Default sort mode (author, year, order)
  topic-clusters      Default topic cluster count
  pause               Pause between provider requests (e.g. 200ms)
  crossref-endpoint   Crossref API base URL override
  openalex-endpoint   OpenAlex API base URL override
  unpaywall-endpoint  Unpaywall API base URL override`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("email:              %s\n", cfg.Email)
			fmt.Printf("cache-dir:          %s\n", cfg.CacheDir)
			fmt.Printf("sort-mode:          %s\n", cfg.SortMode)
			fmt.Printf("topic-clusters:     %d\n", cfg.TopicClusters)
			fmt.Printf("pause:              %s\n", cfg.Pause)
			fmt.Printf("crossref-endpoint:  %s\n", cfg.CrossrefEndpoint)
			fmt.Printf("openalex-endpoint:  %s\n", cfg.OpenAlexEndpoint)
			fmt.Printf("unpaywall-endpoint: %s\n", cfg.UnpaywallEndpoint)
		} else {
			outputJSON(ConfigResponse{
				Email:             cfg.Email,
				CacheDir:          cfg.CacheDir,
				SortMode:          cfg.SortMode,
				TopicClusters:     cfg.TopicClusters,
				Pause:             cfg.Pause,
				CrossrefEndpoint:  cfg.CrossrefEndpoint,
				OpenAlexEndpoint:  cfg.OpenAlexEndpoint,
				UnpaywallEndpoint: cfg.UnpaywallEndpoint,
			})
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		value, ok := configValue(cfg, normalizedKey)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(normalizedKey, "-", "_"): value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]

	switch normalizedKey {
	case "email":
		if err := config.ValidateEmail(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.Email = value

	case "cache-dir":
		cfg.CacheDir = config.ExpandPath(value)

	case "sort-mode":
		if err := config.ValidateSortMode(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.SortMode = value

	case "topic-clusters":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			exitWithError(ExitConfigError, "invalid topic_clusters: %s (want a positive integer)", value)
		}
		cfg.TopicClusters = n

	case "pause":
		if err := config.ValidatePause(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.Pause = value

	case "crossref-endpoint":
		cfg.CrossrefEndpoint = value

	case "openalex-endpoint":
		cfg.OpenAlexEndpoint = value

	case "unpaywall-endpoint":
		cfg.UnpaywallEndpoint = value

	default:
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if err := config.SaveGlobalConfig(cfg); err != nil {
		if humanOutput {
			fmt.Fprintf(os.Stderr, "error: saving config: %v\n", err)
		} else {
			outputJSON(ErrorResponse{Error: fmt.Sprintf("saving config: %v", err)})
		}
		os.Exit(ExitError)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", normalizedKey, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
		})
	}

	return nil
}

// configValue reads one config field by normalized key.
func configValue(cfg *config.GlobalConfig, key string) (string, bool) {
	switch key {
	case "email":
		return cfg.Email, true
	case "cache-dir":
		return cfg.CacheDir, true
	case "sort-mode":
		return cfg.SortMode, true
	case "topic-clusters":
		if cfg.TopicClusters == 0 {
			return "", true
		}
		return strconv.Itoa(cfg.TopicClusters), true
	case "pause":
		return cfg.Pause, true
	case "crossref-endpoint":
		return cfg.CrossrefEndpoint, true
	case "openalex-endpoint":
		return cfg.OpenAlexEndpoint, true
	case "unpaywall-endpoint":
		return cfg.UnpaywallEndpoint, true
	}
	return "", false
}

// normalizeKey converts key formats (cache_dir, cache-dir, CacheDir) to a consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
