package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/luiscosio/CiteIQ/internal/citation"
)

// Title truncation lengths by context.
const (
	ListTitleMaxLen   = 60 // list command table rows
	DetailTitleMaxLen = 70 // lookup detail view
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	Email             string `json:"email,omitempty"`
	CacheDir          string `json:"cache_dir,omitempty"`
	SortMode          string `json:"sort_mode,omitempty"`
	TopicClusters     int    `json:"topic_clusters,omitempty"`
	Pause             string `json:"pause,omitempty"`
	CrossrefEndpoint  string `json:"crossref_endpoint,omitempty"`
	OpenAlexEndpoint  string `json:"openalex_endpoint,omitempty"`
	UnpaywallEndpoint string `json:"unpaywall_endpoint,omitempty"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorsShort joins author names with "et al." beyond maxCount.
func formatAuthorsShort(names []string, maxCount int) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) > maxCount {
		names = append(append([]string(nil), names[:maxCount]...), "et al.")
	}
	return strings.Join(names, ", ")
}

// formatFlags renders flags as a comma-separated list.
func formatFlags(flags []citation.Flag) string {
	if len(flags) == 0 {
		return ""
	}
	parts := make([]string, len(flags))
	for i, flag := range flags {
		parts[i] = string(flag)
	}
	return strings.Join(parts, ", ")
}

// formatScore renders a score value the way the report exports do.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
