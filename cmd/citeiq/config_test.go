package main

import (
	"testing"

	"github.com/luiscosio/CiteIQ/internal/config"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"email", "email"},
		{"cache-dir", "cache-dir"},
		{"cache_dir", "cache-dir"},
		{"CACHE_DIR", "cache-dir"},
		{"Sort-Mode", "sort-mode"},
	}

	for _, tt := range tests {
		if got := normalizeKey(tt.in); got != tt.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigValue(t *testing.T) {
	cfg := &config.GlobalConfig{
		Email:             "me@lab.org",
		CacheDir:          "/var/cache/citeiq",
		SortMode:          "year",
		TopicClusters:     12,
		Pause:             "500ms",
		CrossrefEndpoint:  "https://crossref.test",
		OpenAlexEndpoint:  "https://openalex.test",
		UnpaywallEndpoint: "https://unpaywall.test",
	}

	tests := []struct {
		key  string
		want string
	}{
		{"email", "me@lab.org"},
		{"cache-dir", "/var/cache/citeiq"},
		{"sort-mode", "year"},
		{"topic-clusters", "12"},
		{"pause", "500ms"},
		{"crossref-endpoint", "https://crossref.test"},
		{"openalex-endpoint", "https://openalex.test"},
		{"unpaywall-endpoint", "https://unpaywall.test"},
	}

	for _, tt := range tests {
		got, ok := configValue(cfg, tt.key)
		if !ok {
			t.Errorf("configValue(%q) not recognized", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("configValue(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if _, ok := configValue(cfg, "pdf-root"); ok {
		t.Error("configValue() recognized an unknown key")
	}

	if got, _ := configValue(&config.GlobalConfig{}, "topic-clusters"); got != "" {
		t.Errorf("configValue(topic-clusters) on empty config = %q, want empty", got)
	}
}
