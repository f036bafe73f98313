// Package config handles the global CiteIQ configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/citeiq/config.yml.
// Every field can also be supplied per invocation via flags or CITEIQ_*
// environment variables, which take priority.
type GlobalConfig struct {
	Email             string `yaml:"email,omitempty"`
	CacheDir          string `yaml:"cache_dir,omitempty"`
	CrossrefEndpoint  string `yaml:"crossref_endpoint,omitempty"`
	OpenAlexEndpoint  string `yaml:"openalex_endpoint,omitempty"`
	UnpaywallEndpoint string `yaml:"unpaywall_endpoint,omitempty"`
	SortMode          string `yaml:"sort_mode,omitempty"`
	TopicClusters     int    `yaml:"topic_clusters,omitempty"`
	Pause             string `yaml:"pause,omitempty"` // duration string, e.g. 200ms
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "citeiq"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// SortModes lists the supported sort_mode values.
var SortModes = []string{"author", "year", "order"}

var validate = validator.New(validator.WithRequiredStructEnabled())

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/citeiq/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	// Expand tilde in cache_dir
	if cfg.CacheDir != "" {
		cfg.CacheDir = ExpandPath(cfg.CacheDir)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// SaveGlobalConfig writes the global configuration, creating the config
// directory if needed.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	globalConfigCache = cfg
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment value when set, falling back to the
// config file value.
func GetConfigValue(envKey, configValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configValue
}

// loadOrEmpty returns the global config, or an empty one when the file is
// unreadable. The getters below stay usable on a broken config file; the
// config command surfaces the load error itself.
func loadOrEmpty() *GlobalConfig {
	cfg, err := LoadGlobalConfig()
	if err != nil || cfg == nil {
		return &GlobalConfig{}
	}
	return cfg
}

// GetEmail returns the contact email, preferring CITEIQ_EMAIL.
func GetEmail() string {
	return GetConfigValue("CITEIQ_EMAIL", loadOrEmpty().Email)
}

// GetCacheDir returns the cache directory, preferring CITEIQ_CACHE_DIR.
func GetCacheDir() string {
	return ExpandPath(GetConfigValue("CITEIQ_CACHE_DIR", loadOrEmpty().CacheDir))
}

// GetCrossrefEndpoint returns the Crossref base URL override, preferring
// CITEIQ_CROSSREF_ENDPOINT. Empty means the built-in default.
func GetCrossrefEndpoint() string {
	return GetConfigValue("CITEIQ_CROSSREF_ENDPOINT", loadOrEmpty().CrossrefEndpoint)
}

// GetOpenAlexEndpoint returns the OpenAlex base URL override, preferring
// CITEIQ_OPENALEX_ENDPOINT. Empty means the built-in default.
func GetOpenAlexEndpoint() string {
	return GetConfigValue("CITEIQ_OPENALEX_ENDPOINT", loadOrEmpty().OpenAlexEndpoint)
}

// GetUnpaywallEndpoint returns the Unpaywall base URL override, preferring
// CITEIQ_UNPAYWALL_ENDPOINT. Empty means the built-in default.
func GetUnpaywallEndpoint() string {
	return GetConfigValue("CITEIQ_UNPAYWALL_ENDPOINT", loadOrEmpty().UnpaywallEndpoint)
}

// ValidateEmail checks that the value is a plausible email address.
// Empty is allowed (not yet configured).
func ValidateEmail(email string) error {
	if err := validate.Var(email, "omitempty,email"); err != nil {
		return fmt.Errorf("invalid email: %s", email)
	}
	return nil
}

// ValidateSortMode checks that the value is a supported sort mode.
// Empty is allowed (defaults to author).
func ValidateSortMode(mode string) error {
	if err := validate.Var(mode, "omitempty,oneof=author year order"); err != nil {
		return fmt.Errorf("invalid sort_mode: %s (valid: %v)", mode, SortModes)
	}
	return nil
}

// ValidatePause checks that the value parses as a non-negative duration.
// Empty is allowed (defaults to the built-in pause).
func ValidatePause(value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid pause: %s (want a duration like 200ms)", value)
	}
	if d < 0 {
		return fmt.Errorf("invalid pause: %s (must not be negative)", value)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
