// Package config loads searchcore settings from YAML and exposes the
// admin-controlled cache switches behind a Provider that is consulted on
// every cache call.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when the settings file omits fields.
const (
	DefaultCacheTTLSeconds     = 600
	DefaultCacheMaxEntries     = 4096
	DefaultTopN                = 10
	DefaultMaxTopN             = 100
	DefaultIndexTimeoutSeconds = 5
	DefaultEmbedTimeoutSeconds = 10
)

// Settings is the full searchcore configuration.
type Settings struct {
	Logging   LoggingSettings   `yaml:"logging"`
	Cache     CacheSettings     `yaml:"cache"`
	Search    SearchSettings    `yaml:"search"`
	Metadata  MetadataSettings  `yaml:"metadata"`
	Embedding EmbeddingSettings `yaml:"embedding"`
}

// LoggingSettings configures slog output.
type LoggingSettings struct {
	Level string `yaml:"level"`
}

// CacheSettings configures the search result cache. Enabled and TTLSeconds
// are the operator-facing switches re-read on every cache call.
type CacheSettings struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	RedisAddr  string `yaml:"redis_addr"`  // empty means in-memory store
	MaxEntries int    `yaml:"max_entries"` // in-memory store capacity
}

// SearchSettings configures the merge engine.
type SearchSettings struct {
	DefaultTopN         int `yaml:"default_top_n"`
	MaxTopN             int `yaml:"max_top_n"`
	IndexTimeoutSeconds int `yaml:"index_timeout_seconds"`
	EmbedTimeoutSeconds int `yaml:"embed_timeout_seconds"`
}

// MetadataSettings configures the document metadata store.
type MetadataSettings struct {
	Path string `yaml:"path"`
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider  string `yaml:"provider"` // "static" or "ollama"
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	CacheSize int    `yaml:"cache_size"`
}

// DefaultSettings returns the configuration used when no file is present.
// Caching defaults to on; the settings file turns it off.
func DefaultSettings() Settings {
	s := Settings{}
	s.Cache.Enabled = true
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Cache.TTLSeconds <= 0 {
		s.Cache.TTLSeconds = DefaultCacheTTLSeconds
	}
	if s.Cache.MaxEntries <= 0 {
		s.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if s.Search.DefaultTopN <= 0 {
		s.Search.DefaultTopN = DefaultTopN
	}
	if s.Search.MaxTopN <= 0 {
		s.Search.MaxTopN = DefaultMaxTopN
	}
	if s.Search.IndexTimeoutSeconds <= 0 {
		s.Search.IndexTimeoutSeconds = DefaultIndexTimeoutSeconds
	}
	if s.Search.EmbedTimeoutSeconds <= 0 {
		s.Search.EmbedTimeoutSeconds = DefaultEmbedTimeoutSeconds
	}
	if s.Metadata.Path == "" {
		s.Metadata.Path = "searchcore.db"
	}
	if s.Embedding.Provider == "" {
		s.Embedding.Provider = "static"
	}
}

// Validate checks settings for values that cannot be defaulted away.
func (s *Settings) Validate() error {
	if s.Search.DefaultTopN > s.Search.MaxTopN {
		return fmt.Errorf("search.default_top_n (%d) exceeds search.max_top_n (%d)",
			s.Search.DefaultTopN, s.Search.MaxTopN)
	}
	if s.Embedding.Provider != "static" && s.Embedding.Provider != "ollama" {
		return fmt.Errorf("embedding.provider must be \"static\" or \"ollama\", got %q", s.Embedding.Provider)
	}
	if s.Embedding.Provider == "ollama" && s.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required for the ollama provider")
	}
	return nil
}

// Load reads settings from a YAML file, applies defaults, and validates.
// A missing file yields defaults without error.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	// Unmarshal over defaults so omitted keys keep their default values
	// while explicit keys (including "enabled: false") override them.
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// IndexTimeout returns the per-branch index query timeout.
func (s SearchSettings) IndexTimeout() time.Duration {
	return time.Duration(s.IndexTimeoutSeconds) * time.Second
}

// EmbedTimeout returns the embedding call timeout.
func (s SearchSettings) EmbedTimeout() time.Duration {
	return time.Duration(s.EmbedTimeoutSeconds) * time.Second
}
