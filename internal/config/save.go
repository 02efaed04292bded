package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Save writes cfg to path as YAML or TOML, chosen by the file extension.
// Durations are written in their string form ("60s") so the file reads
// back through Load unchanged. Credentials are never written.
func Save(cfg *Config, path string) error {
	settings := cfg.settings()

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(settings)
	case ".toml":
		data, err = toml.Marshal(settings)
	default:
		return invalid("cannot write config with extension %q, use .yaml or .toml", ext)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// Write with restricted permissions
	return os.WriteFile(path, data, 0600)
}

// settings returns cfg as the nested key layout Load reads.
func (c *Config) settings() map[string]any {
	origins := c.Server.CORSOrigins
	if origins == nil {
		origins = []string{}
	}

	return map[string]any{
		"user_agent": c.UserAgent,
		"data_dir":   c.DataDir,
		"url_list":   c.URLList,
		"store":      c.Store,
		"embedding": map[string]any{
			"provider":   c.Embedding.Provider,
			"model":      c.Embedding.Model,
			"base_url":   c.Embedding.BaseURL,
			"dimensions": c.Embedding.Dimensions,
			"timeout":    c.Embedding.Timeout.String(),
			"retry": map[string]any{
				"attempts": c.Embedding.Retry.Attempts,
				"initial":  c.Embedding.Retry.Initial.String(),
				"max":      c.Embedding.Retry.Max.String(),
			},
		},
		"ingest": map[string]any{
			"chunk_size":    c.Ingest.ChunkSize,
			"chunk_overlap": c.Ingest.ChunkOverlap,
			"source_key":    c.Ingest.SourceKey,
			"rate_limit":    c.Ingest.RateLimit,
			"rate_burst":    c.Ingest.RateBurst,
		},
		"search": map[string]any{
			"default_k": c.Search.DefaultK,
		},
		"catalog": map[string]any{
			"page_size":        c.Catalog.PageSize,
			"editor_page_size": c.Catalog.EditorPageSize,
		},
		"server": map[string]any{
			"listen":       c.Server.Listen,
			"cors_origins": origins,
		},
		"logging": map[string]any{
			"level":       c.Logging.Level,
			"format":      c.Logging.Format,
			"buffer_size": c.Logging.BufferSize,
		},
	}
}
