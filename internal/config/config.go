// Package config loads tagvault settings from defaults, an optional file
// and TAGVAULT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/custodia-labs/tagvault/internal/errs"
)

// Config is the top-level tagvault configuration.
type Config struct {
	UserAgent string          `mapstructure:"user_agent"`
	DataDir   string          `mapstructure:"data_dir"`
	URLList   string          `mapstructure:"url_list"`
	Store     string          `mapstructure:"store"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Search    SearchConfig    `mapstructure:"search"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Dimensions int           `mapstructure:"dimensions"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retry      RetryConfig   `mapstructure:"retry"`
}

// RetryConfig bounds retries of loader and embedding calls.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Initial  time.Duration `mapstructure:"initial"`
	Max      time.Duration `mapstructure:"max"`
}

// IngestConfig controls chunking, source keys and batch throttling.
type IngestConfig struct {
	ChunkSize    int     `mapstructure:"chunk_size"`
	ChunkOverlap int     `mapstructure:"chunk_overlap"`
	SourceKey    string  `mapstructure:"source_key"`
	RateLimit    float64 `mapstructure:"rate_limit"`
	RateBurst    int     `mapstructure:"rate_burst"`
}

// SearchConfig controls retrieval.
type SearchConfig struct {
	DefaultK int `mapstructure:"default_k"`
}

// CatalogConfig controls catalog paging.
type CatalogConfig struct {
	PageSize       int `mapstructure:"page_size"`
	EditorPageSize int `mapstructure:"editor_page_size"`
}

// ServerConfig controls the REST API.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// AuthConfig holds basic auth credentials for web sources.
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Store backends.
const (
	// StoreSQLite persists chunks in data_dir/vectors.db.
	StoreSQLite = "sqlite"

	// StoreMemory keeps chunks in process memory; they are lost on exit.
	StoreMemory = "memory"
)

// DefaultPath returns ~/.tagvault/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".tagvault", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user_agent", "tagvault/1.0")
	v.SetDefault("data_dir", "~/.tagvault/data")
	v.SetDefault("url_list", "urlslist.txt")
	v.SetDefault("store", StoreSQLite)

	v.SetDefault("embedding.provider", "ollama")
	v.SetDefault("embedding.model", "nomic-embed-text")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimensions", 0)
	v.SetDefault("embedding.timeout", "60s")
	v.SetDefault("embedding.retry.attempts", 3)
	v.SetDefault("embedding.retry.initial", "500ms")
	v.SetDefault("embedding.retry.max", "5s")

	v.SetDefault("ingest.chunk_size", 1000)
	v.SetDefault("ingest.chunk_overlap", 200)
	v.SetDefault("ingest.source_key", "basename")
	v.SetDefault("ingest.rate_limit", 2.0)
	v.SetDefault("ingest.rate_burst", 4)

	v.SetDefault("search.default_k", 5)

	v.SetDefault("catalog.page_size", 50)
	v.SetDefault("catalog.editor_page_size", 10)

	v.SetDefault("server.listen", "127.0.0.1:8000")
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.buffer_size", 500)

	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static; a failure here is a programming error.
		panic(fmt.Sprintf("config: decoding defaults: %v", err))
	}
	return &cfg
}

// Load reads configuration from the given path (or defaults only when path
// is empty) with environment variable overrides (prefix TAGVAULT_).
// The file format follows the extension: yaml, toml and json are accepted.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment
	v.SetEnvPrefix("TAGVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("embedding.api_key", "TAGVAULT_EMBEDDING_API_KEY", "OPENAI_API_KEY")

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Errorf(errs.CodeConfigInvalid, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Errorf(errs.CodeConfigInvalid, "unmarshalling config: %w", err)
	}

	cfg.DataDir = ExpandHome(cfg.DataDir)

	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, errs.Errorf(errs.CodeConfigInvalid, "validating config: %w", errors.Join(problems...))
	}

	return &cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// URLListPath returns the URL list location. A relative url_list is
// resolved against the data directory.
func (c *Config) URLListPath() string {
	path := ExpandHome(c.URLList)
	if filepath.IsAbs(path) || c.DataDir == "" {
		return path
	}
	return filepath.Join(ExpandHome(c.DataDir), path)
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var problems []error

	if c.Store != StoreSQLite && c.Store != StoreMemory {
		problems = append(problems, invalid("store must be one of [%s, %s], got %q", StoreSQLite, StoreMemory, c.Store))
	}
	problems = append(problems, c.validateEmbedding()...)
	problems = append(problems, c.validateIngest()...)
	problems = append(problems, c.validatePaging()...)
	problems = append(problems, c.validateServer()...)
	problems = append(problems, c.validateLogging()...)

	return problems
}

func invalid(format string, args ...any) error {
	return errs.Errorf(errs.CodeConfigInvalid, "config: "+format, args...)
}

func (c *Config) validateEmbedding() []error {
	var problems []error

	validProviders := map[string]bool{"ollama": true, "openai": true}
	if !validProviders[c.Embedding.Provider] {
		problems = append(problems, invalid("embedding.provider must be one of [ollama, openai], got %q",
			c.Embedding.Provider))
	}
	if c.Embedding.Model == "" {
		problems = append(problems, invalid("embedding.model must not be empty"))
	}
	if c.Embedding.Dimensions < 0 {
		problems = append(problems, invalid("embedding.dimensions must not be negative, got %d",
			c.Embedding.Dimensions))
	}
	if c.Embedding.Timeout <= 0 {
		problems = append(problems, invalid("embedding.timeout must be greater than 0, got %s",
			c.Embedding.Timeout))
	}
	if c.Embedding.Retry.Attempts < 1 {
		problems = append(problems, invalid("embedding.retry.attempts must be at least 1, got %d",
			c.Embedding.Retry.Attempts))
	}
	if c.Embedding.Retry.Initial <= 0 || c.Embedding.Retry.Max < c.Embedding.Retry.Initial {
		problems = append(problems, invalid("embedding.retry needs 0 < initial <= max, got initial %s max %s",
			c.Embedding.Retry.Initial, c.Embedding.Retry.Max))
	}

	return problems
}

func (c *Config) validateIngest() []error {
	var problems []error

	if c.Ingest.ChunkSize <= 0 {
		problems = append(problems, invalid("ingest.chunk_size must be greater than 0, got %d", c.Ingest.ChunkSize))
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		problems = append(problems, invalid("ingest.chunk_overlap must be in [0, chunk_size), got %d",
			c.Ingest.ChunkOverlap))
	}

	validModes := map[string]bool{"basename": true, "absolute": true}
	if !validModes[c.Ingest.SourceKey] {
		problems = append(problems, invalid("ingest.source_key must be one of [basename, absolute], got %q",
			c.Ingest.SourceKey))
	}
	if c.Ingest.RateLimit < 0 {
		problems = append(problems, invalid("ingest.rate_limit must not be negative, got %g", c.Ingest.RateLimit))
	}

	return problems
}

func (c *Config) validatePaging() []error {
	var problems []error

	if c.Search.DefaultK <= 0 {
		problems = append(problems, invalid("search.default_k must be greater than 0, got %d", c.Search.DefaultK))
	}
	if c.Catalog.PageSize <= 0 {
		problems = append(problems, invalid("catalog.page_size must be greater than 0, got %d", c.Catalog.PageSize))
	}
	if c.Catalog.EditorPageSize <= 0 {
		problems = append(problems, invalid("catalog.editor_page_size must be greater than 0, got %d",
			c.Catalog.EditorPageSize))
	}

	return problems
}

func (c *Config) validateServer() []error {
	if c.Server.Listen == "" {
		return []error{invalid("server.listen must not be empty")}
	}
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return []error{invalid("server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err)}
	}
	return nil
}

func (c *Config) validateLogging() []error {
	var problems []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, invalid("logging.level must be one of [debug, info, warn, error], got %q",
			c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		problems = append(problems, invalid("logging.format must be one of [text, json], got %q", c.Logging.Format))
	}
	if c.Logging.BufferSize <= 0 {
		problems = append(problems, invalid("logging.buffer_size must be greater than 0, got %d",
			c.Logging.BufferSize))
	}

	return problems
}
