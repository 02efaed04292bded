package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/config"
	"github.com/custodia-labs/tagvault/internal/errs"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "tagvault/1.0", cfg.UserAgent)
	assert.Equal(t, "urlslist.txt", cfg.URLList)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, 60*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 3, cfg.Embedding.Retry.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Embedding.Retry.Initial)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Retry.Max)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 200, cfg.Ingest.ChunkOverlap)
	assert.Equal(t, "basename", cfg.Ingest.SourceKey)
	assert.Equal(t, 5, cfg.Search.DefaultK)
	assert.Equal(t, 10, cfg.Catalog.EditorPageSize)
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Listen)
	assert.Equal(t, 500, cfg.Logging.BufferSize)
	assert.NotContains(t, cfg.DataDir, "~", "home directory expanded")
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tagvault.yaml")

	content := `
data_dir: /var/lib/tagvault
embedding:
  provider: openai
  model: text-embedding-3-small
  timeout: 10s
ingest:
  source_key: absolute
server:
  listen: "0.0.0.0:9999"
  cors_origins: ["http://localhost:3000"]
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/tagvault", cfg.DataDir)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, 10*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, "absolute", cfg.Ingest.SourceKey)
	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Listen)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TAGVAULT_SERVER_LISTEN", "10.0.0.1:8080")
	t.Setenv("TAGVAULT_INGEST_CHUNK_SIZE", "500")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Server.Listen)
	assert.Equal(t, 500, cfg.Ingest.ChunkSize)
}

func TestLoad_APIKeyFromOpenAIEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errs.CodeConfigInvalid, errs.CodeOf(err))
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tagvault.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ingest:\n  source_key: fullpath\n"), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest.source_key")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.Provider = "cohere"
	cfg.Ingest.ChunkOverlap = cfg.Ingest.ChunkSize
	cfg.Catalog.PageSize = 0
	cfg.Server.Listen = "no-port"
	cfg.Logging.Format = "xml"
	cfg.Store = "postgres"

	problems := cfg.Validate()
	require.Len(t, problems, 6)
	for _, p := range problems {
		assert.Equal(t, errs.CodeConfigInvalid, errs.CodeOf(p))
	}
}

func TestLoad_MemoryStoreFromEnv(t *testing.T) {
	t.Setenv("TAGVAULT_STORE", "memory")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store)
}

func TestValidate_Defaults(t *testing.T) {
	assert.Empty(t, config.Default().Validate())
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TAGVAULT_EMBEDDING_API_KEY", "")

	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			want := config.Default()
			want.DataDir = "/srv/tagvault"
			want.Embedding.Timeout = 90 * time.Second
			want.Ingest.SourceKey = "absolute"
			want.Server.CORSOrigins = []string{"http://a", "http://b"}

			require.NoError(t, config.Save(want, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

			got, err := config.Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestSave_OmitsCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.Default()
	cfg.Embedding.APIKey = "sk-secret"
	cfg.Auth.Password = "hunter2"

	require.NoError(t, config.Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
	assert.NotContains(t, string(data), "hunter2")
}

func TestSave_UnsupportedExtension(t *testing.T) {
	err := config.Save(config.Default(), filepath.Join(t.TempDir(), "config.ini"))
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".tagvault"), config.ExpandHome("~/.tagvault"))
	assert.Equal(t, "/abs", config.ExpandHome("/abs"))
	assert.Equal(t, "rel/~", config.ExpandHome("rel/~"))
}

func TestURLListPath(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "/data"
	assert.Equal(t, filepath.Join("/data", "urlslist.txt"), cfg.URLListPath())

	cfg.URLList = "/etc/urls.txt"
	assert.Equal(t, "/etc/urls.txt", cfg.URLListPath())
}
