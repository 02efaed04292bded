package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
	"github.com/custodia-labs/tagvault/internal/loaders"
	"github.com/custodia-labs/tagvault/internal/loaders/plaintext"
	"github.com/custodia-labs/tagvault/internal/logger"
	"github.com/custodia-labs/tagvault/internal/postprocessors"
)

// --- Fakes ---

// fakeEmbedder maps text to its letter frequencies.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failTimes int
	err       error
}

func (e *fakeEmbedder) fail() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return e.err
	}
	if e.failTimes > 0 {
		e.failTimes--
		return fmt.Errorf("%w: provider hiccup", domain.ErrEmbeddingProvider)
	}
	return nil
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if err := e.fail(); err != nil {
		return nil, err
	}
	return letterVector(text), nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if err := e.fail(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letterVector(t)
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int { return 26 }
func (e *fakeEmbedder) ModelName() string { return "letters" }
func (e *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (e *fakeEmbedder) Close() error { return nil }

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func letterVector(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec
}

// fakeWebLoader serves fixed pages by URL.
type fakeWebLoader struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls int
	block bool
	links []string
}

func (l *fakeWebLoader) Name() string { return "web" }

func (l *fakeWebLoader) Load(ctx context.Context, desc domain.SourceDescriptor) ([]domain.LoadedText, error) {
	l.mu.Lock()
	l.calls++
	block := l.block
	err := l.errs[desc.Raw]
	page, ok := l.pages[desc.Raw]
	l.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s returned 404", domain.ErrSourceNotFound, desc.Raw)
	}
	return []domain.LoadedText{{Text: page}}, nil
}

func (l *fakeWebLoader) DiscoverLinks(_ context.Context, pageURL, contains string) ([]string, error) {
	if err := l.errs[pageURL]; err != nil {
		return nil, err
	}
	var out []string
	for _, link := range l.links {
		if strings.Contains(link, contains) {
			out = append(out, link)
		}
	}
	return out, nil
}

func (l *fakeWebLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

var _ driven.LinkDiscoverer = (*fakeWebLoader)(nil)

// --- Fixtures ---

type ingestFixture struct {
	store    *memory.VectorStore
	web      *fakeWebLoader
	registry *loaders.Registry
	embedder *fakeEmbedder
	service  *IngestService
	dir      string
}

func fastRetry() RetryPolicy {
	return RetryPolicy{Attempts: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond, Timeout: time.Second}
}

func newIngestFixture(t *testing.T, opts ...IngestOption) *ingestFixture {
	t.Helper()

	f := &ingestFixture{
		store:    memory.NewVectorStore(),
		web:      &fakeWebLoader{pages: map[string]string{}, errs: map[string]error{}},
		embedder: &fakeEmbedder{},
		dir:      t.TempDir(),
	}

	registry := loaders.NewRegistry()
	registry.Register(loaders.KindPlainText, plaintext.New())
	registry.Register(loaders.KindWeb, f.web)
	f.registry = registry

	opts = append([]IngestOption{WithRetryPolicy(fastRetry())}, opts...)
	f.service = NewIngestService(
		f.store,
		registry,
		postprocessors.NewDefaultPipeline(1000, 200),
		f.embedder,
		logger.Nop(),
		opts...,
	)
	return f
}

// writeFile creates name under the fixture directory and returns its path.
func (f *ingestFixture) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func (f *ingestFixture) sourceChunks(t *testing.T, key string) []domain.Chunk {
	t.Helper()
	chunks, err := f.store.GetBySource(context.Background(), key)
	require.NoError(t, err)
	return chunks
}

func (f *ingestFixture) count(t *testing.T) int {
	t.Helper()
	n, err := f.store.Count(context.Background())
	require.NoError(t, err)
	return n
}

// text2400 has no sentence or word boundaries, so chunk windows are exact.
func text2400() string {
	return strings.Repeat("abcdefghij", 240)
}

func chunkIDs(chunks []domain.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.ID
	}
	return out
}
