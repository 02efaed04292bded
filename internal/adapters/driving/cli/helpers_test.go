package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/tagvault/internal/config"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
)

// mockIngestService records ingestion calls.
type mockIngestService struct {
	ingests    []domain.IngestRequest
	removed    []string
	ingestFunc func(source, tag string) (int, error)
	removeN    int
	removeErr  error
}

func (m *mockIngestService) Ingest(_ context.Context, source, tag string) (int, error) {
	m.ingests = append(m.ingests, domain.IngestRequest{Source: source, Tag: tag})
	if m.ingestFunc != nil {
		return m.ingestFunc(source, tag)
	}
	return 3, nil
}

func (m *mockIngestService) RemoveSource(_ context.Context, source string) (int, error) {
	m.removed = append(m.removed, source)
	return m.removeN, m.removeErr
}

func (m *mockIngestService) IngestBatch(ctx context.Context, items []domain.IngestRequest) domain.BatchSummary {
	summary := domain.BatchSummary{}
	for _, item := range items {
		n, err := m.Ingest(ctx, item.Source, item.Tag)
		result := domain.BatchItemResult{Source: item.Source, Tag: item.Tag}
		if err != nil {
			result.Kind = domain.ErrorKind(err)
			result.Error = err.Error()
			summary.Failed = append(summary.Failed, result)
			continue
		}
		result.Chunks = n
		summary.Succeeded = append(summary.Succeeded, result)
	}
	return summary
}

// mockSearchService returns canned results and records options.
type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	gotQuery string
	gotOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.gotQuery = query
	m.gotOpts = opts
	return m.results, m.err
}

// mockTagService returns a fixed tag list.
type mockTagService struct {
	tags []string
	err  error
}

func (m *mockTagService) ListTags(_ context.Context) ([]string, error) {
	return m.tags, m.err
}

// mockCatalogService pages over a slice.
type mockCatalogService struct {
	chunks    []domain.Chunk
	gotIndex  int
	gotSize   int
	edited    map[string]string
	deleteErr error
}

func (m *mockCatalogService) ListPage(_ context.Context, pageIndex, pageSize int) (domain.Page, error) {
	m.gotIndex = pageIndex
	m.gotSize = pageSize
	total := len(m.chunks)
	page := domain.Page{
		PageIndex:   pageIndex,
		PageSize:    pageSize,
		TotalChunks: total,
		TotalPages:  (total + pageSize - 1) / pageSize,
		Chunks:      []domain.Chunk{},
	}
	if start := pageIndex * pageSize; start < total {
		page.Chunks = append(page.Chunks, m.chunks[start:min(start+pageSize, total)]...)
	}
	return page, nil
}

func (m *mockCatalogService) Get(_ context.Context, id string) (*domain.Chunk, error) {
	for i := range m.chunks {
		if m.chunks[i].ID == id {
			c := m.chunks[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: chunk %s", domain.ErrNotFound, id)
}

func (m *mockCatalogService) DeleteChunk(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.chunks {
		if m.chunks[i].ID == id {
			m.chunks = append(m.chunks[:i:i], m.chunks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, id)
}

func (m *mockCatalogService) EditChunk(_ context.Context, id, text string) error {
	if _, err := m.Get(context.Background(), id); err != nil {
		return err
	}
	if m.edited == nil {
		m.edited = make(map[string]string)
	}
	m.edited[id] = text
	return nil
}

// mockURLListService records URL list operations.
type mockURLListService struct {
	entries     []domain.URLListEntry
	malformed   []domain.MalformedLine
	summary     domain.BatchSummary
	result      domain.MergeResult
	gotURLs     []string
	gotTag      string
	gotPage     string
	gotContains string
}

func (m *mockURLListService) Load(_ context.Context) ([]domain.URLListEntry, []domain.MalformedLine, error) {
	return m.entries, m.malformed, nil
}

func (m *mockURLListService) Register(_ context.Context, urls []string, tag string) (domain.MergeResult, error) {
	m.gotURLs = urls
	m.gotTag = tag
	return m.result, nil
}

func (m *mockURLListService) Discover(_ context.Context, pageURL, contains, tag string) (domain.MergeResult, error) {
	m.gotPage = pageURL
	m.gotContains = contains
	m.gotTag = tag
	return m.result, nil
}

func (m *mockURLListService) IngestAll(_ context.Context) (domain.BatchSummary, error) {
	return m.summary, nil
}

// mockCredentials records the credentials set after a prompt.
type mockCredentials struct {
	username string
	password string
}

func (m *mockCredentials) SetCredentials(username, password string) {
	m.username = username
	m.password = password
}

func (m *mockCredentials) HasCredentials() bool {
	return m.username != ""
}

// Interface compliance checks.
var (
	_ driving.IngestService  = (*mockIngestService)(nil)
	_ driving.SearchService  = (*mockSearchService)(nil)
	_ driving.TagService     = (*mockTagService)(nil)
	_ driving.CatalogService = (*mockCatalogService)(nil)
	_ driving.URLListService = (*mockURLListService)(nil)
	_ CredentialSetter       = (*mockCredentials)(nil)
)

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	ingest      *mockIngestService
	search      *mockSearchService
	tags        *mockTagService
	catalog     *mockCatalogService
	urls        *mockURLListService
	credentials *mockCredentials
	config      *config.Config
}

func sampleChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:        fmt.Sprintf("id-%02d", i),
			SourceKey: "handbook.pdf",
			Tag:       "hr",
			Position:  i,
			Title:     "Handbook",
			Page:      i/5 + 1,
			Content:   fmt.Sprintf("paragraph %d", i),
		}
	}
	return chunks
}

// setupTestServices installs mock services and returns a cleanup func.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWith()
	return cleanup
}

// setupTestServicesWith installs mock services and returns them.
func setupTestServicesWith() (*testServices, func()) {
	ts := &testServices{
		ingest: &mockIngestService{},
		search: &mockSearchService{results: []domain.SearchResult{
			{Chunk: domain.Chunk{ID: "id-01", SourceKey: "handbook.pdf", Tag: "hr", Position: 1,
				Title: "Handbook", Page: 2, Content: "Employees get\n25 days of leave."}, Score: 0.91},
		}},
		tags:        &mockTagService{tags: []string{"eng", "hr"}},
		catalog:     &mockCatalogService{chunks: sampleChunks(25)},
		urls:        &mockURLListService{},
		credentials: &mockCredentials{},
		config:      config.Default(),
	}

	SetServices(&Services{
		Ingest:      ts.ingest,
		Search:      ts.search,
		Tags:        ts.tags,
		Catalog:     ts.catalog,
		URLs:        ts.urls,
		Credentials: ts.credentials,
		Config:      ts.config,
	})

	return ts, func() { SetServices(nil) }
}

// resetFlags returns every flag of cmd and its children to its default,
// since cobra keeps flag values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

// executeWithInput runs the root command with stdin set to input.
func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
