package api_test

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/errs"
)

type mockIngest struct {
	gotSource string
	gotTag    string
	chunks    int
	err       error
	removed   int
}

func (m *mockIngest) Ingest(_ context.Context, source, tag string) (int, error) {
	m.gotSource = source
	m.gotTag = tag
	if m.err != nil {
		return 0, m.err
	}
	return m.chunks, nil
}

func (m *mockIngest) RemoveSource(_ context.Context, source string) (int, error) {
	m.gotSource = source
	return m.removed, m.err
}

func (m *mockIngest) IngestBatch(_ context.Context, _ []domain.IngestRequest) domain.BatchSummary {
	return domain.BatchSummary{}
}

type mockSearch struct {
	gotQuery string
	gotOpts  domain.SearchOptions
	results  []domain.SearchResult
	err      error
}

func (m *mockSearch) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.gotQuery = query
	m.gotOpts = opts
	return m.results, m.err
}

type mockTags struct {
	tags []string
}

func (m *mockTags) ListTags(_ context.Context) ([]string, error) {
	return m.tags, nil
}

type mockCatalog struct {
	chunks  map[string]domain.Chunk
	gotPage int
	gotSize int
	deleted []string
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{chunks: map[string]domain.Chunk{
		"c1": {ID: "c1", Content: "leave policy", SourceKey: "handbook.pdf", Tag: "hr", Position: 0},
		"c2": {ID: "c2", Content: "deploy guide", SourceKey: "deploy.md", Tag: "eng", Position: 0, Title: "Deploy"},
	}}
}

func (m *mockCatalog) notFound(id string) error {
	return errs.FromDomain(fmt.Errorf("%w: chunk %s", domain.ErrNotFound, id), "catalog")
}

func (m *mockCatalog) ListPage(_ context.Context, pageIndex, pageSize int) (domain.Page, error) {
	m.gotPage = pageIndex
	m.gotSize = pageSize
	return domain.Page{
		Chunks:      []domain.Chunk{m.chunks["c1"]},
		PageIndex:   pageIndex,
		PageSize:    pageSize,
		TotalPages:  2,
		TotalChunks: 2,
	}, nil
}

func (m *mockCatalog) Get(_ context.Context, id string) (*domain.Chunk, error) {
	c, ok := m.chunks[id]
	if !ok {
		return nil, m.notFound(id)
	}
	return &c, nil
}

func (m *mockCatalog) DeleteChunk(_ context.Context, id string) error {
	if _, ok := m.chunks[id]; !ok {
		return m.notFound(id)
	}
	delete(m.chunks, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCatalog) EditChunk(_ context.Context, id, text string) error {
	c, ok := m.chunks[id]
	if !ok {
		return m.notFound(id)
	}
	c.Content = text
	m.chunks[id] = c
	return nil
}

type mockURLs struct {
	entries     []domain.URLListEntry
	gotURLs     []string
	gotTag      string
	gotPage     string
	gotContains string
	summary     domain.BatchSummary
}

func (m *mockURLs) Load(_ context.Context) ([]domain.URLListEntry, []domain.MalformedLine, error) {
	return m.entries, nil, nil
}

func (m *mockURLs) Register(_ context.Context, urls []string, tag string) (domain.MergeResult, error) {
	m.gotURLs = urls
	m.gotTag = tag
	entries := make([]domain.URLListEntry, len(urls))
	for i, u := range urls {
		entries[i] = domain.URLListEntry{URL: u, Tag: tag}
	}
	return domain.MergeResult{Entries: entries, Added: urls, Kept: []string{}, Dropped: []string{}}, nil
}

func (m *mockURLs) Discover(_ context.Context, pageURL, contains, tag string) (domain.MergeResult, error) {
	m.gotPage = pageURL
	m.gotContains = contains
	m.gotTag = tag
	return domain.MergeResult{}, nil
}

func (m *mockURLs) IngestAll(_ context.Context) (domain.BatchSummary, error) {
	return m.summary, nil
}
