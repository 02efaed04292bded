package mcp

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.opts = opts
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	chunks int
	err    error
	source string
	tag    string
}

func (m *mockIngestService) Ingest(_ context.Context, source, tag string) (int, error) {
	m.source, m.tag = source, tag
	return m.chunks, m.err
}

func (m *mockIngestService) RemoveSource(_ context.Context, _ string) (int, error) {
	return m.chunks, m.err
}

func (m *mockIngestService) IngestBatch(_ context.Context, _ []domain.IngestRequest) domain.BatchSummary {
	return domain.BatchSummary{}
}

// mockTagService is a mock implementation of driving.TagService.
type mockTagService struct {
	tags []string
	err  error
}

func (m *mockTagService) ListTags(_ context.Context) ([]string, error) {
	return m.tags, m.err
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	page    domain.Page
	chunk   *domain.Chunk
	err     error
	deleted string
	index   int
	size    int
}

func (m *mockCatalogService) ListPage(_ context.Context, pageIndex, pageSize int) (domain.Page, error) {
	m.index, m.size = pageIndex, pageSize
	return m.page, m.err
}

func (m *mockCatalogService) Get(_ context.Context, _ string) (*domain.Chunk, error) {
	return m.chunk, m.err
}

func (m *mockCatalogService) DeleteChunk(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = id
	return nil
}

func (m *mockCatalogService) EditChunk(_ context.Context, _, _ string) error {
	return m.err
}
