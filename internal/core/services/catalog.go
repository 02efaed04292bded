package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
	"github.com/custodia-labs/tagvault/internal/errs"
	"github.com/custodia-labs/tagvault/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService pages through stored chunks and edits or deletes them
// one at a time.
type CatalogService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	log      *logger.Logger
	retry    RetryPolicy
}

// NewCatalogService creates a new catalog service.
// The embedder is only needed by EditChunk.
func NewCatalogService(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	log *logger.Logger,
) *CatalogService {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogService{
		store:    store,
		embedder: embedder,
		log:      log.With("component", "catalog"),
		retry:    DefaultRetryPolicy(),
	}
}

// SetRetryPolicy sets the timeout and retry policy used when re-embedding.
func (s *CatalogService) SetRetryPolicy(p RetryPolicy) {
	s.retry = p.withDefaults()
}

// ListPage returns page pageIndex (zero-based) of the catalog ordered by
// chunk ID. Pages at or beyond TotalPages are empty.
func (s *CatalogService) ListPage(ctx context.Context, pageIndex, pageSize int) (domain.Page, error) {
	if pageSize <= 0 {
		return domain.Page{}, errs.FromDomain(
			fmt.Errorf("%w: page size must be positive, got %d", domain.ErrInvalidInput, pageSize), "catalog")
	}
	if pageIndex < 0 {
		return domain.Page{}, errs.FromDomain(
			fmt.Errorf("%w: page must not be negative, got %d", domain.ErrInvalidInput, pageIndex), "catalog")
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return domain.Page{}, errs.FromDomain(err, "catalog")
	}

	page := domain.Page{
		Chunks:      []domain.Chunk{},
		PageIndex:   pageIndex,
		PageSize:    pageSize,
		TotalPages:  (total + pageSize - 1) / pageSize,
		TotalChunks: total,
	}
	if pageIndex >= page.TotalPages {
		return page, nil
	}

	chunks, err := s.store.Page(ctx, pageIndex*pageSize, pageSize)
	if err != nil {
		return domain.Page{}, errs.FromDomain(err, "catalog")
	}
	page.Chunks = chunks
	return page, nil
}

// Get returns the chunk with id.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	chunk, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDomain(err, "catalog", errs.Field("id", id))
	}
	return chunk, nil
}

// DeleteChunk removes one chunk. An unknown id is domain.ErrNotFound and
// changes nothing.
//
// Deleting a single chunk leaves the rest of its source in place; the
// source is complete again after its next ingestion.
func (s *CatalogService) DeleteChunk(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return errs.FromDomain(err, "catalog", errs.Field("id", id))
	}

	removed, err := s.store.DeleteByIDs(ctx, []string{id})
	if err != nil {
		return errs.FromDomain(err, "catalog", errs.Field("id", id))
	}
	if removed == 0 {
		// Deleted concurrently between the lookup and the delete.
		return errs.FromDomain(fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound), "catalog", errs.Field("id", id))
	}

	s.log.Info("deleted chunk", "id", id)
	return nil
}

// EditChunk replaces the text of a chunk and its embedding.
func (s *CatalogService) EditChunk(ctx context.Context, id, text string) error {
	if strings.TrimSpace(text) == "" {
		return errs.FromDomain(fmt.Errorf("%w: chunk text must not be blank", domain.ErrInvalidInput),
			"catalog", errs.Field("id", id))
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return errs.FromDomain(err, "catalog", errs.Field("id", id))
	}
	if s.embedder == nil {
		return errs.FromDomain(domain.ErrEmbeddingUnavailable, "catalog", errs.Field("id", id))
	}

	vec, err := retryCall(ctx, s.retry, s.log, "embed chunk "+id, func(ctx context.Context) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	})
	if err != nil {
		return errs.FromDomain(fmt.Errorf("embed chunk: %w", err), "catalog", errs.Field("id", id))
	}

	if err := s.store.UpdateContent(ctx, id, text, vec); err != nil {
		return errs.FromDomain(err, "catalog", errs.Field("id", id))
	}

	s.log.Info("edited chunk", "id", id)
	return nil
}
