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

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService provides tag-scoped similarity search.
type SearchService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	log      *logger.Logger

	defaultLimit int
	retry        RetryPolicy
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithDefaultLimit sets the number of results returned when a query does
// not give one.
func WithDefaultLimit(k int) SearchOption {
	return func(s *SearchService) {
		if k > 0 {
			s.defaultLimit = k
		}
	}
}

// WithSearchRetryPolicy sets the timeout and retry policy for query embedding.
func WithSearchRetryPolicy(p RetryPolicy) SearchOption {
	return func(s *SearchService) {
		s.retry = p.withDefaults()
	}
}

// NewSearchService creates a new search service.
func NewSearchService(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	log *logger.Logger,
	opts ...SearchOption,
) *SearchService {
	if log == nil {
		log = logger.Nop()
	}
	s := &SearchService{
		store:        store,
		embedder:     embedder,
		log:          log.With("component", "search"),
		defaultLimit: domain.DefaultSearchLimit,
		retry:        DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search embeds query and returns up to Limit chunks ranked by similarity.
// A concrete tag restricts candidates before ranking, so fewer than Limit
// results come back when fewer chunks carry the tag.
func (s *SearchService) Search(
	ctx context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if opts.Limit < 0 {
		return nil, errs.FromDomain(
			fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput), "search")
	}
	if opts.Limit == 0 {
		opts.Limit = s.defaultLimit
	}
	if s.embedder == nil {
		return nil, errs.FromDomain(domain.ErrEmbeddingUnavailable, "search")
	}

	tag := opts.TagFilter()
	vec, err := retryCall(ctx, s.retry, s.log, "embed query", func(ctx context.Context) ([]float32, error) {
		return s.embedder.Embed(ctx, query)
	})
	if err != nil {
		return nil, errs.FromDomain(fmt.Errorf("embed query: %w", err), "search")
	}

	hits, err := s.store.Search(ctx, vec, opts.Limit, tag)
	if err != nil {
		return nil, errs.FromDomain(fmt.Errorf("vector search: %w", err), "search", errs.Field("tag", tag))
	}

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{Chunk: hit.Chunk, Score: hit.Similarity}
	}

	s.log.Debug("search finished", "tag", tag, "limit", opts.Limit, "results", len(results))
	return results, nil
}
