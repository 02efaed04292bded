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

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService loads sources, chunks and embeds them, and replaces the
// stored chunks of each source key in a single store call.
//
// Nothing is written until loading, chunking and embedding all succeed, so
// a failed ingestion leaves the previous chunks of the key untouched.
type IngestService struct {
	store    driven.VectorStore
	loaders  driven.LoaderRegistry
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	log      *logger.Logger

	keyMode domain.KeyMode
	retry   RetryPolicy
	locks   keyedMutex
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithKeyMode selects how file paths become source keys.
func WithKeyMode(mode domain.KeyMode) IngestOption {
	return func(s *IngestService) {
		if mode != "" {
			s.keyMode = mode
		}
	}
}

// WithRetryPolicy sets the timeout and retry policy for loader and
// embedding calls.
func WithRetryPolicy(p RetryPolicy) IngestOption {
	return func(s *IngestService) {
		s.retry = p.withDefaults()
	}
}

// NewIngestService creates a new ingest service.
// The embedder may be nil; ingestion then fails with
// domain.ErrEmbeddingUnavailable before anything is loaded.
func NewIngestService(
	store driven.VectorStore,
	loaders driven.LoaderRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	log *logger.Logger,
	opts ...IngestOption,
) *IngestService {
	if log == nil {
		log = logger.Nop()
	}
	s := &IngestService{
		store:    store,
		loaders:  loaders,
		pipeline: pipeline,
		embedder: embedder,
		log:      log.With("component", "ingest"),
		keyMode:  domain.KeyModeBasename,
		retry:    DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// KeyFor returns the source key source would be stored under.
func (s *IngestService) KeyFor(source string) string {
	return domain.ResolveSourceKey(domain.ParseSourceDescriptor(source), s.keyMode)
}

// Ingest loads source, replaces every chunk stored under its key and
// returns the number of chunks written.
func (s *IngestService) Ingest(ctx context.Context, source, tag string) (int, error) {
	n, err := s.ingest(ctx, source, tag)
	if err != nil {
		return 0, errs.FromDomain(err, "ingest", errs.Field("source", source), errs.Field("tag", tag))
	}
	return n, nil
}

func (s *IngestService) ingest(ctx context.Context, source, tag string) (int, error) {
	desc := domain.ParseSourceDescriptor(source)
	tag = strings.TrimSpace(tag)

	if desc.Raw == "" {
		return 0, fmt.Errorf("%w: source is required", domain.ErrInvalidInput)
	}
	if tag == "" {
		return 0, fmt.Errorf("%w: tag is required", domain.ErrInvalidInput)
	}
	if tag == domain.AllTags {
		return 0, fmt.Errorf("%w: tag %q is reserved for unrestricted search", domain.ErrInvalidInput, tag)
	}
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	key := domain.ResolveSourceKey(desc, s.keyMode)
	loader, err := s.loaders.For(desc)
	if err != nil {
		return 0, err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	log := s.log.With("source", key, "tag", tag, "loader", loader.Name())
	log.Debug("loading source")

	texts, err := retryCall(ctx, s.retry, log, "load "+key, func(ctx context.Context) ([]domain.LoadedText, error) {
		return loader.Load(ctx, desc)
	})
	if err != nil {
		return 0, fmt.Errorf("load: %w", err)
	}

	chunks, err := s.chunk(ctx, key, tag, texts)
	if err != nil {
		return 0, err
	}

	contents := make([]string, len(chunks))
	for i := range chunks {
		contents[i] = chunks[i].Content
	}
	vectors, err := retryCall(ctx, s.retry, log, "embed "+key, func(ctx context.Context) ([][]float32, error) {
		return s.embedder.EmbedBatch(ctx, contents)
	})
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingProvider, len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := s.store.ReplaceSource(ctx, key, chunks); err != nil {
		return 0, fmt.Errorf("replace chunks: %w", err)
	}

	log.Info("ingested source", "chunks", len(chunks))
	return len(chunks), nil
}

// RemoveSource deletes every chunk stored under source's key and returns
// how many were removed. Removing an unknown source removes nothing.
func (s *IngestService) RemoveSource(ctx context.Context, source string) (int, error) {
	desc := domain.ParseSourceDescriptor(source)
	if desc.Raw == "" {
		return 0, errs.FromDomain(fmt.Errorf("%w: source is required", domain.ErrInvalidInput), "ingest")
	}
	key := domain.ResolveSourceKey(desc, s.keyMode)

	unlock := s.locks.Lock(key)
	defer unlock()

	chunks, err := s.store.GetBySource(ctx, key)
	if err != nil {
		return 0, errs.FromDomain(err, "ingest", errs.Field("source", key))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = chunks[i].ID
	}
	removed, err := s.store.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, errs.FromDomain(err, "ingest", errs.Field("source", key))
	}

	s.log.Info("removed source", "source", key, "chunks", removed)
	return removed, nil
}

// IngestBatch ingests every item in order. A failing item is recorded in
// the summary and never stops the batch.
func (s *IngestService) IngestBatch(ctx context.Context, items []domain.IngestRequest) domain.BatchSummary {
	summary := domain.BatchSummary{
		Succeeded: make([]domain.BatchItemResult, 0, len(items)),
		Failed:    []domain.BatchItemResult{},
	}

	for _, item := range items {
		result := domain.BatchItemResult{Source: item.Source, Tag: item.Tag}

		if ctx.Err() != nil {
			result.Kind = domain.ErrorKind(ctx.Err())
			result.Error = ctx.Err().Error()
			summary.Failed = append(summary.Failed, result)
			continue
		}

		n, err := s.Ingest(ctx, item.Source, item.Tag)
		if err != nil {
			result.Kind = domain.ErrorKind(err)
			result.Error = err.Error()
			summary.Failed = append(summary.Failed, result)
			s.log.Warn("batch item failed", "source", item.Source, "kind", result.Kind, "error", err)
			continue
		}

		result.Chunks = n
		summary.Succeeded = append(summary.Succeeded, result)
	}

	s.log.Info("batch finished",
		"items", summary.Total(),
		"succeeded", len(summary.Succeeded),
		"failed", len(summary.Failed),
		"chunks", summary.ChunksWritten())
	return summary
}

// chunk runs the pipeline over each non-blank segment. Positions continue
// across segments so a multi-page source keeps one dense position range.
func (s *IngestService) chunk(ctx context.Context, key, tag string, texts []domain.LoadedText) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	loaded := false
	for _, t := range texts {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		loaded = true

		doc := &domain.Document{
			SourceKey:     key,
			Tag:           tag,
			Content:       t.Text,
			Title:         t.Title(),
			Page:          t.Page(),
			FirstPosition: len(chunks),
		}
		out, err := s.pipeline.Process(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("post-process: %w", err)
		}
		chunks = append(chunks, out...)
	}

	if !loaded {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceEmpty, key)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrSourceEmpty, key)
	}
	return chunks, nil
}
