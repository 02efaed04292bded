package driven

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// Fields accepted by VectorStore.DistinctValues.
const (
	FieldTag    = "tag"
	FieldSource = "source"
)

// VectorStore persists chunks with their embeddings and answers
// similarity queries. It is the only component that talks to the
// vector backend.
//
// Backend failures are returned wrapping domain.ErrStoreUnavailable.
type VectorStore interface {
	// GetAll returns every chunk ordered by ID.
	GetAll(ctx context.Context) ([]domain.Chunk, error)

	// GetByTag returns the chunks whose tag equals tag exactly.
	GetByTag(ctx context.Context, tag string) ([]domain.Chunk, error)

	// GetBySource returns the chunks of one source ordered by position.
	GetBySource(ctx context.Context, sourceKey string) ([]domain.Chunk, error)

	// Get returns a chunk by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Chunk, error)

	// Search returns the k chunks most similar to query, by descending
	// cosine similarity with ties broken by ascending ID. A non-empty tag
	// restricts candidates to that tag before ranking.
	Search(ctx context.Context, query []float32, k int, tag string) ([]domain.ScoredChunk, error)

	// DeleteByIDs removes the given chunks and returns how many existed.
	// Unknown IDs are ignored.
	DeleteByIDs(ctx context.Context, ids []string) (int, error)

	// Upsert inserts or replaces chunks by ID.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// ReplaceSource atomically deletes every chunk of sourceKey and inserts
	// chunks. Readers observe either the old set or the new one.
	ReplaceSource(ctx context.Context, sourceKey string, chunks []domain.Chunk) error

	// UpdateContent replaces the text and embedding of one chunk in place.
	// Returns domain.ErrNotFound when the chunk does not exist.
	UpdateContent(ctx context.Context, id, content string, embedding []float32) error

	// DistinctValues returns the sorted distinct values of FieldTag or FieldSource.
	DistinctValues(ctx context.Context, field string) ([]string, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Page returns up to limit chunks ordered by ID, skipping offset.
	Page(ctx context.Context, offset, limit int) ([]domain.Chunk, error)

	// Close releases resources.
	Close() error
}
