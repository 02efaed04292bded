package driving

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// CatalogService browses and edits individual stored chunks.
type CatalogService interface {
	// ListPage returns page pageIndex (0-based) of size pageSize, ordered by
	// chunk ID. Pages past the end are empty.
	ListPage(ctx context.Context, pageIndex, pageSize int) (domain.Page, error)

	// Get returns one chunk.
	Get(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteChunk removes one chunk. Unknown IDs return domain.ErrNotFound.
	DeleteChunk(ctx context.Context, id string) error

	// EditChunk replaces the text of one chunk and re-embeds it.
	EditChunk(ctx context.Context, id, text string) error
}
