package driving

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// IngestService loads sources into the store.
type IngestService interface {
	// Ingest loads, chunks and embeds source, then replaces every stored
	// chunk of its source key with the new set. It returns the number of
	// chunks written. On any error the store is unchanged.
	Ingest(ctx context.Context, source, tag string) (int, error)

	// RemoveSource deletes every chunk of source and returns how many were removed.
	RemoveSource(ctx context.Context, source string) (int, error)

	// IngestBatch ingests every item independently. A failing item never
	// stops the others.
	IngestBatch(ctx context.Context, items []domain.IngestRequest) domain.BatchSummary
}
