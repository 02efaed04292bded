package driven

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// PostProcessor is one stage of the chunking pipeline. The first stage
// gets nil chunks and creates them from doc.Content; later stages rewrite
// the chunks they are given.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns a loaded document into the chunks to embed.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
