package postprocessors

import (
	"context"
	"strings"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/postprocessors/chunker"
)

// Compact trims surrounding whitespace from every chunk and drops chunks
// left empty. Survivors are renumbered from doc.FirstPosition and their IDs
// re-derived, so positions stay dense within the source.
type Compact struct{}

// Name returns "compact".
func (Compact) Name() string { return "compact" }

// Process implements driven.PostProcessor.
func (Compact) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := chunks[:0]
	for _, c := range chunks {
		c.Content = strings.TrimSpace(c.Content)
		if c.Content == "" {
			continue
		}
		c.Position = doc.FirstPosition + len(out)
		c.ID = chunker.ChunkID(doc.SourceKey, c.Position)
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
