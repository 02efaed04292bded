// Package postprocessors turns loaded text into chunks ready for embedding.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs its stages in order, feeding each the previous output.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline of stages.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process chunks doc. A document without a source key is rejected, since
// chunk IDs are derived from it.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	switch {
	case doc == nil:
		return nil, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	case doc.SourceKey == "":
		return nil, fmt.Errorf("%w: document has no source key", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		if chunks, err = stage.Process(ctx, doc, chunks); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}
	return chunks, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
