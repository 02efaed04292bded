package postprocessors

import (
	"github.com/custodia-labs/tagvault/internal/postprocessors/chunker"
)

// NewDefaultPipeline returns the ingestion pipeline: the chunker followed
// by Compact. Non-positive sizes and negative overlaps fall back to the
// chunker defaults.
func NewDefaultPipeline(chunkSize, overlap int) *Pipeline {
	var opts []chunker.Option
	if chunkSize > 0 {
		opts = append(opts, chunker.WithChunkSize(chunkSize))
	}
	if overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return NewPipeline(chunker.New(opts...), Compact{})
}
