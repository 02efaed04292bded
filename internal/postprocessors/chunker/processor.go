// Package chunker provides a fixed-size, boundary-aware text chunking processor.
package chunker

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// chunkNamespace seeds deterministic chunk IDs.
var chunkNamespace = uuid.MustParse("7d1e3c52-9a4b-5f60-8c2d-3e4f5a6b7c8d")

// separators are tried in order when looking for a place to end a window.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split cuts text into windows of at most chunkSize characters. Each window
// after the first starts overlap characters before the previous one ended.
// A window ends at the last paragraph, line, sentence or word boundary in its
// second half; without one it is cut hard at chunkSize.
// The result depends only on text and the processor settings.
func (p *Processor) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	windows := make([]string, 0, n/(p.chunkSize-p.overlap)+1)
	start := 0
	for start < n {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else {
			end = p.boundary(runes, start, end)
		}

		windows = append(windows, string(runes[start:end]))
		if end >= n {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return windows
}

// boundary returns the end index for the window [start, end).
func (p *Processor) boundary(runes []rune, start, end int) int {
	floor := start + p.chunkSize/2
	window := string(runes[floor:end])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		// idx is a byte offset; convert the prefix back to runes.
		cut := floor + len([]rune(window[:idx+len(sep)]))
		if cut > start {
			return cut
		}
	}
	return end
}

// Process splits the document content into chunks carrying the document's
// source key, tag, title and page. Positions start at doc.FirstPosition. Chunk IDs are derived from (source key, position), so
// identical input always produces identical chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	windows := p.Split(doc.Content)
	chunks := make([]domain.Chunk, 0, len(windows))
	for i, content := range windows {
		position := doc.FirstPosition + i
		chunks = append(chunks, domain.Chunk{
			ID:        ChunkID(doc.SourceKey, position),
			Content:   content,
			SourceKey: doc.SourceKey,
			Tag:       doc.Tag,
			Position:  position,
			Title:     doc.Title,
			Page:      doc.Page,
		})
	}

	return chunks, nil
}

// ChunkID returns the deterministic ID of the chunk at position within sourceKey.
func ChunkID(sourceKey string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(sourceKey+"#"+strconv.Itoa(position))).String()
}
