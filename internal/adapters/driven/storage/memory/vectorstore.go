// Package memory provides an in-memory driven.VectorStore for tests and
// ephemeral runs (`store: memory` in the config file, or TAGVAULT_STORE=memory).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
	"github.com/custodia-labs/tagvault/internal/vector"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
	closed bool
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// GetAll returns every chunk ordered by ID.
func (s *VectorStore) GetAll(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}
	return s.filter(func(domain.Chunk) bool { return true }), nil
}

// GetByTag returns the chunks whose tag equals tag exactly.
func (s *VectorStore) GetByTag(_ context.Context, tag string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}
	return s.filter(func(c domain.Chunk) bool { return c.Tag == tag }), nil
}

// GetBySource returns the chunks of one source ordered by position.
func (s *VectorStore) GetBySource(_ context.Context, sourceKey string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}
	chunks := s.filter(func(c domain.Chunk) bool { return c.SourceKey == sourceKey })
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Position < chunks[j].Position
	})
	return chunks, nil
}

// Get retrieves a chunk by ID.
func (s *VectorStore) Get(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	chunk = clone(chunk)
	return &chunk, nil
}

// Search ranks the chunks matching tag (all chunks when tag is empty).
func (s *VectorStore) Search(_ context.Context, query []float32, k int, tag string) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}
	if k <= 0 {
		return nil, nil
	}
	candidates := s.filter(func(c domain.Chunk) bool { return tag == "" || c.Tag == tag })
	return vector.Rank(candidates, query, k), nil
}

// DeleteByIDs removes the given chunks and returns how many existed.
func (s *VectorStore) DeleteByIDs(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errClosed
	}
	removed := 0
	for _, id := range ids {
		if _, ok := s.chunks[id]; ok {
			delete(s.chunks, id)
			removed++
		}
	}
	return removed, nil
}

// Upsert inserts or replaces chunks by ID.
func (s *VectorStore) Upsert(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	for _, c := range chunks {
		s.chunks[c.ID] = clone(c)
	}
	return nil
}

// ReplaceSource swaps the chunks of sourceKey under a single write lock.
func (s *VectorStore) ReplaceSource(_ context.Context, sourceKey string, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if c.SourceKey != sourceKey {
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q",
				domain.ErrInvalidInput, c.ID, c.SourceKey, sourceKey)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	for id, c := range s.chunks {
		if c.SourceKey == sourceKey {
			delete(s.chunks, id)
		}
	}
	for _, c := range chunks {
		s.chunks[c.ID] = clone(c)
	}
	return nil
}

// UpdateContent replaces the text and embedding of one chunk.
func (s *VectorStore) UpdateContent(_ context.Context, id, content string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	chunk, ok := s.chunks[id]
	if !ok {
		return domain.ErrNotFound
	}
	chunk.Content = content
	chunk.Embedding = append([]float32(nil), embedding...)
	s.chunks[id] = chunk
	return nil
}

// DistinctValues returns the sorted distinct tags or source keys.
func (s *VectorStore) DistinctValues(_ context.Context, field string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}

	var pick func(domain.Chunk) string
	switch field {
	case driven.FieldTag:
		pick = func(c domain.Chunk) string { return c.Tag }
	case driven.FieldSource:
		pick = func(c domain.Chunk) string { return c.SourceKey }
	default:
		return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, field)
	}

	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, c := range s.chunks {
		v := pick(c)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values, nil
}

// Count returns the number of stored chunks.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errClosed
	}
	return len(s.chunks), nil
}

// Page returns up to limit chunks ordered by ID, skipping offset.
func (s *VectorStore) Page(ctx context.Context, offset, limit int) ([]domain.Chunk, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset %d limit %d", domain.ErrInvalidInput, offset, limit)
	}
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []domain.Chunk{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// Close marks the store unusable. Later calls fail with domain.ErrStoreUnavailable.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var errClosed = fmt.Errorf("memory store closed: %w", domain.ErrStoreUnavailable)

// filter returns copies of the matching chunks ordered by ID. Callers hold the lock.
func (s *VectorStore) filter(keep func(domain.Chunk) bool) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if keep(c) {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clone(c domain.Chunk) domain.Chunk {
	if c.Embedding != nil {
		c.Embedding = append([]float32(nil), c.Embedding...)
	}
	return c
}
