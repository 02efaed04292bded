package services

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
	"github.com/custodia-labs/tagvault/internal/errs"
)

// Ensure TagService implements the interface.
var _ driving.TagService = (*TagService)(nil)

// TagService lists the tags present in the store. Nothing is cached; every
// call reflects the store as it is.
type TagService struct {
	store driven.VectorStore
}

// NewTagService creates a new tag service.
func NewTagService(store driven.VectorStore) *TagService {
	return &TagService{store: store}
}

// ListTags returns the sorted distinct tags of all stored chunks.
func (s *TagService) ListTags(ctx context.Context) ([]string, error) {
	tags, err := s.store.DistinctValues(ctx, driven.FieldTag)
	if err != nil {
		return nil, errs.FromDomain(err, "search")
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
