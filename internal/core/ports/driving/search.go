package driving

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search embeds query and returns the most similar chunks, optionally
	// restricted to one tag. An empty store yields no results and no error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// TagService lists the tags present in the store.
type TagService interface {
	// ListTags returns the sorted distinct tags. It reads the store on every call.
	ListTags(ctx context.Context) ([]string, error)
}
