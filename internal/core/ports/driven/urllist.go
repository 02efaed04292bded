package driven

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// URLListStore persists the registered URL list.
type URLListStore interface {
	// Load returns the decoded entries and the lines that could not be
	// decoded. A missing file yields no entries and no error.
	Load(ctx context.Context) ([]domain.URLListEntry, []domain.MalformedLine, error)

	// Save replaces the whole list atomically.
	Save(ctx context.Context, entries []domain.URLListEntry) error
}
