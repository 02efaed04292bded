package driving

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// URLListService manages the registered URL list.
type URLListService interface {
	// Load returns the registered entries and any malformed lines.
	Load(ctx context.Context) ([]domain.URLListEntry, []domain.MalformedLine, error)

	// Register replaces the list with urls, all labelled tag.
	Register(ctx context.Context, urls []string, tag string) (domain.MergeResult, error)

	// Discover reads one page, collects the links whose href contains
	// contains and registers them under tag.
	Discover(ctx context.Context, pageURL, contains, tag string) (domain.MergeResult, error)

	// IngestAll ingests every registered entry with per-entry isolation.
	IngestAll(ctx context.Context) (domain.BatchSummary, error)
}
