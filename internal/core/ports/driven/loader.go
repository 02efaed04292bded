package driven

import (
	"context"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// Loader reads a source and returns its text.
// A loader may return several texts for one source (one per PDF page, for
// example); ingestion chunks each one separately and copies its title and
// page hints onto the chunks.
//
// Errors: domain.ErrSourceNotFound, domain.ErrAuthRequired (401),
// domain.ErrAccessDenied (403), domain.ErrLoaderTransient (retryable) or any
// other error for a permanent failure.
type Loader interface {
	// Name returns the loader name for logging.
	Name() string

	// Load reads the source described by desc.
	Load(ctx context.Context, desc domain.SourceDescriptor) ([]domain.LoadedText, error)
}

// LoaderRegistry selects the loader for a descriptor.
type LoaderRegistry interface {
	// For returns the loader for desc, or domain.ErrUnsupportedSourceType.
	For(desc domain.SourceDescriptor) (Loader, error)
}

// LinkDiscoverer extracts links from a single web page. It never follows
// the links it finds.
type LinkDiscoverer interface {
	// DiscoverLinks returns the absolute URLs of anchors on pageURL whose
	// href contains the substring contains, deduplicated in page order.
	DiscoverLinks(ctx context.Context, pageURL, contains string) ([]string, error)
}
