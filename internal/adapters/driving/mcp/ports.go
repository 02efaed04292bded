package mcp

import (
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Ingest loads sources into the store.
	Ingest driving.IngestService

	// Tags lists the tags in the store.
	Tags driving.TagService

	// Catalog browses and deletes single chunks.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// The other ports are optional; their tools report errUnavailable
	return nil
}
