// Package tui is the interactive terminal browser for the chunk catalog:
// paging, viewing, editing and deleting chunks, plus tag-scoped search.
package tui

import (
	"errors"

	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
)

var (
	// ErrInvalidPorts is returned when no ports are provided.
	ErrInvalidPorts = errors.New("tui: invalid ports configuration")

	// ErrMissingCatalogService is returned when the catalog service is not provided.
	ErrMissingCatalogService = errors.New("tui: catalog service is required")

	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("tui: search service is required")
)

// Ports are the services the TUI drives.
type Ports struct {
	// Catalog pages, edits and deletes stored chunks.
	Catalog driving.CatalogService

	// Search provides tag-scoped similarity search.
	Search driving.SearchService

	// Tags lists the known tags for the search view. Optional.
	Tags driving.TagService
}

// NewPorts bundles the services.
func NewPorts(
	catalog driving.CatalogService,
	search driving.SearchService,
	tags driving.TagService,
) *Ports {
	return &Ports{
		Catalog: catalog,
		Search:  search,
		Tags:    tags,
	}
}

// Validate reports the first required service that is missing.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
