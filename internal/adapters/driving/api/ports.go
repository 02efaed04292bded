package api

import (
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
)

// Ports holds the driving ports the REST API uses.
type Ports struct {
	Ingest  driving.IngestService
	Search  driving.SearchService
	Tags    driving.TagService
	Catalog driving.CatalogService

	// URLs is optional; the URL list routes answer 503 without it.
	URLs driving.URLListService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Tags == nil {
		return ErrMissingTagService
	}
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
