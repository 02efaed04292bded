// Package mcp provides an MCP (Model Context Protocol) server adapter for tagvault.
// It lets AI assistants search, ingest and curate the chunk store.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// errUnavailable is returned by tools whose port was not provided.
var errUnavailable = errors.New("mcp: tool not available in this server")
