// Package domain defines the core business entities for tagvault.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A stored text fragment with its embedding, source key and tag
//   - SourceDescriptor: A file path or URL a user asked to ingest
//   - URLListEntry: A (url, tag) registration record
//   - Page, SearchResult, BatchSummary: Read models returned by services
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
