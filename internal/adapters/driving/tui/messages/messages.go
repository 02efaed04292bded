// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewCatalog is the paged chunk list.
	ViewCatalog ViewType = iota
	// ViewChunk shows one chunk.
	ViewChunk
	// ViewEditor edits the text of one chunk.
	ViewEditor
	// ViewSearch is the tag-scoped search view.
	ViewSearch
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewCatalog:
		return "catalog"
	case ViewChunk:
		return "chunk"
	case ViewEditor:
		return "editor"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// PageRequested asks the catalog to load a page.
type PageRequested struct {
	PageIndex int
}

// PageLoaded carries one catalog page back to the model.
type PageLoaded struct {
	Page domain.Page
	Err  error
}

// ChunkSelected is sent when a chunk is opened from a list.
type ChunkSelected struct {
	Chunk domain.Chunk

	// From is the view to return to.
	From ViewType
}

// EditRequested opens the editor on a chunk.
type EditRequested struct {
	Chunk domain.Chunk
}

// ChunkSaved signals an edit was stored and re-embedded.
type ChunkSaved struct {
	ID  string
	Err error
}

// ChunkDeleted signals a chunk was deleted.
type ChunkDeleted struct {
	ID  string
	Err error
}

// TagsLoaded carries the tag list.
type TagsLoaded struct {
	Tags []string
	Err  error
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Tag     string
	Results []domain.SearchResult
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
