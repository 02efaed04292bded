package domain

import "strconv"

// Loader hint keys read during ingestion.
const (
	HintTitle = "title"
	HintPage  = "page"
	HintPages = "pages"
)

// Chunk is a persisted fragment of a Document: its text, the embedding
// computed from that text, and the metadata that groups it.
// A Document itself is never stored; only its Chunks are.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"id"`

	// Content is the text content of this chunk.
	Content string `json:"content"`

	// Embedding is the vector representation for semantic search.
	Embedding []float32 `json:"-"`

	// SourceKey identifies the Document this chunk was derived from.
	SourceKey string `json:"source"`

	// Tag is the label shared by every chunk of the Document.
	Tag string `json:"tag"`

	// Position is the ordinal position within the Document.
	Position int `json:"position"`

	// Title is the document title reported by the loader, if any.
	Title string `json:"title,omitempty"`

	// Page is the 1-based page the chunk was cut from; 0 when the source
	// has no pages.
	Page int `json:"page,omitempty"`
}

// Document is the loaded, not yet chunked content of one source.
type Document struct {
	// SourceKey is the resolved identity of the source.
	SourceKey string

	// Tag labels every chunk derived from this document.
	Tag string

	// Content is the full text content after loading.
	Content string

	// Title and Page are copied onto every chunk.
	Title string
	Page  int

	// FirstPosition is the position of the first chunk cut from Content.
	// Multi-page sources are chunked page by page with positions running on.
	FirstPosition int
}

// LoadedText is one text segment produced by a Loader. PDF loaders return
// one segment per page; other loaders return a single segment.
type LoadedText struct {
	// Text is the extracted plain text.
	Text string

	// Hints carries loader metadata such as the page number or title.
	Hints map[string]string
}

// Title returns the title hint, or "".
func (t LoadedText) Title() string {
	return t.Hints[HintTitle]
}

// Page returns the page hint, or 0 when absent or not a positive number.
func (t LoadedText) Page() int {
	n, err := strconv.Atoi(t.Hints[HintPage])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Page is one page of the chunk catalog.
type Page struct {
	// Chunks on this page, ordered by chunk ID.
	Chunks []Chunk `json:"chunks"`

	// PageIndex is the zero-based page number requested.
	PageIndex int `json:"page"`

	// PageSize is the number of chunks per page.
	PageSize int `json:"size"`

	// TotalPages is ceil(TotalChunks / PageSize).
	TotalPages int `json:"total_pages"`

	// TotalChunks is the number of chunks in the store.
	TotalChunks int `json:"total_chunks"`
}
