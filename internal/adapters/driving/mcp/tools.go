package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// defaultBrowseSize is the page size used when browse gets none.
const defaultBrowseSize = 20

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar chunks for"`
	Tag   string `json:"tag,omitempty" jsonschema:"restrict results to this tag; empty or all searches every tag"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput represents a single stored chunk.
type ChunkOutput struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Tag      string  `json:"tag"`
	Position int     `json:"position"`
	Title    string  `json:"title,omitempty"`
	Page     int     `json:"page,omitempty"`
	Content  string  `json:"content"`
	Score    float64 `json:"score,omitempty"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Source string `json:"source" jsonschema:"a file path (.txt, .md, .pdf) or an http(s) URL"`
	Tag    string `json:"tag" jsonschema:"the tag every chunk of the source gets"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// ListTagsOutput is the output schema for the list_tags tool.
type ListTagsOutput struct {
	Tags []string `json:"tags"`
}

// BrowseInput is the input schema for the browse tool.
type BrowseInput struct {
	Page int `json:"page,omitempty" jsonschema:"zero-based page index"`
	Size int `json:"size,omitempty" jsonschema:"chunks per page (default 20)"`
}

// BrowseOutput is the output schema for the browse tool.
type BrowseOutput struct {
	Chunks      []ChunkOutput `json:"chunks"`
	Page        int           `json:"page"`
	TotalPages  int           `json:"total_pages"`
	TotalChunks int           `json:"total_chunks"`
}

// DeleteChunkInput is the input schema for the delete_chunk tool.
type DeleteChunkInput struct {
	ID string `json:"id" jsonschema:"the chunk ID to delete"`
}

// DeleteChunkOutput is the output schema for the delete_chunk tool.
type DeleteChunkOutput struct {
	Deleted string `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the stored chunks most similar to a query, optionally within one tag",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Load a file or web page and replace its stored chunks under a tag",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_tags",
		Description: "List the tags present in the store",
	}, s.handleListTags)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "browse",
		Description: "List stored chunks one page at a time, ordered by ID",
	}, s.handleBrowse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_chunk",
		Description: "Delete one stored chunk by ID",
	}, s.handleDeleteChunk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if s.ports.Search == nil {
		return nil, SearchOutput{}, errUnavailable
	}

	opts := domain.SearchOptions{Tag: input.Tag, Limit: input.Limit}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = chunkOutput(&results[i].Chunk)
		output.Results[i].Score = results[i].Score
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errUnavailable
	}

	n, err := s.ports.Ingest.Ingest(ctx, input.Source, input.Tag)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{Source: input.Source, Chunks: n}, nil
}

// handleListTags handles the list_tags tool invocation.
func (s *Server) handleListTags(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListTagsOutput, error) {
	if s.ports.Tags == nil {
		return nil, ListTagsOutput{}, errUnavailable
	}

	tags, err := s.ports.Tags.ListTags(ctx)
	if err != nil {
		return nil, ListTagsOutput{}, err
	}
	if tags == nil {
		tags = []string{}
	}
	return nil, ListTagsOutput{Tags: tags}, nil
}

// handleBrowse handles the browse tool invocation.
func (s *Server) handleBrowse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BrowseInput,
) (*mcp.CallToolResult, BrowseOutput, error) {
	if s.ports.Catalog == nil {
		return nil, BrowseOutput{}, errUnavailable
	}

	size := input.Size
	if size <= 0 {
		size = defaultBrowseSize
	}

	page, err := s.ports.Catalog.ListPage(ctx, input.Page, size)
	if err != nil {
		return nil, BrowseOutput{}, err
	}

	output := BrowseOutput{
		Chunks:      make([]ChunkOutput, len(page.Chunks)),
		Page:        page.PageIndex,
		TotalPages:  page.TotalPages,
		TotalChunks: page.TotalChunks,
	}
	for i := range page.Chunks {
		output.Chunks[i] = chunkOutput(&page.Chunks[i])
	}
	return nil, output, nil
}

// handleDeleteChunk handles the delete_chunk tool invocation.
func (s *Server) handleDeleteChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteChunkInput,
) (*mcp.CallToolResult, DeleteChunkOutput, error) {
	if s.ports.Catalog == nil {
		return nil, DeleteChunkOutput{}, errUnavailable
	}

	if err := s.ports.Catalog.DeleteChunk(ctx, input.ID); err != nil {
		return nil, DeleteChunkOutput{}, err
	}
	return nil, DeleteChunkOutput{Deleted: input.ID}, nil
}

func chunkOutput(c *domain.Chunk) ChunkOutput {
	return ChunkOutput{
		ID:       c.ID,
		Source:   c.SourceKey,
		Tag:      c.Tag,
		Position: c.Position,
		Title:    c.Title,
		Page:     c.Page,
		Content:  c.Content,
	}
}
