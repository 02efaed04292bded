package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

func (s *Server) registerRoutes() {
	// Document endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "ingest-document",
		Method:      http.MethodPost,
		Path:        "/api/v1/documents",
		Summary:     "Ingest a file or web page under a tag",
		Description: "Replaces every chunk previously stored for the same source key.",
		Tags:        []string{"documents"},
	}, s.handleIngest)

	huma.Register(s.api, huma.Operation{
		OperationID: "remove-document",
		Method:      http.MethodDelete,
		Path:        "/api/v1/documents",
		Summary:     "Remove every chunk of a source",
		Tags:        []string{"documents"},
	}, s.handleRemove)

	// Retrieval endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search chunks by similarity",
		Tags:        []string{"search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-tags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List distinct tags",
		Tags:        []string{"search"},
	}, s.handleListTags)

	// Catalog endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "list-chunks",
		Method:      http.MethodGet,
		Path:        "/api/v1/chunks",
		Summary:     "List one page of chunks ordered by ID",
		Tags:        []string{"chunks"},
	}, s.handleListChunks)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-chunk",
		Method:      http.MethodGet,
		Path:        "/api/v1/chunks/{id}",
		Summary:     "Get a chunk",
		Tags:        []string{"chunks"},
	}, s.handleGetChunk)

	huma.Register(s.api, huma.Operation{
		OperationID: "edit-chunk",
		Method:      http.MethodPut,
		Path:        "/api/v1/chunks/{id}",
		Summary:     "Replace the text of a chunk and re-embed it",
		Tags:        []string{"chunks"},
	}, s.handleEditChunk)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-chunk",
		Method:        http.MethodDelete,
		Path:          "/api/v1/chunks/{id}",
		Summary:       "Delete a chunk",
		Tags:          []string{"chunks"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteChunk)

	// URL list endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "list-urls",
		Method:      http.MethodGet,
		Path:        "/api/v1/urls",
		Summary:     "Load the URL list",
		Tags:        []string{"urls"},
	}, s.handleListURLs)

	huma.Register(s.api, huma.Operation{
		OperationID: "register-urls",
		Method:      http.MethodPost,
		Path:        "/api/v1/urls",
		Summary:     "Replace the URL list",
		Tags:        []string{"urls"},
	}, s.handleRegisterURLs)

	huma.Register(s.api, huma.Operation{
		OperationID: "discover-urls",
		Method:      http.MethodPost,
		Path:        "/api/v1/urls/discover",
		Summary:     "Register the links found on one page",
		Tags:        []string{"urls"},
	}, s.handleDiscoverURLs)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingest-urls",
		Method:      http.MethodPost,
		Path:        "/api/v1/urls/ingest",
		Summary:     "Ingest every registered URL",
		Tags:        []string{"urls"},
	}, s.handleIngestURLs)
}

// --- Request/Response types for huma ---

type ingestInput struct {
	Body struct {
		Source string `json:"source" minLength:"1" doc:"File path, file:// URI or http(s) URL"`
		Tag    string `json:"tag" minLength:"1" doc:"Tag for every chunk of the source"`
	}
}
type ingestOutput struct {
	Body struct {
		Source string `json:"source"`
		Tag    string `json:"tag"`
		Chunks int    `json:"chunks" doc:"Number of chunks written"`
	}
}

type removeInput struct {
	Source string `query:"source" required:"true" doc:"Source as passed when ingesting"`
}
type removeOutput struct {
	Body struct {
		Source  string `json:"source"`
		Removed int    `json:"removed"`
	}
}

type searchInput struct {
	Body struct {
		Query string `json:"query" minLength:"1"`
		Tag   string `json:"tag,omitempty" doc:"Restrict results to this tag; empty or \"all\" searches every tag"`
		K     int    `json:"k,omitempty" minimum:"0" doc:"Maximum number of results; 0 uses the configured default"`
	}
}
type searchOutput struct {
	Body struct {
		Results []domain.SearchResult `json:"results"`
	}
}

type listTagsOutput struct {
	Body struct {
		Tags []string `json:"tags"`
	}
}

type listChunksInput struct {
	Page int `query:"page" minimum:"0" doc:"0-based page index"`
	Size int `query:"size" minimum:"0" doc:"Chunks per page; 0 uses the configured default"`
}
type listChunksOutput struct {
	Body domain.Page
}

type chunkIDInput struct {
	ID string `path:"id"`
}
type chunkOutput struct {
	Body domain.Chunk
}

type editChunkInput struct {
	ID   string `path:"id"`
	Body struct {
		Text string `json:"text" minLength:"1"`
	}
}

type listURLsOutput struct {
	Body struct {
		Entries   []domain.URLListEntry  `json:"entries"`
		Malformed []domain.MalformedLine `json:"malformed"`
	}
}

type registerURLsInput struct {
	Body struct {
		URLs []string `json:"urls" minItems:"1"`
		Tag  string   `json:"tag" minLength:"1"`
	}
}
type mergeOutput struct {
	Body domain.MergeResult
}

type discoverURLsInput struct {
	Body struct {
		Page     string `json:"page" minLength:"1" doc:"Page whose links are registered"`
		Contains string `json:"contains,omitempty" default:"pageId" doc:"Keep only links containing this text"`
		Tag      string `json:"tag" minLength:"1"`
	}
}

type batchOutput struct {
	Body domain.BatchSummary
}

// --- Handlers ---

func (s *Server) handleIngest(ctx context.Context, input *ingestInput) (*ingestOutput, error) {
	n, err := s.ports.Ingest.Ingest(ctx, input.Body.Source, input.Body.Tag)
	if err != nil {
		s.log.Warn("ingest failed", "source", input.Body.Source, "error", err)
		return nil, toHTTPError(err)
	}
	out := &ingestOutput{}
	out.Body.Source = input.Body.Source
	out.Body.Tag = input.Body.Tag
	out.Body.Chunks = n
	return out, nil
}

func (s *Server) handleRemove(ctx context.Context, input *removeInput) (*removeOutput, error) {
	n, err := s.ports.Ingest.RemoveSource(ctx, input.Source)
	if err != nil {
		return nil, toHTTPError(err)
	}
	out := &removeOutput{}
	out.Body.Source = input.Source
	out.Body.Removed = n
	return out, nil
}

func (s *Server) handleSearch(ctx context.Context, input *searchInput) (*searchOutput, error) {
	results, err := s.ports.Search.Search(ctx, input.Body.Query, domain.SearchOptions{
		Tag:   input.Body.Tag,
		Limit: input.Body.K,
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	out := &searchOutput{}
	out.Body.Results = results
	if out.Body.Results == nil {
		out.Body.Results = []domain.SearchResult{}
	}
	return out, nil
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*listTagsOutput, error) {
	tags, err := s.ports.Tags.ListTags(ctx)
	if err != nil {
		return nil, toHTTPError(err)
	}
	out := &listTagsOutput{}
	out.Body.Tags = tags
	if out.Body.Tags == nil {
		out.Body.Tags = []string{}
	}
	return out, nil
}

func (s *Server) handleListChunks(ctx context.Context, input *listChunksInput) (*listChunksOutput, error) {
	size := input.Size
	if size == 0 {
		size = s.cfg.DefaultPageSize
	}
	page, err := s.ports.Catalog.ListPage(ctx, input.Page, size)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &listChunksOutput{Body: page}, nil
}

func (s *Server) handleGetChunk(ctx context.Context, input *chunkIDInput) (*chunkOutput, error) {
	c, err := s.ports.Catalog.Get(ctx, input.ID)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &chunkOutput{Body: *c}, nil
}

func (s *Server) handleEditChunk(ctx context.Context, input *editChunkInput) (*chunkOutput, error) {
	if err := s.ports.Catalog.EditChunk(ctx, input.ID, input.Body.Text); err != nil {
		return nil, toHTTPError(err)
	}
	c, err := s.ports.Catalog.Get(ctx, input.ID)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &chunkOutput{Body: *c}, nil
}

func (s *Server) handleDeleteChunk(ctx context.Context, input *chunkIDInput) (*struct{}, error) {
	if err := s.ports.Catalog.DeleteChunk(ctx, input.ID); err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{}{}, nil
}

func (s *Server) handleListURLs(ctx context.Context, _ *struct{}) (*listURLsOutput, error) {
	if s.ports.URLs == nil {
		return nil, errURLListUnavailable()
	}
	entries, malformed, err := s.ports.URLs.Load(ctx)
	if err != nil {
		return nil, toHTTPError(err)
	}
	out := &listURLsOutput{}
	out.Body.Entries = entries
	out.Body.Malformed = malformed
	if out.Body.Entries == nil {
		out.Body.Entries = []domain.URLListEntry{}
	}
	if out.Body.Malformed == nil {
		out.Body.Malformed = []domain.MalformedLine{}
	}
	return out, nil
}

func (s *Server) handleRegisterURLs(ctx context.Context, input *registerURLsInput) (*mergeOutput, error) {
	if s.ports.URLs == nil {
		return nil, errURLListUnavailable()
	}
	result, err := s.ports.URLs.Register(ctx, input.Body.URLs, input.Body.Tag)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &mergeOutput{Body: result}, nil
}

func (s *Server) handleDiscoverURLs(ctx context.Context, input *discoverURLsInput) (*mergeOutput, error) {
	if s.ports.URLs == nil {
		return nil, errURLListUnavailable()
	}
	result, err := s.ports.URLs.Discover(ctx, input.Body.Page, input.Body.Contains, input.Body.Tag)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &mergeOutput{Body: result}, nil
}

func (s *Server) handleIngestURLs(ctx context.Context, _ *struct{}) (*batchOutput, error) {
	if s.ports.URLs == nil {
		return nil, errURLListUnavailable()
	}
	summary, err := s.ports.URLs.IngestAll(ctx)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &batchOutput{Body: summary}, nil
}

func errURLListUnavailable() error {
	return huma.Error503ServiceUnavailable("url list not configured")
}
