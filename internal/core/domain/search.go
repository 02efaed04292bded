package domain

// AllTags is the tag filter value that disables tag restriction.
const AllTags = "all"

// DefaultSearchLimit is the number of results returned when no limit is given.
const DefaultSearchLimit = 5

// SearchOptions configures a search query.
type SearchOptions struct {
	// Tag restricts results to chunks with exactly this tag.
	// Empty or AllTags means unrestricted.
	Tag string

	// Limit is the maximum number of results (k).
	Limit int
}

// TagFilter returns the effective tag restriction, or "" when unrestricted.
func (o SearchOptions) TagFilter() string {
	if o.Tag == AllTags {
		return ""
	}
	return o.Tag
}

// ScoredChunk is a store-level similarity hit.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the cosine similarity with the query vector.
	Similarity float64
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Chunk is the chunk that matched.
	Chunk Chunk `json:"chunk"`

	// Score is the cosine similarity, higher is closer.
	Score float64 `json:"score"`
}
