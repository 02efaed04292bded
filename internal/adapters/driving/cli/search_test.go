package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search stored chunks", searchCmd.Short)
}

func TestSearchCmd_Long(t *testing.T) {
	assert.Contains(t, searchCmd.Long, "cosine")
	assert.Contains(t, searchCmd.Long, "--tag")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestSearchCmd_HasTagFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("tag")
	require.NotNil(t, flag, "tag flag should exist")
	assert.Equal(t, "t", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	out, err := execute(t, "search", "how much leave")

	require.NoError(t, err)
	assert.Equal(t, "how much leave", ts.search.gotQuery)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] handbook.pdf #1 (0.91)")
	assert.Contains(t, out, "Tag: hr  ID: id-01")
	assert.Contains(t, out, "Title: Handbook  Page: 2")
	assert.Contains(t, out, "Employees get 25 days of leave.")
}

func TestSearchCmd_PassesTagAndLimit(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	_, err := execute(t, "search", "leave", "--tag", "hr", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchOptions{Tag: "hr", Limit: 3}, ts.search.gotOpts)
}

func TestSearchCmd_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	_, err := execute(t, "search", "leave", "--tag", "hr")
	require.NoError(t, err)

	_, err = execute(t, "search", "leave")
	require.NoError(t, err)
	assert.Equal(t, "", ts.search.gotOpts.Tag)
}

func TestSearchCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.search.results = nil

	out, err := execute(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "leave", "--json")
	require.NoError(t, err)

	var results []domain.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "id-01", results[0].Chunk.ID)
	assert.Equal(t, 2, results[0].Chunk.Page)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.search.err = domain.ErrEmbeddingUnavailable

	_, err := execute(t, "search", "leave")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestSearchCmd_NoService(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "search", "leave")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestHintLine(t *testing.T) {
	tests := []struct {
		name  string
		chunk domain.Chunk
		want  string
	}{
		{"none", domain.Chunk{}, ""},
		{"title only", domain.Chunk{Title: "Notes"}, "Title: Notes"},
		{"page only", domain.Chunk{Page: 4}, "Page: 4"},
		{"both", domain.Chunk{Title: "Handbook", Page: 2}, "Title: Handbook  Page: 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hintLine(tt.chunk))
		})
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"collapses whitespace", "a\n\n  b\tc", 10, "a b c"},
		{"short text kept", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"counts runes", "héllo wörld", 7, "héllo w..."},
		{"empty", "   ", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snippet(tt.text, tt.max))
		})
	}
}
