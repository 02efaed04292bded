package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/services"
)

func TestURLsList(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.urls.entries = []domain.URLListEntry{
		{URL: "https://wiki.example.com/a", Tag: "hr"},
		{URL: "https://wiki.example.com/b", Tag: "eng"},
	}
	ts.urls.malformed = []domain.MalformedLine{{Line: 3, Text: "garbage", Reason: "missing tag"}}

	out, err := execute(t, "urls", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "https://wiki.example.com/a  [hr]")
	assert.Contains(t, out, "https://wiki.example.com/b  [eng]")
	assert.Contains(t, out, `skipped line 3 (missing tag): "garbage"`)
}

func TestURLsList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "urls", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No URLs registered.")
}

func TestURLsList_JSON(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.urls.entries = []domain.URLListEntry{{URL: "https://x/a", Tag: "hr"}}

	out, err := execute(t, "urls", "list", "--json")
	require.NoError(t, err)

	var got struct {
		Entries []domain.URLListEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ts.urls.entries, got.Entries)
}

func TestURLsRegister(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.urls.result = domain.MergeResult{
		Entries: []domain.URLListEntry{{URL: "https://x/a", Tag: "hr"}, {URL: "https://x/b", Tag: "hr"}},
		Added:   []string{"https://x/b"},
		Kept:    []string{"https://x/a"},
		Dropped: []string{"https://x/old"},
	}

	out, err := execute(t, "urls", "register", "https://x/a", "https://x/b", "--tag", "hr")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/a", "https://x/b"}, ts.urls.gotURLs)
	assert.Equal(t, "hr", ts.urls.gotTag)
	assert.Contains(t, out, "  + https://x/b")
	assert.Contains(t, out, "  - https://x/old")
	assert.Contains(t, out, "1 added, 1 kept, 1 dropped; 2 URLs registered")
}

func TestURLsRegister_RequiresTag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "urls", "register", "https://x/a")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--tag is required")
}

func TestURLsDiscover_DefaultFilter(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	_, err := execute(t, "urls", "discover", "https://wiki.example.com/spaces/HR", "--tag", "hr")

	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.com/spaces/HR", ts.urls.gotPage)
	assert.Equal(t, "pageId", ts.urls.gotContains)
	assert.Equal(t, "hr", ts.urls.gotTag)
}

func TestURLsDiscover_CustomFilter(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	_, err := execute(t, "urls", "discover", "https://x/index", "--tag", "eng", "--contains", "/docs/")

	require.NoError(t, err)
	assert.Equal(t, "/docs/", ts.urls.gotContains)
}

func TestURLsIngest(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.urls.summary = domain.BatchSummary{
		Succeeded: []domain.BatchItemResult{{Source: "https://x/a", Tag: "hr", Chunks: 4}},
		Failed:    []domain.BatchItemResult{{Source: "https://x/b", Tag: "hr", Kind: "authentication_required", Error: "401"}},
	}

	out, err := execute(t, "urls", "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 entries failed")
	assert.Contains(t, out, "  ok      https://x/a: 4 chunks (tag hr)")
	assert.Contains(t, out, "  failed  https://x/b [authentication_required]: 401")
}

func TestURLsIngest_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "urls", "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "No URLs registered.")
}

func TestURLsCmds_NoService(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "urls", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "url list service not configured")
}

func TestURLsIngest_EveryRejectsShortInterval(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "urls", "ingest", "--every", "10s")

	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrRefreshInterval)
}

func TestURLsIngest_EveryRunsUntilCancelled(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.urls.summary = domain.BatchSummary{
		Succeeded: []domain.BatchItemResult{{Source: "https://x/a", Tag: "hr", Chunks: 1}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	urlsIngestCmd.SetContext(ctx)
	defer urlsIngestCmd.SetContext(context.Background())

	out, err := execute(t, "urls", "ingest", "--every", "1h")

	require.NoError(t, err)
	assert.Contains(t, out, "Ingesting the URL list every 1h0m0s")
}
