package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCmd_RequiresTag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watch", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--tag is required")
}

func TestWatchCmd_RequiresPath(t *testing.T) {
	_, err := execute(t, "watch", "--tag", "eng")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestWatchCmd_InitialSyncThenStops(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89}, 0600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// cobra keeps a subcommand's context once set, so set it directly
	watchCmd.SetContext(ctx)
	defer watchCmd.SetContext(context.Background())

	out, err := execute(t, "watch", dir, "--tag", "eng")

	require.NoError(t, err)
	assert.Contains(t, out, "Watching")
	assert.Contains(t, out, "(tag eng)")
	require.Len(t, ts.ingest.ingests, 1)
	assert.Equal(t, filepath.Join(dir, "notes.txt"), ts.ingest.ingests[0].Source)
}

func TestWatchCmd_NoService(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "watch", t.TempDir(), "--tag", "eng")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}
