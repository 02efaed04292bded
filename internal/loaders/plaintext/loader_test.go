package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew(t *testing.T) {
	l := New()
	require.NotNil(t, l)
	assert.Equal(t, DefaultMaxFileSize, l.maxSize)
	assert.Equal(t, "plaintext", l.Name())
}

func TestLoad_TextFile(t *testing.T) {
	path := writeFile(t, "meeting_notes.txt", "line one\nline two\n")

	texts, err := New().Load(context.Background(), domain.ParseSourceDescriptor(path))
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "line one\nline two\n", texts[0].Text)
	assert.Equal(t, "text", texts[0].Hints["format"])
	assert.Equal(t, "meeting notes", texts[0].Hints["title"])
}

func TestLoad_MarkdownTitle(t *testing.T) {
	path := writeFile(t, "readme.md", "intro\n# Project Guide\nbody")

	texts, err := New().Load(context.Background(), domain.ParseSourceDescriptor(path))
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "markdown", texts[0].Hints["format"])
	assert.Equal(t, "Project Guide", texts[0].Hints["title"])
	assert.Contains(t, texts[0].Text, "# Project Guide")
}

func TestLoad_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	_, err := New().Load(context.Background(), domain.ParseSourceDescriptor(path))
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestLoad_Directory(t *testing.T) {
	_, err := New().Load(context.Background(), domain.ParseSourceDescriptor(t.TempDir()))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_TooLarge(t *testing.T) {
	path := writeFile(t, "big.txt", "0123456789")

	_, err := New(WithMaxFileSize(5)).Load(context.Background(), domain.ParseSourceDescriptor(path))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_RejectsURL(t *testing.T) {
	_, err := New().Load(context.Background(), domain.ParseSourceDescriptor("http://x/a.txt"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_InvalidUTF8Replaced(t *testing.T) {
	path := writeFile(t, "bin.txt", "ok\xffok")

	texts, err := New().Load(context.Background(), domain.ParseSourceDescriptor(path))
	require.NoError(t, err)
	assert.Equal(t, "ok�ok", texts[0].Text)
}

func TestLoad_CancelledContext(t *testing.T) {
	path := writeFile(t, "a.txt", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Load(ctx, domain.ParseSourceDescriptor(path))
	assert.ErrorIs(t, err, context.Canceled)
}
