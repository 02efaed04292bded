// Package plaintext loads .txt and .md files verbatim.
package plaintext

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
)

// DefaultMaxFileSize bounds the size of a file the loader will read.
const DefaultMaxFileSize int64 = 64 << 20

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader reads local text files.
type Loader struct {
	maxSize int64
}

// Option configures the loader.
type Option func(*Loader)

// WithMaxFileSize sets the largest file the loader accepts.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxSize = n
		}
	}
}

// New creates a new plain text loader.
func New(opts ...Option) *Loader {
	l := &Loader{maxSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the loader name.
func (l *Loader) Name() string {
	return "plaintext"
}

// Load reads the file named by desc. Invalid UTF-8 sequences are replaced.
func (l *Loader) Load(ctx context.Context, desc domain.SourceDescriptor) ([]domain.LoadedText, error) {
	if desc.Kind != domain.SourceFile {
		return nil, fmt.Errorf("%w: plaintext loader reads files only", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(desc.Raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, desc.Raw)
		}
		return nil, fmt.Errorf("reading %s: %w", desc.Raw, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, desc.Raw)
	}
	if info.Size() > l.maxSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, desc.Raw, l.maxSize)
	}

	data, err := os.ReadFile(desc.Raw)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", desc.Raw, err)
	}

	text := strings.ToValidUTF8(string(data), "�")
	format := "text"
	if desc.Ext() == ".md" {
		format = "markdown"
	}

	return []domain.LoadedText{{
		Text: text,
		Hints: map[string]string{
			"format":         format,
			domain.HintTitle: extractTitle(text, desc.Raw, format),
		},
	}}, nil
}

// extractTitle returns the first markdown heading, or a title derived from
// the file name.
func extractTitle(content, path, format string) string {
	if format == "markdown" {
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "# ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "#"))
			}
		}
	}

	filename := filepath.Base(path)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
