// Package pdf extracts text from PDF files, one LoadedText per page.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader reads local PDF files.
type Loader struct{}

// New creates a new PDF loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader name.
func (l *Loader) Name() string {
	return "pdf"
}

// Load extracts the plain text of every page. Pages without text are skipped.
func (l *Loader) Load(ctx context.Context, desc domain.SourceDescriptor) (texts []domain.LoadedText, err error) {
	if desc.Kind != domain.SourceFile {
		return nil, fmt.Errorf("%w: pdf loader reads files only", domain.ErrInvalidInput)
	}

	if _, statErr := os.Stat(desc.Raw); statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, desc.Raw)
		}
		return nil, fmt.Errorf("reading %s: %w", desc.Raw, statErr)
	}

	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = fmt.Errorf("parsing pdf %s: %v", desc.Raw, r)
		}
	}()

	f, rdr, err := pdf.Open(desc.Raw)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", desc.Raw, err)
	}
	defer f.Close()

	total := rdr.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := rdr.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("reading page %d of %s: %w", i, desc.Raw, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		texts = append(texts, domain.LoadedText{
			Text: text,
			Hints: map[string]string{
				"format":         "pdf",
				domain.HintPage:  strconv.Itoa(i),
				domain.HintPages: strconv.Itoa(total),
			},
		})
	}

	return texts, nil
}
