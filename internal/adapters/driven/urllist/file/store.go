// Package file stores the URL list as a plain text file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
	"github.com/custodia-labs/tagvault/internal/urllist"
)

// DefaultFileName is the URL list file name used when none is configured.
const DefaultFileName = "urlslist.txt"

// Ensure Store implements the interface.
var _ driven.URLListStore = (*Store)(nil)

// Store reads and atomically rewrites one URL list file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store for the file at path.
// If path is empty, defaults to urlslist.txt in the working directory.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultFileName
	}
	return &Store{path: path}
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Load decodes the file. A missing file is an empty list.
func (s *Store) Load(_ context.Context) ([]domain.URLListEntry, []domain.MalformedLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No list yet
			return []domain.URLListEntry{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading url list %s: %w", s.path, err)
	}

	entries, problems := urllist.Decode(data)
	return entries, problems, nil
}

// Save replaces the file with entries. The new content is written to a
// temporary file in the same directory, synced, then renamed over the
// old file, so readers see either the old or the new list.
func (s *Store) Save(_ context.Context, entries []domain.URLListEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating url list directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp url list: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(urllist.Encode(entries)); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("writing temp url list: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // sync error takes precedence
		return fmt.Errorf("syncing temp url list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp url list: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("setting url list permissions: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing url list: %w", err)
	}
	return nil
}
