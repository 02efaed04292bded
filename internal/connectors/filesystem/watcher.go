// Package filesystem watches local files and directories and keeps their
// chunks in the store current.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
	"github.com/custodia-labs/tagvault/internal/loaders"
	"github.com/custodia-labs/tagvault/internal/logger"
)

// ChangeType describes what happened to a watched file.
type ChangeType int

const (
	// ChangeUpserted means the file was created or written.
	ChangeUpserted ChangeType = iota

	// ChangeRemoved means the file was removed or renamed away.
	ChangeRemoved
)

// String returns the change name.
func (c ChangeType) String() string {
	if c == ChangeRemoved {
		return "removed"
	}
	return "upserted"
}

// Change is one file event.
type Change struct {
	Type ChangeType
	Path string
}

// Watcher reports changes to supported files under its roots.
// Roots may be directories, watched recursively, or single files.
type Watcher struct {
	roots []string
	log   *logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	files   map[string]bool // single-file roots
}

// New creates a watcher for roots. Paths may be file:// URIs.
func New(roots []string, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		path := LocalPath(r)
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		cleaned = append(cleaned, path)
	}
	return &Watcher{
		roots: cleaned,
		log:   log.With("component", "watcher"),
		files: make(map[string]bool),
	}
}

// Roots returns the absolute watched paths.
func (w *Watcher) Roots() []string {
	return w.roots
}

// Files returns every supported file currently under the roots.
func (w *Watcher) Files() ([]string, error) {
	var files []string
	for _, root := range w.roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if supported(root) {
				files = append(files, root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && isHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return files, nil
}

// Watch starts watching and returns a channel of changes. The channel is
// closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	for _, root := range w.roots {
		if err := w.add(fw, root); err != nil {
			fw.Close() //nolint:errcheck,gosec // add error takes precedence
			return nil, err
		}
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	changes := make(chan Change, 64)
	go w.loop(ctx, fw, changes)
	return changes, nil
}

// add registers root: directories recursively, files through their parent.
func (w *Watcher) add(fw *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		w.mu.Lock()
		w.files[root] = true
		w.mu.Unlock()
		if err := fw.Add(filepath.Dir(root)); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && w.inDirectoryRoot(event.Name) {
					if err := w.add(fw, event.Name); err != nil {
						w.log.Warn("cannot watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// handleFsEvent maps an fsnotify event to a change, or nil when the event
// is not about a supported, visible file under the roots.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	path := event.Name
	if isHidden(path) || !supported(path) || !w.covers(path) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeRemoved, Path: path}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil
		}
		return &Change{Type: ChangeUpserted, Path: path}
	default:
		// Chmod alone does not change content
		return nil
	}
}

// covers reports whether path is a watched file root or lies under a
// watched directory root.
func (w *Watcher) covers(path string) bool {
	w.mu.Lock()
	single := w.files[path]
	w.mu.Unlock()
	return single || w.inDirectoryRoot(path)
}

func (w *Watcher) inDirectoryRoot(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		if w.files[root] {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

// Sync ingests every file under the roots, then applies changes as they
// arrive until ctx is cancelled. Failures are logged and never stop it.
func Sync(ctx context.Context, w *Watcher, ingest driving.IngestService, tag string, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	files, err := w.Files()
	if err != nil {
		return err
	}
	requests := make([]domain.IngestRequest, len(files))
	for i, f := range files {
		requests[i] = domain.IngestRequest{Source: f, Tag: tag}
	}
	summary := ingest.IngestBatch(ctx, requests)
	log.Info("initial sync finished", "files", len(files), "failed", len(summary.Failed))

	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck // shutting down

	for change := range changes {
		apply(ctx, ingest, change, tag, log)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

func apply(ctx context.Context, ingest driving.IngestService, change Change, tag string, log *logger.Logger) {
	switch change.Type {
	case ChangeRemoved:
		n, err := ingest.RemoveSource(ctx, change.Path)
		if err != nil {
			log.Warn("remove failed", "path", change.Path, "error", err)
			return
		}
		log.Info("file removed", "path", change.Path, "chunks", n)
	case ChangeUpserted:
		n, err := ingest.Ingest(ctx, change.Path, tag)
		if err != nil {
			// Editors often write empty files before the content lands
			if errors.Is(err, domain.ErrSourceEmpty) {
				log.Debug("skipping empty file", "path", change.Path)
				return
			}
			log.Warn("ingest failed", "path", change.Path, "error", err)
			return
		}
		log.Info("file ingested", "path", change.Path, "chunks", n)
	}
}

// supported reports whether a loader exists for path.
func supported(path string) bool {
	return loaders.KindFor(domain.ParseSourceDescriptor(path)) != loaders.KindUnsupported
}

// isHidden reports whether the final path element starts with a dot.
func isHidden(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
