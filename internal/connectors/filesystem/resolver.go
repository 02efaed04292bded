package filesystem

import (
	"path/filepath"
	"strings"
)

// LocalPath turns a file:// URI or a bare path into a cleaned local path.
func LocalPath(uri string) string {
	return filepath.Clean(strings.TrimPrefix(uri, "file://"))
}
