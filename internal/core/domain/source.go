package domain

import (
	"path/filepath"
	"strings"
)

// SourceKind classifies a source descriptor.
type SourceKind int

const (
	// SourceFile is a local file path.
	SourceFile SourceKind = iota

	// SourceURL is an http or https URL.
	SourceURL
)

// String returns the kind name.
func (k SourceKind) String() string {
	if k == SourceURL {
		return "url"
	}
	return "file"
}

// KeyMode selects how local file paths are turned into source keys.
type KeyMode string

const (
	// KeyModeBasename keys files by base name only. Two files with the same
	// base name in different directories share a key.
	KeyModeBasename KeyMode = "basename"

	// KeyModeAbsolute keys files by their cleaned absolute path.
	KeyModeAbsolute KeyMode = "absolute"
)

// SourceDescriptor is what a caller asks to ingest: a file path or a URL.
type SourceDescriptor struct {
	// Raw is the descriptor exactly as given (trimmed).
	Raw string

	// Kind is SourceURL for http(s) descriptors, SourceFile otherwise.
	Kind SourceKind
}

// ParseSourceDescriptor classifies raw as a URL or a local file path.
func ParseSourceDescriptor(raw string) SourceDescriptor {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return SourceDescriptor{Raw: raw, Kind: SourceURL}
	}
	return SourceDescriptor{Raw: raw, Kind: SourceFile}
}

// Ext returns the lower-cased file extension of a file descriptor,
// or "" for URLs.
func (d SourceDescriptor) Ext() string {
	if d.Kind == SourceURL {
		return ""
	}
	return strings.ToLower(filepath.Ext(d.Raw))
}

// ResolveSourceKey returns the stable identity key for a descriptor.
// URLs are used unchanged. Files are keyed by base name, or by absolute
// path when mode is KeyModeAbsolute. Keys are compared case-sensitively.
func ResolveSourceKey(d SourceDescriptor, mode KeyMode) string {
	if d.Kind == SourceURL {
		return d.Raw
	}
	if mode == KeyModeAbsolute {
		abs, err := filepath.Abs(d.Raw)
		if err == nil {
			return abs
		}
		return filepath.Clean(d.Raw)
	}
	return filepath.Base(d.Raw)
}
