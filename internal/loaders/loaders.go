// Package loaders selects the loader that reads a source.
//
// Selection is a pure function of the source descriptor: local files are
// matched by extension, http(s) URLs always go to the web loader. Adding a
// format means adding a Kind, a loader package and a line to KindFor.
package loaders

import (
	"fmt"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
)

// Kind identifies a loader variant.
type Kind int

const (
	// KindUnsupported means no loader handles the source.
	KindUnsupported Kind = iota

	// KindPlainText reads .txt, .text and .md files verbatim.
	KindPlainText

	// KindPdf extracts the text of .pdf files.
	KindPdf

	// KindWeb fetches http(s) URLs.
	KindWeb
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlainText:
		return "plaintext"
	case KindPdf:
		return "pdf"
	case KindWeb:
		return "web"
	default:
		return "unsupported"
	}
}

// extensions maps lower-case file extensions to loader kinds.
var extensions = map[string]Kind{
	".txt":  KindPlainText,
	".text": KindPlainText,
	".md":   KindPlainText,
	".pdf":  KindPdf,
}

// KindFor returns the loader kind for desc.
func KindFor(desc domain.SourceDescriptor) Kind {
	if desc.Kind == domain.SourceURL {
		return KindWeb
	}
	if kind, ok := extensions[desc.Ext()]; ok {
		return kind
	}
	return KindUnsupported
}

// Registry holds one loader per kind.
// It implements the LoaderRegistry interface.
type Registry struct {
	loaders map[Kind]driven.Loader
}

var _ driven.LoaderRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[Kind]driven.Loader)}
}

// Register sets the loader used for kind.
func (r *Registry) Register(kind Kind, loader driven.Loader) {
	r.loaders[kind] = loader
}

// For returns the loader for desc.
func (r *Registry) For(desc domain.SourceDescriptor) (driven.Loader, error) {
	kind := KindFor(desc)
	if kind == KindUnsupported {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSourceType, desc.Raw)
	}
	loader, ok := r.loaders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no %s loader configured", domain.ErrUnsupportedSourceType, kind)
	}
	return loader, nil
}
