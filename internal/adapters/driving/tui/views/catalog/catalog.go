// Package catalog provides the paged chunk list view for the TUI.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
)

// DefaultPageSize is the number of chunks per page when none is set.
const DefaultPageSize = 10

var errNoCatalog = errors.New("catalog service not available")

// View is the paged chunk list.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	catalog driving.CatalogService
	ctx     context.Context

	page       domain.Page
	pageIndex  int
	pageSize   int
	selected   int
	confirming bool
	loading    bool
	err        error
	width      int
	height     int
}

// NewView creates a new catalog view.
func NewView(s *styles.Styles, km *keymap.KeyMap, catalog driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:   s,
		keymap:   km,
		catalog:  catalog,
		ctx:      context.Background(),
		pageSize: DefaultPageSize,
		width:    80,
		height:   24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetPageSize sets the number of chunks per page.
func (v *View) SetPageSize(size int) {
	if size > 0 {
		v.pageSize = size
	}
}

// Init loads the first page.
func (v *View) Init() tea.Cmd {
	return v.Load(0)
}

// Reload loads the current page again.
func (v *View) Reload() tea.Cmd {
	return v.Load(v.pageIndex)
}

// Load returns a command that loads page pageIndex.
func (v *View) Load(pageIndex int) tea.Cmd {
	v.loading = true
	v.pageIndex = pageIndex
	ctx, catalog, size := v.ctx, v.catalog, v.pageSize
	return func() tea.Msg {
		if catalog == nil {
			return messages.PageLoaded{Err: errNoCatalog}
		}
		page, err := catalog.ListPage(ctx, pageIndex, size)
		return messages.PageLoaded{Page: page, Err: err}
	}
}

// Update handles messages for the catalog view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirming {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.PageLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		// A delete can empty the last page; step back to the new last one.
		if len(msg.Page.Chunks) == 0 && msg.Page.PageIndex > 0 && msg.Page.TotalPages > 0 {
			return v, v.Load(msg.Page.TotalPages - 1)
		}
		v.page = msg.Page
		v.pageIndex = msg.Page.PageIndex
		if v.selected >= len(v.page.Chunks) {
			v.selected = max(len(v.page.Chunks)-1, 0)
		}
		return v, nil

	case messages.ChunkDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.Reload()

	case messages.ChunkSaved:
		if msg.Err == nil {
			return v, v.Reload()
		}

	case messages.ErrorOccurred:
		v.err = msg.Err
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.selected < len(v.page.Chunks)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keymap.NextPage):
		if v.pageIndex+1 < v.page.TotalPages {
			v.selected = 0
			return v, v.Load(v.pageIndex + 1)
		}
	case keymap.Matches(k, v.keymap.PrevPage):
		if v.pageIndex > 0 {
			v.selected = 0
			return v, v.Load(v.pageIndex - 1)
		}
	case keymap.Matches(k, v.keymap.Open):
		if c := v.SelectedChunk(); c != nil {
			chunk := *c
			return v, func() tea.Msg {
				return messages.ChunkSelected{Chunk: chunk, From: messages.ViewCatalog}
			}
		}
	case keymap.Matches(k, v.keymap.Edit):
		if c := v.SelectedChunk(); c != nil {
			chunk := *c
			return v, func() tea.Msg { return messages.EditRequested{Chunk: chunk} }
		}
	case keymap.Matches(k, v.keymap.Delete):
		if v.SelectedChunk() != nil {
			v.confirming = true
		}
	case keymap.Matches(k, v.keymap.Reload):
		return v, v.Reload()
	case keymap.Matches(k, v.keymap.Search):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
	case keymap.Matches(k, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case keymap.Matches(k, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

// handleConfirmKey handles the delete confirmation prompt.
func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirming = false
	if !keymap.Matches(msg.String(), v.keymap.Confirm) {
		return v, nil
	}
	c := v.SelectedChunk()
	if c == nil {
		return v, nil
	}
	return v, DeleteCmd(v.ctx, v.catalog, c.ID)
}

// DeleteCmd returns a command that deletes one chunk.
func DeleteCmd(ctx context.Context, catalog driving.CatalogService, id string) tea.Cmd {
	return func() tea.Msg {
		if catalog == nil {
			return messages.ChunkDeleted{ID: id, Err: errNoCatalog}
		}
		return messages.ChunkDeleted{ID: id, Err: catalog.DeleteChunk(ctx, id)}
	}
}

// View renders the catalog view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Chunks (%d)", v.page.TotalChunks)))
	b.WriteString("\n\n")

	switch {
	case v.loading && len(v.page.Chunks) == 0:
		b.WriteString(v.styles.Muted.Render("Loading chunks..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case v.page.TotalChunks == 0:
		b.WriteString(v.styles.Muted.Render("The store is empty. Ingest something with 'tagvault add'."))
	default:
		for i := range v.page.Chunks {
			b.WriteString(list.RenderRow(v.styles, list.Row{Chunk: v.page.Chunks[i], ShowID: true}, i == v.selected, v.width))
			b.WriteString("\n")
		}
	}

	if v.confirming {
		if c := v.SelectedChunk(); c != nil {
			b.WriteString("\n")
			b.WriteString(v.styles.Confirm.Render(
				fmt.Sprintf("Delete chunk %s of %s? [y] yes  [any key] no", list.ShortID(c.ID), c.SourceKey)))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [n/p] page  [enter] view  [e] edit  [d] delete  [/] search  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Page returns the loaded page.
func (v *View) Page() domain.Page {
	return v.page
}

// PageIndex returns the current zero-based page index.
func (v *View) PageIndex() int {
	return v.pageIndex
}

// PageSize returns the number of chunks per page.
func (v *View) PageSize() int {
	return v.pageSize
}

// SelectedIndex returns the selected row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedChunk returns the selected chunk, or nil when the page is empty.
func (v *View) SelectedChunk() *domain.Chunk {
	if v.selected < len(v.page.Chunks) {
		return &v.page.Chunks[v.selected]
	}
	return nil
}

// IsConfirming reports whether the delete prompt is shown.
func (v *View) IsConfirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
