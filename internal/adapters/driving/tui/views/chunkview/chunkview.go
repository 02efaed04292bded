// Package chunkview provides the single chunk view for the TUI.
package chunkview

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/views/catalog"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
)

// View shows the full text of one chunk.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	catalog driving.CatalogService
	ctx     context.Context

	chunk        *domain.Chunk
	from         messages.ViewType
	lines        []string
	scrollOffset int
	confirming   bool
	width        int
	height       int
	err          error
}

// NewView creates a new chunk view.
func NewView(s *styles.Styles, km *keymap.KeyMap, catalogService driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		catalog: catalogService,
		ctx:     context.Background(),
		from:    messages.ViewCatalog,
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetChunk shows chunk; esc returns to from.
func (v *View) SetChunk(chunk domain.Chunk, from messages.ViewType) {
	v.chunk = &chunk
	v.from = from
	v.scrollOffset = 0
	v.confirming = false
	v.err = nil
	v.wrapContent()
}

// SetContent replaces the text of the shown chunk after an edit.
func (v *View) SetContent(id, content string) {
	if v.chunk == nil || v.chunk.ID != id {
		return
	}
	v.chunk.Content = content
	v.wrapContent()
	if v.scrollOffset > v.maxScrollOffset() {
		v.scrollOffset = v.maxScrollOffset()
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the chunk view.
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

	case messages.ChunkDeleted:
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case k == "pgup" || k == "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case k == "pgdown" || k == "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case k == "home" || k == "g":
		v.scrollOffset = 0
	case k == "end" || k == "G":
		v.scrollOffset = v.maxScrollOffset()
	case keymap.Matches(k, v.keymap.Edit):
		if v.chunk != nil {
			chunk := *v.chunk
			return v, func() tea.Msg { return messages.EditRequested{Chunk: chunk} }
		}
	case keymap.Matches(k, v.keymap.Delete):
		if v.chunk != nil {
			v.confirming = true
		}
	case keymap.Matches(k, v.keymap.Back):
		from := v.from
		return v, func() tea.Msg { return messages.ViewChanged{View: from} }
	case keymap.Matches(k, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

// handleConfirmKey handles the delete confirmation prompt.
func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirming = false
	if !keymap.Matches(msg.String(), v.keymap.Confirm) || v.chunk == nil {
		return v, nil
	}
	return v, catalog.DeleteCmd(v.ctx, v.catalog, v.chunk.ID)
}

// wrapContent wraps the content to fit the view width.
func (v *View) wrapContent() {
	if v.chunk == nil || v.chunk.Content == "" {
		v.lines = nil
		return
	}

	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	rawLines := strings.Split(v.chunk.Content, "\n")
	v.lines = make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		runes := []rune(line)
		for len(runes) > contentWidth {
			v.lines = append(v.lines, string(runes[:contentWidth]))
			runes = runes[contentWidth:]
		}
		v.lines = append(v.lines, string(runes))
	}
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Title, metadata, separator, scroll indicator and help
	return max(v.height-8, 1)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the chunk view.
func (v *View) View() string {
	var b strings.Builder

	if v.chunk == nil {
		b.WriteString(v.styles.Muted.Render("No chunk selected."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	b.WriteString(v.styles.Title.Render(list.Label(*v.chunk)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("ID: "+v.chunk.ID) + "  " + v.styles.Tag.Render("Tag: "+v.chunk.Tag))
	if v.chunk.Title != "" {
		b.WriteString("  " + v.styles.Source.Render("Title: "+v.chunk.Title))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No content)"))
		b.WriteString("\n")
	}

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		percentage := 0
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage,
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.lines)),
			len(v.lines))))
	}

	if v.confirming {
		b.WriteString("\n")
		b.WriteString(v.styles.Confirm.Render("Delete this chunk? [y] yes  [any key] no"))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [e] edit  [d] delete  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
}

// Chunk returns the shown chunk.
func (v *View) Chunk() *domain.Chunk {
	return v.chunk
}

// From returns the view esc returns to.
func (v *View) From() messages.ViewType {
	return v.from
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// LineCount returns the number of wrapped lines.
func (v *View) LineCount() int {
	return len(v.lines)
}

// IsConfirming reports whether the delete prompt is shown.
func (v *View) IsConfirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
