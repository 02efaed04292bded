// Package editor provides the chunk text editor view for the TUI.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
)

var (
	// ErrEmptyText is shown when saving a blank chunk.
	ErrEmptyText = errors.New("chunk text must not be empty")

	errNoCatalog = errors.New("catalog service not available")
)

// View edits the text of one chunk. Saving re-embeds the chunk.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	catalog  driving.CatalogService
	ctx      context.Context
	textarea textarea.Model

	chunk    *domain.Chunk
	returnTo messages.ViewType
	saving   bool
	err      error
	width    int
	height   int
}

// NewView creates a new editor view.
func NewView(s *styles.Styles, km *keymap.KeyMap, catalogService driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Placeholder = "Chunk text..."

	v := &View{
		styles:   s,
		keymap:   km,
		catalog:  catalogService,
		ctx:      context.Background(),
		textarea: ta,
		returnTo: messages.ViewCatalog,
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open loads chunk into the editor; cancelling or saving returns to returnTo.
func (v *View) Open(chunk domain.Chunk, returnTo messages.ViewType) tea.Cmd {
	v.chunk = &chunk
	v.returnTo = returnTo
	v.saving = false
	v.err = nil
	v.textarea.SetValue(chunk.Content)
	return v.textarea.Focus()
}

// Init returns the cursor blink command.
func (v *View) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the editor view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, v.keymap.Save):
			return v, v.save()
		case keymap.Matches(k, v.keymap.Back):
			if v.saving {
				return v, nil
			}
			v.textarea.Blur()
			returnTo := v.returnTo
			return v, func() tea.Msg { return messages.ViewChanged{View: returnTo} }
		}
		if v.saving {
			return v, nil
		}

	case messages.ChunkSaved:
		v.saving = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.textarea.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.textarea, cmd = v.textarea.Update(msg)
	return v, cmd
}

// save validates the text and returns the command that stores it.
func (v *View) save() tea.Cmd {
	if v.chunk == nil || v.saving {
		return nil
	}
	text := v.textarea.Value()
	if strings.TrimSpace(text) == "" {
		v.err = ErrEmptyText
		return nil
	}

	v.err = nil
	v.saving = true
	ctx, catalog, id := v.ctx, v.catalog, v.chunk.ID
	return func() tea.Msg {
		if catalog == nil {
			return messages.ChunkSaved{ID: id, Err: errNoCatalog}
		}
		return messages.ChunkSaved{ID: id, Err: catalog.EditChunk(ctx, id, text)}
	}
}

// View renders the editor view.
func (v *View) View() string {
	var b strings.Builder

	title := "Edit chunk"
	if v.chunk != nil {
		title = fmt.Sprintf("Edit %s #%d", v.chunk.SourceKey, v.chunk.Position)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.chunk != nil {
		b.WriteString(v.styles.Muted.Render("ID: "+v.chunk.ID) + "  " + v.styles.Tag.Render("Tag: "+v.chunk.Tag))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(v.textarea.View())
	b.WriteString("\n\n")

	switch {
	case v.saving:
		b.WriteString(v.styles.Muted.Render("Saving and re-embedding..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Help.Render("[ctrl+s] save  [esc] cancel"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.textarea.SetWidth(max(width-4, 20))
	v.textarea.SetHeight(max(height-10, 3))
}

// Value returns the edited text.
func (v *View) Value() string {
	return v.textarea.Value()
}

// Chunk returns the chunk being edited.
func (v *View) Chunk() *domain.Chunk {
	return v.chunk
}

// ReturnTo returns the view shown after saving or cancelling.
func (v *View) ReturnTo() messages.ViewType {
	return v.returnTo
}

// Saving reports whether a save is in flight.
func (v *View) Saving() bool {
	return v.saving
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
