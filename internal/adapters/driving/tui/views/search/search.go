// Package search provides the tag-scoped search view for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
)

// ErrNoSearchService is reported when a search runs without a service.
var ErrNoSearchService = errors.New("search service is required")

// View is the search view: a tag field, a query field and the results.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	tag       *input.Field
	query     *input.Field
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	tagService    driving.TagService
	ctx           context.Context

	tags       []string
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing in a field, false = navigating results
}

// NewView creates a new search view. The tag service may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	tagService driving.TagService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:        s,
		keymap:        km,
		tag:           input.NewField(s, "Tag", domain.AllTags, 128),
		query:         input.NewField(s, "Query", "Enter search query...", 512),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		tagService:    tagService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
	v.query.Focus()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and loads the known tags.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.query.Init(), v.loadTags())
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.TagsLoaded:
		if msg.Err == nil {
			v.tags = msg.Tags
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	if v.focusInput {
		switch {
		case msg.Type == tea.KeyEsc:
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewCatalog} }
		case keymap.Matches(k, v.keymap.NextField), msg.Type == tea.KeyShiftTab:
			v.switchField()
			return v, nil
		case msg.Type == tea.KeyEnter:
			query := strings.TrimSpace(v.query.Value())
			if query == "" {
				return v, nil
			}
			v.err = nil
			v.statusbar.SetState(status.StateLoading)
			v.statusbar.SetMessage("Searching...")
			return v, v.performSearch(query, strings.TrimSpace(v.tag.Value()))
		}

		var cmd tea.Cmd
		if v.tag.Focused() {
			v.tag, cmd = v.tag.Update(msg)
		} else {
			v.query, cmd = v.query.Update(msg)
		}
		return v, cmd
	}

	// Results mode
	switch {
	case msg.Type == tea.KeyEsc, keymap.Matches(k, v.keymap.Search):
		v.focusInput = true
		return v, v.query.Focus()
	case keymap.Matches(k, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(k, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(k, v.keymap.Open):
		if r := v.list.SelectedResult(); r != nil {
			chunk := r.Chunk
			return v, func() tea.Msg {
				return messages.ChunkSelected{Chunk: chunk, From: messages.ViewSearch}
			}
		}
	case keymap.Matches(k, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

// switchField moves focus between the tag and query fields.
func (v *View) switchField() {
	if v.tag.Focused() {
		v.tag.Blur()
		v.query.Focus()
		return
	}
	v.query.Blur()
	v.tag.Focus()
}

// performSearch executes a search and returns results.
func (v *View) performSearch(query, tag string) tea.Cmd {
	ctx, svc := v.ctx, v.searchService
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}

		results, err := svc.Search(ctx, query, domain.SearchOptions{Tag: tag})
		return messages.SearchCompleted{Query: query, Tag: tag, Results: results, Err: err}
	}
}

// loadTags fetches the tag list for the hint line.
func (v *View) loadTags() tea.Cmd {
	if v.tagService == nil {
		return nil
	}
	ctx, svc := v.ctx, v.tagService
	return func() tea.Msg {
		tags, err := svc.ListTags(ctx)
		return messages.TagsLoaded{Tags: tags, Err: err}
	}
}

// handleSearchCompleted processes search results.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage(fmt.Sprintf("%d results", len(msg.Results)))

	if len(msg.Results) > 0 {
		v.focusInput = false
		v.tag.Blur()
		v.query.Blur()
	}
}

// View renders the search view.
func (v *View) View() string {
	sections := make([]string, 0, 12)

	sections = append(sections, v.styles.Title.Render("Search"), "")
	sections = append(sections, v.tag.View(), v.query.View())

	if len(v.tags) > 0 {
		sections = append(sections, v.styles.Muted.Render("Tags: "+strings.Join(v.tags, ", ")))
	}
	sections = append(sections, "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "")
	sections = append(sections, v.renderHelp())
	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHelp renders the help footer for the current mode.
func (v *View) renderHelp() string {
	if v.focusInput {
		return v.styles.Help.Render("[enter] search  [tab] switch field  [esc] back")
	}
	return v.styles.Help.Render("[↑/↓] navigate  [enter] open  [/] new search  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.tag.SetWidth(width)
	v.query.SetWidth(width)
	v.list.SetDimensions(width, height-12)
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.query.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.query.SetValue(query)
}

// Tag returns the current tag filter.
func (v *View) Tag() string {
	return v.tag.Value()
}

// SetTag sets the tag filter.
func (v *View) SetTag(tag string) {
	v.tag.SetValue(tag)
}

// TagFocused reports whether the tag field has focus.
func (v *View) TagFocused() bool {
	return v.tag.Focused()
}

// Tags returns the loaded tag hints.
func (v *View) Tags() []string {
	return v.tags
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to input mode with empty fields.
func (v *View) Reset() tea.Cmd {
	v.focusInput = true
	v.tag.Blur()
	v.tag.SetValue("")
	v.query.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	return tea.Batch(v.query.Focus(), v.loadTags())
}

// InputFocused returns whether a field has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
