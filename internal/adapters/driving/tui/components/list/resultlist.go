package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// ResultList shows ranked search hits with a cursor. Rows scroll so the
// cursor stays visible within the height it was given.
type ResultList struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	results  []domain.SearchResult
	selected int
	width    int
	height   int
}

// NewResultList creates an empty result list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		width:  80,
		height: 10,
	}
}

// Init implements tea.Model.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update moves the cursor on up and down keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch k := msg.String(); {
		case keymap.Matches(k, r.keys.Up):
			r.MoveUp()
		case keymap.Matches(k, r.keys.Down):
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the header and the visible rows.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	start, end := r.window()
	lines := make([]string, 0, end-start+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")
	for i := start; i < end; i++ {
		res := r.results[i]
		lines = append(lines, RenderRow(r.styles, Row{
			Chunk:    res.Chunk,
			Score:    res.Score,
			HasScore: true,
		}, i == r.selected, r.width))
	}
	return strings.Join(lines, "\n")
}

// window returns the row range that keeps the cursor on screen.
func (r *ResultList) window() (start, end int) {
	visible := max(r.height-2, 1)
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	return start, min(start+visible, len(r.results))
}

// SetResults replaces the hits and resets the cursor.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current hits.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the cursor index.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected moves the cursor to index if it is in range.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the hit under the cursor, or nil when empty.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves the cursor up one row.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves the cursor down one row.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the area the list renders into.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of hits.
func (r *ResultList) Count() int {
	return len(r.results)
}
