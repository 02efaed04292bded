// Package list renders chunk rows for the catalog and search views.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// Row is one chunk line. Score is shown only when HasScore is set; the
// catalog has no similarity to show, search results do.
type Row struct {
	Chunk    domain.Chunk
	Score    float64
	HasScore bool
	ShowID   bool
}

// RenderRow renders r on one line: the cursor, the chunk label, its tag,
// the score if any and as much collapsed content as fits in width.
func RenderRow(s *styles.Styles, r Row, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}

	label := Label(r.Chunk)
	if r.ShowID {
		label = ShortID(r.Chunk.ID) + " " + label
	}
	score := ""
	if r.HasScore {
		score = fmt.Sprintf("%.2f ", r.Score)
	}

	used := len(cursor) + len([]rune(label)) + len([]rune(r.Chunk.Tag)) + len(score) + 6
	text := Truncate(Collapse(r.Chunk.Content), max(width-used, 10))

	if selected {
		return s.Selected.Render(fmt.Sprintf("%s%s [%s] %s%s", cursor, label, r.Chunk.Tag, score, text))
	}
	line := s.Normal.Render(cursor+label+" ") + s.Tag.Render(r.Chunk.Tag) + " "
	if r.HasScore {
		line += s.Score.Render(score)
	}
	return line + s.Muted.Render(text)
}

// Label names a chunk by its source key, page and position.
func Label(c domain.Chunk) string {
	src := c.SourceKey
	if src == "" {
		src = "(unknown source)"
	}
	if c.Page > 0 {
		return fmt.Sprintf("%s p.%d #%d", src, c.Page, c.Position)
	}
	return fmt.Sprintf("%s #%d", src, c.Position)
}

// Collapse joins the words of s with single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ShortID returns the first eight characters of id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// Truncate shortens s to maxRunes runes, ending in "...".
func Truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(r[:maxRunes])
	}
	return string(r[:maxRunes-3]) + "..."
}
