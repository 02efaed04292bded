package chunkview

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// MockCatalogService records deletions.
type MockCatalogService struct {
	DeleteErr error
	Deleted   []string
}

func (m *MockCatalogService) ListPage(_ context.Context, _, _ int) (domain.Page, error) {
	return domain.Page{}, nil
}

func (m *MockCatalogService) Get(_ context.Context, _ string) (*domain.Chunk, error) {
	return nil, domain.ErrNotFound
}

func (m *MockCatalogService) DeleteChunk(_ context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockCatalogService) EditChunk(_ context.Context, _, _ string) error {
	return nil
}

func sampleChunk() domain.Chunk {
	return domain.Chunk{
		ID:        "7f3c2a10-aaaa",
		SourceKey: "handbook.pdf",
		Tag:       "hr",
		Position:  4,
		Content:   "Employees get 25 days.\nPublic holidays are extra.",
	}
}

func longChunk(lines int) domain.Chunk {
	c := sampleChunk()
	parts := make([]string, lines)
	for i := range parts {
		parts[i] = "line"
	}
	c.Content = strings.Join(parts, "\n")
	return c
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.Nil(t, v.Chunk())
	assert.Nil(t, v.Init())
	assert.Contains(t, v.View(), "No chunk selected.")
}

func TestSetChunk(t *testing.T) {
	v := NewView(nil, nil, nil)

	v.SetChunk(sampleChunk(), messages.ViewSearch)

	require.NotNil(t, v.Chunk())
	assert.Equal(t, "7f3c2a10-aaaa", v.Chunk().ID)
	assert.Equal(t, messages.ViewSearch, v.From())
	assert.Equal(t, 2, v.LineCount())

	out := v.View()
	assert.Contains(t, out, "handbook.pdf #4")
	assert.Contains(t, out, "ID: 7f3c2a10-aaaa")
	assert.Contains(t, out, "Tag: hr")
	assert.Contains(t, out, "Public holidays are extra.")
}

func TestSetChunk_ShowsPageAndTitle(t *testing.T) {
	v := NewView(nil, nil, nil)
	c := sampleChunk()
	c.Page = 3
	c.Title = "Staff Handbook"

	v.SetChunk(c, messages.ViewCatalog)

	out := v.View()
	assert.Contains(t, out, "handbook.pdf p.3 #4")
	assert.Contains(t, out, "Title: Staff Handbook")
}

func TestSetChunk_EmptyContent(t *testing.T) {
	v := NewView(nil, nil, nil)
	c := sampleChunk()
	c.Content = ""

	v.SetChunk(c, messages.ViewCatalog)

	assert.Equal(t, 0, v.LineCount())
	assert.Contains(t, v.View(), "(No content)")
}

func TestSetContent(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetChunk(sampleChunk(), messages.ViewCatalog)

	v.SetContent("other", "ignored")
	assert.Equal(t, sampleChunk().Content, v.Chunk().Content)

	v.SetContent("7f3c2a10-aaaa", "rewritten")
	assert.Equal(t, "rewritten", v.Chunk().Content)
	assert.Equal(t, 1, v.LineCount())
}

func TestWrapContent_LongLines(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(24, 20)
	c := sampleChunk()
	c.Content = strings.Repeat("é", 45)

	v.SetChunk(c, messages.ViewCatalog)

	// 24 wide leaves 20 runes per line
	assert.Equal(t, 3, v.LineCount())
}

func TestScrolling(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 18) // 10 visible lines
	v.SetChunk(longChunk(30), messages.ViewCatalog)

	v.Update(keyRunes("j"))
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, v.ScrollOffset())

	v.Update(keyRunes("k"))
	assert.Equal(t, 1, v.ScrollOffset())

	v.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 11, v.ScrollOffset())

	v.Update(keyRunes("G"))
	assert.Equal(t, 20, v.ScrollOffset())

	v.Update(keyRunes("j"))
	assert.Equal(t, 20, v.ScrollOffset())
	assert.Contains(t, v.View(), "[100%] Line 21-30 of 30")

	v.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, 10, v.ScrollOffset())

	v.Update(keyRunes("g"))
	assert.Equal(t, 0, v.ScrollOffset())
}

func TestEscReturnsToOrigin(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetChunk(sampleChunk(), messages.ViewSearch)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSearch}, cmd())
}

func TestEditRequested(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetChunk(sampleChunk(), messages.ViewCatalog)

	_, cmd := v.Update(keyRunes("e"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.EditRequested{Chunk: sampleChunk()}, cmd())
}

func TestEdit_NoChunk(t *testing.T) {
	v := NewView(nil, nil, nil)

	_, cmd := v.Update(keyRunes("e"))

	assert.Nil(t, cmd)
}

func TestDelete_Confirmed(t *testing.T) {
	svc := &MockCatalogService{}
	v := NewView(nil, nil, svc)
	v.SetChunk(sampleChunk(), messages.ViewCatalog)

	v.Update(keyRunes("d"))
	require.True(t, v.IsConfirming())
	assert.Contains(t, v.View(), "Delete this chunk?")

	_, cmd := v.Update(keyRunes("y"))
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ChunkDeleted{ID: "7f3c2a10-aaaa"}, cmd())
	assert.Equal(t, []string{"7f3c2a10-aaaa"}, svc.Deleted)
	assert.False(t, v.IsConfirming())
}

func TestDelete_Cancelled(t *testing.T) {
	svc := &MockCatalogService{}
	v := NewView(nil, nil, svc)
	v.SetChunk(sampleChunk(), messages.ViewCatalog)

	v.Update(keyRunes("d"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.IsConfirming())
	assert.Empty(t, svc.Deleted)
}

func TestDelete_ErrorShown(t *testing.T) {
	v := NewView(nil, nil, &MockCatalogService{DeleteErr: errors.New("locked")})
	v.SetChunk(sampleChunk(), messages.ViewCatalog)

	v.Update(keyRunes("d"))
	_, cmd := v.Update(keyRunes("y"))
	v.Update(cmd())

	assert.EqualError(t, v.Err(), "locked")
	assert.Contains(t, v.View(), "Error: locked")
}

func TestQuit(t *testing.T) {
	v := NewView(nil, nil, nil)

	_, cmd := v.Update(keyRunes("q"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())
}
