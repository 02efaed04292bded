package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/styles"
)

func TestNewField(t *testing.T) {
	f := NewField(styles.DefaultStyles(), "Tag", "all", 64)

	require.NotNil(t, f)
	assert.Equal(t, "Tag", f.Label())
	assert.Equal(t, "", f.Value())
	assert.False(t, f.Focused())
}

func TestNewField_NilStyles(t *testing.T) {
	f := NewField(nil, "Query", "", 0)

	require.NotNil(t, f)
	assert.NotNil(t, f.styles)
}

func TestField_Init(t *testing.T) {
	assert.NotNil(t, NewField(nil, "Query", "", 0).Init())
}

func TestField_UpdateWhenFocused(t *testing.T) {
	f := NewField(nil, "Query", "", 0)
	f.Focus()

	updated, _ := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, f, updated)
	assert.Equal(t, "a", f.Value())
}

func TestField_UpdateWhenBlurredIgnoresKeys(t *testing.T) {
	f := NewField(nil, "Query", "", 0)

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, "", f.Value())
}

func TestField_FocusBlur(t *testing.T) {
	f := NewField(nil, "Query", "", 0)

	f.Focus()
	assert.True(t, f.Focused())

	f.Blur()
	assert.False(t, f.Focused())
}

func TestField_SetValueReset(t *testing.T) {
	f := NewField(nil, "Query", "", 0)

	f.SetValue("leave policy")
	assert.Equal(t, "leave policy", f.Value())

	f.Reset()
	assert.Equal(t, "", f.Value())
}

func TestField_SetWidth(t *testing.T) {
	f := NewField(nil, "Query", "", 0)

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 87, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, 20, f.textinput.Width)
}

func TestField_View(t *testing.T) {
	f := NewField(nil, "Tag", "", 0)
	f.SetValue("eng")

	view := f.View()
	assert.Contains(t, view, "Tag:")
	assert.Contains(t, view, "eng")
}
