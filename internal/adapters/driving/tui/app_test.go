package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tagvault/internal/core/domain"
)

func newTestApp(t *testing.T, catalog *MockCatalogService) *App {
	t.Helper()
	app, err := NewApp(NewPorts(catalog, &MockSearchService{}, &MockTagService{Tags: []string{"hr"}}))
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// send delivers msg and keeps feeding returned messages back until a
// command yields something other than an application message, such as a
// cursor blink.
func send(app *App, msg tea.Msg) {
	for i := 0; i < 10; i++ {
		_, cmd := app.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
		if !isAppMsg(msg) {
			return
		}
	}
}

func isAppMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case messages.ViewChanged, messages.PageLoaded, messages.ChunkSelected,
		messages.EditRequested, messages.ChunkSaved, messages.ChunkDeleted,
		messages.TagsLoaded, messages.SearchCompleted, messages.ErrorOccurred,
		messages.Quit:
		return true
	}
	return false
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadFirstPage runs the catalog's initial load.
func loadFirstPage(t *testing.T, app *App) {
	t.Helper()
	send(app, app.catalogView.Load(0)())
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(NewPorts(&MockCatalogService{}, &MockSearchService{}, nil))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewCatalog, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(NewPorts(nil, &MockSearchService{}, nil))

	assert.ErrorIs(t, err, ErrMissingCatalogService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_WithPageSize(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})

	app.WithPageSize(25)

	assert.Equal(t, 25, app.catalogView.PageSize())
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})

	assert.NotNil(t, app.Init())
	assert.Equal(t, status.StateLoading, app.statusbar.State())
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(NewPorts(&MockCatalogService{}, &MockSearchService{}, nil))
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, err := NewApp(NewPorts(&MockCatalogService{}, &MockSearchService{}, nil))
	require.NoError(t, err)

	_, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.width)
	assert.Equal(t, 40, app.height)
}

func TestApp_PageLoaded_UpdatesStatus(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{Chunks: sampleChunks(25)})

	loadFirstPage(t, app)

	assert.Equal(t, status.StateReady, app.statusbar.State())
	out := app.View()
	assert.Contains(t, out, "Chunks (25)")
	assert.Contains(t, out, "Page 1/3  25 chunks")
}

func TestApp_PageLoaded_Error(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{ListErr: errors.New("store closed")})

	loadFirstPage(t, app)

	assert.EqualError(t, app.Err(), "store closed")
	assert.Equal(t, status.StateError, app.statusbar.State())
}

func TestApp_OpenChunkAndBack(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{Chunks: sampleChunks(3)})
	loadFirstPage(t, app)

	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, messages.ViewChunk, app.CurrentView())
	assert.Contains(t, app.View(), "paragraph 0")

	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewCatalog, app.CurrentView())
}

func TestApp_EditFromCatalog(t *testing.T) {
	catalog := &MockCatalogService{Chunks: sampleChunks(3)}
	app := newTestApp(t, catalog)
	loadFirstPage(t, app)

	send(app, keyRunes("e"))
	require.Equal(t, messages.ViewEditor, app.CurrentView())
	assert.Equal(t, status.StateEditing, app.statusbar.State())

	send(app, keyRunes(" edited"))
	send(app, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, messages.ViewCatalog, app.CurrentView())
	assert.Equal(t, "paragraph 0 edited", catalog.Chunks[0].Content)
	assert.Contains(t, app.View(), "Saved chunk id-00")
	assert.Contains(t, app.View(), "paragraph 0 edited")
}

func TestApp_EditFromChunkViewReturnsThere(t *testing.T) {
	catalog := &MockCatalogService{Chunks: sampleChunks(2)}
	app := newTestApp(t, catalog)
	loadFirstPage(t, app)

	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	send(app, keyRunes("e"))
	require.Equal(t, messages.ViewEditor, app.CurrentView())

	send(app, keyRunes("!"))
	send(app, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, messages.ViewChunk, app.CurrentView())
	assert.Contains(t, app.View(), "paragraph 0!")
}

func TestApp_EditError(t *testing.T) {
	catalog := &MockCatalogService{Chunks: sampleChunks(1), EditErr: domain.ErrEmbeddingUnavailable}
	app := newTestApp(t, catalog)
	loadFirstPage(t, app)

	send(app, keyRunes("e"))
	send(app, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, messages.ViewEditor, app.CurrentView())
	assert.ErrorIs(t, app.Err(), domain.ErrEmbeddingUnavailable)
	assert.Equal(t, status.StateError, app.statusbar.State())
}

func TestApp_EditCancel(t *testing.T) {
	catalog := &MockCatalogService{Chunks: sampleChunks(1)}
	app := newTestApp(t, catalog)
	loadFirstPage(t, app)

	send(app, keyRunes("e"))
	send(app, keyRunes("zzz"))
	send(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewCatalog, app.CurrentView())
	assert.Equal(t, "paragraph 0", catalog.Chunks[0].Content)
}

func TestApp_DeleteFromChunkView(t *testing.T) {
	catalog := &MockCatalogService{Chunks: sampleChunks(3)}
	app := newTestApp(t, catalog)
	loadFirstPage(t, app)

	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	send(app, keyRunes("d"))
	send(app, keyRunes("y"))

	assert.Equal(t, messages.ViewCatalog, app.CurrentView())
	assert.Len(t, catalog.Chunks, 2)
	assert.Equal(t, 2, app.catalogView.Page().TotalChunks)
	assert.Contains(t, app.View(), "Deleted chunk id-00")
}

func TestApp_DeleteFromCatalog(t *testing.T) {
	catalog := &MockCatalogService{Chunks: sampleChunks(2)}
	app := newTestApp(t, catalog)
	loadFirstPage(t, app)

	send(app, keyRunes("j"))
	send(app, keyRunes("d"))
	send(app, keyRunes("y"))

	require.Len(t, catalog.Chunks, 1)
	assert.Equal(t, "id-00", catalog.Chunks[0].ID)
	assert.Equal(t, messages.ViewCatalog, app.CurrentView())
}

func TestApp_SearchFlow(t *testing.T) {
	var gotOpts domain.SearchOptions
	search := &MockSearchService{
		SearchFunc: func(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
			gotOpts = opts
			return []domain.SearchResult{{Chunk: sampleChunks(1)[0], Score: 0.9}}, nil
		},
	}
	app, err := NewApp(NewPorts(&MockCatalogService{Chunks: sampleChunks(1)}, search, nil))
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	send(app, keyRunes("/"))
	require.Equal(t, messages.ViewSearch, app.CurrentView())

	send(app, tea.KeyMsg{Type: tea.KeyTab})
	send(app, keyRunes("hr"))
	send(app, tea.KeyMsg{Type: tea.KeyTab})
	send(app, keyRunes("leave"))
	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "hr", gotOpts.Tag)
	assert.Len(t, app.searchView.Results(), 1)

	// Opening a result and coming back keeps the results
	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, messages.ViewChunk, app.CurrentView())
	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Len(t, app.searchView.Results(), 1)
}

func TestApp_TagsLoadedForwardedToSearch(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})

	app.Update(messages.TagsLoaded{Tags: []string{"eng", "hr"}})

	assert.Equal(t, []string{"eng", "hr"}, app.searchView.Tags())
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})

	send(app, keyRunes("?"))
	require.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Help")
	assert.Contains(t, app.View(), "Save and re-embed")

	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewCatalog, app.CurrentView())
}

func TestApp_HelpView_Quit(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	_, cmd := app.Update(keyRunes("q"))

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_CtrlC(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_Quit(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_QuitKeyFromCatalog(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})

	_, cmd := app.Update(keyRunes("q"))
	require.NotNil(t, cmd)

	_, cmd = app.Update(cmd())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, &MockCatalogService{})

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.EqualError(t, app.catalogView.Err(), "boom")
}
