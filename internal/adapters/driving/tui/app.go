package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/views/catalog"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/views/chunkview"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/views/editor"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	catalogView *catalog.View
	chunkView   *chunkview.View
	editorView  *editor.View
	searchView  *search.View
	statusbar   *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		catalogView: catalog.NewView(s, km, ports.Catalog),
		chunkView:   chunkview.NewView(s, km, ports.Catalog),
		editorView:  editor.NewView(s, km, ports.Catalog),
		searchView:  search.NewView(s, km, ports.Search, ports.Tags),
		statusbar:   status.NewBar(s, km),
		currentView: messages.ViewCatalog,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.catalogView.WithContext(ctx)
	a.chunkView.WithContext(ctx)
	a.editorView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	return a
}

// WithPageSize sets the number of chunks per catalog page.
func (a *App) WithPageSize(size int) *App {
	a.catalogView.SetPageSize(size)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.statusbar.SetState(status.StateLoading)
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("tagvault - chunk catalog"),
		a.catalogView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			return a.handleHelpKey(msg)
		}
		if a.statusbar.State() == status.StateReady {
			a.statusbar.SetMessage("")
		}
		return a, a.forward(msg)

	case messages.PageLoaded:
		a.catalogView, cmd = a.catalogView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		} else if cmd == nil {
			a.err = nil
			page := a.catalogView.Page()
			a.statusbar.SetState(status.StateReady)
			a.statusbar.SetPage(page.PageIndex, page.TotalPages, page.TotalChunks)
		}
		return a, cmd

	case messages.ChunkSelected:
		a.chunkView.SetChunk(msg.Chunk, msg.From)
		a.currentView = messages.ViewChunk
		return a, nil

	case messages.EditRequested:
		returnTo := a.currentView
		if returnTo != messages.ViewChunk {
			returnTo = messages.ViewCatalog
		}
		a.currentView = messages.ViewEditor
		a.statusbar.SetState(status.StateEditing)
		return a, a.editorView.Open(msg.Chunk, returnTo)

	case messages.ChunkSaved:
		a.editorView, _ = a.editorView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.chunkView.SetContent(msg.ID, a.editorView.Value())
		a.currentView = a.editorView.ReturnTo()
		a.statusbar.SetState(status.StateReady)
		a.statusbar.SetMessage("Saved chunk " + msg.ID)
		a.catalogView, cmd = a.catalogView.Update(msg)
		return a, cmd

	case messages.ChunkDeleted:
		if a.currentView == messages.ViewChunk {
			a.chunkView, _ = a.chunkView.Update(msg)
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		if a.currentView == messages.ViewChunk {
			a.currentView = messages.ViewCatalog
		}
		a.statusbar.SetMessage("Deleted chunk " + msg.ID)
		a.catalogView, cmd = a.catalogView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		previous := a.currentView
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			if previous == messages.ViewCatalog {
				return a, a.searchView.Reset()
			}
		case messages.ViewCatalog:
			if a.err == nil {
				a.statusbar.SetState(status.StateReady)
			}
		case messages.ViewChunk, messages.ViewEditor, messages.ViewHelp:
			// Nothing to prepare
		}
		return a, nil

	case messages.SearchCompleted, messages.TagsLoaded:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewCatalog:
		a.catalogView, cmd = a.catalogView.Update(msg)
	case messages.ViewChunk:
		a.chunkView, cmd = a.chunkView.Update(msg)
	case messages.ViewEditor:
		a.editorView, cmd = a.editorView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return cmd
}

// handleHelpKey closes the help view.
func (a *App) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, a.keymap.Back), keymap.Matches(k, a.keymap.Help):
		a.currentView = messages.ViewCatalog
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) setError(err error) {
	a.err = err
	a.statusbar.SetState(status.StateError)
	a.statusbar.SetMessage(err.Error())
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		// The search view carries its own status bar.
		return a.searchView.View()
	case messages.ViewChunk:
		return a.chunkView.View() + "\n" + a.statusbar.View()
	case messages.ViewEditor:
		return a.editorView.View() + "\n" + a.statusbar.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.catalogView.View() + "\n" + a.statusbar.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Catalog:
  j/k, ↑/↓    Move selection
  n/p, →/←    Next / previous page
  enter       View chunk
  e           Edit chunk text
  d, then y   Delete chunk
  r           Reload page
  /           Search
  q           Quit

Chunk:
  j/k, PgUp/PgDn  Scroll
  e               Edit
  d, then y       Delete
  esc             Back

Editor:
  ctrl+s      Save and re-embed
  esc         Cancel

Search:
  tab         Switch between tag and query
  enter       Search / open result
  esc         Back

[esc] back to catalog`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// One line is kept for the status bar
	a.catalogView.SetDimensions(width, height-1)
	a.chunkView.SetDimensions(width, height-1)
	a.editorView.SetDimensions(width, height-1)
	a.searchView.SetDimensions(width, height)
	a.statusbar.SetWidth(width)
}
