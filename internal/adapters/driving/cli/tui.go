package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and edit stored chunks interactively",
	Long: `Launch the interactive terminal catalog browser.

The catalog lists every stored chunk, page by page and ordered by ID.
Chunks can be opened, edited (the new text is re-embedded on save) and
deleted, and the search view runs tag-scoped similarity queries.

Controls:
  ↑/k, ↓/j - Move selection
  n/p      - Next / previous page
  Enter    - Open chunk
  e        - Edit chunk
  d        - Delete chunk (confirm with y)
  /        - Search
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(catalogService, searchService, tagService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context()).WithPageSize(currentConfig().Catalog.EditorPageSize)

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
