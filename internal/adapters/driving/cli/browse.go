package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	browsePage int
	browseSize int
	browseJSON bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List stored chunks page by page",
	Long: `Lists the chunk catalog ordered by chunk ID. Pages are numbered from 1;
a page past the end is empty.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().IntVarP(&browsePage, "page", "p", 1, "page number, starting at 1")
	browseCmd.Flags().IntVarP(&browseSize, "size", "s", 0, "chunks per page (default from config)")
	browseCmd.Flags().BoolVar(&browseJSON, "json", false, "output the page as JSON")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}
	if browsePage < 1 {
		return fmt.Errorf("--page must be at least 1, got %d", browsePage)
	}

	size := browseSize
	if size == 0 {
		size = currentConfig().Catalog.PageSize
	}

	page, err := catalogService.ListPage(cmd.Context(), browsePage-1, size)
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}

	if browseJSON {
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal page: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if page.TotalChunks == 0 {
		cmd.Println("The store is empty.")
		return nil
	}

	cmd.Printf("Page %d of %d (%d chunks)\n\n", browsePage, page.TotalPages, page.TotalChunks)
	if len(page.Chunks) == 0 {
		cmd.Println("No chunks on this page.")
		return nil
	}
	for i := range page.Chunks {
		c := page.Chunks[i]
		cmd.Printf("  %s  %s #%d [%s]\n", c.ID, c.SourceKey, c.Position, c.Tag)
		cmd.Printf("      %s\n", snippet(c.Content, snippetLength))
	}
	return nil
}
