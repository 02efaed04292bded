package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

const snippetLength = 120

var (
	searchTag   string
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored chunks",
	Long: `Embeds the query and returns the most similar chunks by cosine
similarity. Use --tag to restrict results to one tag; the tag "all" (or no
tag) searches everything.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchTag, "tag", "t", "", `restrict results to this tag ("all" for every tag)`)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Tag:   searchTag,
		Limit: searchLimit,
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] source #position (score)
		c := results[i].Chunk
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, c.SourceKey, c.Position, results[i].Score)
		cmd.Printf("      Tag: %s  ID: %s\n", c.Tag, c.ID)
		if h := hintLine(c); h != "" {
			cmd.Printf("      %s\n", h)
		}
		if s := snippet(c.Content, snippetLength); s != "" {
			cmd.Printf("      %s\n", s)
		}
		cmd.Println()
	}

	return nil
}

// snippet collapses whitespace and truncates text to max runes.
func snippet(text string, maxRunes int) string {
	s := strings.Join(strings.Fields(text), " ")
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "..."
}

// hintLine describes the loader title and page of c, or returns "".
func hintLine(c domain.Chunk) string {
	var parts []string
	if c.Title != "" {
		parts = append(parts, "Title: "+c.Title)
	}
	if c.Page > 0 {
		parts = append(parts, fmt.Sprintf("Page: %d", c.Page))
	}
	return strings.Join(parts, "  ")
}
