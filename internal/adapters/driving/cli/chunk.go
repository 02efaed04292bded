package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var chunkEditText string

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Show, edit or delete a single chunk",
	Long:  `Commands that act on one stored chunk, addressed by its ID (see 'tagvault browse').`,
}

var chunkShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkShow,
}

var chunkDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkDelete,
}

var chunkEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Replace the text of a chunk",
	Long: `Replaces the text of a chunk and recomputes its embedding, so search
results reflect the edited text. Pass --text - to read the text from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunkEdit,
}

func init() {
	chunkEditCmd.Flags().StringVar(&chunkEditText, "text", "", `new chunk text ("-" reads stdin)`)

	chunkCmd.AddCommand(chunkShowCmd)
	chunkCmd.AddCommand(chunkDeleteCmd)
	chunkCmd.AddCommand(chunkEditCmd)
	rootCmd.AddCommand(chunkCmd)
}

func runChunkShow(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	c, err := catalogService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunk: %w", err)
	}

	cmd.Printf("ID:       %s\n", c.ID)
	cmd.Printf("Source:   %s\n", c.SourceKey)
	cmd.Printf("Tag:      %s\n", c.Tag)
	cmd.Printf("Position: %d\n", c.Position)
	if c.Title != "" {
		cmd.Printf("Title:    %s\n", c.Title)
	}
	if c.Page > 0 {
		cmd.Printf("Page:     %d\n", c.Page)
	}
	cmd.Println()
	cmd.Println(c.Content)
	return nil
}

func runChunkDelete(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	if err := catalogService.DeleteChunk(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete chunk: %w", err)
	}

	cmd.Printf("Deleted chunk %s.\n", args[0])
	return nil
}

func runChunkEdit(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	text := chunkEditText
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("--text is required")
	}

	if err := catalogService.EditChunk(cmd.Context(), args[0], text); err != nil {
		return fmt.Errorf("failed to edit chunk: %w", err)
	}

	cmd.Printf("Updated chunk %s.\n", args[0])
	return nil
}
