package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove [source]",
	Aliases: []string{"rm"},
	Short:   "Remove every chunk of a source",
	Long: `Deletes all chunks stored for the source. The source is resolved to
its key the same way add does, so pass the same path or URL you ingested.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	n, err := ingestService.RemoveSource(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}

	if n == 0 {
		cmd.Printf("No chunks stored for %s.\n", args[0])
		return nil
	}
	cmd.Printf("Removed %d chunks of %s.\n", n, args[0])
	return nil
}
