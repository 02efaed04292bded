package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tagvault/internal/connectors/filesystem"
)

var watchTag string

var watchCmd = &cobra.Command{
	Use:   "watch [path...]",
	Short: "Keep files in sync as they change",
	Long: `Ingests every supported file under the given paths, then watches them.
Created or written files are re-ingested; removed or renamed files have
their chunks deleted. Hidden files and directories are ignored.

Press Ctrl+C to stop.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchTag, "tag", "t", "", "tag for every watched file (required)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if strings.TrimSpace(watchTag) == "" {
		return errors.New("--tag is required")
	}

	log := commandLogger()
	w := filesystem.New(args, log)

	cmd.Printf("Watching %s (tag %s). Press Ctrl+C to stop.\n", strings.Join(w.Roots(), ", "), watchTag)
	return filesystem.Sync(cmd.Context(), w, ingestService, watchTag, log)
}
