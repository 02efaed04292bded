package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var tagsJSON bool

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags in the store",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

func init() {
	tagsCmd.Flags().BoolVar(&tagsJSON, "json", false, "output tags as JSON")
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, _ []string) error {
	if tagService == nil {
		return errors.New("tag service not configured")
	}

	tags, err := tagService.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing tags failed: %w", err)
	}

	if tagsJSON {
		data, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(tags) == 0 {
		cmd.Println("No tags yet. Ingest something with 'tagvault add'.")
		return nil
	}
	for _, tag := range tags {
		cmd.Println(tag)
	}
	return nil
}
