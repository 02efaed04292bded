package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/services"
)

var (
	urlsTag      string
	urlsContains string
	urlsJSON     bool
	urlsEvery    time.Duration
)

var urlsCmd = &cobra.Command{
	Use:   "urls",
	Short: "Manage the registered URL list",
	Long: `The URL list file holds one "<url>,<tag>" entry per line. Registering
replaces the whole list, so URLs missing from the new set are dropped.`,
}

var urlsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show registered URLs",
	Args:  cobra.NoArgs,
	RunE:  runURLsList,
}

var urlsRegisterCmd = &cobra.Command{
	Use:   "register [url...]",
	Short: "Replace the URL list with the given URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runURLsRegister,
}

var urlsDiscoverCmd = &cobra.Command{
	Use:   "discover [page]",
	Short: "Register the links found on one page",
	Long: `Fetches a single page, collects the links whose URL contains the
--contains filter and registers them under --tag. Links are not followed.`,
	Args: cobra.ExactArgs(1),
	RunE: runURLsDiscover,
}

var urlsIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest every registered URL",
	Long: `Ingests each entry of the URL list under its tag. A failing entry is
reported and never stops the others.

With --every, the list is ingested again on that interval until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runURLsIngest,
}

func init() {
	urlsListCmd.Flags().BoolVar(&urlsJSON, "json", false, "output entries as JSON")
	urlsRegisterCmd.Flags().StringVarP(&urlsTag, "tag", "t", "", "tag for every URL (required)")
	urlsDiscoverCmd.Flags().StringVarP(&urlsTag, "tag", "t", "", "tag for every discovered URL (required)")
	urlsDiscoverCmd.Flags().StringVar(&urlsContains, "contains", "pageId", "keep only links containing this text")
	urlsIngestCmd.Flags().DurationVar(&urlsEvery, "every", 0, "repeat on this interval until interrupted (at least 1m)")

	urlsCmd.AddCommand(urlsListCmd)
	urlsCmd.AddCommand(urlsRegisterCmd)
	urlsCmd.AddCommand(urlsDiscoverCmd)
	urlsCmd.AddCommand(urlsIngestCmd)
	rootCmd.AddCommand(urlsCmd)
}

func runURLsList(cmd *cobra.Command, _ []string) error {
	if urlListService == nil {
		return errors.New("url list service not configured")
	}

	entries, malformed, err := urlListService.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load url list: %w", err)
	}

	if urlsJSON {
		data, err := json.MarshalIndent(struct {
			Entries   []domain.URLListEntry  `json:"entries"`
			Malformed []domain.MalformedLine `json:"malformed"`
		}{entries, malformed}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal url list: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(entries) == 0 && len(malformed) == 0 {
		cmd.Println("No URLs registered.")
		return nil
	}
	for _, e := range entries {
		cmd.Printf("  %s  [%s]\n", e.URL, e.Tag)
	}
	for _, m := range malformed {
		cmd.Printf("  skipped line %d (%s): %q\n", m.Line, m.Reason, m.Text)
	}
	return nil
}

func runURLsRegister(cmd *cobra.Command, args []string) error {
	if urlListService == nil {
		return errors.New("url list service not configured")
	}
	if urlsTag == "" {
		return errors.New("--tag is required")
	}

	result, err := urlListService.Register(cmd.Context(), args, urlsTag)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	printMergeResult(cmd, result)
	return nil
}

func runURLsDiscover(cmd *cobra.Command, args []string) error {
	if urlListService == nil {
		return errors.New("url list service not configured")
	}
	if urlsTag == "" {
		return errors.New("--tag is required")
	}

	result, err := urlListService.Discover(cmd.Context(), args[0], urlsContains, urlsTag)
	if err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}
	printMergeResult(cmd, result)
	return nil
}

func runURLsIngest(cmd *cobra.Command, _ []string) error {
	if urlListService == nil {
		return errors.New("url list service not configured")
	}

	if urlsEvery > 0 {
		return runURLsIngestEvery(cmd)
	}

	summary, err := urlListService.IngestAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if summary.Total() == 0 {
		cmd.Println("No URLs registered.")
		return nil
	}

	printBatchSummary(cmd, summary)
	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d entries failed", len(summary.Failed), summary.Total())
	}
	return nil
}

func runURLsIngestEvery(cmd *cobra.Command) error {
	refresher, err := services.NewRefreshScheduler(urlListService, urlsEvery, commandLogger())
	if err != nil {
		return err
	}
	cmd.Printf("Ingesting the URL list every %s. Press Ctrl+C to stop.\n", urlsEvery)
	return refresher.Start(cmd.Context())
}

func printMergeResult(cmd *cobra.Command, r domain.MergeResult) {
	for _, u := range r.Added {
		cmd.Printf("  + %s\n", u)
	}
	for _, u := range r.Dropped {
		cmd.Printf("  - %s\n", u)
	}
	cmd.Printf("%d added, %d kept, %d dropped; %d URLs registered\n",
		len(r.Added), len(r.Kept), len(r.Dropped), len(r.Entries))
}
