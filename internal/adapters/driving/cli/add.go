package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

var addTag string

var addCmd = &cobra.Command{
	Use:   "add [source...]",
	Short: "Ingest files or web pages under a tag",
	Long: `Loads each source, splits it into overlapping chunks, embeds them and
replaces every chunk previously stored for the same source.

Sources are file paths (.txt, .md, .pdf) or http(s) URLs. When a page
answers 401 and stdin is a terminal, you are asked for credentials
and the page is fetched once more.

Examples:
  tagvault add notes.txt --tag eng
  tagvault add https://wiki.example.com/page --tag hr
  tagvault add a.md b.pdf --tag docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addTag, "tag", "t", "", "tag for every chunk of the sources (required)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if strings.TrimSpace(addTag) == "" {
		return errors.New("--tag is required")
	}

	ctx := cmd.Context()

	if len(args) == 1 {
		n, err := ingestWithPrompt(ctx, cmd, args[0], addTag)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Ingested %s: %d chunks (tag %s)\n", args[0], n, addTag)
		return nil
	}

	items := make([]domain.IngestRequest, len(args))
	for i, source := range args {
		items[i] = domain.IngestRequest{Source: source, Tag: addTag}
	}
	summary := ingestService.IngestBatch(ctx, items)
	printBatchSummary(cmd, summary)

	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d sources failed", len(summary.Failed), summary.Total())
	}
	return nil
}

// ingestWithPrompt ingests source and, when the source asks for
// authentication and credentials can be prompted for, retries once.
func ingestWithPrompt(ctx context.Context, cmd *cobra.Command, source, tag string) (int, error) {
	n, err := ingestService.Ingest(ctx, source, tag)
	if err == nil || !errors.Is(err, domain.ErrAuthRequired) || credentials == nil {
		return n, err
	}

	username, password, ok := promptCredentials(cmd, source)
	if !ok {
		return n, err
	}
	credentials.SetCredentials(username, password)

	return ingestService.Ingest(ctx, source, tag)
}

// promptCredentials asks for a username and password. It reports false
// when stdin is not a terminal.
var promptCredentials = func(cmd *cobra.Command, source string) (username, password string, ok bool) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", "", false
	}

	cmd.Printf("%s requires authentication.\n", source)
	cmd.Print("Username: ")
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", "", false
	}
	username = strings.TrimSpace(input)

	cmd.Print("Password: ")
	password = readPassword()
	cmd.Println()

	return username, password, username != ""
}

func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func printBatchSummary(cmd *cobra.Command, summary domain.BatchSummary) {
	for _, r := range summary.Succeeded {
		cmd.Printf("  ok      %s: %d chunks (tag %s)\n", r.Source, r.Chunks, r.Tag)
	}
	for _, r := range summary.Failed {
		cmd.Printf("  failed  %s [%s]: %s\n", r.Source, r.Kind, r.Error)
	}
	cmd.Printf("\n%d succeeded, %d failed, %d chunks written\n",
		len(summary.Succeeded), len(summary.Failed), summary.ChunksWritten())
}
