package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the store to MCP clients",
	Long: `Serve the store over the Model Context Protocol.

Tools: search, ingest, list_tags, browse, delete_chunk.
Resources: tagvault://tags and tagvault://chunks/{id}.

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants expect when they launch tagvault themselves:

  {"mcpServers": {"tagvault": {"command": "tagvault", "args": ["mcp", "serve"]}}}

With --port it serves streamable HTTP on localhost instead.`,
	Example: `  tagvault mcp serve
  tagvault mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 serves over stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:  searchService,
		Ingest:  ingestService,
		Tags:    tagService,
		Catalog: catalogService,
	}, commandLogger())
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf("127.0.0.1:%d", mcpPort)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
