package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/tagvault/internal/adapters/driving/api"
	"github.com/custodia-labs/tagvault/internal/core/services"
)

var (
	serveListen  string
	serveRefresh time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Serves the REST API until interrupted. The OpenAPI document is
available at /openapi.json and interactive docs at /docs.

With --refresh, every registered URL is re-ingested on that interval
while the server runs.

Examples:
  tagvault serve
  tagvault serve --listen 0.0.0.0:8000
  tagvault serve --refresh 6h`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default from config)")
	serveCmd.Flags().DurationVar(&serveRefresh, "refresh", 0, "re-ingest the URL list on this interval (0 disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || searchService == nil {
		return errors.New("services not configured")
	}

	cfg := currentConfig()
	listen := serveListen
	if listen == "" {
		listen = cfg.Server.Listen
	}

	server, err := api.New(api.Config{
		ListenAddr:      listen,
		CORSOrigins:     cfg.Server.CORSOrigins,
		DefaultPageSize: cfg.Catalog.PageSize,
	}, &api.Ports{
		Ingest:  ingestService,
		Search:  searchService,
		Tags:    tagService,
		Catalog: catalogService,
		URLs:    urlListService,
	}, commandLogger())
	if err != nil {
		return err
	}

	if serveRefresh == 0 {
		cmd.Printf("REST API listening on http://%s\n", listen)
		return server.Start(cmd.Context())
	}

	if urlListService == nil {
		return errors.New("--refresh needs the url list service")
	}
	refresher, err := services.NewRefreshScheduler(urlListService, serveRefresh, commandLogger())
	if err != nil {
		return err
	}

	cmd.Printf("REST API listening on http://%s (refreshing URLs every %s)\n", listen, serveRefresh)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return server.Start(ctx) })
	g.Go(func() error { return refresher.Start(ctx) })
	return g.Wait()
}
