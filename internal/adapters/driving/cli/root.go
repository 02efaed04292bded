// Package cli implements the tagvault command line.
//
// Commands drive the core through the ports in internal/core/ports/driving.
// Services are built lazily by a bootstrap function registered from main, so
// commands that need none (version, config init) run without a store or an
// embedding provider.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tagvault/internal/config"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
	"github.com/custodia-labs/tagvault/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=1.2.3".
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "tagvault/skip-bootstrap"

// CredentialSetter accepts basic auth credentials for protected web sources.
type CredentialSetter interface {
	SetCredentials(username, password string)
	HasCredentials() bool
}

// Services are the core services the commands drive.
type Services struct {
	Ingest      driving.IngestService
	Search      driving.SearchService
	Tags        driving.TagService
	Catalog     driving.CatalogService
	URLs        driving.URLListService
	Credentials CredentialSetter
	Config      *config.Config
	Logger      *logger.Logger

	// Close releases the store and the embedding provider. May be nil.
	Close func() error
}

// BootstrapOptions carries the persistent flags to the bootstrap function.
type BootstrapOptions struct {
	ConfigPath string
	DataDir    string
	Verbose    bool
}

// BootstrapFunc builds the services for one invocation.
type BootstrapFunc func(ctx context.Context, opts BootstrapOptions) (*Services, error)

var (
	bootstrap BootstrapFunc

	ingestService  driving.IngestService
	searchService  driving.SearchService
	tagService     driving.TagService
	catalogService driving.CatalogService
	urlListService driving.URLListService
	credentials    CredentialSetter
	appConfig      *config.Config
	appLogger      *logger.Logger
	closeServices  func() error
)

var (
	configPath string
	dataDir    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tagvault",
	Short: "Tag-scoped semantic search over files and web pages",
	Long: `tagvault ingests local files and web pages into a vector store,
labelling every chunk with a tag, and answers similarity queries restricted
to one tag or across all of them.

Re-ingesting a source replaces its chunks, so running the same command
twice never duplicates content.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ~/.tagvault/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "path to data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetBootstrap registers the function that builds services before a
// command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	searchService = s.Search
	tagService = s.Tags
	catalogService = s.Catalog
	urlListService = s.URLs
	credentials = s.Credentials
	appConfig = s.Config
	appLogger = s.Logger
	closeServices = s.Close
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := shutdown(); err == nil {
		err = closeErr
	}
	return err
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	services, err := bootstrap(cmd.Context(), BootstrapOptions{
		ConfigPath: configPath,
		DataDir:    dataDir,
		Verbose:    verbose,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func shutdown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// commandLogger returns the configured logger or a no-op one.
func commandLogger() *logger.Logger {
	if appLogger == nil {
		return logger.Nop()
	}
	return appLogger
}

// currentConfig returns the loaded config or the defaults.
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.Default()
	}
	return appConfig
}
