package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/tagvault/internal/adapters/driven/embedding"
	"github.com/custodia-labs/tagvault/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tagvault/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tagvault/internal/adapters/driven/urllist/file"
	"github.com/custodia-labs/tagvault/internal/adapters/driving/cli"
	"github.com/custodia-labs/tagvault/internal/config"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
	"github.com/custodia-labs/tagvault/internal/core/services"
	"github.com/custodia-labs/tagvault/internal/errs"
	"github.com/custodia-labs/tagvault/internal/loaders"
	"github.com/custodia-labs/tagvault/internal/loaders/pdf"
	"github.com/custodia-labs/tagvault/internal/loaders/plaintext"
	"github.com/custodia-labs/tagvault/internal/loaders/web"
	"github.com/custodia-labs/tagvault/internal/logger"
	"github.com/custodia-labs/tagvault/internal/postprocessors"
)

// Wire loads configuration and builds every service the commands use.
// The embedding provider is optional at this point: commands that never
// embed (browse, tags, chunk show) still work without one.
func Wire(_ context.Context, opts cli.BootstrapOptions) (*cli.Services, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DataDir != "" {
		cfg.DataDir = config.ExpandHome(opts.DataDir)
	}

	log := logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		BufferSize: cfg.Logging.BufferSize,
		Verbose:    opts.Verbose,
	})

	store, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.New(embedding.Settings{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout,
	})
	if err != nil {
		log.Warn("embedding provider unavailable", "provider", cfg.Embedding.Provider, "error", err)
		embedder = nil
	}

	webLoader := web.New(
		web.WithUserAgent(cfg.UserAgent),
		web.WithBasicAuth(cfg.Auth.Username, cfg.Auth.Password),
		web.WithRateLimit(cfg.Ingest.RateLimit, cfg.Ingest.RateBurst),
	)

	registry := loaders.NewRegistry()
	registry.Register(loaders.KindPlainText, plaintext.New())
	registry.Register(loaders.KindPdf, pdf.New())
	registry.Register(loaders.KindWeb, webLoader)

	retry := services.RetryPolicy{
		Attempts: cfg.Embedding.Retry.Attempts,
		Initial:  cfg.Embedding.Retry.Initial,
		Max:      cfg.Embedding.Retry.Max,
		Timeout:  cfg.Embedding.Timeout,
	}

	ingest := services.NewIngestService(
		store,
		registry,
		postprocessors.NewDefaultPipeline(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		embedder,
		log,
		services.WithKeyMode(domain.KeyMode(cfg.Ingest.SourceKey)),
		services.WithRetryPolicy(retry),
	)

	search := services.NewSearchService(store, embedder, log,
		services.WithDefaultLimit(cfg.Search.DefaultK),
		services.WithSearchRetryPolicy(retry),
	)

	catalog := services.NewCatalogService(store, embedder, log)
	catalog.SetRetryPolicy(retry)

	urls := services.NewURLListService(file.NewStore(cfg.URLListPath()), ingest, webLoader, log)
	urls.SetRateLimit(cfg.Ingest.RateLimit, cfg.Ingest.RateBurst)

	return &cli.Services{
		Ingest:      ingest,
		Search:      search,
		Tags:        services.NewTagService(store),
		Catalog:     catalog,
		URLs:        urls,
		Credentials: webLoader,
		Config:      cfg,
		Logger:      log,
		Close:       closer(store, embedder),
	}, nil
}

// openStore opens the configured vector store backend.
func openStore(cfg *config.Config, log *logger.Logger) (driven.VectorStore, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using the in-memory store; chunks are lost on exit")
		return memory.NewVectorStore(), nil
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, errs.Wrap(fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err),
			errs.CodeStoreUnavailable, "opening vector store", errs.Field("data_dir", cfg.DataDir))
	}
	return store, nil
}

// loadConfig reads path, or the default config file when it exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(config.ExpandHome(path))
	}
	if _, err := os.Stat(config.DefaultPath()); err == nil {
		return config.Load(config.DefaultPath())
	}
	return config.Load("")
}

// closer releases the store and the embedding provider.
func closer(store driven.VectorStore, embedder driven.EmbeddingService) func() error {
	return func() error {
		var errList []error
		if embedder != nil {
			errList = append(errList, embedder.Close())
		}
		errList = append(errList, store.Close())
		return errors.Join(errList...)
	}
}
