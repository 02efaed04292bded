package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tagvault/internal/config"
)

var (
	configInitFormat string
	configInitForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Writes the default configuration to path, or to ~/.tagvault/config.yaml
when no path is given. API keys and passwords are never written; set them
through TAGVAULT_* environment variables or a .env file.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipBootstrap: "true"},
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().StringVarP(&configInitFormat, "format", "f", "yaml", "file format: yaml or toml")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	var ext string
	switch configInitFormat {
	case "yaml", "yml":
		ext = ".yaml"
	case "toml":
		ext = ".toml"
	default:
		return fmt.Errorf("unsupported format %q (use yaml or toml)", configInitFormat)
	}

	path := filepath.Join(filepath.Dir(config.DefaultPath()), "config"+ext)
	if len(args) == 1 {
		path = config.ExpandHome(args[0])
	} else if configPath != "" {
		path = config.ExpandHome(configPath)
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	cmd.Printf("Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg := currentConfig()

	cmd.Printf("Data directory:   %s\n", cfg.DataDir)
	cmd.Printf("URL list:         %s\n", cfg.URLListPath())
	cmd.Printf("Embedding:        %s (%s)\n", cfg.Embedding.Provider, cfg.Embedding.Model)
	if cfg.Embedding.BaseURL != "" {
		cmd.Printf("Embedding URL:    %s\n", cfg.Embedding.BaseURL)
	}
	cmd.Printf("API key:          %s\n", maskSecret(cfg.Embedding.APIKey))
	cmd.Printf("Chunking:         %d runes, %d overlap\n", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	cmd.Printf("Source keys:      %s\n", cfg.Ingest.SourceKey)
	cmd.Printf("Search default k: %d\n", cfg.Search.DefaultK)
	cmd.Printf("Server:           %s\n", cfg.Server.Listen)
	cmd.Printf("Logging:          %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

func maskSecret(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
