// Package embedding creates the configured embedding service.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/tagvault/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/tagvault/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Supported providers.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Settings selects and configures an embedding provider.
type Settings struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
}

// New creates the embedding service named by settings.Provider.
func New(settings Settings) (driven.EmbeddingService, error) {
	switch strings.ToLower(settings.Provider) {
	case ProviderOllama, "":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.Dimensions,
		}), nil

	case ProviderOpenAI:
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// NewAndPing creates the service and checks that it is reachable.
func NewAndPing(ctx context.Context, settings Settings) (driven.EmbeddingService, error) {
	svc, err := New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}
