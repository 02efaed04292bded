package driven

import "context"

// EmbeddingService maps text to vectors. Every chunk in one store must be
// embedded by the same model, since similarity is only meaningful between
// vectors of one model.
//
// Provider failures wrap domain.ErrEmbeddingProvider so callers can retry.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns exactly one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks the provider is reachable without embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
