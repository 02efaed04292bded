package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Source Errors.

	// ErrUnsupportedSourceType indicates no loader handles the descriptor
	// (unknown file extension or URL scheme).
	ErrUnsupportedSourceType = errors.New("unsupported source type")

	// ErrSourceEmpty indicates the loader returned no usable text.
	ErrSourceEmpty = errors.New("source is empty")

	// ErrSourceNotFound indicates the file does not exist or the URL returned 404.
	ErrSourceNotFound = errors.New("source not found")

	// ErrAuthRequired indicates the web source answered 401 and credentials
	// must be supplied before retrying.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAccessDenied indicates the web source answered 403. Credentials
	// would not help, so nobody is prompted and the call is not retried.
	ErrAccessDenied = errors.New("access denied")

	// ErrLoaderTransient indicates a loader failure worth retrying
	// (connection reset, 5xx, 429).
	ErrLoaderTransient = errors.New("transient loader failure")

	// Provider and Store Errors.

	// ErrEmbeddingProvider indicates the embedding provider failed.
	// Callers may retry.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrEmbeddingUnavailable indicates no embedding service is configured,
	// or the provider rejected the request in a way a retry cannot fix.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the vector store backend failed.
	// This is fatal for the current call and is never retried.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrTimeout indicates an external call exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// URL List Errors.

	// ErrMalformedURLListEntry indicates a URL list line that does not match
	// the "<url>,<tag>" grammar. The line is skipped.
	ErrMalformedURLListEntry = errors.New("malformed url list entry")
)

// IsRetryable reports whether err is a transient failure that a caller may
// retry with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrEmbeddingProvider) ||
		errors.Is(err, ErrLoaderTransient) ||
		errors.Is(err, ErrTimeout)
}

// ErrorKind returns a short, stable name for the first domain error found in
// err's chain. It is used in batch summaries and log fields.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedSourceType):
		return "unsupported_source_type"
	case errors.Is(err, ErrSourceEmpty):
		return "source_empty"
	case errors.Is(err, ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, ErrAuthRequired):
		return "authentication_required"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrEmbeddingProvider), errors.Is(err, ErrEmbeddingUnavailable):
		return "embedding_provider_error"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrMalformedURLListEntry):
		return "malformed_url_list_entry"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrLoaderTransient):
		return "loader_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
