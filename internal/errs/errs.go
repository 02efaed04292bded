// Package errs attaches machine-readable codes and structured fields to
// errors crossing a service boundary. Codes follow "area.operation.reason";
// the reason suffix drives classification and HTTP status mapping.
//
// Errors built here keep their cause chain, so errors.Is against the domain
// sentinels still works.
package errs

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeIngestSourceUnsupported Code = "ingest.source.unsupported"
	CodeIngestSourceEmpty       Code = "ingest.source.empty"
	CodeIngestSourceNotFound    Code = "ingest.source.not_found"
	CodeIngestSourceAuth        Code = "ingest.source.unauthorized"
	CodeIngestSourceForbidden   Code = "ingest.source.forbidden"
	CodeIngestLoadFailure       Code = "ingest.load.upstream_failure"
	CodeIngestEmbedFailure      Code = "ingest.embed.upstream_failure"
	CodeIngestTimeout           Code = "ingest.call.timeout"
	CodeIngestInvalidInput      Code = "ingest.request.invalid"

	CodeStoreUnavailable Code = "store.backend.unavailable"
	CodeStoreNotFound    Code = "store.chunk.not_found"

	CodeSearchEmbedFailure Code = "search.embed.upstream_failure"
	CodeSearchInvalidInput Code = "search.request.invalid"

	CodeCatalogInvalidInput Code = "catalog.request.invalid"
	CodeCatalogNotFound     Code = "catalog.chunk.not_found"

	CodeURLListMalformed  Code = "urllist.entry.invalid"
	CodeURLListReadFail   Code = "urllist.file.unavailable"
	CodeURLListWriteFail  Code = "urllist.file.write_failure"
	CodeURLListNotFound   Code = "urllist.file.not_found"
	CodeURLListDiscovery  Code = "urllist.discover.upstream_failure"
	CodeURLListAuth       Code = "urllist.discover.unauthorized"

	CodeConfigInvalid Code = "config.validate.invalid"
	CodeInternal      Code = "internal.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// New returns a coded error with msg.
func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

// Errorf returns a coded error; %w verbs wrap as with fmt.Errorf.
func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

// Wrap attaches code and fields to err. It returns nil when err is nil.
func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

// CodeOf returns the code attached to err, or "" when none is.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}
	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}
	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

// FieldsOf returns the structured fields attached to err.
func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Context()
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// FromDomain wraps err with the code matching the first domain sentinel in
// its chain. Errors that already carry a code are returned unchanged.
func FromDomain(err error, area string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	return Wrap(err, codeFor(err, area), area, fields...)
}

func codeFor(err error, area string) Code {
	switch {
	case stderrors.Is(err, domain.ErrUnsupportedSourceType):
		return CodeIngestSourceUnsupported
	case stderrors.Is(err, domain.ErrSourceEmpty):
		return CodeIngestSourceEmpty
	case stderrors.Is(err, domain.ErrSourceNotFound):
		return CodeIngestSourceNotFound
	case stderrors.Is(err, domain.ErrAuthRequired):
		return CodeIngestSourceAuth
	case stderrors.Is(err, domain.ErrAccessDenied):
		return CodeIngestSourceForbidden
	case stderrors.Is(err, domain.ErrTimeout):
		return CodeIngestTimeout
	case stderrors.Is(err, domain.ErrEmbeddingProvider), stderrors.Is(err, domain.ErrEmbeddingUnavailable):
		if area == "search" {
			return CodeSearchEmbedFailure
		}
		return CodeIngestEmbedFailure
	case stderrors.Is(err, domain.ErrLoaderTransient):
		return CodeIngestLoadFailure
	case stderrors.Is(err, domain.ErrStoreUnavailable):
		return CodeStoreUnavailable
	case stderrors.Is(err, domain.ErrMalformedURLListEntry):
		return CodeURLListMalformed
	case stderrors.Is(err, domain.ErrNotFound):
		if area == "catalog" {
			return CodeCatalogNotFound
		}
		return CodeStoreNotFound
	case stderrors.Is(err, domain.ErrInvalidInput):
		switch area {
		case "search":
			return CodeSearchInvalidInput
		case "catalog":
			return CodeCatalogInvalidInput
		}
		return CodeIngestInvalidInput
	default:
		return CodeInternal
	}
}

// IsNotFound reports whether err's code has the not_found reason.
func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

// IsInvalidInput reports whether err's code has an invalid reason.
func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input"
}

// HTTPStatus maps err to the status code an API should answer with.
func HTTPStatus(err error) int {
	switch reason(CodeOf(err)) {
	case "not_found":
		return http.StatusNotFound
	case "invalid", "invalid_input":
		return http.StatusBadRequest
	case "unsupported":
		return http.StatusUnsupportedMediaType
	case "empty":
		return http.StatusUnprocessableEntity
	case "unauthorized":
		return http.StatusUnauthorized
	case "forbidden":
		return http.StatusForbidden
	case "upstream_failure":
		return http.StatusBadGateway
	case "unavailable":
		return http.StatusServiceUnavailable
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
