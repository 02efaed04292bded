package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/custodia-labs/tagvault/internal/errs"
)

// Port validation errors.
var (
	ErrInvalidPorts          = errors.New("ports cannot be nil")
	ErrMissingIngestService  = errors.New("ingest service is required")
	ErrMissingSearchService  = errors.New("search service is required")
	ErrMissingTagService     = errors.New("tag service is required")
	ErrMissingCatalogService = errors.New("catalog service is required")
	ErrListenAddrRequired    = errors.New("listen address is required")
)

// toHTTPError maps a service error to a huma error carrying the status for
// its code. The code is exposed as an error detail so clients can branch
// on it without parsing the message.
func toHTTPError(err error) error {
	if err == nil {
		return nil
	}

	status := errs.HTTPStatus(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = 499
	}

	var details []error
	if code := errs.CodeOf(err); code != "" {
		details = append(details, &huma.ErrorDetail{
			Message:  "error code",
			Location: "code",
			Value:    string(code),
		})
	}
	return huma.NewError(status, err.Error(), details...)
}
