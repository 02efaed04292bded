package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
	"github.com/custodia-labs/tagvault/internal/errs"
	"github.com/custodia-labs/tagvault/internal/logger"
	"github.com/custodia-labs/tagvault/internal/urllist"
)

// DefaultLinkFilter selects page links when discovery is given no filter.
const DefaultLinkFilter = "pageId"

// Ensure URLListService implements the interface.
var _ driving.URLListService = (*URLListService)(nil)

// URLListService registers URLs in the URL list file and batch-ingests them.
type URLListService struct {
	store      driven.URLListStore
	ingest     driving.IngestService
	discoverer driven.LinkDiscoverer
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewURLListService creates a new URL list service.
// The discoverer is optional; Discover fails without one.
func NewURLListService(
	store driven.URLListStore,
	ingest driving.IngestService,
	discoverer driven.LinkDiscoverer,
	log *logger.Logger,
) *URLListService {
	if log == nil {
		log = logger.Nop()
	}
	return &URLListService{
		store:      store,
		ingest:     ingest,
		discoverer: discoverer,
		log:        log.With("component", "urls"),
	}
}

// SetRateLimit throttles IngestAll to rps entries per second with the
// given burst. A non-positive rps disables throttling.
func (s *URLListService) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	if burst <= 0 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Load returns the registered entries and the malformed lines of the file.
func (s *URLListService) Load(ctx context.Context) ([]domain.URLListEntry, []domain.MalformedLine, error) {
	entries, problems, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, errs.Wrap(err, errs.CodeURLListReadFail, "load url list")
	}
	for _, p := range problems {
		s.log.Warn("skipping malformed url list line", "line", p.Line, "reason", p.Reason)
	}
	return entries, problems, nil
}

// Register replaces the URL list with urls, each labelled tag, and reports
// which were new and which were already registered.
func (s *URLListService) Register(ctx context.Context, urls []string, tag string) (domain.MergeResult, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.Contains(tag, "\n") {
		return domain.MergeResult{}, errs.Wrap(
			fmt.Errorf("%w: tag is required", domain.ErrInvalidInput), errs.CodeURLListMalformed, "register urls")
	}
	for _, u := range urls {
		// The list splits each line on its first comma.
		if strings.ContainsAny(u, "\r\n,") {
			return domain.MergeResult{}, errs.Wrap(
				fmt.Errorf("%w: url %q cannot be stored in the list", domain.ErrInvalidInput, u), errs.CodeURLListMalformed, "register urls")
		}
	}

	existing, _, err := s.Load(ctx)
	if err != nil {
		return domain.MergeResult{}, err
	}

	result := urllist.Merge(existing, urls, tag)
	if err := s.store.Save(ctx, result.Entries); err != nil {
		return domain.MergeResult{}, errs.Wrap(err, errs.CodeURLListWriteFail, "save url list")
	}

	s.log.Info("registered urls",
		"tag", tag,
		"entries", len(result.Entries),
		"added", len(result.Added),
		"kept", len(result.Kept),
		"dropped", len(result.Dropped))
	return result, nil
}

// Discover collects the links of pageURL whose href contains contains
// (DefaultLinkFilter when empty) and registers them under tag.
// Only the one page is read; its links are not followed.
func (s *URLListService) Discover(ctx context.Context, pageURL, contains, tag string) (domain.MergeResult, error) {
	if s.discoverer == nil {
		return domain.MergeResult{}, errs.New(errs.CodeInternal, "link discovery is not configured")
	}
	if contains == "" {
		contains = DefaultLinkFilter
	}

	links, err := s.discoverer.DiscoverLinks(ctx, strings.TrimSpace(pageURL), contains)
	if err != nil {
		code := errs.CodeURLListDiscovery
		switch {
		case errors.Is(err, domain.ErrAuthRequired):
			code = errs.CodeURLListAuth
		case errors.Is(err, domain.ErrInvalidInput):
			code = errs.CodeURLListMalformed
		}
		return domain.MergeResult{}, errs.Wrap(err, code, "discover links", errs.Field("page", pageURL))
	}

	storable := make([]string, 0, len(links))
	for _, link := range links {
		if strings.Contains(link, ",") {
			s.log.Warn("skipping link with a comma", "link", link)
			continue
		}
		storable = append(storable, link)
	}

	s.log.Info("discovered links", "page", pageURL, "contains", contains, "links", len(storable))
	return s.Register(ctx, storable, tag)
}

// IngestAll ingests every registered entry in file order. Malformed lines
// and failed entries are reported in the summary; neither stops the batch.
// The error is non-nil only when the list itself cannot be read.
func (s *URLListService) IngestAll(ctx context.Context) (domain.BatchSummary, error) {
	entries, problems, err := s.Load(ctx)
	if err != nil {
		return domain.BatchSummary{}, err
	}

	summary := domain.BatchSummary{
		Succeeded: make([]domain.BatchItemResult, 0, len(entries)),
		Failed:    make([]domain.BatchItemResult, 0, len(problems)),
	}
	for _, p := range problems {
		summary.Failed = append(summary.Failed, domain.BatchItemResult{
			Source: strings.TrimSpace(p.Text),
			Kind:   domain.ErrorKind(p),
			Error:  p.Error(),
		})
	}

	for _, entry := range entries {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				summary.Failed = append(summary.Failed, domain.BatchItemResult{
					Source: entry.URL,
					Tag:    entry.Tag,
					Kind:   domain.ErrorKind(err),
					Error:  fmt.Sprintf("throttle: %v", err),
				})
				continue
			}
		}

		item := s.ingest.IngestBatch(ctx, []domain.IngestRequest{{Source: entry.URL, Tag: entry.Tag}})
		summary.Succeeded = append(summary.Succeeded, item.Succeeded...)
		summary.Failed = append(summary.Failed, item.Failed...)
	}

	s.log.Info("url list ingested",
		"entries", len(entries),
		"succeeded", len(summary.Succeeded),
		"failed", len(summary.Failed))
	return summary, nil
}
