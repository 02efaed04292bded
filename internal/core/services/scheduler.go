package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driving"
	"github.com/custodia-labs/tagvault/internal/logger"
)

// MinRefreshInterval is the shortest interval a RefreshScheduler accepts.
const MinRefreshInterval = time.Minute

// ErrRefreshInterval is returned for intervals below MinRefreshInterval.
var ErrRefreshInterval = errors.New("refresh interval must be at least one minute")

// RefreshRun describes one pass over the URL list.
type RefreshRun struct {
	StartedAt time.Time
	EndedAt   time.Time
	Summary   domain.BatchSummary
	Err       error
}

// RefreshScheduler re-ingests every registered URL on a fixed interval so
// stored pages follow their live versions. Runs never overlap.
type RefreshScheduler struct {
	urls     driving.URLListService
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	last    *RefreshRun
	runs    int
}

// NewRefreshScheduler creates a scheduler for urls.
func NewRefreshScheduler(urls driving.URLListService, interval time.Duration, log *logger.Logger) (*RefreshScheduler, error) {
	if interval < MinRefreshInterval {
		return nil, ErrRefreshInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RefreshScheduler{
		urls:     urls,
		interval: interval,
		log:      log.With("component", "refresh"),
	}, nil
}

// Start runs the URL list once, then again every interval. It blocks until
// ctx is cancelled or Stop is called.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	return s.run(ctx, stopCh)
}

// Stop ends the loop and waits for a run in progress to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

// Last returns the most recent run, or nil before the first one ends.
func (s *RefreshScheduler) Last() *RefreshRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	run := *s.last
	return &run
}

// Runs returns how many passes have completed.
func (s *RefreshScheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *RefreshScheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// refresh performs one pass and records it.
func (s *RefreshScheduler) refresh(ctx context.Context) {
	run := &RefreshRun{StartedAt: time.Now()}
	run.Summary, run.Err = s.urls.IngestAll(ctx)
	run.EndedAt = time.Now()

	if run.Err != nil {
		s.log.Warn("url refresh failed", "error", run.Err)
	} else {
		s.log.Info("url refresh finished",
			"entries", run.Summary.Total(),
			"failed", len(run.Summary.Failed),
			"chunks", run.Summary.ChunksWritten(),
			"next", run.EndedAt.Add(s.interval).Format(time.RFC3339))
	}

	s.mu.Lock()
	s.last = run
	s.runs++
	s.mu.Unlock()
}

func (s *RefreshScheduler) markStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
