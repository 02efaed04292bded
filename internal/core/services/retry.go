package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/logger"
)

// Retry defaults.
const (
	DefaultRetryAttempts = 3
	DefaultRetryInitial  = 500 * time.Millisecond
	DefaultRetryMax      = 5 * time.Second
	DefaultCallTimeout   = 60 * time.Second
)

// RetryPolicy bounds calls to loaders and the embedding provider.
// Each attempt runs under its own Timeout; retryable failures are retried
// with exponential backoff starting at Initial and capped at Max.
type RetryPolicy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
	Timeout  time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: DefaultRetryAttempts,
		Initial:  DefaultRetryInitial,
		Max:      DefaultRetryMax,
		Timeout:  DefaultCallTimeout,
	}
}

// withDefaults fills zero fields from DefaultRetryPolicy.
func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.Initial <= 0 {
		p.Initial = def.Initial
	}
	if p.Max <= 0 {
		p.Max = def.Max
	}
	if p.Max < p.Initial {
		p.Max = p.Initial
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	return p
}

// backoff returns the delay before the given retry (1-based).
func (p RetryPolicy) backoff(retry int) time.Duration {
	delay := p.Initial
	for i := 1; i < retry; i++ {
		delay *= 2
		if delay >= p.Max {
			return p.Max
		}
	}
	return delay
}

// retryCall runs fn under p. Non-retryable errors are returned at once.
// An attempt that hits its own deadline while ctx is still live fails with
// domain.ErrTimeout, which is retryable.
func retryCall[T any](
	ctx context.Context,
	p RetryPolicy,
	log *logger.Logger,
	op string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if attempt > 1 {
			delay := p.backoff(attempt - 1)
			log.Debug("retrying call", "op", op, "attempt", attempt, "delay", delay, "error", lastErr)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, fmt.Errorf("%s: %w", op, ctx.Err())
			case <-timer.C:
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		result, err := fn(attemptCtx)
		timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()

		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		if timedOut && !errors.Is(err, domain.ErrTimeout) {
			err = fmt.Errorf("%w after %s: %w", domain.ErrTimeout, p.Timeout, err)
		}

		lastErr = err
		if !domain.IsRetryable(err) {
			return zero, err
		}
	}

	log.Warn("call failed after retries", "op", op, "attempts", p.Attempts, "error", lastErr)
	return zero, lastErr
}

// keyedMutex serialises work per key. Entries are dropped once unused so
// the map does not grow with every key ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// size returns the number of keys currently held or awaited.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
