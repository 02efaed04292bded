package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/logger"
)

func TestRetryPolicy_WithDefaults(t *testing.T) {
	assert.Equal(t, DefaultRetryPolicy(), RetryPolicy{}.withDefaults())

	p := RetryPolicy{Attempts: 5, Initial: time.Second, Max: time.Millisecond}.withDefaults()
	assert.Equal(t, 5, p.Attempts)
	assert.Equal(t, time.Second, p.Max, "max never below initial")
	assert.Equal(t, DefaultCallTimeout, p.Timeout)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{Initial: 100 * time.Millisecond, Max: time.Second}

	assert.Equal(t, 100*time.Millisecond, p.backoff(1))
	assert.Equal(t, 200*time.Millisecond, p.backoff(2))
	assert.Equal(t, 400*time.Millisecond, p.backoff(3))
	assert.Equal(t, 800*time.Millisecond, p.backoff(4))
	assert.Equal(t, time.Second, p.backoff(5))
	assert.Equal(t, time.Second, p.backoff(30))
}

func TestRetryCall_SucceedsAfterRetryableErrors(t *testing.T) {
	calls := 0
	got, err := retryCall(context.Background(), fastRetry(), logger.Nop(), "op", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, domain.ErrLoaderTransient
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetryCall_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := retryCall(context.Background(), fastRetry(), logger.Nop(), "op", func(context.Context) (int, error) {
		calls++
		return 0, domain.ErrSourceNotFound
	})
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetryCall_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	_, err := retryCall(context.Background(), fastRetry(), logger.Nop(), "op", func(context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("%w: 503", domain.ErrEmbeddingProvider)
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
	assert.Equal(t, 3, calls)
}

func TestRetryCall_AttemptTimeout(t *testing.T) {
	p := RetryPolicy{Attempts: 2, Initial: time.Millisecond, Max: time.Millisecond, Timeout: 10 * time.Millisecond}
	calls := 0
	_, err := retryCall(context.Background(), p, logger.Nop(), "op", func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, calls)
}

func TestRetryCall_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := retryCall(ctx, fastRetry(), logger.Nop(), "op", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, domain.ErrLoaderTransient
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, domain.ErrTimeout))
	assert.Equal(t, 1, calls)
}

func TestKeyedMutex_SerialisesSameKey(t *testing.T) {
	var km keyedMutex

	unlock := km.Lock("a")

	acquired := make(chan struct{})
	go func() {
		release := km.Lock("a")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock on the same key acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	other := make(chan struct{})
	go func() {
		release := km.Lock("b")
		close(other)
		release()
	}()
	select {
	case <-other:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiting lock not released")
	}
}

func TestKeyedMutex_DropsUnusedKeys(t *testing.T) {
	var km keyedMutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			unlock := km.Lock(fmt.Sprintf("k-%d", n%5))
			unlock()
		}(i)
	}
	wg.Wait()
	assert.Zero(t, km.size())
}
