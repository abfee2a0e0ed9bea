package fetch_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/fetch"
	"github.com/japanir/equitysync/pkg/quote"
)

func newScheduler(source fetch.Source, cfg fetch.SchedulerConfig) *fetch.Scheduler {
	return fetch.NewScheduler(fetch.NewEngine(source, fastConfig()), cfg)
}

func makeCodes(n int) []string {
	codes := make([]string, n)
	for i := range codes {
		codes[i] = fmt.Sprintf("%04d", 1000+i)
	}
	return codes
}

func TestSchedulerRunPreservesOrder(t *testing.T) {
	source := fetch.SourceFunc(func(_ context.Context, code string) (*quote.Quote, error) {
		return goodQuote(code), nil
	})
	scheduler := newScheduler(source, fetch.SchedulerConfig{
		BatchSize:  4,
		Workers:    3,
		BatchDelay: -1,
	})

	codes := makeCodes(10)
	quotes, err := scheduler.Run(context.Background(), codes)
	require.NoError(t, err)
	require.Len(t, quotes, 10)
	for i, q := range quotes {
		assert.Equal(t, codes[i], q.Code)
		assert.True(t, q.Success())
	}
}

func TestSchedulerRunRecordsFailures(t *testing.T) {
	source := fetch.SourceFunc(func(_ context.Context, code string) (*quote.Quote, error) {
		if code == "1002" {
			return nil, errors.ErrNotFound
		}
		return goodQuote(code), nil
	})
	scheduler := newScheduler(source, fetch.SchedulerConfig{
		BatchSize:  3,
		Workers:    2,
		BatchDelay: -1,
	})

	quotes, err := scheduler.Run(context.Background(), makeCodes(5))
	require.NoError(t, err)
	require.Len(t, quotes, 5)

	successes, failures := quote.Split(quotes)
	assert.Len(t, successes, 4)
	require.Len(t, failures, 1)
	assert.Equal(t, "1002", failures[0].Code)
}

func TestSchedulerBoundsConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	source := fetch.SourceFunc(func(_ context.Context, code string) (*quote.Quote, error) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return goodQuote(code), nil
	})
	scheduler := newScheduler(source, fetch.SchedulerConfig{
		BatchSize:  20,
		Workers:    2,
		BatchDelay: -1,
	})

	_, err := scheduler.Run(context.Background(), makeCodes(20))
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, 2)
}

func TestSchedulerCoolsDownBetweenBatches(t *testing.T) {
	source := fetch.SourceFunc(func(_ context.Context, code string) (*quote.Quote, error) {
		return goodQuote(code), nil
	})
	scheduler := newScheduler(source, fetch.SchedulerConfig{
		BatchSize:  2,
		Workers:    2,
		BatchDelay: 30 * time.Millisecond,
	})

	// 5 codes in batches of 2 means 3 batches and 2 cool downs.
	start := time.Now()
	quotes, err := scheduler.Run(context.Background(), makeCodes(5))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Len(t, quotes, 5)
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestSchedulerRunEmptyInput(t *testing.T) {
	source := fetch.SourceFunc(func(_ context.Context, code string) (*quote.Quote, error) {
		return goodQuote(code), nil
	})
	scheduler := newScheduler(source, fetch.SchedulerConfig{BatchDelay: -1})

	quotes, err := scheduler.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestSchedulerRunHonorsCancellation(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	source := fetch.SourceFunc(func(_ context.Context, code string) (*quote.Quote, error) {
		if calls.Add(1) == 2 {
			cancel()
		}
		return goodQuote(code), nil
	})
	scheduler := newScheduler(source, fetch.SchedulerConfig{
		BatchSize:  2,
		Workers:    1,
		BatchDelay: 10 * time.Second,
	})

	start := time.Now()
	_, err := scheduler.Run(ctx, makeCodes(6))
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestTrackerCounts(t *testing.T) {
	tracker := fetch.NewTracker(5)
	tracker.Complete()
	tracker.Complete()
	tracker.Fail()

	completed, failed := tracker.Counts()
	assert.Equal(t, 2, completed)
	assert.Equal(t, 1, failed)
}
