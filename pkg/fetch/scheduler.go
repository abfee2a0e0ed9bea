package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/japanir/equitysync/pkg/logging"
	"github.com/japanir/equitysync/pkg/quote"
)

// Scheduler defaults, tuned to stay under the provider's informal rate
// ceiling.
const (
	DefaultBatchSize  = 50
	DefaultWorkers    = 3
	DefaultBatchDelay = 45 * time.Second
)

// SchedulerConfig controls batching and concurrency.
type SchedulerConfig struct {
	// BatchSize is the number of codes per batch. Zero means
	// DefaultBatchSize.
	BatchSize int
	// Workers is the number of concurrent fetches within a batch. Zero
	// means DefaultWorkers.
	Workers int
	// BatchDelay is the cool down between consecutive batches. There is
	// no delay after the final batch. Zero means DefaultBatchDelay; use a
	// negative value for no delay.
	BatchDelay time.Duration
}

// Scheduler runs an Engine over a list of codes in rate limited batches.
type Scheduler struct {
	engine *Engine
	cfg    SchedulerConfig
}

// NewScheduler creates a scheduler over engine.
func NewScheduler(engine *Engine, cfg SchedulerConfig) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.BatchDelay == 0 {
		cfg.BatchDelay = DefaultBatchDelay
	} else if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	return &Scheduler{engine: engine, cfg: cfg}
}

// Run fetches every code and returns one quote per code, in input order.
// Codes in the same batch are fetched concurrently by at most Workers
// goroutines. Run stops early when ctx is canceled, returning the quotes
// gathered so far plus the context error.
func (s *Scheduler) Run(ctx context.Context, codes []string) ([]*quote.Quote, error) {
	total := len(codes)
	if total == 0 {
		return nil, nil
	}

	batches := (total + s.cfg.BatchSize - 1) / s.cfg.BatchSize
	logging.Info().
		Int("total", total).
		Int("batches", batches).
		Int("batch_size", s.cfg.BatchSize).
		Int("workers", s.cfg.Workers).
		Dur("batch_delay", s.cfg.BatchDelay).
		Msg("Starting fetch run")

	tracker := NewTracker(total)
	results := make([]*quote.Quote, total)

	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return compact(results), err
		}

		start := b * s.cfg.BatchSize
		end := start + s.cfg.BatchSize
		if end > total {
			end = total
		}

		logging.Info().
			Int("batch", b+1).
			Int("of", batches).
			Int("size", end-start).
			Msg("Fetching batch")

		s.runBatch(ctx, codes[start:end], results[start:end], tracker)

		if b < batches-1 && s.cfg.BatchDelay > 0 {
			logging.Debug().Dur("delay", s.cfg.BatchDelay).Msg("Cooling down before next batch")
			select {
			case <-ctx.Done():
				return compact(results), ctx.Err()
			case <-time.After(s.cfg.BatchDelay):
			}
		}
	}

	tracker.LogSummary()
	return compact(results), ctx.Err()
}

// runBatch fetches one batch of codes concurrently into out.
func (s *Scheduler) runBatch(ctx context.Context, codes []string, out []*quote.Quote, tracker *Tracker) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.cfg.Workers)

	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}

			q, err := s.engine.FetchOne(ctx, code)
			out[i] = q
			if err != nil {
				tracker.Fail()
			} else {
				tracker.Complete()
			}
		}(i, code)
	}

	wg.Wait()
}

// compact drops nil slots left by an early cancellation.
func compact(quotes []*quote.Quote) []*quote.Quote {
	out := quotes[:0]
	for _, q := range quotes {
		if q != nil {
			out = append(out, q)
		}
	}
	return out
}
