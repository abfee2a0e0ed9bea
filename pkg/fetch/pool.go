package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/japanir/equitysync/pkg/logging"
)

// Pool runs an arbitrary per code task with the scheduler's batching
// discipline: fixed-size batches, a bounded number of workers per batch,
// and a cool-down between batches. The quote pipeline uses Scheduler;
// document runs use Pool directly.
type Pool struct {
	cfg SchedulerConfig
}

// NewPool creates a pool with the given batching configuration. Zero
// values fall back to the scheduler defaults.
func NewPool(cfg SchedulerConfig) *Pool {
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
	return &Pool{cfg: cfg}
}

// Run invokes task once per code. Codes in the same batch run concurrently
// under at most Workers goroutines; task is responsible for its own result
// handling and must be safe for concurrent use across distinct codes. Run
// stops early when ctx is canceled.
func (p *Pool) Run(ctx context.Context, codes []string, task func(ctx context.Context, code string)) error {
	total := len(codes)
	if total == 0 {
		return nil
	}

	batches := (total + p.cfg.BatchSize - 1) / p.cfg.BatchSize
	logging.Info().
		Int("total", total).
		Int("batches", batches).
		Int("batch_size", p.cfg.BatchSize).
		Int("workers", p.cfg.Workers).
		Msg("Starting batch run")

	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := b * p.cfg.BatchSize
		end := start + p.cfg.BatchSize
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		semaphore := make(chan struct{}, p.cfg.Workers)
		for _, code := range codes[start:end] {
			wg.Add(1)
			go func(code string) {
				defer wg.Done()

				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				if ctx.Err() != nil {
					return
				}
				task(ctx, code)
			}(code)
		}
		wg.Wait()

		if b < batches-1 && p.cfg.BatchDelay > 0 {
			logging.Debug().Dur("delay", p.cfg.BatchDelay).Msg("Cooling down before next batch")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.cfg.BatchDelay):
			}
		}
	}
	return ctx.Err()
}
