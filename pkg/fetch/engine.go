package fetch

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/logging"
	"github.com/japanir/equitysync/pkg/quote"
)

// Retry defaults. Transient provider failures and empty responses are
// retried with a constant delay; validation failures are terminal unless
// RetryValidation is set.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 10 * time.Second
)

// EngineConfig controls retry behavior.
type EngineConfig struct {
	// MaxAttempts is the total number of attempts per code, including the
	// first. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// RetryDelay is the constant pause between attempts. Zero means
	// DefaultRetryDelay.
	RetryDelay time.Duration
	// RetryValidation retries validation failures as if they were
	// transient. Off by default since malformed provider payloads rarely
	// heal within a run.
	RetryValidation bool
}

// Engine fetches quotes through a Source with retry and failure
// classification.
type Engine struct {
	source Source
	cfg    EngineConfig
}

// NewEngine creates an engine over source.
func NewEngine(source Source, cfg EngineConfig) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Engine{source: source, cfg: cfg}
}

// FetchOne fetches a single code. It always returns a quote: on failure the
// quote carries StatusFailure, the attempt count, and the classified error.
// The error return mirrors the quote's failure for callers that want to
// branch on it.
func (e *Engine) FetchOne(ctx context.Context, code string) (*quote.Quote, error) {
	attempt := 0

	operation := func() (*quote.Quote, error) {
		attempt++
		q, err := e.source.Fetch(ctx, code)
		if err != nil {
			classified := e.classify(code, attempt, err)
			if e.retryable(classified) {
				logging.Debug().
					Str("code", code).
					Int("attempt", attempt).
					Err(err).
					Msg("Fetch attempt failed, will retry")
				return nil, classified
			}
			return nil, backoff.Permanent(classified)
		}
		if isEmpty(q) {
			emptyErr := errors.NewFetchError(code, errors.ReasonEmpty, attempt, errors.ErrEmptyResponse)
			logging.Debug().
				Str("code", code).
				Int("attempt", attempt).
				Msg("Provider returned no data, will retry")
			return nil, emptyErr
		}
		return q, nil
	}

	q, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(e.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(e.cfg.MaxAttempts)),
	)
	if err != nil {
		logging.Warn().
			Str("code", code).
			Int("attempts", attempt).
			Err(err).
			Msg("Fetch failed")
		return quote.NewFailure(code, attempt, err), err
	}

	q.Attempts = attempt
	return q, nil
}

// classify wraps a raw source error into a FetchError with a reason.
func (e *Engine) classify(code string, attempt int, err error) error {
	if _, ok := err.(*errors.FetchError); ok {
		return err
	}
	switch {
	case errors.Is(err, errors.ErrEmptyResponse):
		return errors.NewFetchError(code, errors.ReasonEmpty, attempt, err)
	case errors.IsValidationError(err):
		return errors.NewFetchError(code, errors.ReasonValidation, attempt, err)
	case errors.IsTransient(err):
		return errors.NewFetchError(code, errors.ReasonTransient, attempt, err)
	case errors.IsNotFound(err):
		return err
	default:
		// Unknown source errors are treated as transient so a flaky
		// provider does not burn a whole batch.
		return errors.NewFetchError(code, errors.ReasonTransient, attempt, err)
	}
}

// retryable reports whether a classified error should be retried.
func (e *Engine) retryable(err error) bool {
	if errors.IsNotFound(err) {
		return false
	}
	if errors.IsValidationError(err) {
		return e.cfg.RetryValidation
	}
	return errors.IsTransient(err)
}

// isEmpty reports whether a quote carries no usable market data.
func isEmpty(q *quote.Quote) bool {
	if q == nil {
		return true
	}
	return q.CurrentPrice == nil && q.PreviousClose == nil && q.MarketCap == nil
}
