// Package fetch runs the rate limited, concurrent retrieval of market
// attributes for a set of securities codes. A Source produces one quote per
// code; the Engine adds retry and failure classification; the Scheduler
// slices the registry into batches and fans each batch out over a bounded
// worker pool with a cool down between batches.
package fetch

import (
	"context"

	"github.com/japanir/equitysync/pkg/quote"
)

// Source retrieves market attributes for a single securities code. It is
// implemented by the market data provider client.
type Source interface {
	Fetch(ctx context.Context, code string) (*quote.Quote, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, code string) (*quote.Quote, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, code string) (*quote.Quote, error) {
	return f(ctx, code)
}
