// Package fanout runs independent remote calls concurrently and joins their
// results back in input order.
package fanout

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options bounds a fan-out.
type Options struct {
	// Limit caps the number of in-flight calls. 0 means unlimited.
	Limit int
	// Limiter, when set, must grant a token before each call starts.
	Limiter *rate.Limiter
}

// NewLimiter returns a limiter allowing one call per interval with a small
// burst, or nil when interval is zero.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 2)
}

// Map calls fn for every item and returns the results indexed like items.
// The first error cancels the context passed to the remaining calls and is
// returned once every started call has finished; no partial results are
// returned in that case. Callers that want per-item degradation handle the
// failure inside fn and return a nil error.
func Map[T, R any](ctx context.Context, items []T, opts Options, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if opts.Limit > 0 {
		eg.SetLimit(opts.Limit)
	}

	for i, item := range items {
		eg.Go(func() error {
			if opts.Limiter != nil {
				if err := opts.Limiter.Wait(egCtx); err != nil {
					return err
				}
			}
			r, err := fn(egCtx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
