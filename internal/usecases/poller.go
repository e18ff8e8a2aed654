package usecases

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"ppv-marketplace/pkg/errors"
)

// Observation reads the current value of the state a transaction changes.
type Observation func(ctx context.Context) (*big.Int, error)

// Predicate reports whether observed shows the expected effect relative to baseline.
type Predicate func(baseline, observed *big.Int) bool

func Increased() Predicate {
	return func(baseline, observed *big.Int) bool { return observed.Cmp(baseline) > 0 }
}

func Decreased() Predicate {
	return func(baseline, observed *big.Int) bool { return observed.Cmp(baseline) < 0 }
}

func Changed() Predicate {
	return func(baseline, observed *big.Int) bool { return observed.Cmp(baseline) != 0 }
}

func Reached(target *big.Int) Predicate {
	return func(_, observed *big.Int) bool { return observed.Cmp(target) == 0 }
}

type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
	// MaxLookupFailures is how many failed reads are tolerated before the
	// poll gives up with LookupFailed. Zero aborts on the first failure.
	MaxLookupFailures int
}

type Confirmation struct {
	Observed *big.Int
	Attempts int
}

// AwaitEffect re-reads observe every interval until pred holds against
// baseline. It returns TimedOut after MaxAttempts non-matching reads and
// LookupFailed once reads keep failing. Failed reads are not attempts.
// Cancelling ctx stops the wait and returns ctx.Err(); it has no effect on
// anything already submitted.
func AwaitEffect(ctx context.Context, baseline *big.Int, observe Observation, pred Predicate, opts PollOptions) (*Confirmation, error) {
	if opts.MaxAttempts <= 0 {
		return nil, errors.ErrInvalidInput(fmt.Errorf("maxAttempts must be positive, got %d", opts.MaxAttempts))
	}
	if baseline == nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("baseline is required"))
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	attempts, failures := 0, 0
	var last *big.Int
	for attempts < opts.MaxAttempts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		observed, err := observe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			if failures > opts.MaxLookupFailures {
				return nil, errors.ErrLookupFailed(fmt.Errorf("after %d failed reads: %w", failures, err))
			}
			continue
		}
		attempts++
		last = observed
		if pred(baseline, observed) {
			return &Confirmation{Observed: observed, Attempts: attempts}, nil
		}
	}
	return &Confirmation{Observed: last, Attempts: attempts},
		errors.ErrTimedOut(fmt.Errorf("no change from baseline %s after %d reads", baseline, attempts))
}
