// Package retry provides bounded retry with an intervening recovery action.
package retry

import (
	"context"
	"fmt"
)

// Op is one attempt of the guarded operation. attempt starts at 0.
type Op func(ctx context.Context, attempt int) error

// Recovery runs between a failed attempt and the next one.
type Recovery func(ctx context.Context)

// WithRecovery runs op, and on failure runs recovery and retries, up to
// retries additional attempts. This is a bounded-retry pattern, not a
// generic retry loop: the recovery step is expected to change the condition
// that made the first attempt fail.
//
// The returned error wraps the final failure and preserves the original
// failure message when more than one attempt ran.
func WithRecovery(ctx context.Context, retries int, recovery Recovery, op Op) error {
	var firstErr error

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}

		if attempt >= retries {
			if attempt > 0 {
				return fmt.Errorf("failed after %d attempts: %w (original error: %v)",
					attempt+1, err, firstErr)
			}
			return err
		}

		if recovery != nil {
			recovery(ctx)
		}
	}
}
