// Package readiness provides bounded readiness polling utilities.
//
// Polls are always bounded by an explicit attempt budget and interval, and
// cancellation is checked between iterations so a delete request never waits
// on a poll that can no longer matter.
package readiness

import (
	"context"
	"fmt"
	"time"
)

// Check is a single readiness probe. Returning (true, nil) stops the poll
// successfully; returning an error aborts it; (false, nil) polls again.
type Check func(ctx context.Context) (bool, error)

// Poll runs check up to attempts times, interval apart. The budget
// (attempts x interval) is the hard upper bound on wait time; exhausting it
// returns ErrReadinessTimeout.
func Poll(
	ctx context.Context,
	attempts int,
	interval time.Duration,
	check Check,
) error {
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return fmt.Errorf("readiness poll cancelled: %w", ctxErr)
		}

		ready, err := check(ctx)
		if err != nil {
			return err
		}

		if ready {
			return nil
		}

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}

			return fmt.Errorf("readiness poll cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return ErrReadinessTimeout
}
