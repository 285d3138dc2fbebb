package resilience

import (
	"context"
	"errors"
	"time"
)

// defaultBound guards callers that pass a non-positive duration.
const defaultBound = 30 * time.Second

// ExecuteWithTimeout runs op under a deadline. The operation receives a
// context that is cancelled when the bound lapses. A lapsed bound
// returns ErrTimeout; cancellation of the parent context passes through
// unchanged. The key-set fetch and its health ping run through this so
// a slow endpoint can never stall a validation indefinitely.
func ExecuteWithTimeout(ctx context.Context, bound time.Duration, op func(context.Context) error) error {
	if bound <= 0 {
		bound = defaultBound
	}

	ctx, cancel := context.WithTimeout(ctx, bound)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
