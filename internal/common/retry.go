package common

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var errConditionNotMet = errors.New("condition not met")

// Predicate is polled by RetryUntil. Returning (false, nil) means "not yet";
// a non-nil error stops polling immediately.
type Predicate func(ctx context.Context) (bool, error)

// RetryUntil evaluates predicate immediately and then every interval until it
// reports true or timeout elapses. A timeout is an expected outcome and is
// reported as (false, nil). Cancellation of the parent context is reported as
// (false, ctx.Err()).
func RetryUntil(ctx context.Context, interval, timeout time.Duration, predicate Predicate) (bool, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	policy := backoff.WithContext(backoff.NewConstantBackOff(interval), waitCtx)
	err := backoff.Retry(func() error {
		ok, err := predicate(waitCtx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errConditionNotMet
		}
		return nil
	}, policy)

	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case errors.Is(err, errConditionNotMet), errors.Is(err, context.DeadlineExceeded):
		return false, nil
	default:
		return false, err
	}
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
