package resolver

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"snap_behat/domain/errs"
)

// Eventually retries check every interval until it returns nil or timeout
// elapses, and returns the last error check produced. MalformedInput is
// returned at once since no amount of waiting fixes a bad argument.
func Eventually(ctx context.Context, interval, timeout time.Duration, check func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var last error
	operation := func() error {
		last = check(ctx)
		if errs.Is(last, errs.MalformedInput) {
			return backoff.Permanent(last)
		}
		return last
	}
	if err := backoff.Retry(operation, backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)); err != nil {
		if last == nil {
			return err
		}
		return last
	}
	return nil
}
