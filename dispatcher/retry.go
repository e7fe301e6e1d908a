package dispatcher

import (
	"context"
	"time"

	"github.com/tokenize-x/tx-tools/pkg/retry"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
)

// defaultMaxAttempts bounds how many submission attempts (the first one
// included) a batch gets on transient failures before the dispatcher gives
// up and fails the whole batch (spec.md §4.3).
const defaultMaxAttempts = 5

// defaultRetryInterval is the base delay retry.Do waits between attempts.
const defaultRetryInterval = 200 * time.Millisecond

// submitWithRetry calls submit, retrying transient failures (classified by
// ibc.IsRetryable) via retry.Do until maxAttempts attempts have been made
// in total. A batch-fatal error is returned immediately without retrying.
func submitWithRetry(ctx context.Context, maxAttempts int, interval time.Duration, submit func(ctx context.Context) ([][]chain.Event, error)) ([][]chain.Event, error) {
	var (
		result  [][]chain.Event
		lastErr error
		attempt int
	)

	retryCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	err := retry.Do(retryCtx, interval, func() error {
		attempt++
		res, err := submit(ctx)
		if err == nil {
			result = res
			return nil
		}
		lastErr = err
		if !ibc.IsRetryable(err) {
			cancel()
			return err
		}
		if attempt >= maxAttempts {
			cancel()
			return err
		}
		return retry.Retryable(err)
	})
	if err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	return result, nil
}
