// Package integration provides test harnesses for scenario-level tests that
// exercise a full relay between two chain.Driver instances rather than a
// single package in isolation.
package integration

import (
	"context"
	"time"

	"github.com/tokenize-x/tx-tools/pkg/retry"

	"github.com/tokenize-x/ibc-relayer/chain/mock"
)

// DefaultAwaitStateTimeout bounds how long AwaitState polls before giving up.
const DefaultAwaitStateTimeout = 30 * time.Second

// Harness bundles the two mock chains a scenario test relays between, so
// the test can observe their state converge. It holds no engines itself.
type Harness struct {
	Src *mock.Driver
	Dst *mock.Driver
}

type awaitStateOptions struct {
	timeout      time.Duration
	recheckDelay time.Duration
	checkTimeout time.Duration
}

func defaultAwaitStateOptions() awaitStateOptions {
	return awaitStateOptions{
		timeout:      DefaultAwaitStateTimeout,
		recheckDelay: 100 * time.Millisecond,
		checkTimeout: 5 * time.Second,
	}
}

type awaitStateOptionsFunc = func(options *awaitStateOptions)

// WithAwaitStateTimeout sets the overall deadline for AwaitState.
func WithAwaitStateTimeout(timeout time.Duration) awaitStateOptionsFunc {
	return func(options *awaitStateOptions) {
		options.timeout = timeout
	}
}

// WithAwaitStateRecheckDelay sets the delay between AwaitState rechecks.
func WithAwaitStateRecheckDelay(recheckDelay time.Duration) awaitStateOptionsFunc {
	return func(options *awaitStateOptions) {
		options.recheckDelay = recheckDelay
	}
}

// WithAwaitStateCheckTimeout bounds a single stateChecker invocation.
func WithAwaitStateCheckTimeout(checkTimeout time.Duration) awaitStateOptionsFunc {
	return func(options *awaitStateOptions) {
		options.checkTimeout = checkTimeout
	}
}

// AwaitState polls stateChecker until it returns nil, retrying on error
// until the overall timeout elapses.
func (h Harness) AwaitState(
	ctx context.Context,
	stateChecker func(ctx context.Context) error,
	opts ...awaitStateOptionsFunc) error {
	options := defaultAwaitStateOptions()
	for _, optFunc := range opts {
		optFunc(&options)
	}
	retryCtx, retryCancel := context.WithTimeout(ctx, options.timeout)
	defer retryCancel()
	return retry.Do(retryCtx, options.recheckDelay, func() error {
		checkCtx, checkCtxCancel := context.WithTimeout(retryCtx, options.checkTimeout)
		defer checkCtxCancel()
		if err := stateChecker(checkCtx); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
}
