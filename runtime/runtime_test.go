package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/runtime"
)

func TestSpawnAndWait(t *testing.T) {
	rt, ctx := runtime.New(context.Background())

	done := make(chan struct{})
	rt.Spawn(ctx, func(ctx context.Context) error {
		close(done)
		return nil
	})

	<-done
	require.NoError(t, rt.Wait())
}

func TestSpawnErrorCancelsSiblings(t *testing.T) {
	rt, ctx := runtime.New(context.Background())
	boom := errors.New("boom")

	rt.Spawn(ctx, func(ctx context.Context) error {
		return boom
	})
	rt.Spawn(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := rt.Wait()
	require.ErrorIs(t, err, boom)
}

func TestTimeoutExpires(t *testing.T) {
	rt, ctx := runtime.New(context.Background())

	err := rt.Timeout(ctx, 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutCompletesInTime(t *testing.T) {
	rt, ctx := runtime.New(context.Background())

	err := rt.Timeout(ctx, time.Second, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
}

func TestSleepRespectsCancellation(t *testing.T) {
	rt, _ := runtime.New(context.Background())
	cctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rt.Sleep(cctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}
