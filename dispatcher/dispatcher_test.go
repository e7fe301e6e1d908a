package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
)

func newMsg() chain.Message {
	return chain.Message{Kind: chain.MessageRecvPacket}
}

func runDispatcher(t *testing.T, d *Dispatcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = d.Run(ctx) }()
	return cancel
}

func TestSendMessagesExactlyOneResult(t *testing.T) {
	driver := &testDriver{chainID: "chain-a"}
	d := New(driver, log.NewNopLogger())
	cancel := runDispatcher(t, d)
	defer cancel()

	ctx := context.Background()
	reply, err := d.SendMessages(ctx, []chain.Message{newMsg()})
	require.NoError(t, err)

	select {
	case res := <-reply:
		require.NoError(t, res.Err)
		require.Len(t, res.Events, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestSendMessagesCoalescesConcurrentSubmissions(t *testing.T) {
	driver := &testDriver{chainID: "chain-a"}
	d := New(driver, log.NewNopLogger())
	cancel := runDispatcher(t, d)
	defer cancel()

	ctx := context.Background()

	replies := make([]<-chan chain.Result, 3)
	shapes := [][]chain.Message{
		{newMsg()},
		{newMsg(), newMsg()},
		{newMsg()},
	}

	var wg sync.WaitGroup
	wg.Add(3)
	for i, msgs := range shapes {
		i, msgs := i, msgs
		go func() {
			defer wg.Done()
			r, err := d.SendMessages(ctx, msgs)
			require.NoError(t, err)
			replies[i] = r
		}()
	}
	wg.Wait()

	// Start the worker only once all three submissions are queued, so its
	// first drain sees them all.
	cancel := runDispatcher(t, d)
	defer cancel()

	for i, want := range []int{1, 2, 1} {
		select {
		case res := <-replies[i]:
			require.NoError(t, res.Err)
			require.Len(t, res.Events, want)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for reply %d", i)
		}
	}

	require.Equal(t, int32(1), driver.submitCalls.Load())
}

func TestSendMessagesBatchFatalFailsAllReplies(t *testing.T) {
	driver := &testDriver{chainID: "chain-a", failWith: ibc.ErrChainLogic}
	d := New(driver, log.NewNopLogger())
	cancel := runDispatcher(t, d)
	defer cancel()

	ctx := context.Background()
	r1, err := d.SendMessages(ctx, []chain.Message{newMsg()})
	require.NoError(t, err)

	select {
	case res := <-r1:
		require.Error(t, res.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestSendMessagesRetriesTransientThenSucceeds(t *testing.T) {
	driver := &testDriver{chainID: "chain-a", failFirstN: 2, transientErr: ibc.ErrMempoolFull}
	d := New(driver, log.NewNopLogger(), WithMaxAttempts(5))
	cancel := runDispatcher(t, d)
	defer cancel()

	ctx := context.Background()
	reply, err := d.SendMessages(ctx, []chain.Message{newMsg()})
	require.NoError(t, err)

	select {
	case res := <-reply:
		require.NoError(t, res.Err)
		require.Len(t, res.Events, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retried result")
	}
	require.GreaterOrEqual(t, int(driver.submitCalls.Load()), 3)
}

func TestSendMessagesRetriesExhaustThenFail(t *testing.T) {
	driver := &testDriver{chainID: "chain-a", failFirstN: 100, transientErr: ibc.ErrRPCTimeout}
	d := New(driver, log.NewNopLogger(), WithMaxAttempts(3))
	cancel := runDispatcher(t, d)
	defer cancel()

	ctx := context.Background()
	reply, err := d.SendMessages(ctx, []chain.Message{newMsg()})
	require.NoError(t, err)

	select {
	case res := <-reply:
		require.Error(t, res.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	require.Equal(t, int32(3), driver.submitCalls.Load())
}

// testDriver is a minimal chain.Driver used purely to exercise the
// dispatcher's batching/retry logic in isolation from chain/mock's IBC
// semantics.
type testDriver struct {
	chainID      ibc.ChainId
	submitCalls  atomic.Int32
	failWith     error
	failFirstN   int
	transientErr error
}

var _ chain.Driver = (*testDriver)(nil)

func (d *testDriver) ChainID() ibc.ChainId { return d.chainID }

func (d *testDriver) QueryChainStatus(context.Context) (chain.ChainStatus, error) {
	return chain.ChainStatus{}, nil
}
func (d *testDriver) QueryHeaderAt(context.Context, ibc.Height) (clients.Header, error) {
	panic("unused by dispatcher tests")
}

func (d *testDriver) BuildClientState(context.Context, ibc.Height) (clients.ClientState, error) {
	panic("unused by dispatcher tests")
}

func (d *testDriver) QueryPacketCommitmentProof(context.Context, ibc.PacketId, ibc.Height) ([]byte, error) {
	panic("unused by dispatcher tests")
}

func (d *testDriver) QueryPacketAcknowledgementProof(context.Context, ibc.PacketId, ibc.Height) ([]byte, error) {
	panic("unused by dispatcher tests")
}

func (d *testDriver) QueryPacketAbsenceProof(context.Context, ibc.PacketId, ibc.Height) ([]byte, error) {
	panic("unused by dispatcher tests")
}

func (d *testDriver) SubscribeEvents(context.Context) (<-chan chain.ChainEvent, error) {
	panic("unused by dispatcher tests")
}

func (d *testDriver) SubmitTx(_ context.Context, msgs []chain.Message) ([][]chain.Event, error) {
	n := d.submitCalls.Add(1)

	if d.failWith != nil {
		return nil, d.failWith
	}
	if int(n) <= d.failFirstN {
		return nil, d.transientErr
	}

	events := make([][]chain.Event, len(msgs))
	for i := range msgs {
		events[i] = []chain.Event{{Kind: chain.EventRecvPacket}}
	}
	return events, nil
}
