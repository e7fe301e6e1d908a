package engine

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/chain/mock"
	"github.com/tokenize-x/ibc-relayer/dispatcher"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/runtime"
)

func newTestEngine(t *testing.T, src, dst *mock.Driver) (*RelayEngine, context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	rt, rtCtx := runtime.New(ctx)

	srcDisp := dispatcher.New(src, log.NewNopLogger())
	dstDisp := dispatcher.New(dst, log.NewNopLogger())
	rt.Spawn(rtCtx, srcDisp.Run)
	rt.Spawn(rtCtx, dstDisp.Run)

	e := New(Config{
		SrcChain:      src,
		DstChain:      dst,
		SrcClientId:   "07-tendermint-0",
		DstClientId:   "07-tendermint-1",
		SrcDispatcher: srcDisp,
		DstDispatcher: dstDisp,
		Runtime:       rt,
		Logger:        log.NewNopLogger(),
	})

	return e, rtCtx, cancel
}

func TestRelayPacketHappyPath(t *testing.T) {
	src := mock.New("chain-a", log.NewNopLogger())
	dst := mock.New("chain-b", log.NewNopLogger())
	e, ctx, cancel := newTestEngine(t, src, dst)
	defer cancel()

	pkt := src.SendPacket(ibc.Packet{
		SourcePort:       "transfer",
		SourceChannel:    "channel-0",
		DestPort:         "transfer",
		DestChannel:      "channel-0",
		Data:             []byte{0xAA},
		TimeoutTimestamp: ibc.Timestamp(time.Now().Add(time.Hour).UnixNano()),
	})

	status, err := src.QueryChainStatus(ctx)
	require.NoError(t, err)

	relayCtx, relayCancel := context.WithTimeout(ctx, 5*time.Second)
	defer relayCancel()

	state, err := e.RelayPacket(relayCtx, pkt, status.Height)
	require.NoError(t, err)
	require.Equal(t, StateDone, state)

	_, stillPending := src.PendingSentPackets()[pkt.Id()]
	require.False(t, stillPending)
}

func TestRelayPacketClientAlreadyCurrent(t *testing.T) {
	src := mock.New("chain-a", log.NewNopLogger())
	dst := mock.New("chain-b", log.NewNopLogger())
	e, ctx, cancel := newTestEngine(t, src, dst)
	defer cancel()

	status, err := src.QueryChainStatus(ctx)
	require.NoError(t, err)
	e.setKnownSrcOnDst(status.Height)

	pkt := src.SendPacket(ibc.Packet{
		SourcePort:       "transfer",
		SourceChannel:    "channel-0",
		DestPort:         "transfer",
		DestChannel:      "channel-0",
		Data:             []byte{0xAA},
		TimeoutTimestamp: ibc.Timestamp(time.Now().Add(time.Hour).UnixNano()),
	})

	msgs, err := BuildUpdateClientMessages(ctx, src, e.dstClientId, e.getKnownSrcOnDst(), status.Height)
	require.NoError(t, err)
	require.Empty(t, msgs)

	relayCtx, relayCancel := context.WithTimeout(ctx, 5*time.Second)
	defer relayCancel()

	state, err := e.RelayPacket(relayCtx, pkt, status.Height)
	require.NoError(t, err)
	require.Equal(t, StateDone, state)
}

func TestRelayPacketTimeout(t *testing.T) {
	src := mock.New("chain-a", log.NewNopLogger())
	dst := mock.New("chain-b", log.NewNopLogger())
	e, ctx, cancel := newTestEngine(t, src, dst)
	defer cancel()

	status, err := src.QueryChainStatus(ctx)
	require.NoError(t, err)

	dstStatus, err := dst.QueryChainStatus(ctx)
	require.NoError(t, err)
	timeoutHeight := ibc.NewHeight(dstStatus.Height.RevisionNumber, dstStatus.Height.RevisionHeight+1)

	pkt := src.SendPacket(ibc.Packet{
		SourcePort:    "transfer",
		SourceChannel: "channel-0",
		DestPort:      "transfer",
		DestChannel:   "channel-0",
		Data:          []byte{0xAA},
		TimeoutHeight: &timeoutHeight,
	})

	// Advance the destination past the packet's timeout height before the
	// engine ever submits RecvPacket.
	dst.AdvanceBlock(1)
	dst.AdvanceBlock(1)

	relayCtx, relayCancel := context.WithTimeout(ctx, 5*time.Second)
	defer relayCancel()

	state, err := e.RelayPacket(relayCtx, pkt, status.Height)
	require.NoError(t, err)
	require.Equal(t, StateDone, state)

	_, stillPending := src.PendingSentPackets()[pkt.Id()]
	require.False(t, stillPending)
}
