package engine

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/chain/mock"
	"github.com/tokenize-x/ibc-relayer/ibc"
)

func TestStartRelaysObservedPackets(t *testing.T) {
	src := mock.New("chain-a", log.NewNopLogger())
	dst := mock.New("chain-b", log.NewNopLogger())
	e, ctx, cancel := newTestEngine(t, src, dst)

	require.NoError(t, e.Start(ctx))

	pkt := src.SendPacket(ibc.Packet{
		SourcePort:       "transfer",
		SourceChannel:    "channel-0",
		DestPort:         "transfer",
		DestChannel:      "channel-0",
		Data:             []byte{0xAA},
		TimeoutTimestamp: ibc.Timestamp(time.Now().Add(time.Hour).UnixNano()),
	})

	require.Eventually(t, func() bool {
		_, stillPending := src.PendingSentPackets()[pkt.Id()]
		return !stillPending
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
}
