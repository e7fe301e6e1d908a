package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
)

func TestIbcDataJSONRoundTrip(t *testing.T) {
	data := NewIbcData(chain.ChainStatus{Height: ibc.NewHeight(0, 100), Timestamp: 42})

	pc := ibc.PortChannelId{PortId: "transfer", ChannelId: "channel-0"}
	data.Channels.Set(pc.JSONKey(), ChannelEnd{
		State:                 "OPEN",
		Ordering:              "ORDERED",
		CounterpartyPortId:    "transfer",
		CounterpartyChannelId: "channel-1",
		ConnectionHops:        []ibc.ConnectionId{"connection-0"},
	})

	packetID := ibc.PacketId{PortId: "transfer", ChannelId: "channel-0", Sequence: 7}
	pkt := ibc.Packet{
		SourcePort:    "transfer",
		SourceChannel: "channel-0",
		DestPort:      "transfer",
		DestChannel:   "channel-1",
		Sequence:      7,
		Data:          []byte("payload"),
	}
	data.PendingSentPackets.Set(packetID.String(), pkt)

	clientState, err := clients.MockClientState{ChainId: "chain-a", LatestHeightVal: ibc.NewHeight(0, 100)}.ToAny()
	require.NoError(t, err)
	data.ClientStates.Set("07-tendermint-0", clientState)
	data.ConsensusStates.Set("07-tendermint-0", []ConsensusStateEntry{
		{Height: ibc.NewHeight(0, 100), State: clientState},
	})

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	require.Contains(t, string(raw), `"channel-0:transfer"`)
	require.Contains(t, string(raw), `"transfer/channel-0/7"`)

	var round IbcData
	require.NoError(t, json.Unmarshal(raw, &round))

	require.Equal(t, data.AppStatus, round.AppStatus)
	require.Equal(t, data.Channels.Keys(), round.Channels.Keys())
	require.Equal(t, data.PendingSentPackets.Values(), round.PendingSentPackets.Values())

	got, ok := round.PendingSentPackets.Get(packetID.String())
	require.True(t, ok)
	require.Equal(t, pkt, got)
}

func TestIbcSnapshotMaxConsensusHeight(t *testing.T) {
	data := NewIbcData(chain.ChainStatus{})
	data.ConsensusStates.Set("07-tendermint-0", []ConsensusStateEntry{
		{Height: ibc.NewHeight(0, 10)},
		{Height: ibc.NewHeight(0, 25)},
	})
	data.ConsensusStates.Set("07-tendermint-1", []ConsensusStateEntry{
		{Height: ibc.NewHeight(1, 5)},
	})

	require.Equal(t, ibc.NewHeight(1, 5), data.MaxConsensusHeight())
}
