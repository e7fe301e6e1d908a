package ibc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

func TestPacketIdRoundTrip(t *testing.T) {
	id := ibc.PacketId{PortId: "transfer", ChannelId: "channel-0", Sequence: 42}
	s := id.String()
	require.Equal(t, "transfer/channel-0/42", s)

	parsed, err := ibc.ParsePacketId(s)
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestPacketIdMalformed(t *testing.T) {
	for _, s := range []string{"", "only-two/parts", "port/channel/notanumber", "/channel/1", "port//1"} {
		_, err := ibc.ParsePacketId(s)
		require.Error(t, err, s)
	}
}

func TestPortChannelJSONKeyRoundTrip(t *testing.T) {
	pc := ibc.PortChannelId{PortId: "transfer", ChannelId: "channel-3"}
	key := pc.JSONKey()
	require.Equal(t, "channel-3:transfer", key)

	parsed, err := ibc.ParsePortChannelJSONKey(key)
	require.NoError(t, err)
	require.Equal(t, pc, parsed)
}

func TestPortChannelJSONKeyMalformed(t *testing.T) {
	for _, s := range []string{"", "nodelimiter", ":transfer", "channel-3:"} {
		_, err := ibc.ParsePortChannelJSONKey(s)
		require.Error(t, err, s)
	}
}
