package ibc

import (
	"fmt"
	"strconv"
	"strings"

	sdkerrors "cosmossdk.io/errors"
)

// ChainId identifies a chain the relayer observes.
type ChainId string

// ClientId identifies a light client hosted on a chain.
type ClientId string

// ConnectionId identifies an IBC connection.
type ConnectionId string

// ChannelId identifies an IBC channel, scoped to a port.
type ChannelId string

// PortId identifies an IBC port.
type PortId string

// Sequence is a strictly increasing counter of packets sent on a
// (port, channel) pair. Sequence numbers start at 1.
type Sequence uint64

// PortChannelId pairs a port and a channel, used as the channel-map key.
type PortChannelId struct {
	PortId    PortId
	ChannelId ChannelId
}

// String renders "port/channel", the form used in logs and error messages.
func (p PortChannelId) String() string {
	return string(p.PortId) + "/" + string(p.ChannelId)
}

// JSONKey renders the "channel:port" form §4.2 requires for JSON map keys.
func (p PortChannelId) JSONKey() string {
	return string(p.ChannelId) + ":" + string(p.PortId)
}

// ParsePortChannelJSONKey parses the "channel:port" form back into a
// PortChannelId. It is the inverse of JSONKey.
func ParsePortChannelJSONKey(s string) (PortChannelId, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PortChannelId{}, sdkerrors.Wrapf(ErrEncoding, "malformed channel:port key %q", s)
	}
	return PortChannelId{ChannelId: ChannelId(parts[0]), PortId: PortId(parts[1])}, nil
}

// PacketId addresses a packet by its (port, channel, sequence) triple.
type PacketId struct {
	PortId    PortId
	ChannelId ChannelId
	Sequence  Sequence
}

// String renders the stable "port/channel/sequence" form persisted in
// snapshots and used as the JSON map key for pending_sent_packets.
func (p PacketId) String() string {
	return fmt.Sprintf("%s/%s/%d", p.PortId, p.ChannelId, p.Sequence)
}

// ParsePacketId parses the "port/channel/sequence" form produced by String.
// Malformed input returns an error; it never panics.
func ParsePacketId(s string) (PacketId, error) {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 3 {
		return PacketId{}, sdkerrors.Wrapf(ErrEncoding, "malformed packet id %q: want port/channel/sequence", s)
	}

	seq, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return PacketId{}, sdkerrors.Wrapf(ErrEncoding, "malformed packet id %q: bad sequence: %v", s, err)
	}

	if parts[0] == "" || parts[1] == "" {
		return PacketId{}, sdkerrors.Wrapf(ErrEncoding, "malformed packet id %q: empty port or channel", s)
	}

	return PacketId{
		PortId:    PortId(parts[0]),
		ChannelId: ChannelId(parts[1]),
		Sequence:  Sequence(seq),
	}, nil
}
