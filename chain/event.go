package chain

import "github.com/tokenize-x/ibc-relayer/ibc"

// EventKind discriminates the handful of event shapes the relay core reacts
// to. Chain drivers may observe richer native events, but must translate
// them into this set before handing them to the core (spec.md §4.1).
type EventKind string

const (
	EventSendPacket          EventKind = "send_packet"
	EventWriteAcknowledgement EventKind = "write_acknowledgement"
	EventTimeoutPacket       EventKind = "timeout_packet"
	EventNewBlock            EventKind = "new_block"
	EventRecvPacket          EventKind = "recv_packet"
	EventAcknowledgePacket   EventKind = "acknowledge_packet"
)

// Event is a tagged union over the event shapes above. Only the field(s)
// listed for Kind below are populated.
type Event struct {
	Kind   EventKind
	Height ibc.Height

	Packet          *ibc.Packet          // SendPacket, RecvPacket, WriteAcknowledgement
	Acknowledgement *ibc.Acknowledgement // WriteAcknowledgement, AcknowledgePacket
	PacketId        *ibc.PacketId        // TimeoutPacket
}

// ChainEvent pairs an Event with the height it was observed at, as yielded
// by Driver.SubscribeEvents.
type ChainEvent struct {
	Height ibc.Height
	Event  Event
}
