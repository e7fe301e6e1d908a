// Package engine implements the per-directed-chain-pair relay state machine
// (spec.md §4.4): it watches a source chain for sent packets, drives them
// through UpdateClient/RecvPacket/AckPacket/TimeoutPacket submissions, and
// retires them once acknowledged or timed out.
package engine

import (
	"cosmossdk.io/log"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

// PacketState is a single packet's position in the relay_packet protocol
// (spec.md §4.4). Initial state is Observed; Done and Failed are terminal.
type PacketState int

const (
	// StateObserved is the initial state: a SendPacket has been seen at
	// the source but nothing has been submitted to the destination yet.
	StateObserved PacketState = iota
	// StateAwaitingAck follows a successful RecvPacket submission; the
	// engine waits for a WriteAcknowledgement or a destination-side
	// timeout.
	StateAwaitingAck
	// StateTimedOut means the packet's timeout was reached on the
	// destination before acknowledgement; a TimeoutPacket still needs
	// submitting to the source.
	StateTimedOut
	// StateFailed is terminal: a fatal error was reported and this layer
	// does not retry.
	StateFailed
	// StateDone is terminal: the packet has been fully relayed (acked or
	// timed out) and removed from pending_sent_packets.
	StateDone
)

// String renders the state for logs and tests.
func (s PacketState) String() string {
	switch s {
	case StateObserved:
		return "observed"
	case StateAwaitingAck:
		return "awaiting_ack"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Done or Failed.
func (s PacketState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// packetLifecycle tracks one in-flight packet's current state for logging,
// while RelayPacket itself remains a straight-line function that returns
// its final state rather than mutating shared state (spec.md §5 "no
// shared data is held across a suspension except through the explicit
// channel/cache interfaces"): a packetLifecycle lives only on the
// goroutine driving that one packet, never shared across tasks.
type packetLifecycle struct {
	packetID ibc.PacketId
	state    PacketState
}

// newPacketLifecycle starts tracking packetID at StateObserved, matching
// RelayPacket's documented initial state.
func newPacketLifecycle(packetID ibc.PacketId) *packetLifecycle {
	return &packetLifecycle{packetID: packetID, state: StateObserved}
}

// advance records a state transition and logs it at debug level.
func (l *packetLifecycle) advance(logger log.Logger, state PacketState) {
	logger.Debug("packet state transition",
		"packet_id", l.packetID, "from", l.state.String(), "to", state.String())
	l.state = state
}
