package chain

import (
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
)

// MessageKind discriminates the handful of message shapes the relay engine
// builds. The core never constructs arbitrary application messages; it only
// ever emits these.
type MessageKind string

const (
	MessageUpdateClient  MessageKind = "update_client"
	MessageCreateClient  MessageKind = "create_client"
	MessageRecvPacket    MessageKind = "recv_packet"
	MessageAckPacket     MessageKind = "ack_packet"
	MessageTimeoutPacket MessageKind = "timeout_packet"
)

// Message is a transaction-ready unit the dispatcher batches and submits.
// It is opaque to the dispatcher beyond its Kind and DestClientId: the
// dispatcher never interprets Payload.
type Message struct {
	Kind         MessageKind
	DestClientId ibc.ClientId
	PacketId     ibc.PacketId // zero value for update_client / create_client
	Payload      clients.Any
	Proof        []byte // Merkle proof, empty for update_client / create_client
	ProofHeight  ibc.Height
}

// Submission is one producer's batch of messages plus the reply slot the
// dispatcher must eventually send exactly one Result to (spec.md §4.3).
type Submission struct {
	Messages []Message
	Reply    chan<- Result
}

// Result is what a dispatcher sends back on a Submission's reply slot: the
// events each of the submission's messages produced, in order, or an error
// if the whole batch failed.
type Result struct {
	Events [][]Event
	Err    error
}
