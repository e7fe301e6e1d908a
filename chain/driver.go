// Package chain defines the capability contract the relay engine consumes
// from a chain (spec.md §4.1). It prescribes no transport: a driver may
// speak real RPC/gRPC to a production chain, or be an entirely in-memory
// mock used in tests. The engine only ever depends on this interface.
package chain

import (
	"context"

	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
)

// ChainStatus is the latest finalised block a driver reports.
type ChainStatus struct {
	Height    ibc.Height
	Timestamp ibc.Timestamp
}

// Driver is the capability set a chain exposes to the relay core. It is the
// single seam the Design Notes (spec.md §9) call for in place of stacked
// generic traits: one object, a handful of methods, with polymorphism over
// client kind handled entirely through the clients.Header/ClientState/
// ConsensusState tagged variants.
type Driver interface {
	// ChainID identifies this driver's chain.
	ChainID() ibc.ChainId

	// QueryChainStatus returns the latest finalised height and timestamp.
	QueryChainStatus(ctx context.Context) (ChainStatus, error)

	// QueryHeaderAt retrieves the light-client header that would bring a
	// counterparty client from any height below h up to h.
	QueryHeaderAt(ctx context.Context, h ibc.Height) (clients.Header, error)

	// BuildClientState returns the initial client state for a CreateClient
	// message targeting this chain, as observed at height h.
	BuildClientState(ctx context.Context, h ibc.Height) (clients.ClientState, error)

	// QueryPacketCommitmentProof retrieves the Merkle proof that packet's
	// commitment exists on this chain at height h, for a RecvPacket message
	// destined elsewhere.
	QueryPacketCommitmentProof(ctx context.Context, packetID ibc.PacketId, h ibc.Height) ([]byte, error)

	// QueryPacketAcknowledgementProof retrieves the proof that packetID was
	// acknowledged on this chain at height h, for an AckPacket message.
	QueryPacketAcknowledgementProof(ctx context.Context, packetID ibc.PacketId, h ibc.Height) ([]byte, error)

	// QueryPacketAbsenceProof retrieves the proof that packetID was never
	// received on this chain at height h, for a TimeoutPacket message.
	QueryPacketAbsenceProof(ctx context.Context, packetID ibc.PacketId, h ibc.Height) ([]byte, error)

	// SubscribeEvents returns an infinite, non-restartable stream of
	// (height, event) pairs in the chain's commit order. Closing ctx ends
	// the subscription and closes the channel.
	SubscribeEvents(ctx context.Context) (<-chan ChainEvent, error)

	// SubmitTx submits a single transaction containing msgs, in order, and
	// returns the events each message produced: the outer slice matches
	// msgs 1-to-1, and each inner slice holds the events that message
	// produced. This is the low-level primitive the dispatcher uses; the
	// engine never calls it directly (spec.md §9: break the driver/
	// dispatcher cycle by having the engine own both).
	SubmitTx(ctx context.Context, msgs []Message) ([][]Event, error)
}
