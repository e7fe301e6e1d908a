package engine

import (
	"context"
	"encoding/json"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
)

// BuildUpdateClientMessages implements spec.md §4.4's
// build_update_client_messages: it fetches src's header at h and composes
// an UpdateClient message targeting dstClientId. If knownHeight (the
// engine's cached belief of where dstClientId currently stands) is already
// at or past h, it returns an empty, idempotent result instead (spec.md
// §4.4 "If the client is already ≥ h, yield the empty vector").
func BuildUpdateClientMessages(ctx context.Context, src chain.Driver, dstClientId ibc.ClientId, knownHeight ibc.Height, h ibc.Height) ([]chain.Message, error) {
	if knownHeight.GTE(h) {
		return nil, nil
	}

	header, err := src.QueryHeaderAt(ctx, h)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "build update client: query header at %s", h)
	}

	payload, err := header.ToAny()
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "build update client: encode header at %s", h)
	}

	return []chain.Message{{
		Kind:         chain.MessageUpdateClient,
		DestClientId: dstClientId,
		Payload:      payload,
		ProofHeight:  h,
	}}, nil
}

// BuildCreateClientMessage constructs the CreateClient message that
// installs a client for src on a counterparty, observed at height h.
func BuildCreateClientMessage(ctx context.Context, src chain.Driver, dstClientId ibc.ClientId, h ibc.Height) (chain.Message, error) {
	cs, err := src.BuildClientState(ctx, h)
	if err != nil {
		return chain.Message{}, sdkerrors.Wrapf(err, "build create client: query client state at %s", h)
	}
	payload, err := cs.ToAny()
	if err != nil {
		return chain.Message{}, sdkerrors.Wrapf(err, "build create client: encode client state at %s", h)
	}
	return chain.Message{
		Kind:         chain.MessageCreateClient,
		DestClientId: dstClientId,
		Payload:      payload,
		ProofHeight:  h,
	}, nil
}

// BuildReceivePacketMessage implements build_receive_packet_message: it
// retrieves the commitment proof for packet on the source chain at hSrc
// and constructs the RecvPacket message destined for dstClientId.
func BuildReceivePacketMessage(ctx context.Context, src chain.Driver, dstClientId ibc.ClientId, packet ibc.Packet, hSrc ibc.Height) (chain.Message, error) {
	proof, err := src.QueryPacketCommitmentProof(ctx, packet.Id(), hSrc)
	if err != nil {
		return chain.Message{}, sdkerrors.Wrapf(err, "build recv packet: query commitment proof for %s", packet.Id())
	}

	payload, err := encodePacket(packet)
	if err != nil {
		return chain.Message{}, err
	}

	return chain.Message{
		Kind:         chain.MessageRecvPacket,
		DestClientId: dstClientId,
		PacketId:     packet.Id(),
		Payload:      payload,
		Proof:        proof,
		ProofHeight:  hSrc,
	}, nil
}

// BuildAckPacketMessage implements build_ack_packet_message: it retrieves
// the acknowledgement proof on the destination chain at hDst and
// constructs the AckPacket message destined for srcClientId.
func BuildAckPacketMessage(ctx context.Context, dst chain.Driver, srcClientId ibc.ClientId, packet ibc.Packet, ack ibc.Acknowledgement, hDst ibc.Height) (chain.Message, error) {
	proof, err := dst.QueryPacketAcknowledgementProof(ctx, packet.Id(), hDst)
	if err != nil {
		return chain.Message{}, sdkerrors.Wrapf(err, "build ack packet: query acknowledgement proof for %s", packet.Id())
	}

	payload, err := encodeAck(ack)
	if err != nil {
		return chain.Message{}, err
	}

	return chain.Message{
		Kind:         chain.MessageAckPacket,
		DestClientId: srcClientId,
		PacketId:     packet.Id(),
		Payload:      payload,
		Proof:        proof,
		ProofHeight:  hDst,
	}, nil
}

// BuildTimeoutPacketMessage implements build_timeout_packet_message: it
// retrieves the proof of non-receipt on the destination chain at hDst and
// constructs the TimeoutPacket message destined for srcClientId.
func BuildTimeoutPacketMessage(ctx context.Context, dst chain.Driver, srcClientId ibc.ClientId, packet ibc.Packet, hDst ibc.Height) (chain.Message, error) {
	proof, err := dst.QueryPacketAbsenceProof(ctx, packet.Id(), hDst)
	if err != nil {
		return chain.Message{}, sdkerrors.Wrapf(err, "build timeout packet: query absence proof for %s", packet.Id())
	}

	payload, err := encodePacket(packet)
	if err != nil {
		return chain.Message{}, err
	}

	return chain.Message{
		Kind:         chain.MessageTimeoutPacket,
		DestClientId: srcClientId,
		PacketId:     packet.Id(),
		Payload:      payload,
		Proof:        proof,
		ProofHeight:  hDst,
	}, nil
}

// packetPayloadTypeURL tags the JSON-encoded ibc.Packet carried as a
// message's Any payload, used by chain/mock's SubmitTx to decode it back.
const packetPayloadTypeURL = "/ibc.core.channel.v1.Packet"

func encodePacket(p ibc.Packet) (clients.Any, error) {
	value, err := json.Marshal(p)
	if err != nil {
		return clients.Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "encode packet %s: %v", p.Id(), err)
	}
	return clients.Any{TypeUrl: packetPayloadTypeURL, Value: value}, nil
}

// ackPayloadTypeURL tags the JSON-encoded ibc.Acknowledgement carried as a
// message's Any payload.
const ackPayloadTypeURL = "/ibc.core.channel.v1.Acknowledgement"

func encodeAck(a ibc.Acknowledgement) (clients.Any, error) {
	value, err := json.Marshal(a)
	if err != nil {
		return clients.Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "encode acknowledgement %s: %v", a.PacketId, err)
	}
	return clients.Any{TypeUrl: ackPayloadTypeURL, Value: value}, nil
}
