package engine

import (
	"context"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
)

// AckPacketRelayer implements spec.md §4.4's AwaitingAck→Done transitions:
// it submits either an AckPacket or a TimeoutPacket, each preceded by the
// UpdateClient the source side needs to verify the accompanying proof.
type AckPacketRelayer struct {
	engine *RelayEngine
}

// RelayAck submits build_update_client_messages(dst→src) + build_ack_
// packet_message for packet, acknowledged by ack at destination height
// hDst.
func (r *AckPacketRelayer) RelayAck(ctx context.Context, packet ibc.Packet, ack ibc.Acknowledgement, hDst ibc.Height) error {
	e := r.engine

	msgs, err := BuildUpdateClientMessages(ctx, e.dstChain, e.srcClientId, e.getKnownDstOnSrc(), hDst)
	if err != nil {
		return err
	}

	ackMsg, err := BuildAckPacketMessage(ctx, e.dstChain, e.srcClientId, packet, ack, hDst)
	if err != nil {
		return err
	}
	msgs = append(msgs, ackMsg)

	if err := r.submit(ctx, msgs); err != nil {
		return err
	}
	if len(msgs) > 1 {
		e.setKnownDstOnSrc(hDst)
	}
	return nil
}

// RelayTimeout submits build_update_client_messages(dst→src) + build_
// timeout_packet_message for packet, whose absence on the destination is
// proven at hDst.
func (r *AckPacketRelayer) RelayTimeout(ctx context.Context, packet ibc.Packet, hDst ibc.Height) error {
	e := r.engine

	msgs, err := BuildUpdateClientMessages(ctx, e.dstChain, e.srcClientId, e.getKnownDstOnSrc(), hDst)
	if err != nil {
		return err
	}

	timeoutMsg, err := BuildTimeoutPacketMessage(ctx, e.dstChain, e.srcClientId, packet, hDst)
	if err != nil {
		return err
	}
	msgs = append(msgs, timeoutMsg)

	if err := r.submit(ctx, msgs); err != nil {
		return err
	}
	if len(msgs) > 1 {
		e.setKnownDstOnSrc(hDst)
	}
	return nil
}

func (r *AckPacketRelayer) submit(ctx context.Context, msgs []chain.Message) error {
	reply, err := r.engine.srcDispatcher.SendMessages(ctx, msgs)
	if err != nil {
		return sdkerrors.Wrap(err, "submit ack/timeout batch")
	}

	select {
	case result := <-reply:
		return result.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
