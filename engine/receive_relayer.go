package engine

import (
	"context"
	"time"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
)

// ackWaitWindow bounds how long ReceivePacketRelayer waits, after a
// successful RecvPacket submission, for the destination to immediately
// emit a matching WriteAcknowledgement. Ordered channels typically ack in
// the same block; unordered ones may not, in which case the relayer falls
// back to the engine's AwaitingAck event loop (spec.md §4.4 "Full-relay
// composition... Returns success even when no ack is produced").
const ackWaitWindow = 2 * time.Second

// ReceivePacketRelayer implements spec.md §4.4's Observed→AwaitingAck
// transition: build_update_client_messages(src→dst) + build_receive_
// packet_message, submitted together to the destination dispatcher.
type ReceivePacketRelayer struct {
	engine *RelayEngine
}

// Relay submits the UpdateClient/RecvPacket batch for packet observed at
// hSrc. events must already be subscribed on the destination chain before
// Relay is called, so no WriteAcknowledgement broadcast between
// submission and observation can be missed. Relay returns the
// acknowledgement if one arrives within ackWaitWindow, or (nil, nil) if
// none arrived yet (the caller falls back to a longer wait on the same
// subscription). A packet-timeout rejection from the destination is
// returned as an error satisfying sdkerrors.IsOf(err, ibc.ErrPacketTimedOut).
func (r *ReceivePacketRelayer) Relay(ctx context.Context, events <-chan chain.ChainEvent, packet ibc.Packet, hSrc ibc.Height) (*ibc.Acknowledgement, error) {
	e := r.engine

	msgs, err := BuildUpdateClientMessages(ctx, e.srcChain, e.dstClientId, e.getKnownSrcOnDst(), hSrc)
	if err != nil {
		return nil, err
	}

	recvMsg, err := BuildReceivePacketMessage(ctx, e.srcChain, e.dstClientId, packet, hSrc)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, recvMsg)

	reply, err := e.dstDispatcher.SendMessages(ctx, msgs)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "submit recv packet batch")
	}

	var result chain.Result
	select {
	case result = <-reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if result.Err != nil {
		return nil, result.Err
	}

	if len(msgs) > 1 {
		e.setKnownSrcOnDst(hSrc)
	}

	return waitForAck(ctx, events, packet, ackWaitWindow)
}

// waitForAck watches events for a WriteAcknowledgement matching packet,
// for at most window. (nil, nil) means none arrived within window, not
// that the packet will never be acknowledged.
func waitForAck(ctx context.Context, events <-chan chain.ChainEvent, packet ibc.Packet, window time.Duration) (*ibc.Acknowledgement, error) {
	deadline := time.NewTimer(window)
	defer deadline.Stop()

	packetID := packet.Id()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil, nil
			}
			if ev.Event.Kind != chain.EventWriteAcknowledgement {
				continue
			}
			if ev.Event.Acknowledgement == nil || ev.Event.Acknowledgement.PacketId != packetID {
				continue
			}
			ack := *ev.Event.Acknowledgement
			return &ack, nil
		case <-deadline.C:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
