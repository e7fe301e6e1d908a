package engine

import (
	"context"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
)

// FullRelayer composes ReceivePacketRelayer with AckPacketRelayer
// (spec.md §4.4 "Full-relay composition", grounded on original_source's
// FullRelayer: query source status, run the receive stage, and — if it
// produced an acknowledgement — run the ack stage). When the receive
// stage produces no immediate acknowledgement, FullRelayer keeps watching
// the destination subscription it opened before the receive stage, until
// one arrives or the packet's timeout is reached, matching the AwaitingAck
// row of the state table.
type FullRelayer struct {
	engine *RelayEngine
}

// Relay drives packet (observed on the source at hSrc) through to a
// terminal PacketState. The destination subscription is opened before the
// RecvPacket batch is submitted, so a WriteAcknowledgement broadcast in
// the same instant the submission completes is never missed (spec.md §5
// "events observed on a single subscription stream preserve the source
// chain's commit order").
func (f *FullRelayer) Relay(ctx context.Context, packet ibc.Packet, hSrc ibc.Height) (PacketState, error) {
	e := f.engine
	lifecycle := newPacketLifecycle(packet.Id())

	events, err := e.dstChain.SubscribeEvents(ctx)
	if err != nil {
		lifecycle.advance(e.log, StateFailed)
		return StateFailed, err
	}

	ack, err := e.receive.Relay(ctx, events, packet, hSrc)
	if err != nil {
		if sdkerrors.IsOf(err, ibc.ErrPacketTimedOut) {
			return f.relayTimeoutNow(ctx, packet, lifecycle)
		}
		e.log.Error("receive stage failed", "packet_id", packet.Id(), "error", err)
		lifecycle.advance(e.log, StateFailed)
		return StateFailed, err
	}

	if ack != nil {
		dstStatus, err := e.dstChain.QueryChainStatus(ctx)
		if err != nil {
			lifecycle.advance(e.log, StateFailed)
			return StateFailed, err
		}
		if err := e.ack.RelayAck(ctx, packet, *ack, dstStatus.Height); err != nil {
			e.log.Error("ack stage failed", "packet_id", packet.Id(), "error", err)
			lifecycle.advance(e.log, StateFailed)
			return StateFailed, err
		}
		lifecycle.advance(e.log, StateDone)
		return StateDone, nil
	}

	// No immediate ack: AwaitingAck. Keep watching the same subscription
	// until a matching WriteAcknowledgement arrives or the packet times
	// out on the destination.
	lifecycle.advance(e.log, StateAwaitingAck)
	return f.awaitOutcome(ctx, events, packet, lifecycle)
}

// awaitOutcome implements the AwaitingAck row of spec.md §4.4's state
// table: it watches the destination's event stream for either a
// WriteAcknowledgement for this packet, or a NewBlock that pushes the
// destination past the packet's timeout.
func (f *FullRelayer) awaitOutcome(
	ctx context.Context,
	events <-chan chain.ChainEvent,
	packet ibc.Packet,
	lifecycle *packetLifecycle,
) (PacketState, error) {
	e := f.engine

	packetID := packet.Id()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				lifecycle.advance(e.log, StateFailed)
				return StateFailed, sdkerrors.Wrap(ibc.ErrCancelled, "destination event stream closed")
			}

			switch ev.Event.Kind {
			case chain.EventWriteAcknowledgement:
				if ev.Event.Acknowledgement == nil || ev.Event.Acknowledgement.PacketId != packetID {
					continue
				}
				if err := e.ack.RelayAck(ctx, packet, *ev.Event.Acknowledgement, ev.Height); err != nil {
					lifecycle.advance(e.log, StateFailed)
					return StateFailed, err
				}
				lifecycle.advance(e.log, StateDone)
				return StateDone, nil

			case chain.EventNewBlock:
				status, err := e.dstChain.QueryChainStatus(ctx)
				if err != nil {
					continue
				}
				if packet.TimedOutAt(status.Height, status.Timestamp) {
					return f.relayTimeoutNow(ctx, packet, lifecycle)
				}
			}
		case <-ctx.Done():
			lifecycle.advance(e.log, StateFailed)
			return StateFailed, ctx.Err()
		}
	}
}

// relayTimeoutNow submits the TimeoutPacket message for packet at the
// destination's current height and reports the TimedOut→Done transition.
func (f *FullRelayer) relayTimeoutNow(ctx context.Context, packet ibc.Packet, lifecycle *packetLifecycle) (PacketState, error) {
	e := f.engine
	lifecycle.advance(e.log, StateTimedOut)

	status, err := e.dstChain.QueryChainStatus(ctx)
	if err != nil {
		lifecycle.advance(e.log, StateFailed)
		return StateFailed, err
	}
	if err := e.ack.RelayTimeout(ctx, packet, status.Height); err != nil {
		e.log.Error("timeout stage failed", "packet_id", packet.Id(), "error", err)
		lifecycle.advance(e.log, StateFailed)
		return StateFailed, err
	}
	lifecycle.advance(e.log, StateDone)
	return StateDone, nil
}
