package engine

import (
	"context"

	"github.com/tokenize-x/ibc-relayer/chain"
)

// Start subscribes to the source chain's event stream and spawns one task
// per observed SendPacket, running RelayPacket to completion (spec.md §5
// "the core never assumes either, but it does assume that spawning is
// cheap enough to have one task per in-flight packet"). Start itself
// returns once the subscription is established; call Runtime.Wait to
// block until every spawned packet relay (and this subscription loop)
// has finished.
func (e *RelayEngine) Start(ctx context.Context) error {
	if err := e.loadKnownHeights(ctx); err != nil {
		return err
	}

	events, err := e.srcChain.SubscribeEvents(ctx)
	if err != nil {
		return err
	}

	e.runtime.Spawn(ctx, func(ctx context.Context) error {
		return e.watchSource(ctx, events)
	})
	return nil
}

func (e *RelayEngine) watchSource(ctx context.Context, events <-chan chain.ChainEvent) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Event.Kind != chain.EventSendPacket || ev.Event.Packet == nil {
				continue
			}

			packet := *ev.Event.Packet
			height := ev.Height
			e.runtime.Spawn(ctx, func(ctx context.Context) error {
				state, err := e.RelayPacket(ctx, packet, height)
				if err != nil {
					e.log.Error("relay packet failed", "packet_id", packet.Id(), "state", state.String(), "error", err)
					return nil
				}
				e.log.Info("relay packet finished", "packet_id", packet.Id(), "state", state.String())
				return nil
			})
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
