// Package mock implements a deterministic, in-memory chain.Driver used by
// the relay engine's tests and by local development CLI runs. It has no
// consensus, no signing, and no real proofs - it exists to exercise the
// relay-engine state machine, the dispatcher, and the snapshot cache without
// talking to a real chain (spec.md §4.1 "two concrete drivers are
// expected: a production driver ... and a mock driver for deterministic
// tests").
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"cosmossdk.io/log"
	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
)

// Driver is a single mock chain. Zero value is not usable; construct with
// New.
type Driver struct {
	mu sync.Mutex

	chainID ibc.ChainId
	log     log.Logger

	height         ibc.Height
	timestamp      ibc.Timestamp
	heightTimeline map[uint64]ibc.Timestamp

	nextSeq  map[ibc.PortChannelId]ibc.Sequence
	sent     map[ibc.PacketId]ibc.Packet
	received map[ibc.PacketId]struct{}

	clientHeights map[ibc.ClientId]ibc.Height

	subs []chan chain.ChainEvent
}

var _ chain.Driver = (*Driver)(nil)

// New constructs a mock driver starting at height (0,1).
func New(chainID ibc.ChainId, logger log.Logger) *Driver {
	d := &Driver{
		chainID:        chainID,
		log:            logger.With("chain_id", string(chainID), "driver", "mock"),
		height:         ibc.NewHeight(0, 1),
		timestamp:      1,
		heightTimeline: map[uint64]ibc.Timestamp{1: 1},
		nextSeq:        make(map[ibc.PortChannelId]ibc.Sequence),
		sent:           make(map[ibc.PacketId]ibc.Packet),
		received:       make(map[ibc.PacketId]struct{}),
		clientHeights:  make(map[ibc.ClientId]ibc.Height),
	}
	return d
}

// ChainID implements chain.Driver.
func (d *Driver) ChainID() ibc.ChainId { return d.chainID }

// AdvanceBlock moves the chain forward by one block, advancing timestamp by
// tsDelta nanoseconds, and broadcasts a NewBlock event. It returns the new
// height.
func (d *Driver) AdvanceBlock(tsDelta ibc.Timestamp) ibc.Height {
	d.mu.Lock()
	d.height = ibc.NewHeight(d.height.RevisionNumber, d.height.RevisionHeight+1)
	d.timestamp += tsDelta
	d.heightTimeline[d.height.RevisionHeight] = d.timestamp
	h := d.height
	d.mu.Unlock()

	d.broadcast(chain.ChainEvent{Height: h, Event: chain.Event{Kind: chain.EventNewBlock, Height: h}})
	return h
}

// SendPacket simulates an application emitting a SendPacket event: it
// assigns the next sequence for (srcPort, srcChannel), records the
// commitment in pending_sent_packets, and broadcasts the event.
func (d *Driver) SendPacket(p ibc.Packet) ibc.Packet {
	d.mu.Lock()
	key := ibc.PortChannelId{PortId: p.SourcePort, ChannelId: p.SourceChannel}
	d.nextSeq[key]++
	p.Sequence = d.nextSeq[key]
	d.sent[p.Id()] = p
	h := d.height
	d.mu.Unlock()

	d.broadcast(chain.ChainEvent{
		Height: h,
		Event:  chain.Event{Kind: chain.EventSendPacket, Height: h, Packet: &p},
	})
	return p
}

// PendingSentPackets returns a snapshot of the commitments still open on
// this chain, keyed by PacketId.
func (d *Driver) PendingSentPackets() map[ibc.PacketId]ibc.Packet {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[ibc.PacketId]ibc.Packet, len(d.sent))
	for k, v := range d.sent {
		out[k] = v
	}
	return out
}

// QueryChainStatus implements chain.Driver.
func (d *Driver) QueryChainStatus(_ context.Context) (chain.ChainStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return chain.ChainStatus{Height: d.height, Timestamp: d.timestamp}, nil
}

// QueryHeaderAt implements chain.Driver.
func (d *Driver) QueryHeaderAt(_ context.Context, h ibc.Height) (clients.Header, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ts, ok := d.heightTimeline[h.RevisionHeight]
	if !ok {
		return nil, sdkerrors.Wrapf(ibc.ErrChainLogic, "%s: no header at height %s", d.chainID, h)
	}
	return clients.MockHeader{HeaderHeight: h, HeaderTimestamp: ts}, nil
}

// BuildClientState implements chain.Driver.
func (d *Driver) BuildClientState(_ context.Context, h ibc.Height) (clients.ClientState, error) {
	return clients.MockClientState{ChainId: d.chainID, LatestHeightVal: h}, nil
}

// QueryPacketCommitmentProof implements chain.Driver. Mock proofs are
// opaque placeholders: verification is delegated to a real light-client
// component in production (spec.md §1 Non-goals).
func (d *Driver) QueryPacketCommitmentProof(_ context.Context, packetID ibc.PacketId, h ibc.Height) ([]byte, error) {
	return []byte(fmt.Sprintf("commitment:%s@%s", packetID, h)), nil
}

// QueryPacketAcknowledgementProof implements chain.Driver.
func (d *Driver) QueryPacketAcknowledgementProof(_ context.Context, packetID ibc.PacketId, h ibc.Height) ([]byte, error) {
	return []byte(fmt.Sprintf("ack:%s@%s", packetID, h)), nil
}

// QueryPacketAbsenceProof implements chain.Driver.
func (d *Driver) QueryPacketAbsenceProof(_ context.Context, packetID ibc.PacketId, h ibc.Height) ([]byte, error) {
	return []byte(fmt.Sprintf("absence:%s@%s", packetID, h)), nil
}

// SubscribeEvents implements chain.Driver. Each call registers a new
// subscriber fed by every subsequent broadcast; it is not restartable
// (spec.md §4.1).
func (d *Driver) SubscribeEvents(ctx context.Context) (<-chan chain.ChainEvent, error) {
	ch := make(chan chain.ChainEvent, 256)

	d.mu.Lock()
	d.subs = append(d.subs, ch)
	d.mu.Unlock()

	go func() {
		<-ctx.Done()
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.subs {
			if s == ch {
				d.subs = append(d.subs[:i], d.subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

func (d *Driver) broadcast(ev chain.ChainEvent) {
	d.mu.Lock()
	subs := make([]chan chain.ChainEvent, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, s := range subs {
		s <- ev
	}
}

// SubmitTx implements chain.Driver. It processes messages in order and
// applies all-or-nothing transaction semantics: the first message that
// fails aborts the whole submission, and the state changes made by the
// messages before it are rolled back. This mirrors how a real chain's
// DeliverTx reverts a failed transaction.
func (d *Driver) SubmitTx(_ context.Context, msgs []chain.Message) (_ [][]chain.Event, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	savedClients, savedReceived, savedSent := maps.Clone(d.clientHeights), maps.Clone(d.received), maps.Clone(d.sent)
	defer func() {
		if err != nil {
			d.clientHeights, d.received, d.sent = savedClients, savedReceived, savedSent
		}
	}()

	events := make([][]chain.Event, len(msgs))
	var toBroadcast []chain.ChainEvent

	for i, msg := range msgs {
		switch msg.Kind {
		case chain.MessageUpdateClient:
			header, err := clients.DecodeHeader(msg.Payload)
			if err != nil {
				return nil, err
			}
			if cur, ok := d.clientHeights[msg.DestClientId]; !ok || cur.LT(header.Height()) {
				d.clientHeights[msg.DestClientId] = header.Height()
			}
			events[i] = nil

		case chain.MessageCreateClient:
			cs, err := clients.DecodeClientState(msg.Payload)
			if err != nil {
				return nil, err
			}
			d.clientHeights[msg.DestClientId] = cs.LatestHeight()
			events[i] = nil

		case chain.MessageRecvPacket:
			var p ibc.Packet
			if err := json.Unmarshal(msg.Payload.Value, &p); err != nil {
				return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "decode packet payload: %v", err)
			}
			if p.TimedOutAt(d.height, d.timestamp) {
				return nil, sdkerrors.Wrapf(ibc.ErrPacketTimedOut, "%s", msg.PacketId)
			}
			if _, already := d.received[msg.PacketId]; already {
				return nil, sdkerrors.Wrapf(ibc.ErrAlreadyRelayed, "%s", msg.PacketId)
			}
			d.received[msg.PacketId] = struct{}{}

			ack := ibc.Acknowledgement{PacketId: msg.PacketId, Data: []byte{0x01}}
			events[i] = []chain.Event{{Kind: chain.EventRecvPacket, Height: d.height, Packet: &p}}
			toBroadcast = append(toBroadcast, chain.ChainEvent{
				Height: d.height,
				Event: chain.Event{
					Kind:            chain.EventWriteAcknowledgement,
					Height:          d.height,
					Packet:          &p,
					Acknowledgement: &ack,
				},
			})

		case chain.MessageAckPacket:
			delete(d.sent, msg.PacketId)
			events[i] = []chain.Event{{Kind: chain.EventAcknowledgePacket, Height: d.height, PacketId: &msg.PacketId}}

		case chain.MessageTimeoutPacket:
			delete(d.sent, msg.PacketId)
			events[i] = []chain.Event{{Kind: chain.EventTimeoutPacket, Height: d.height, PacketId: &msg.PacketId}}

		default:
			return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "unknown message kind %q", msg.Kind)
		}
	}

	for _, ev := range toBroadcast {
		go d.broadcastSync(ev)
	}

	return events, nil
}

// broadcastSync re-acquires the lock to broadcast; called outside the
// critical section that produced the event.
func (d *Driver) broadcastSync(ev chain.ChainEvent) {
	d.mu.Lock()
	subs := make([]chan chain.ChainEvent, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, s := range subs {
		s <- ev
	}
}
