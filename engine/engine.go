package engine

import (
	"context"
	"sync"

	"cosmossdk.io/log"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/dispatcher"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/runtime"
	"github.com/tokenize-x/ibc-relayer/snapshot"
)

// RelayEngine relays packets sent on srcChain's srcClientId/channel to
// dstChain, and their acknowledgements/timeouts back, per spec.md §4.4. One
// instance exists per directed chain pair; a bidirectional relay runs two
// instances with chains swapped.
type RelayEngine struct {
	srcChain chain.Driver
	dstChain chain.Driver

	srcClientId ibc.ClientId // client on srcChain tracking dstChain's headers
	dstClientId ibc.ClientId // client on dstChain tracking srcChain's headers

	srcDispatcher *dispatcher.Dispatcher
	dstDispatcher *dispatcher.Dispatcher

	runtime runtime.Runtime
	log     log.Logger

	receive *ReceivePacketRelayer
	ack     *AckPacketRelayer
	full    *FullRelayer

	// knownSrcOnDst/knownDstOnSrc cache the engine's last-known belief of where each
	// counterparty-tracking client stands, so build_update_client_messages
	// can skip a redundant UpdateClient submission (spec.md §4.4
	// "idempotent"). It is intentionally not the source of truth: a cache
	// miss only costs an extra, harmless UpdateClient.
	mu            sync.Mutex
	knownSrcOnDst ibc.Height // dstClientId's latest tracked src height
	knownDstOnSrc ibc.Height // srcClientId's latest tracked dst height

	// snapshots, when non-nil, persists each direction's known client
	// heights so a restarted engine can seed knownSrcOnDst/knownDstOnSrc
	// from the last snapshot instead of starting from the zero height
	// (spec.md §9 Open Question (a)).
	snapshots snapshot.Manager
}

// Config bundles the wiring a RelayEngine needs.
type Config struct {
	SrcChain      chain.Driver
	DstChain      chain.Driver
	SrcClientId   ibc.ClientId
	DstClientId   ibc.ClientId
	SrcDispatcher *dispatcher.Dispatcher
	DstDispatcher *dispatcher.Dispatcher
	Runtime       runtime.Runtime
	Logger        log.Logger

	// Snapshots is optional; when set, the engine persists its known
	// client heights to it and reloads them on Start.
	Snapshots snapshot.Manager
}

// New constructs a RelayEngine from cfg.
func New(cfg Config) *RelayEngine {
	e := &RelayEngine{
		srcChain:      cfg.SrcChain,
		dstChain:      cfg.DstChain,
		srcClientId:   cfg.SrcClientId,
		dstClientId:   cfg.DstClientId,
		srcDispatcher: cfg.SrcDispatcher,
		dstDispatcher: cfg.DstDispatcher,
		runtime:       cfg.Runtime,
		snapshots:     cfg.Snapshots,
		log: cfg.Logger.With(
			"module", "engine",
			"src_chain_id", cfg.SrcChain.ChainID(),
			"dst_chain_id", cfg.DstChain.ChainID(),
		),
	}

	e.receive = &ReceivePacketRelayer{engine: e}
	e.ack = &AckPacketRelayer{engine: e}
	e.full = &FullRelayer{engine: e}

	return e
}

func (e *RelayEngine) getKnownSrcOnDst() ibc.Height {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.knownSrcOnDst
}

func (e *RelayEngine) setKnownSrcOnDst(h ibc.Height) {
	e.mu.Lock()
	changed := h.GT(e.knownSrcOnDst)
	if changed {
		e.knownSrcOnDst = h
	}
	e.mu.Unlock()
	if changed {
		e.persistSnapshot()
	}
}

func (e *RelayEngine) getKnownDstOnSrc() ibc.Height {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.knownDstOnSrc
}

func (e *RelayEngine) setKnownDstOnSrc(h ibc.Height) {
	e.mu.Lock()
	changed := h.GT(e.knownDstOnSrc)
	if changed {
		e.knownDstOnSrc = h
	}
	e.mu.Unlock()
	if changed {
		e.persistSnapshot()
	}
}

// RelayPacket drives a single packet through the full relay_packet protocol
// (spec.md §4.4): Observed → AwaitingAck → {Done, TimedOut → Done, Failed}.
// hSrc is the source height at which the SendPacket event was observed.
// RelayPacket blocks until the packet reaches a terminal state or ctx is
// cancelled.
func (e *RelayEngine) RelayPacket(ctx context.Context, packet ibc.Packet, hSrc ibc.Height) (PacketState, error) {
	return e.full.Relay(ctx, packet, hSrc)
}
