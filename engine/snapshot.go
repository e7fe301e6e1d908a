package engine

import (
	"context"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
	"github.com/tokenize-x/ibc-relayer/snapshot"
)

// persistSnapshot writes the engine's current knowledge of both tracked
// client heights to its snapshot manager, keyed at the destination chain's
// current height. It is best-effort: a persistence failure is logged, not
// propagated, since the relay itself already succeeded.
func (e *RelayEngine) persistSnapshot() {
	if e.snapshots == nil {
		return
	}
	ctx := context.Background()

	status, err := e.dstChain.QueryChainStatus(ctx)
	if err != nil {
		e.log.Error("snapshot: query dst chain status", "error", err)
		return
	}

	data := snapshot.NewIbcData(chain.ChainStatus{Height: status.Height, Timestamp: status.Timestamp})

	srcOnDst := clients.MockClientState{ChainId: e.srcChain.ChainID(), LatestHeightVal: e.getKnownSrcOnDst()}
	dstOnSrc := clients.MockClientState{ChainId: e.dstChain.ChainID(), LatestHeightVal: e.getKnownDstOnSrc()}

	srcOnDstAny, err := srcOnDst.ToAny()
	if err != nil {
		e.log.Error("snapshot: encode src-on-dst client state", "error", err)
		return
	}
	dstOnSrcAny, err := dstOnSrc.ToAny()
	if err != nil {
		e.log.Error("snapshot: encode dst-on-src client state", "error", err)
		return
	}

	data.ClientStates.Set(string(e.dstClientId), srcOnDstAny)
	data.ClientStates.Set(string(e.srcClientId), dstOnSrcAny)

	snap := snapshot.IbcSnapshot{Height: status.Height.RevisionHeight, Data: data}
	if err := e.snapshots.Update(ctx, snap); err != nil {
		e.log.Error("snapshot: persist", "error", err)
	}
}

// loadKnownHeights seeds knownSrcOnDst/knownDstOnSrc from the latest
// persisted snapshot, if any. A missing snapshot is not an error: the
// engine simply starts from the zero height, as if freshly created.
func (e *RelayEngine) loadKnownHeights(ctx context.Context) error {
	if e.snapshots == nil {
		return nil
	}

	snap, err := e.snapshots.Fetch(ctx, snapshot.LatestHeight)
	if err != nil {
		if sdkerrors.IsOf(err, ibc.ErrNotFound) {
			return nil
		}
		return err
	}

	if any, ok := snap.Data.ClientStates.Get(string(e.dstClientId)); ok {
		if cs, err := clients.DecodeClientState(any); err == nil {
			e.setKnownSrcOnDstNoPersist(cs.LatestHeight())
		}
	}
	if any, ok := snap.Data.ClientStates.Get(string(e.srcClientId)); ok {
		if cs, err := clients.DecodeClientState(any); err == nil {
			e.setKnownDstOnSrcNoPersist(cs.LatestHeight())
		}
	}
	return nil
}

func (e *RelayEngine) setKnownSrcOnDstNoPersist(h ibc.Height) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if h.GT(e.knownSrcOnDst) {
		e.knownSrcOnDst = h
	}
}

func (e *RelayEngine) setKnownDstOnSrcNoPersist(h ibc.Height) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if h.GT(e.knownDstOnSrc) {
		e.knownDstOnSrc = h
	}
}
