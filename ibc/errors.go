package ibc

import (
	sdkerrors "cosmossdk.io/errors"
)

// ModuleName is the error codespace for the relay engine's error taxonomy
// (spec.md §7). NOTE: error codes must start from 2, following the
// cosmossdk.io/errors convention (1 is reserved for "internal").
const ModuleName = "ibcrelayer"

var (
	// ErrEncoding covers malformed protobuf, unknown type_url, bad hex, and
	// JSON round-trip failures. Never retried.
	ErrEncoding = sdkerrors.Register(ModuleName, 2, "encoding error")

	// ErrRPCTimeout covers chain RPC timeouts and transport disconnects.
	// Retried by the dispatcher with bounded attempts and backoff.
	ErrRPCTimeout = sdkerrors.Register(ModuleName, 3, "rpc timeout")

	// ErrChainLogic covers invalid proofs, client-not-found, and
	// already-relayed rejections reported by the counterparty chain.
	ErrChainLogic = sdkerrors.Register(ModuleName, 4, "chain logic error")

	// ErrSequenceMismatch is a ErrChainLogic sub-case the dispatcher treats
	// as recoverable: re-query the account sequence and retry the batch.
	ErrSequenceMismatch = sdkerrors.Register(ModuleName, 5, "account sequence mismatch")

	// ErrMempoolFull is a transient submission failure, retried like
	// ErrRPCTimeout.
	ErrMempoolFull = sdkerrors.Register(ModuleName, 6, "mempool full")

	// ErrPacketTimedOut is not a failure: the state machine transitions to
	// TimedOut instead of retrying receipt.
	ErrPacketTimedOut = sdkerrors.Register(ModuleName, 7, "packet timed out")

	// ErrCancelled propagates cooperative shutdown; never wrapped with
	// additional context beyond the cancelling layer.
	ErrCancelled = sdkerrors.Register(ModuleName, 8, "cancelled")

	// ErrStore covers snapshot persistence failures.
	ErrStore = sdkerrors.Register(ModuleName, 9, "snapshot store error")

	// ErrNotFound is returned by SnapshotManager.Fetch when no snapshot
	// satisfies the requested query height.
	ErrNotFound = sdkerrors.Register(ModuleName, 10, "snapshot not found")

	// ErrAlreadyRelayed indicates the counterparty already holds this
	// packet's commitment cleared; batch-fatal, not retried.
	ErrAlreadyRelayed = sdkerrors.Register(ModuleName, 11, "packet already relayed")

	// ErrClientNotFound indicates the destination light client referenced
	// by a relay pair does not exist on-chain; batch-fatal.
	ErrClientNotFound = sdkerrors.Register(ModuleName, 12, "client not found")
)

// IsRetryable reports whether err belongs to a chain-logic or RPC kind the
// dispatcher should retry at the batch level (spec.md §4.3, §7, and
// SPEC_FULL.md's resolution of Open Question (c)): sequence mismatches,
// a full mempool, and RPC timeouts are transient; everything else -
// including plain chain-logic errors such as invalid proofs or an unknown
// client - is batch-fatal.
func IsRetryable(err error) bool {
	switch {
	case sdkerrors.IsOf(err, ErrSequenceMismatch),
		sdkerrors.IsOf(err, ErrMempoolFull),
		sdkerrors.IsOf(err, ErrRPCTimeout):
		return true
	default:
		return false
	}
}
