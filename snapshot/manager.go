package snapshot

import (
	"context"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

// Retention is the number of most recent heights kept by a SnapshotManager
// (spec.md §4.2 "K = 8 most recent heights are retained").
const Retention uint64 = 8

// QueryHeightKind discriminates the two ways a query can address a
// snapshot.
type QueryHeightKind int

const (
	// Latest selects the snapshot with the numerically greatest stored
	// height.
	Latest QueryHeightKind = iota
	// At selects the snapshot at an exact height.
	At
)

// QueryHeight addresses a snapshot fetch: either the latest snapshot, or
// one at a specific height.
type QueryHeight struct {
	Kind   QueryHeightKind
	Height uint64 // only meaningful when Kind == At
}

// AtHeight builds a QueryHeight selecting an exact height.
func AtHeight(h uint64) QueryHeight { return QueryHeight{Kind: At, Height: h} }

// LatestHeight is the QueryHeight selecting the most recent snapshot.
var LatestHeight = QueryHeight{Kind: Latest}

// Manager provides consistent, height-indexed reads of chain state without
// an RPC per query (spec.md §4.2).
type Manager interface {
	// Fetch returns the snapshot matching queryHeight, or an
	// ibc.ErrNotFound-wrapped error if none exists.
	Fetch(ctx context.Context, queryHeight QueryHeight) (IbcSnapshot, error)

	// Update inserts or overwrites the snapshot at snapshot.Height
	// (idempotent at the same height), then vacuums every height at or
	// below snapshot.Height - Retention, so only the Retention most recent
	// heights remain. Update is atomic with respect to
	// concurrent Fetch calls: readers observe either the old or the new
	// snapshot, never a partial write.
	Update(ctx context.Context, snap IbcSnapshot) error

	// Vacuum deletes every snapshot with height <= atOrBelow.
	Vacuum(ctx context.Context, atOrBelow uint64) error
}

// notFound wraps ibc.ErrNotFound with the query that failed.
func notFound(q QueryHeight) error {
	if q.Kind == Latest {
		return sdkerrors.Wrap(ibc.ErrNotFound, "no snapshot stored yet")
	}
	return sdkerrors.Wrapf(ibc.ErrNotFound, "no snapshot at height %d", q.Height)
}
