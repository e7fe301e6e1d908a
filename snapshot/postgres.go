package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"

	sdkerrors "cosmossdk.io/errors"
	_ "github.com/lib/pq"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

// createTableSQL mirrors original_source/relayer/src/snapshot/psql.rs: one
// table, height as the primary key, the rest of the snapshot as JSONB.
const createTableSQL = `
CREATE TABLE IF NOT EXISTS ibc_json (
	height NUMERIC PRIMARY KEY,
	data   JSONB NOT NULL
)`

const upsertSQL = `
INSERT INTO ibc_json (height, data)
VALUES ($1, $2)
ON CONFLICT (height) DO UPDATE SET data = EXCLUDED.data`

const selectAtSQL = `SELECT data FROM ibc_json WHERE height = $1`

const selectLatestSQL = `SELECT height, data FROM ibc_json ORDER BY height DESC LIMIT 1`

const deleteAtOrBelowSQL = `DELETE FROM ibc_json WHERE height <= $1`

// PostgresManager is a lib/pq backed Manager. The ibc_json table is created
// if missing by the constructors and again inside every Update, so no
// separate migration step is needed.
type PostgresManager struct {
	db *sql.DB
}

var _ Manager = (*PostgresManager)(nil)

// NewPostgresManager opens a connection pool against dataSourceName and
// ensures the backing table exists.
func NewPostgresManager(ctx context.Context, dataSourceName string) (*PostgresManager, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	m := &PostgresManager{db: db}
	if _, err := m.db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	return m, nil
}

// NewPostgresManagerFromDB wraps an already-open *sql.DB, ensuring the
// backing table exists. Useful for tests that share a pool across
// managers.
func NewPostgresManagerFromDB(ctx context.Context, db *sql.DB) (*PostgresManager, error) {
	m := &PostgresManager{db: db}
	if _, err := m.db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	return m, nil
}

// Close releases the underlying connection pool.
func (m *PostgresManager) Close() error {
	return m.db.Close()
}

// Fetch implements Manager.
func (m *PostgresManager) Fetch(ctx context.Context, q QueryHeight) (IbcSnapshot, error) {
	if q.Kind == Latest {
		var height int64
		var raw []byte
		err := m.db.QueryRowContext(ctx, selectLatestSQL).Scan(&height, &raw)
		if err == sql.ErrNoRows {
			return IbcSnapshot{}, notFound(q)
		}
		if err != nil {
			return IbcSnapshot{}, sdkerrors.Wrap(ibc.ErrStore, err.Error())
		}
		return decodeSnapshot(uint64(height), raw)
	}

	var raw []byte
	err := m.db.QueryRowContext(ctx, selectAtSQL, q.Height).Scan(&raw)
	if err == sql.ErrNoRows {
		return IbcSnapshot{}, notFound(q)
	}
	if err != nil {
		return IbcSnapshot{}, sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	return decodeSnapshot(q.Height, raw)
}

// Update implements Manager: it upserts the row, then vacuums anything
// Retention heights behind it within the same call, matching the memory
// backend's behaviour.
func (m *PostgresManager) Update(ctx context.Context, snap IbcSnapshot) error {
	raw, err := json.Marshal(snap.Data)
	if err != nil {
		return sdkerrors.Wrap(ibc.ErrEncoding, err.Error())
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, createTableSQL); err != nil {
		return sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	if _, err := tx.ExecContext(ctx, upsertSQL, snap.Height, raw); err != nil {
		return sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	if snap.Height > Retention {
		if _, err := tx.ExecContext(ctx, deleteAtOrBelowSQL, snap.Height-Retention); err != nil {
			return sdkerrors.Wrap(ibc.ErrStore, err.Error())
		}
	}

	if err := tx.Commit(); err != nil {
		return sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	return nil
}

// Vacuum implements Manager.
func (m *PostgresManager) Vacuum(ctx context.Context, atOrBelow uint64) error {
	if _, err := m.db.ExecContext(ctx, deleteAtOrBelowSQL, atOrBelow); err != nil {
		return sdkerrors.Wrap(ibc.ErrStore, err.Error())
	}
	return nil
}

func decodeSnapshot(height uint64, raw []byte) (IbcSnapshot, error) {
	var data IbcData
	if err := json.Unmarshal(raw, &data); err != nil {
		return IbcSnapshot{}, sdkerrors.Wrap(ibc.ErrEncoding, err.Error())
	}
	return IbcSnapshot{Height: height, Data: data}, nil
}
