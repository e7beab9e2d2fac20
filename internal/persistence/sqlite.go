package persistence

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteRepository implements Repository on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at path.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// A single writer keeps SQLite happy under WAL.
	db.SetMaxOpenConns(1)
	return &SQLiteRepository{db: db}, nil
}

// Migrate creates the schema if it does not exist.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS band_states (
	trading_day   TEXT    NOT NULL,
	band_index    INTEGER NOT NULL,
	trigger_price TEXT    NOT NULL,
	triggered     INTEGER NOT NULL,
	open_qty      INTEGER NOT NULL,
	close_qty     INTEGER NOT NULL,
	updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (trading_day, band_index)
);`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SaveBandState upserts one band snapshot.
func (r *SQLiteRepository) SaveBandState(ctx context.Context, day string, state BandState) error {
	const query = `
INSERT INTO band_states (trading_day, band_index, trigger_price, triggered, open_qty, close_qty, updated_at)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(trading_day, band_index) DO UPDATE SET
	trigger_price = excluded.trigger_price,
	triggered     = excluded.triggered,
	open_qty      = excluded.open_qty,
	close_qty     = excluded.close_qty,
	updated_at    = CURRENT_TIMESTAMP;`

	_, err := r.db.ExecContext(ctx, query,
		day, state.Index, state.TriggerPrice, state.Triggered, state.OpenQty, state.CloseQty)
	if err != nil {
		return fmt.Errorf("save band %d for %s: %w", state.Index, day, err)
	}
	return nil
}

// LoadBandStates returns every snapshot stored for the trading day.
func (r *SQLiteRepository) LoadBandStates(ctx context.Context, day string) ([]BandState, error) {
	const query = `
SELECT band_index, trigger_price, triggered, open_qty, close_qty
FROM band_states
WHERE trading_day = ?
ORDER BY band_index;`

	rows, err := r.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("load band states for %s: %w", day, err)
	}
	defer func() { _ = rows.Close() }()

	var states []BandState
	for rows.Next() {
		var s BandState
		if err := rows.Scan(&s.Index, &s.TriggerPrice, &s.Triggered, &s.OpenQty, &s.CloseQty); err != nil {
			return nil, fmt.Errorf("scan band state: %w", err)
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate band states: %w", err)
	}
	return states, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

var _ Repository = (*SQLiteRepository)(nil)
