// Package persistence checkpoints strategy state so a restarted process can
// resume mid-session without re-entering positions.
package persistence

import "context"

// BandState is the durable snapshot of one trigger band.
type BandState struct {
	Index        int
	TriggerPrice string
	Triggered    bool
	OpenQty      int
	CloseQty     int
}

// Repository stores and recovers band checkpoints, keyed by trading day.
type Repository interface {
	// Migrate creates or upgrades the schema.
	Migrate(ctx context.Context) error

	// SaveBandState upserts one band's snapshot for the given trading day.
	SaveBandState(ctx context.Context, day string, state BandState) error

	// LoadBandStates returns all snapshots for the trading day, ordered by
	// band index. An unknown day returns an empty slice, not an error.
	LoadBandStates(ctx context.Context, day string) ([]BandState, error)

	// Close releases the underlying store.
	Close() error
}
