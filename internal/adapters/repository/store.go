// Package repository defines the game event store and its in-memory
// implementation.
package repository

import (
	"context"

	"dugout/internal/domain/model"
)

// Store provides access to per-game event collections, keyed by the
// composite (accountID, gameID) identity. Games are created lazily on first
// mutation; a game that was never written behaves as an empty store.
type Store interface {
	// Update runs fn under the game's lock. The read-then-write sequence a
	// mutation performs (idempotency lookup, conflict check, insert) is
	// atomic with respect to other mutations of the same game. Mutations of
	// different games proceed independently. An error from fn is returned
	// verbatim.
	Update(ctx context.Context, accountID, gameID string, fn func(g *Game) error) error

	// Snapshot returns a copy of the game's live events in ascending
	// sequence order. An unknown game yields an empty slice, not an error.
	Snapshot(ctx context.Context, accountID, gameID string) []model.ScoreEvent

	// Games returns the number of games with a live store.
	Games(ctx context.Context) int

	// Events returns the total number of live events across all games.
	Events(ctx context.Context) int
}
