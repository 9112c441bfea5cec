// Package store persists game session documents. Each game is one document
// updated as a whole under optimistic locking, which gives every mutating
// operation its all-or-nothing transaction: read, validate and apply in
// memory, write back only if nobody else wrote in between.
package store

import (
	"context"
	"errors"

	"conquest/game"
)

var (
	// ErrNotFound reports an unknown game id.
	ErrNotFound = errors.New("game not found")
	// ErrVersionConflict reports a concurrent write to the same game.
	ErrVersionConflict = errors.New("game version conflict")
)

// Store is the transactional document store for game sessions.
type Store interface {
	// Create persists a new game with Version set to 1.
	Create(ctx context.Context, g *game.Game) error

	// Get returns a private copy of the game, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update persists the game if its Version still matches the stored one,
	// then increments it. Returns ErrVersionConflict otherwise.
	Update(ctx context.Context, g *game.Game) error

	// Close releases any resources held by the store.
	Close() error
}
