// Package storage defines the persistence contracts for game documents
// and their snapshots, along with the storage error taxonomy.
package storage

import (
	"context"
	"errors"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/snapshot"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a create collided with an existing record.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrUnavailable indicates the underlying store cannot be reached.
	ErrUnavailable = errors.New("storage is unavailable")
)

// GameStore persists game documents, one record per document id, with
// listing by most-recently-updated.
type GameStore interface {
	// Create inserts a new document; fails with ErrAlreadyExists on a
	// duplicate id.
	Create(ctx context.Context, g *game.Game) error
	// Load fetches a document by id; ErrNotFound when missing.
	Load(ctx context.Context, id string) (*game.Game, error)
	// Save upserts a document.
	Save(ctx context.Context, g *game.Game) error
	// Delete removes a document; no error when already absent.
	Delete(ctx context.Context, id string) error
	// Exists reports whether a document id is present.
	Exists(ctx context.Context, id string) (bool, error)
	// List returns metadata-only projections sorted by most recently
	// updated first.
	List(ctx context.Context) ([]game.Metadata, error)
	Close() error
}

// SnapshotStore persists game snapshots keyed by snapshot id, ordered
// per game by creation time.
type SnapshotStore interface {
	Put(ctx context.Context, s snapshot.Snapshot) error
	Get(ctx context.Context, id string) (snapshot.Snapshot, error)
	// Latest returns the most recent snapshot for a game; ErrNotFound
	// when the game has none.
	Latest(ctx context.Context, gameID string) (snapshot.Snapshot, error)
	// List returns metadata for a game's snapshots, newest first.
	List(ctx context.Context, gameID string) ([]snapshot.Metadata, error)
	Delete(ctx context.Context, id string) error
	// DeleteByGame removes every snapshot belonging to a game.
	DeleteByGame(ctx context.Context, gameID string) error
	// Prune deletes the oldest snapshots of a game beyond limit,
	// returning how many were removed.
	Prune(ctx context.Context, gameID string, limit int) (int, error)
	Close() error
}
