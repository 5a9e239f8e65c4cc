// Package snapshot provides immutable point-in-time copies of game
// documents for version history, plus the structural comparison and
// change-summary diffing that back duplicate suppression and the
// version list.
package snapshot

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/id"
)

// DefaultLimit is the default maximum number of snapshots kept per game.
const DefaultLimit = 50

// Snapshot is one immutable full copy of a game document. Consumers
// must never mutate Data in place.
type Snapshot struct {
	ID            string    `json:"id"`
	GameID        string    `json:"gameId"`
	CreatedAt     time.Time `json:"timestamp"`
	Data          game.Game `json:"data"`
	VersionName   string    `json:"versionName,omitempty"`
	ChangeSummary string    `json:"changeSummary,omitempty"`
}

// Metadata is the listing projection of a snapshot.
type Metadata struct {
	ID            string    `json:"id"`
	GameID        string    `json:"gameId"`
	CreatedAt     time.Time `json:"timestamp"`
	GameName      string    `json:"gameName"`
	VersionName   string    `json:"versionName,omitempty"`
	ChangeSummary string    `json:"changeSummary,omitempty"`
}

// New deep-copies the game into a fresh snapshot.
func New(g *game.Game, versionName, changeSummary string, now func() time.Time, idGenerator func() (string, error)) (Snapshot, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	snapshotID, err := idGenerator()
	if err != nil {
		return Snapshot{}, fmt.Errorf("generate snapshot id: %w", err)
	}
	return Snapshot{
		ID:            snapshotID,
		GameID:        g.ID,
		CreatedAt:     now().UTC(),
		Data:          *g.Clone(),
		VersionName:   versionName,
		ChangeSummary: changeSummary,
	}, nil
}

// GetMetadata projects the listing metadata out of a snapshot.
func GetMetadata(s Snapshot) Metadata {
	return Metadata{
		ID:            s.ID,
		GameID:        s.GameID,
		CreatedAt:     s.CreatedAt,
		GameName:      s.Data.Name,
		VersionName:   s.VersionName,
		ChangeSummary: s.ChangeSummary,
	}
}

// Equal reports whether two documents are structurally identical once
// the root creation and update timestamps are zeroed. Used to suppress
// duplicate snapshots when nothing of substance changed.
func Equal(a, b *game.Game) bool {
	if a == nil || b == nil {
		return a == b
	}
	left := a.Clone()
	right := b.Clone()
	left.CreatedAt = time.Time{}
	left.UpdatedAt = time.Time{}
	right.CreatedAt = time.Time{}
	right.UpdatedAt = time.Time{}
	return reflect.DeepEqual(left, right)
}
