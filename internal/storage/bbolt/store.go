// Package bbolt provides a BoltDB-backed game document store.
package bbolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/storage"
)

const (
	gameBucket      = "games"
	nameIndexBucket = "games_by_name"
	timeIndexBucket = "games_by_updated"
)

// Store provides a BoltDB-backed game store. One record per document
// id, with index buckets by name and by update time for listing.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w: %w", storage.ErrUnavailable, err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{gameBucket, nameIndexBucket, timeIndexBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new game record. Fails with ErrAlreadyExists when a
// record with the same id is present.
func (s *Store) Create(ctx context.Context, g *game.Game) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}

	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		games := tx.Bucket([]byte(gameBucket))
		if games.Get([]byte(g.ID)) != nil {
			return storage.ErrAlreadyExists
		}
		if err := games.Put([]byte(g.ID), payload); err != nil {
			return fmt.Errorf("put game: %w", err)
		}
		return putIndexes(tx, g)
	})
}

// Load fetches a game record by id.
func (s *Store) Load(ctx context.Context, id string) (*game.Game, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("game id is required")
	}

	var g game.Game
	err := s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(gameBucket)).Get([]byte(id))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &g); err != nil {
			return fmt.Errorf("unmarshal game: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Save upserts a game record and refreshes its index entries.
func (s *Store) Save(ctx context.Context, g *game.Game) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}

	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		games := tx.Bucket([]byte(gameBucket))
		if prev := games.Get([]byte(g.ID)); prev != nil {
			if err := deleteIndexesFor(tx, prev); err != nil {
				return err
			}
		}
		if err := games.Put([]byte(g.ID), payload); err != nil {
			return fmt.Errorf("put game: %w", err)
		}
		return putIndexes(tx, g)
	})
}

// Delete removes a game record. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("game id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		games := tx.Bucket([]byte(gameBucket))
		prev := games.Get([]byte(id))
		if prev == nil {
			return nil
		}
		if err := deleteIndexesFor(tx, prev); err != nil {
			return err
		}
		return games.Delete([]byte(id))
	})
}

// Exists reports whether a game record is present.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	if strings.TrimSpace(id) == "" {
		return false, fmt.Errorf("game id is required")
	}

	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket([]byte(gameBucket)).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// List returns metadata for every stored game, most recently updated
// first, walking the update-time index in reverse.
func (s *Store) List(ctx context.Context) ([]game.Metadata, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var out []game.Metadata
	err := s.db.View(func(tx *bbolt.Tx) error {
		games := tx.Bucket([]byte(gameBucket))
		cursor := tx.Bucket([]byte(timeIndexBucket)).Cursor()
		for key, gameID := cursor.Last(); key != nil; key, gameID = cursor.Prev() {
			payload := games.Get(gameID)
			if payload == nil {
				continue
			}
			var meta game.Metadata
			if err := json.Unmarshal(payload, &meta); err != nil {
				return fmt.Errorf("unmarshal game metadata: %w", err)
			}
			out = append(out, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Records sharing a millisecond keep a stable newest-first order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// FindByName returns the ids of games with the exact name, via the name
// index.
func (s *Store) FindByName(ctx context.Context, name string) ([]string, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	prefix := append([]byte(name), 0)
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket([]byte(nameIndexBucket)).Cursor()
		for key, gameID := cursor.Seek(prefix); key != nil && hasPrefix(key, prefix); key, gameID = cursor.Next() {
			ids = append(ids, string(gameID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return storage.ErrUnavailable
	}
	return nil
}

func putIndexes(tx *bbolt.Tx, g *game.Game) error {
	if err := tx.Bucket([]byte(nameIndexBucket)).Put(nameKey(g.Name, g.ID), []byte(g.ID)); err != nil {
		return fmt.Errorf("put name index: %w", err)
	}
	if err := tx.Bucket([]byte(timeIndexBucket)).Put(timeKey(g.UpdatedAt, g.ID), []byte(g.ID)); err != nil {
		return fmt.Errorf("put update index: %w", err)
	}
	return nil
}

func deleteIndexesFor(tx *bbolt.Tx, payload []byte) error {
	var meta game.Metadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return fmt.Errorf("unmarshal previous metadata: %w", err)
	}
	if err := tx.Bucket([]byte(nameIndexBucket)).Delete(nameKey(meta.Name, meta.ID)); err != nil {
		return fmt.Errorf("delete name index: %w", err)
	}
	if err := tx.Bucket([]byte(timeIndexBucket)).Delete(timeKey(meta.UpdatedAt, meta.ID)); err != nil {
		return fmt.Errorf("delete update index: %w", err)
	}
	return nil
}

// nameKey is name, a zero separator, then the id so equal names stay
// unique keys.
func nameKey(name, id string) []byte {
	key := make([]byte, 0, len(name)+1+len(id))
	key = append(key, name...)
	key = append(key, 0)
	key = append(key, id...)
	return key
}

// timeKey is the big-endian millisecond timestamp then the id, so a
// forward scan is oldest first.
func timeKey(updatedAt time.Time, id string) []byte {
	key := make([]byte, 8, 8+len(id))
	binary.BigEndian.PutUint64(key, uint64(updatedAt.UTC().UnixMilli()))
	return append(key, id...)
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}
