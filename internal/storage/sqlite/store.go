// Package sqlite provides a SQLite-backed snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/snapshot"
	"github.com/mosaic-games/chronicle/internal/storage"
	"github.com/mosaic-games/chronicle/internal/storage/sqlite/migrations"
	"github.com/mosaic-games/chronicle/internal/storage/sqlitemigrate"
)

// Store persists snapshots in SQLite, one row per snapshot with the
// game document serialized as JSON.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite snapshot store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w: %w", storage.ErrUnavailable, err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ErrUnavailable
	}
	return nil
}

// Put inserts or replaces one snapshot row.
func (s *Store) Put(ctx context.Context, snap snapshot.Snapshot) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(snap.ID) == "" {
		return fmt.Errorf("snapshot id is required")
	}
	if strings.TrimSpace(snap.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT OR REPLACE INTO snapshots (id, game_id, created_at, game_name, version_name, change_summary, data)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID,
		snap.GameID,
		toMillis(snap.CreatedAt),
		snap.Data.Name,
		snap.VersionName,
		snap.ChangeSummary,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Get fetches one snapshot by id.
func (s *Store) Get(ctx context.Context, id string) (snapshot.Snapshot, error) {
	if err := s.check(ctx); err != nil {
		return snapshot.Snapshot{}, err
	}
	if strings.TrimSpace(id) == "" {
		return snapshot.Snapshot{}, fmt.Errorf("snapshot id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, game_id, created_at, version_name, change_summary, data
FROM snapshots WHERE id = ?`, id)
	return scanSnapshot(row)
}

// Latest returns the most recent snapshot for a game.
func (s *Store) Latest(ctx context.Context, gameID string) (snapshot.Snapshot, error) {
	if err := s.check(ctx); err != nil {
		return snapshot.Snapshot{}, err
	}
	if strings.TrimSpace(gameID) == "" {
		return snapshot.Snapshot{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, game_id, created_at, version_name, change_summary, data
FROM snapshots WHERE game_id = ?
ORDER BY created_at DESC, id DESC LIMIT 1`, gameID)
	return scanSnapshot(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (snapshot.Snapshot, error) {
	var (
		snap      snapshot.Snapshot
		createdAt int64
		data      string
	)
	err := row.Scan(&snap.ID, &snap.GameID, &createdAt, &snap.VersionName, &snap.ChangeSummary, &data)
	if err == sql.ErrNoRows {
		return snapshot.Snapshot{}, storage.ErrNotFound
	}
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	snap.CreatedAt = fromMillis(createdAt)

	var doc game.Game
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	snap.Data = doc
	return snap, nil
}

// List returns snapshot metadata for a game, newest first.
func (s *Store) List(ctx context.Context, gameID string) ([]snapshot.Metadata, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(gameID) == "" {
		return nil, fmt.Errorf("game id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, game_id, created_at, game_name, version_name, change_summary
FROM snapshots WHERE game_id = ?
ORDER BY created_at DESC, id DESC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []snapshot.Metadata
	for rows.Next() {
		var (
			meta      snapshot.Metadata
			createdAt int64
		)
		if err := rows.Scan(&meta.ID, &meta.GameID, &createdAt, &meta.GameName, &meta.VersionName, &meta.ChangeSummary); err != nil {
			return nil, fmt.Errorf("scan snapshot metadata: %w", err)
		}
		meta.CreatedAt = fromMillis(createdAt)
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// Delete removes one snapshot. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("snapshot id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// DeleteByGame removes every snapshot belonging to a game.
func (s *Store) DeleteByGame(ctx context.Context, gameID string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("game id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM snapshots WHERE game_id = ?", gameID); err != nil {
		return fmt.Errorf("delete game snapshots: %w", err)
	}
	return nil
}

// Prune deletes the oldest snapshots of a game beyond limit, returning
// how many were removed.
func (s *Store) Prune(ctx context.Context, gameID string, limit int) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if strings.TrimSpace(gameID) == "" {
		return 0, fmt.Errorf("game id is required")
	}
	if limit < 0 {
		limit = 0
	}

	result, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM snapshots WHERE game_id = ? AND id NOT IN (
    SELECT id FROM snapshots WHERE game_id = ?
    ORDER BY created_at DESC, id DESC LIMIT ?
)`, gameID, gameID, limit)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned snapshots: %w", err)
	}
	return int(removed), nil
}
