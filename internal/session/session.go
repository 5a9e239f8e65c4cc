// Package session owns the per-document editing context: the live
// game, its undo/redo history, debounced autosave, and the snapshot
// policy. One session is created when a document is opened and
// discarded when it closes.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mosaic-games/chronicle/internal/autosave"
	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/game/action"
	"github.com/mosaic-games/chronicle/internal/game/engine"
	"github.com/mosaic-games/chronicle/internal/history"
	"github.com/mosaic-games/chronicle/internal/snapshot"
	"github.com/mosaic-games/chronicle/internal/storage"
)

// Session binds one open document to its mutation engine, history
// stacks, autosave, and snapshot store. Sessions are single-actor;
// callers serialize access themselves.
type Session struct {
	engine  *engine.Engine
	game    *game.Game
	history history.State

	saver         *autosave.Saver
	snapshots     storage.SnapshotStore
	snapshotLimit int
	onChange      func(*game.Game)

	now   func() time.Time
	newID func() (string, error)
}

// Option configures a Session.
type Option func(*Session)

// WithHistoryLimit bounds the undo stack.
func WithHistoryLimit(limit int) Option {
	return func(s *Session) { s.history = history.NewState(limit) }
}

// WithSaver attaches a debounced autosaver, invoked after every
// successful mutation, undo, and redo.
func WithSaver(saver *autosave.Saver) Option {
	return func(s *Session) { s.saver = saver }
}

// WithSnapshotStore attaches a snapshot store used by Snapshot, bounded
// to limit retained versions per document.
func WithSnapshotStore(store storage.SnapshotStore, limit int) Option {
	return func(s *Session) {
		s.snapshots = store
		if limit <= 0 {
			limit = snapshot.DefaultLimit
		}
		s.snapshotLimit = limit
	}
}

// WithOnChange registers a callback fired with the new document after
// every mutation, so a presentation layer can re-render.
func WithOnChange(fn func(*game.Game)) Option {
	return func(s *Session) { s.onChange = fn }
}

// WithClock overrides the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator overrides snapshot id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Session) { s.newID = gen }
}

// New opens a session over the given document.
func New(g *game.Game, opts ...Option) (*Session, error) {
	if g == nil {
		return nil, fmt.Errorf("game is required")
	}

	doc := g.Clone()
	game.Migrate(doc)

	s := &Session{
		game:          doc,
		history:       history.NewState(history.DefaultLimit),
		snapshotLimit: snapshot.DefaultLimit,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = engine.New(engine.WithClock(s.now), engine.WithIDGenerator(s.newID))
	return s, nil
}

// Game returns the current document. Callers must treat it as
// read-only; all mutation goes through the session.
func (s *Session) Game() *game.Game {
	return s.game
}

// CanUndo reports whether an undo is available.
func (s *Session) CanUndo() bool { return history.CanUndo(s.history) }

// CanRedo reports whether a redo is available.
func (s *Session) CanRedo() bool { return history.CanRedo(s.history) }

// commit installs the mutated document and records the action.
func (s *Session) commit(g *game.Game, a action.Action) {
	s.game = g
	s.history = history.Record(s.history, a)
	s.changed()
}

func (s *Session) changed() {
	if s.saver != nil {
		s.saver.Save(s.game)
	}
	if s.onChange != nil {
		s.onChange(s.game)
	}
}

// AddPeriod inserts a default-named period at index and returns it.
func (s *Session) AddPeriod(index int) (*game.Period, error) {
	result, err := s.engine.AddPeriod(s.game, index)
	if err != nil || result == nil {
		return nil, err
	}
	s.commit(result.Game, result.Action)
	created := result.Action.(action.CreatePeriod)
	return s.game.FindPeriod(created.Period.ID), nil
}

// AddEvent appends a default-named event to a period. Returns nil when
// the period no longer exists.
func (s *Session) AddEvent(periodID string) (*game.Event, error) {
	result, err := s.engine.AddEvent(s.game, periodID)
	if err != nil || result == nil {
		return nil, err
	}
	s.commit(result.Game, result.Action)
	created := result.Action.(action.CreateEvent)
	return s.game.FindEvent(periodID, created.Event.ID), nil
}

// AddScene appends a default-named scene to an event.
func (s *Session) AddScene(periodID, eventID string) (*game.Scene, error) {
	result, err := s.engine.AddScene(s.game, periodID, eventID)
	if err != nil || result == nil {
		return nil, err
	}
	s.commit(result.Game, result.Action)
	created := result.Action.(action.CreateScene)
	return s.game.FindScene(periodID, eventID, created.Scene.ID), nil
}

// DeletePeriod removes a period and its subtree. Returns false when the
// period no longer exists.
func (s *Session) DeletePeriod(periodID string) bool {
	return s.commitResult(s.engine.DeletePeriod(s.game, periodID))
}

// DeleteEvent removes an event and its scenes.
func (s *Session) DeleteEvent(periodID, eventID string) bool {
	return s.commitResult(s.engine.DeleteEvent(s.game, periodID, eventID))
}

// DeleteScene removes a scene.
func (s *Session) DeleteScene(periodID, eventID, sceneID string) bool {
	return s.commitResult(s.engine.DeleteScene(s.game, periodID, eventID, sceneID))
}

// EditPeriod applies a partial update to a period.
func (s *Session) EditPeriod(periodID string, update game.PeriodUpdate) bool {
	return s.commitResult(s.engine.EditPeriod(s.game, periodID, update))
}

// EditEvent applies a partial update to an event.
func (s *Session) EditEvent(periodID, eventID string, update game.EventUpdate) bool {
	return s.commitResult(s.engine.EditEvent(s.game, periodID, eventID, update))
}

// EditScene applies a partial update to a scene.
func (s *Session) EditScene(periodID, eventID, sceneID string, update game.SceneUpdate) bool {
	return s.commitResult(s.engine.EditScene(s.game, periodID, eventID, sceneID, update))
}

// EditMetadata applies a partial update to the document's root fields.
func (s *Session) EditMetadata(update game.MetadataUpdate) bool {
	return s.commitResult(s.engine.EditGameMetadata(s.game, update))
}

// AddLegacy appends a named legacy.
func (s *Session) AddLegacy(name string) (bool, error) {
	result, err := s.engine.AddLegacy(s.game, name)
	if err != nil || result == nil {
		return false, err
	}
	s.commit(result.Game, result.Action)
	return true, nil
}

// RemoveLegacy removes a legacy by id.
func (s *Session) RemoveLegacy(legacyID string) bool {
	return s.commitResult(s.engine.RemoveLegacy(s.game, legacyID))
}

// EditLegacy applies a partial update to a legacy.
func (s *Session) EditLegacy(legacyID string, update game.LegacyUpdate) bool {
	return s.commitResult(s.engine.EditLegacy(s.game, legacyID, update))
}

// ReorderPeriods moves a period between positions. A same-position move
// is a no-op and records nothing.
func (s *Session) ReorderPeriods(fromIndex, toIndex int) bool {
	return s.commitResult(s.engine.ReorderPeriods(s.game, fromIndex, toIndex))
}

// ReorderEvents moves an event within its period.
func (s *Session) ReorderEvents(periodID string, fromIndex, toIndex int) bool {
	return s.commitResult(s.engine.ReorderEvents(s.game, periodID, fromIndex, toIndex))
}

// ReorderScenes moves a scene within its event.
func (s *Session) ReorderScenes(periodID, eventID string, fromIndex, toIndex int) bool {
	return s.commitResult(s.engine.ReorderScenes(s.game, periodID, eventID, fromIndex, toIndex))
}

// CreateAnchor adds a named anchor and returns it.
func (s *Session) CreateAnchor(name, description string) (*game.Anchor, error) {
	result, err := s.engine.CreateAnchor(s.game, name, description)
	if err != nil || result == nil {
		return nil, err
	}
	s.commit(result.Game, result.Action)
	created := result.Action.(action.CreateAnchor)
	return s.game.FindAnchor(created.Anchor.ID), nil
}

// EditAnchor renames or redescribes an anchor.
func (s *Session) EditAnchor(anchorID, name, description string) bool {
	return s.commitResult(s.engine.EditAnchor(s.game, anchorID, name, description))
}

// DeleteAnchor removes an anchor and all its placements.
func (s *Session) DeleteAnchor(anchorID string) bool {
	return s.commitResult(s.engine.DeleteAnchor(s.game, anchorID))
}

// SetCurrentAnchor makes the anchor current and places it on the
// period, replacing any placement it had elsewhere. Returns false when
// nothing changed.
func (s *Session) SetCurrentAnchor(anchorID, periodID string) (bool, error) {
	result, err := s.engine.SetCurrentAnchor(s.game, anchorID, periodID)
	if err != nil || result == nil {
		return false, err
	}
	s.commit(result.Game, result.Action)
	return true, nil
}

// ClearCurrentAnchor deactivates the current anchor, if any.
func (s *Session) ClearCurrentAnchor() bool {
	return s.commitResult(s.engine.ClearCurrentAnchor(s.game))
}

func (s *Session) commitResult(result *engine.Result) bool {
	if result == nil {
		return false
	}
	s.commit(result.Game, result.Action)
	return true
}

// Undo reverses the most recent action. Returns false when the undo
// stack is empty.
func (s *Session) Undo() bool {
	act, next, ok := history.PopUndo(s.history)
	if !ok {
		return false
	}
	s.game = s.engine.Reverse(s.game, act)
	s.history = next
	s.changed()
	return true
}

// Redo replays the most recently undone action.
func (s *Session) Redo() bool {
	act, next, ok := history.PopRedo(s.history)
	if !ok {
		return false
	}
	s.game = s.engine.Apply(s.game, act)
	s.history = next
	s.changed()
	return true
}

// Snapshot captures a version of the current document unless it is
// structurally identical to the latest stored one. It prunes old
// versions beyond the session limit and returns the stored snapshot,
// or nil when the capture was suppressed as a duplicate.
func (s *Session) Snapshot(ctx context.Context, versionName string) (*snapshot.Snapshot, error) {
	if s.snapshots == nil {
		return nil, fmt.Errorf("no snapshot store configured")
	}

	latest, err := s.snapshots.Latest(ctx, s.game.ID)
	var previous *game.Game
	switch {
	case err == nil:
		previous = &latest.Data
		if snapshot.Equal(previous, s.game) {
			return nil, nil
		}
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	summary := snapshot.ChangeSummary(previous, s.game)
	snap, err := snapshot.New(s.game, versionName, summary, s.now, s.newID)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	if err := s.snapshots.Put(ctx, snap); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	if _, err := s.snapshots.Prune(ctx, s.game.ID, s.snapshotLimit); err != nil {
		return nil, fmt.Errorf("prune snapshots: %w", err)
	}
	return &snap, nil
}

// Close flushes any pending autosave. The session must not be used
// afterwards.
func (s *Session) Close() {
	if s.saver != nil {
		s.saver.Flush()
	}
	s.history = history.Clear(s.history)
}
