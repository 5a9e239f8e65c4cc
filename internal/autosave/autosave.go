// Package autosave debounces document writes so rapid edits coalesce
// into a single save after an idle delay.
package autosave

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/storage"
)

// DefaultDelay is the idle window before a pending save is written.
const DefaultDelay = 500 * time.Millisecond

// Saver debounces writes to a game store. Save schedules a write of the
// given document after the delay; repeated calls reset the timer so
// only the most recent document is ever persisted. Flush forces the
// pending write immediately and Cancel drops it.
type Saver struct {
	store   storage.GameStore
	delay   time.Duration
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *game.Game
}

// Option configures a Saver.
type Option func(*Saver)

// WithDelay overrides the debounce delay.
func WithDelay(delay time.Duration) Option {
	return func(s *Saver) {
		if delay > 0 {
			s.delay = delay
		}
	}
}

// WithErrorHandler sets a callback invoked when a save fails with a
// storage error. Other failures are logged.
func WithErrorHandler(handler func(error)) Option {
	return func(s *Saver) {
		s.onError = handler
	}
}

// New creates a Saver writing to the given store.
func New(store storage.GameStore, opts ...Option) *Saver {
	s := &Saver{store: store, delay: DefaultDelay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save schedules the document for persistence after the idle delay,
// replacing any save already pending.
func (s *Saver) Save(g *game.Game) {
	if s == nil || g == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = g.Clone()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *Saver) fire() {
	s.mu.Lock()
	g := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if g != nil {
		s.write(g)
	}
}

// Flush cancels the pending timer and writes the buffered document
// immediately, if any. Callers use it on navigation away so the most
// recent state is what lands on disk.
func (s *Saver) Flush() {
	if s == nil {
		return
	}

	s.mu.Lock()
	g := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if g != nil {
		s.write(g)
	}
}

// Cancel drops the pending timer and buffered document without saving.
func (s *Saver) Cancel() {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Saver) write(g *game.Game) {
	err := s.store.Save(context.Background(), g)
	if err == nil {
		return
	}
	if s.onError != nil && isStorageError(err) {
		s.onError(err)
		return
	}
	log.Printf("autosave: save game %s: %v", g.ID, err)
}

func isStorageError(err error) bool {
	return errors.Is(err, storage.ErrUnavailable) ||
		errors.Is(err, storage.ErrNotFound) ||
		errors.Is(err, storage.ErrAlreadyExists)
}
