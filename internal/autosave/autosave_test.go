package autosave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/storage"
)

type recordingStore struct {
	mu     sync.Mutex
	saved  []*game.Game
	err    error
	closed bool
}

func (r *recordingStore) Create(ctx context.Context, g *game.Game) error { return nil }
func (r *recordingStore) Load(ctx context.Context, id string) (*game.Game, error) {
	return nil, storage.ErrNotFound
}

func (r *recordingStore) Save(ctx context.Context, g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, g)
	return nil
}

func (r *recordingStore) Delete(ctx context.Context, id string) error { return nil }
func (r *recordingStore) Exists(ctx context.Context, id string) (bool, error) {
	return false, nil
}
func (r *recordingStore) List(ctx context.Context) ([]game.Metadata, error) { return nil, nil }
func (r *recordingStore) Close() error {
	r.closed = true
	return nil
}

func (r *recordingStore) savedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func (r *recordingStore) lastSaved() *game.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return nil
	}
	return r.saved[len(r.saved)-1]
}

func newTestGame(t *testing.T, name string) *game.Game {
	t.Helper()

	g, err := game.NewGame(name, nil, nil)
	if err != nil {
		t.Fatalf("NewGame() error = %v", err)
	}
	return g
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestSaverCoalescesRapidSaves(t *testing.T) {
	store := &recordingStore{}
	saver := New(store, WithDelay(30*time.Millisecond))

	g := newTestGame(t, "Debounced")
	for i := 0; i < 5; i++ {
		g.Name = "Debounced"
		saver.Save(g)
		time.Sleep(5 * time.Millisecond)
	}
	g.Name = "Final"
	saver.Save(g)

	waitFor(t, func() bool { return store.savedCount() > 0 })
	time.Sleep(60 * time.Millisecond)

	if count := store.savedCount(); count != 1 {
		t.Errorf("saved count = %d, want 1", count)
	}
	if last := store.lastSaved(); last == nil || last.Name != "Final" {
		t.Errorf("last saved = %+v, want the most recent document", last)
	}
}

func TestSaverFlushWritesImmediately(t *testing.T) {
	store := &recordingStore{}
	saver := New(store, WithDelay(time.Hour))

	g := newTestGame(t, "Flushed")
	saver.Save(g)
	saver.Flush()

	if count := store.savedCount(); count != 1 {
		t.Fatalf("saved count after flush = %d, want 1", count)
	}

	// The pending write was consumed; a second flush is a no-op.
	saver.Flush()
	if count := store.savedCount(); count != 1 {
		t.Errorf("saved count after second flush = %d, want 1", count)
	}
}

func TestSaverCancelDropsPendingWrite(t *testing.T) {
	store := &recordingStore{}
	saver := New(store, WithDelay(20*time.Millisecond))

	saver.Save(newTestGame(t, "Dropped"))
	saver.Cancel()

	time.Sleep(60 * time.Millisecond)
	if count := store.savedCount(); count != 0 {
		t.Errorf("saved count after cancel = %d, want 0", count)
	}
}

func TestSaverSnapshotsDocumentAtSaveTime(t *testing.T) {
	store := &recordingStore{}
	saver := New(store, WithDelay(10*time.Millisecond))

	g := newTestGame(t, "Before Edit")
	saver.Save(g)
	g.Name = "After Edit"

	waitFor(t, func() bool { return store.savedCount() > 0 })
	if last := store.lastSaved(); last.Name != "Before Edit" {
		t.Errorf("saved name = %q, want the state passed to Save", last.Name)
	}
}

func TestSaverStorageErrorCallback(t *testing.T) {
	store := &recordingStore{err: storage.ErrUnavailable}

	var mu sync.Mutex
	var got error
	saver := New(store,
		WithDelay(10*time.Millisecond),
		WithErrorHandler(func(err error) {
			mu.Lock()
			got = err
			mu.Unlock()
		}),
	)

	saver.Save(newTestGame(t, "Unreachable"))
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	})
}
