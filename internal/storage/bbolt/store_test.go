package bbolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "chronicle.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func testGame(t *testing.T, name string, updatedAt time.Time) *game.Game {
	t.Helper()

	g, err := game.NewGame(name, func() time.Time { return updatedAt }, nil)
	if err != nil {
		t.Fatalf("NewGame(%q) error = %v", name, err)
	}
	return g
}

func TestStoreCreateAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	g := testGame(t, "Fall of the Meridian Empire", time.Now())
	if err := store.Create(ctx, g); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	loaded, err := store.Load(ctx, g.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != g.Name {
		t.Errorf("Load() name = %q, want %q", loaded.Name, g.Name)
	}
	if loaded.ID != g.ID {
		t.Errorf("Load() id = %q, want %q", loaded.ID, g.ID)
	}
}

func TestStoreCreateDuplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	g := testGame(t, "Duplicate", time.Now())
	if err := store.Create(ctx, g); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, g); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("Create() duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStoreSaveUpsertsAndReindexes(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	g := testGame(t, "Before", time.Now())
	if err := store.Create(ctx, g); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	g.Name = "After"
	g.UpdatedAt = g.UpdatedAt.Add(time.Minute)
	if err := store.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ctx, g.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != "After" {
		t.Errorf("Load() name = %q, want %q", loaded.Name, "After")
	}

	if ids, err := store.FindByName(ctx, "Before"); err != nil || len(ids) != 0 {
		t.Errorf("FindByName(Before) = %v, %v, want empty", ids, err)
	}
	ids, err := store.FindByName(ctx, "After")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != g.ID {
		t.Errorf("FindByName(After) = %v, want [%s]", ids, g.ID)
	}
}

func TestStoreDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	g := testGame(t, "Ephemeral", time.Now())
	if err := store.Create(ctx, g); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if found, err := store.Exists(ctx, g.ID); err != nil || found {
		t.Errorf("Exists() = %v, %v after delete, want false", found, err)
	}
	if err := store.Delete(ctx, g.ID); err != nil {
		t.Errorf("Delete() of absent id error = %v, want nil", err)
	}
	if list, err := store.List(ctx); err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v after delete, want empty", list, err)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"Oldest", "Middle", "Newest"}
	for i, name := range names {
		g := testGame(t, name, base.Add(time.Duration(i)*time.Hour))
		if err := store.Create(ctx, g); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != len(names) {
		t.Fatalf("List() length = %d, want %d", len(list), len(names))
	}
	want := []string{"Newest", "Middle", "Oldest"}
	for i, meta := range list {
		if meta.Name != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, meta.Name, want[i])
		}
	}
}

func TestStoreContextCancelled(t *testing.T) {
	store := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Create(ctx, testGame(t, "Cancelled", time.Now())); !errors.Is(err, context.Canceled) {
		t.Fatalf("Create() error = %v, want context.Canceled", err)
	}
	if _, err := store.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("List() error = %v, want context.Canceled", err)
	}
}
