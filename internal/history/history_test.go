package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/game/action"
)

func legacyAction(name string) action.Action {
	return action.AddLegacy{
		Timestamp: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		Legacy:    game.Legacy{ID: name, Name: name},
	}
}

func TestRecordBoundsUndoStack(t *testing.T) {
	s := NewState(3)
	for i := 0; i < 5; i++ {
		s = Record(s, legacyAction(fmt.Sprintf("a%d", i)))
	}

	if got := UndoCount(s); got != 3 {
		t.Fatalf("UndoCount() = %d, want 3", got)
	}
	// Oldest entries were evicted from the front.
	first := s.Undo[0].(action.AddLegacy)
	if first.Legacy.Name != "a2" {
		t.Errorf("oldest retained = %q, want %q", first.Legacy.Name, "a2")
	}
	last := s.Undo[2].(action.AddLegacy)
	if last.Legacy.Name != "a4" {
		t.Errorf("newest retained = %q, want %q", last.Legacy.Name, "a4")
	}
}

func TestRecordClearsRedo(t *testing.T) {
	s := NewState(10)
	s = Record(s, legacyAction("a"))
	s = Record(s, legacyAction("b"))

	_, s, ok := PopUndo(s)
	if !ok {
		t.Fatal("PopUndo() ok = false")
	}
	if !CanRedo(s) {
		t.Fatal("CanRedo() = false after undo")
	}

	s = Record(s, legacyAction("c"))
	if CanRedo(s) {
		t.Error("CanRedo() = true after recording a fresh action")
	}
	if got := RedoCount(s); got != 0 {
		t.Errorf("RedoCount() = %d, want 0", got)
	}
}

func TestPopUndoMovesToRedo(t *testing.T) {
	s := NewState(10)
	s = Record(s, legacyAction("a"))

	act, s, ok := PopUndo(s)
	if !ok {
		t.Fatal("PopUndo() ok = false")
	}
	if got := act.(action.AddLegacy).Legacy.Name; got != "a" {
		t.Errorf("popped = %q, want %q", got, "a")
	}
	if UndoCount(s) != 0 || RedoCount(s) != 1 {
		t.Errorf("stacks = %d/%d, want 0/1", UndoCount(s), RedoCount(s))
	}

	act, s, ok = PopRedo(s)
	if !ok {
		t.Fatal("PopRedo() ok = false")
	}
	if got := act.(action.AddLegacy).Legacy.Name; got != "a" {
		t.Errorf("redone = %q, want %q", got, "a")
	}
	if UndoCount(s) != 1 || RedoCount(s) != 0 {
		t.Errorf("stacks = %d/%d, want 1/0", UndoCount(s), RedoCount(s))
	}
}

func TestPopEmptyStacks(t *testing.T) {
	s := NewState(10)

	if _, _, ok := PopUndo(s); ok {
		t.Error("PopUndo() on empty stack ok = true")
	}
	if _, _, ok := PopRedo(s); ok {
		t.Error("PopRedo() on empty stack ok = true")
	}
}

func TestNewStateFallsBackToDefaultLimit(t *testing.T) {
	for _, limit := range []int{0, -5} {
		if got := NewState(limit).Limit; got != DefaultLimit {
			t.Errorf("NewState(%d).Limit = %d, want %d", limit, got, DefaultLimit)
		}
	}
}

func TestOperationsArePure(t *testing.T) {
	s := NewState(10)
	s = Record(s, legacyAction("a"))
	s = Record(s, legacyAction("b"))

	before := UndoCount(s)
	_, _, _ = PopUndo(s)
	if got := UndoCount(s); got != before {
		t.Errorf("PopUndo mutated its input: count = %d, want %d", got, before)
	}

	_ = Record(s, legacyAction("c"))
	if got := UndoCount(s); got != before {
		t.Errorf("Record mutated its input: count = %d, want %d", got, before)
	}
}

func TestClear(t *testing.T) {
	s := NewState(7)
	s = Record(s, legacyAction("a"))
	_, s, _ = PopUndo(s)

	s = Clear(s)
	if CanUndo(s) || CanRedo(s) {
		t.Error("Clear() left entries behind")
	}
	if s.Limit != 7 {
		t.Errorf("Clear() limit = %d, want 7", s.Limit)
	}
}
