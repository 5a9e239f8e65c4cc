// Package history implements the bounded undo/redo stacks for recorded
// game actions. All operations are pure: they return a new state and
// never mutate their input, so a state value can be shared safely with
// a reactive presentation layer.
package history

import "github.com/mosaic-games/chronicle/internal/game/action"

// DefaultLimit is the default maximum number of undoable actions.
const DefaultLimit = 50

// State holds the undo and redo stacks. The undo stack never exceeds
// Limit entries; recording a new action always empties the redo stack.
type State struct {
	Undo  []action.Action
	Redo  []action.Action
	Limit int
}

// NewState creates an empty history bounded to limit entries. A
// non-positive limit falls back to DefaultLimit.
func NewState(limit int) State {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return State{Limit: limit}
}

// Record appends an action to the undo stack, evicting the oldest
// entries beyond the limit, and clears the redo stack.
func Record(s State, a action.Action) State {
	undo := make([]action.Action, 0, len(s.Undo)+1)
	undo = append(undo, s.Undo...)
	undo = append(undo, a)
	if len(undo) > s.Limit {
		undo = undo[len(undo)-s.Limit:]
	}
	return State{Undo: undo, Redo: nil, Limit: s.Limit}
}

// PopUndo moves the most recent undo entry onto the redo stack and
// returns it. The third return is false when there is nothing to undo.
func PopUndo(s State) (action.Action, State, bool) {
	if len(s.Undo) == 0 {
		return nil, s, false
	}
	last := s.Undo[len(s.Undo)-1]
	undo := append([]action.Action(nil), s.Undo[:len(s.Undo)-1]...)
	redo := make([]action.Action, 0, len(s.Redo)+1)
	redo = append(redo, s.Redo...)
	redo = append(redo, last)
	return last, State{Undo: undo, Redo: redo, Limit: s.Limit}, true
}

// PopRedo moves the most recent redo entry back onto the undo stack and
// returns it. The third return is false when there is nothing to redo.
func PopRedo(s State) (action.Action, State, bool) {
	if len(s.Redo) == 0 {
		return nil, s, false
	}
	last := s.Redo[len(s.Redo)-1]
	redo := append([]action.Action(nil), s.Redo[:len(s.Redo)-1]...)
	undo := make([]action.Action, 0, len(s.Undo)+1)
	undo = append(undo, s.Undo...)
	undo = append(undo, last)
	return last, State{Undo: undo, Redo: redo, Limit: s.Limit}, true
}

// CanUndo reports whether an undo is available.
func CanUndo(s State) bool {
	return len(s.Undo) > 0
}

// CanRedo reports whether a redo is available.
func CanRedo(s State) bool {
	return len(s.Redo) > 0
}

// Clear empties both stacks, keeping the limit. Used when a different
// document is loaded.
func Clear(s State) State {
	return State{Limit: s.Limit}
}

// UndoCount returns the number of undoable actions.
func UndoCount(s State) int {
	return len(s.Undo)
}

// RedoCount returns the number of redoable actions.
func RedoCount(s State) int {
	return len(s.Redo)
}
