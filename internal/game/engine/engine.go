// Package engine implements the mutation engine for game documents: a
// generic apply/reverse dispatcher over the action algebra, plus the
// construct-and-apply helpers that build an action from the live
// document and immediately run it through the same dispatcher. Every
// operation is a pure in-memory computation; the input document is
// never mutated.
package engine

import (
	"log"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/game/action"
	"github.com/mosaic-games/chronicle/internal/id"
)

// Engine executes actions against game documents. The clock and id
// generator are injectable for tests.
type Engine struct {
	now   func() time.Time
	newID func() (string, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the identifier generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(e *Engine) { e.newID = gen }
}

// New creates an engine with the real clock and id generator.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, newID: id.NewID}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply returns a new document with the action applied. The input is
// not mutated. An unrecognized action kind logs a warning and returns
// an unchanged copy.
func (e *Engine) Apply(g *game.Game, a action.Action) *game.Game {
	return e.run(g, a, false)
}

// Reverse returns a new document with the action undone. Exact inverse
// of Apply for every known kind, up to the root updatedAt bump.
func (e *Engine) Reverse(g *game.Game, a action.Action) *game.Game {
	return e.run(g, a, true)
}

func (e *Engine) run(g *game.Game, a action.Action, reverse bool) *game.Game {
	out := g.Clone()

	switch act := a.(type) {
	case action.CreatePeriod:
		if reverse {
			removePeriod(out, act.PeriodID)
		} else {
			insertPeriod(out, act.Index, act.Period)
		}
	case action.DeletePeriod:
		if reverse {
			insertPeriod(out, act.Index, act.Period)
		} else {
			removePeriod(out, act.PeriodID)
		}
	case action.EditPeriod:
		values := act.New
		if reverse {
			values = act.Previous
		}
		if period := out.FindPeriod(act.PeriodID); period != nil {
			values.ApplyTo(period)
			period.UpdatedAt = e.now().UTC()
		}
	case action.CreateEvent:
		if reverse {
			e.removeEvent(out, act.PeriodID, act.EventID)
		} else {
			e.insertEvent(out, act.PeriodID, act.Index, act.Event)
		}
	case action.DeleteEvent:
		if reverse {
			e.insertEvent(out, act.PeriodID, act.Index, act.Event)
		} else {
			e.removeEvent(out, act.PeriodID, act.EventID)
		}
	case action.EditEvent:
		values := act.New
		if reverse {
			values = act.Previous
		}
		if event := out.FindEvent(act.PeriodID, act.EventID); event != nil {
			values.ApplyTo(event)
			event.UpdatedAt = e.now().UTC()
		}
	case action.CreateScene:
		if reverse {
			e.removeScene(out, act.PeriodID, act.EventID, act.SceneID)
		} else {
			e.insertScene(out, act.PeriodID, act.EventID, act.Index, act.Scene)
		}
	case action.DeleteScene:
		if reverse {
			e.insertScene(out, act.PeriodID, act.EventID, act.Index, act.Scene)
		} else {
			e.removeScene(out, act.PeriodID, act.EventID, act.SceneID)
		}
	case action.EditScene:
		values := act.New
		if reverse {
			values = act.Previous
		}
		if scene := out.FindScene(act.PeriodID, act.EventID, act.SceneID); scene != nil {
			values.ApplyTo(scene)
			scene.UpdatedAt = e.now().UTC()
		}
	case action.EditGameMetadata:
		values := act.New
		if reverse {
			values = act.Previous
		}
		values.ApplyTo(out)
	case action.AddLegacy:
		if reverse {
			removeLegacy(out, act.Legacy.ID)
		} else {
			insertLegacy(out, act.Index, act.Legacy)
		}
	case action.RemoveLegacy:
		if reverse {
			insertLegacy(out, act.Index, act.Legacy)
		} else {
			removeLegacy(out, act.Legacy.ID)
		}
	case action.EditLegacy:
		values := act.New
		if reverse {
			values = act.Previous
		}
		for i := range out.Legacies {
			if out.Legacies[i].ID == act.LegacyID {
				values.ApplyTo(&out.Legacies[i])
				break
			}
		}
	case action.ReorderPeriods:
		order := act.NewOrder
		if reverse {
			order = act.PreviousOrder
		}
		reorderPeriods(out, order)
	case action.ReorderEvents:
		order := act.NewOrder
		if reverse {
			order = act.PreviousOrder
		}
		e.reorderEvents(out, act.PeriodID, order)
	case action.ReorderScenes:
		order := act.NewOrder
		if reverse {
			order = act.PreviousOrder
		}
		e.reorderScenes(out, act.PeriodID, act.EventID, order)
	case action.CreateAnchor:
		if reverse {
			removeAnchor(out, act.Anchor.ID)
		} else {
			insertAnchor(out, act.Index, act.Anchor)
		}
	case action.DeleteAnchor:
		if reverse {
			insertAnchor(out, act.Index, act.Anchor)
			out.AnchorPlacements = append(out.AnchorPlacements, act.AssociatedPlacements...)
			if act.WasCurrentAnchor {
				out.CurrentAnchorID = act.AnchorID
			}
		} else {
			removeAnchor(out, act.AnchorID)
			out.AnchorPlacements = placementsWithoutAnchor(out.AnchorPlacements, act.AnchorID)
			if out.CurrentAnchorID == act.AnchorID {
				out.CurrentAnchorID = ""
			}
		}
	case action.EditAnchor:
		values := act.New
		if reverse {
			values = act.Previous
		}
		if anchor := out.FindAnchor(act.AnchorID); anchor != nil {
			anchor.Name = values.Name
			anchor.Description = values.Description
			anchor.UpdatedAt = e.now().UTC()
		}
	case action.SetCurrentAnchor:
		if reverse {
			out.CurrentAnchorID = act.PreviousAnchorID
			if !act.WasAlreadyPlaced {
				out.AnchorPlacements = placementsWithoutID(out.AnchorPlacements, act.Placement.ID)
				out.AnchorPlacements = append(out.AnchorPlacements, act.RemovedPlacements...)
			}
		} else {
			if !act.WasAlreadyPlaced {
				out.AnchorPlacements = placementsWithoutAnchor(out.AnchorPlacements, act.AnchorID)
				out.AnchorPlacements = append(out.AnchorPlacements, act.Placement)
			}
			out.CurrentAnchorID = act.AnchorID
		}
	case action.ClearCurrentAnchor:
		if reverse {
			out.CurrentAnchorID = act.PreviousAnchorID
		} else {
			out.CurrentAnchorID = ""
		}
	default:
		direction := "apply"
		if reverse {
			direction = "reverse"
		}
		log.Printf("%s: unknown action kind %q, document left unchanged", direction, a.Kind())
		return out
	}

	out.UpdatedAt = e.now().UTC()
	return out
}

func insertPeriod(g *game.Game, index int, period game.Period) {
	index = clampIndex(index, len(g.Periods))
	g.Periods = append(g.Periods, game.Period{})
	copy(g.Periods[index+1:], g.Periods[index:])
	g.Periods[index] = game.ClonePeriod(period)
}

func removePeriod(g *game.Game, periodID string) {
	kept := g.Periods[:0]
	for _, p := range g.Periods {
		if p.ID != periodID {
			kept = append(kept, p)
		}
	}
	g.Periods = kept
}

func (e *Engine) insertEvent(g *game.Game, periodID string, index int, event game.Event) {
	period := g.FindPeriod(periodID)
	if period == nil {
		return
	}
	index = clampIndex(index, len(period.Events))
	period.Events = append(period.Events, game.Event{})
	copy(period.Events[index+1:], period.Events[index:])
	period.Events[index] = game.CloneEvent(event)
	period.UpdatedAt = e.now().UTC()
}

func (e *Engine) removeEvent(g *game.Game, periodID, eventID string) {
	period := g.FindPeriod(periodID)
	if period == nil {
		return
	}
	kept := period.Events[:0]
	for _, ev := range period.Events {
		if ev.ID != eventID {
			kept = append(kept, ev)
		}
	}
	period.Events = kept
	period.UpdatedAt = e.now().UTC()
}

func (e *Engine) insertScene(g *game.Game, periodID, eventID string, index int, scene game.Scene) {
	event := g.FindEvent(periodID, eventID)
	if event == nil {
		return
	}
	index = clampIndex(index, len(event.Scenes))
	event.Scenes = append(event.Scenes, game.Scene{})
	copy(event.Scenes[index+1:], event.Scenes[index:])
	event.Scenes[index] = scene
	event.UpdatedAt = e.now().UTC()
}

func (e *Engine) removeScene(g *game.Game, periodID, eventID, sceneID string) {
	event := g.FindEvent(periodID, eventID)
	if event == nil {
		return
	}
	kept := event.Scenes[:0]
	for _, s := range event.Scenes {
		if s.ID != sceneID {
			kept = append(kept, s)
		}
	}
	event.Scenes = kept
	event.UpdatedAt = e.now().UTC()
}

func insertLegacy(g *game.Game, index int, legacy game.Legacy) {
	index = clampIndex(index, len(g.Legacies))
	g.Legacies = append(g.Legacies, game.Legacy{})
	copy(g.Legacies[index+1:], g.Legacies[index:])
	g.Legacies[index] = legacy
}

func removeLegacy(g *game.Game, legacyID string) {
	kept := g.Legacies[:0]
	for _, l := range g.Legacies {
		if l.ID != legacyID {
			kept = append(kept, l)
		}
	}
	g.Legacies = kept
}

func insertAnchor(g *game.Game, index int, anchor game.Anchor) {
	index = clampIndex(index, len(g.Anchors))
	g.Anchors = append(g.Anchors, game.Anchor{})
	copy(g.Anchors[index+1:], g.Anchors[index:])
	g.Anchors[index] = anchor
}

func removeAnchor(g *game.Game, anchorID string) {
	kept := g.Anchors[:0]
	for _, a := range g.Anchors {
		if a.ID != anchorID {
			kept = append(kept, a)
		}
	}
	g.Anchors = kept
}

func placementsWithoutAnchor(placements []game.AnchorPlacement, anchorID string) []game.AnchorPlacement {
	kept := placements[:0]
	for _, p := range placements {
		if p.AnchorID != anchorID {
			kept = append(kept, p)
		}
	}
	return kept
}

func placementsWithoutID(placements []game.AnchorPlacement, placementID string) []game.AnchorPlacement {
	kept := placements[:0]
	for _, p := range placements {
		if p.ID != placementID {
			kept = append(kept, p)
		}
	}
	return kept
}

// reorderPeriods rebuilds the period list from the target id sequence.
// Ids no longer present in the document are silently dropped.
func reorderPeriods(g *game.Game, order []string) {
	byID := make(map[string]game.Period, len(g.Periods))
	for _, p := range g.Periods {
		byID[p.ID] = p
	}
	rebuilt := make([]game.Period, 0, len(order))
	for _, periodID := range order {
		if p, ok := byID[periodID]; ok {
			rebuilt = append(rebuilt, p)
		}
	}
	g.Periods = rebuilt
}

func (e *Engine) reorderEvents(g *game.Game, periodID string, order []string) {
	period := g.FindPeriod(periodID)
	if period == nil {
		return
	}
	byID := make(map[string]game.Event, len(period.Events))
	for _, ev := range period.Events {
		byID[ev.ID] = ev
	}
	rebuilt := make([]game.Event, 0, len(order))
	for _, eventID := range order {
		if ev, ok := byID[eventID]; ok {
			rebuilt = append(rebuilt, ev)
		}
	}
	period.Events = rebuilt
	period.UpdatedAt = e.now().UTC()
}

func (e *Engine) reorderScenes(g *game.Game, periodID, eventID string, order []string) {
	event := g.FindEvent(periodID, eventID)
	if event == nil {
		return
	}
	byID := make(map[string]game.Scene, len(event.Scenes))
	for _, s := range event.Scenes {
		byID[s.ID] = s
	}
	rebuilt := make([]game.Scene, 0, len(order))
	for _, sceneID := range order {
		if s, ok := byID[sceneID]; ok {
			rebuilt = append(rebuilt, s)
		}
	}
	event.Scenes = rebuilt
	event.UpdatedAt = e.now().UTC()
}

func clampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}
