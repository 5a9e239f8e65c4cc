package engine

import (
	"fmt"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/game/action"
)

// CreateAnchor appends a fresh anchor character.
func (e *Engine) CreateAnchor(g *game.Game, name, description string) (*Result, error) {
	anchor, err := game.NewAnchor(name, description, e.now, e.newID)
	if err != nil {
		return nil, fmt.Errorf("create anchor: %w", err)
	}

	act := action.CreateAnchor{
		Timestamp: e.now().UTC(),
		Anchor:    anchor,
		Index:     len(g.Anchors),
	}
	return &Result{Game: e.Apply(g, act), Action: act}, nil
}

// EditAnchor rewrites an anchor's name and description. Returns nil when
// the anchor does not exist.
func (e *Engine) EditAnchor(g *game.Game, anchorID, name, description string) *Result {
	anchor := g.FindAnchor(anchorID)
	if anchor == nil {
		return nil
	}

	act := action.EditAnchor{
		Timestamp: e.now().UTC(),
		AnchorID:  anchorID,
		Previous:  game.AnchorUpdate{Name: anchor.Name, Description: anchor.Description},
		New:       game.AnchorUpdate{Name: name, Description: description},
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// DeleteAnchor removes an anchor along with all of its placements,
// clearing the current-anchor pointer if it pointed at the anchor. The
// action captures everything needed to restore all three.
func (e *Engine) DeleteAnchor(g *game.Game, anchorID string) *Result {
	index := -1
	for i := range g.Anchors {
		if g.Anchors[i].ID == anchorID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	var associated []game.AnchorPlacement
	for _, p := range g.AnchorPlacements {
		if p.AnchorID == anchorID {
			associated = append(associated, p)
		}
	}
	if associated == nil {
		associated = []game.AnchorPlacement{}
	}

	act := action.DeleteAnchor{
		Timestamp:            e.now().UTC(),
		AnchorID:             anchorID,
		Index:                index,
		Anchor:               g.Anchors[index],
		AssociatedPlacements: associated,
		WasCurrentAnchor:     g.CurrentAnchorID == anchorID,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// SetCurrentAnchorResult augments a Result with the placement branch
// taken: when the anchor was already placed on the period, no new
// placement is created and only the current-anchor pointer moves.
type SetCurrentAnchorResult struct {
	Result
	WasAlreadyPlaced bool
}

// SetCurrentAnchor activates an anchor on a period. An anchor holds at
// most one placement system-wide, so placing it removes any placement it
// had elsewhere. Returns nil when the anchor is already both placed on
// the period and current: a true no-op that must not reach history.
func (e *Engine) SetCurrentAnchor(g *game.Game, anchorID, periodID string) (*SetCurrentAnchorResult, error) {
	var existing *game.AnchorPlacement
	for i := range g.AnchorPlacements {
		if g.AnchorPlacements[i].AnchorID == anchorID && g.AnchorPlacements[i].PeriodID == periodID {
			existing = &g.AnchorPlacements[i]
			break
		}
	}

	if existing != nil {
		if g.CurrentAnchorID == anchorID {
			return nil, nil
		}
		act := action.SetCurrentAnchor{
			Timestamp:         e.now().UTC(),
			AnchorID:          anchorID,
			PeriodID:          periodID,
			Placement:         *existing,
			PreviousAnchorID:  g.CurrentAnchorID,
			RemovedPlacements: []game.AnchorPlacement{},
			WasAlreadyPlaced:  true,
		}
		return &SetCurrentAnchorResult{
			Result:           Result{Game: e.Apply(g, act), Action: act},
			WasAlreadyPlaced: true,
		}, nil
	}

	removed := []game.AnchorPlacement{}
	for _, p := range g.AnchorPlacements {
		if p.AnchorID == anchorID {
			removed = append(removed, p)
		}
	}

	placement, err := game.NewAnchorPlacement(anchorID, periodID, game.PlacementOptions{}, e.now, e.newID)
	if err != nil {
		return nil, fmt.Errorf("create placement: %w", err)
	}

	act := action.SetCurrentAnchor{
		Timestamp:         e.now().UTC(),
		AnchorID:          anchorID,
		PeriodID:          periodID,
		Placement:         placement,
		PreviousAnchorID:  g.CurrentAnchorID,
		RemovedPlacements: removed,
		WasAlreadyPlaced:  false,
	}
	return &SetCurrentAnchorResult{
		Result:           Result{Game: e.Apply(g, act), Action: act},
		WasAlreadyPlaced: false,
	}, nil
}

// ClearCurrentAnchor deactivates the current anchor. Returns nil when no
// anchor is active.
func (e *Engine) ClearCurrentAnchor(g *game.Game) *Result {
	if g.CurrentAnchorID == "" {
		return nil
	}

	act := action.ClearCurrentAnchor{
		Timestamp:        e.now().UTC(),
		PreviousAnchorID: g.CurrentAnchorID,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}
