package engine

import (
	"fmt"

	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/game/action"
)

// Default names for entities created through the edit surface.
const (
	DefaultPeriodName = "New Period"
	DefaultEventName  = "New Event"
	DefaultSceneName  = "New Scene"
)

// Result pairs the document produced by an edit with the action that
// reproduces (and inverts) it. Helpers return nil when the target path
// does not resolve, letting callers drop stale references silently.
type Result struct {
	Game   *game.Game
	Action action.Action
}

// AddPeriod inserts a fresh period at the given index.
func (e *Engine) AddPeriod(g *game.Game, index int) (*Result, error) {
	game.WouldExceedPeriodCap(len(g.Periods))

	period, err := game.NewPeriod(DefaultPeriodName, game.ToneLight, e.now, e.newID)
	if err != nil {
		return nil, fmt.Errorf("create period: %w", err)
	}

	act := action.CreatePeriod{
		Timestamp: e.now().UTC(),
		PeriodID:  period.ID,
		Index:     index,
		Period:    game.ClonePeriod(period),
	}
	return &Result{Game: e.Apply(g, act), Action: act}, nil
}

// AddEvent appends a fresh event to the period. Returns nil, nil when
// the period does not exist.
func (e *Engine) AddEvent(g *game.Game, periodID string) (*Result, error) {
	period := g.FindPeriod(periodID)
	if period == nil {
		return nil, nil
	}
	game.WouldExceedEventCap(len(period.Events))

	event, err := game.NewEvent(DefaultEventName, game.ToneLight, e.now, e.newID)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	act := action.CreateEvent{
		Timestamp: e.now().UTC(),
		PeriodID:  periodID,
		EventID:   event.ID,
		Index:     len(period.Events),
		Event:     game.CloneEvent(event),
	}
	return &Result{Game: e.Apply(g, act), Action: act}, nil
}

// AddScene appends a fresh scene to the event. Returns nil, nil when
// the path does not resolve.
func (e *Engine) AddScene(g *game.Game, periodID, eventID string) (*Result, error) {
	event := g.FindEvent(periodID, eventID)
	if event == nil {
		return nil, nil
	}
	game.WouldExceedSceneCap(len(event.Scenes))

	scene, err := game.NewScene(DefaultSceneName, game.ToneLight, e.now, e.newID)
	if err != nil {
		return nil, fmt.Errorf("create scene: %w", err)
	}

	act := action.CreateScene{
		Timestamp: e.now().UTC(),
		PeriodID:  periodID,
		EventID:   eventID,
		SceneID:   scene.ID,
		Index:     len(event.Scenes),
		Scene:     scene,
	}
	return &Result{Game: e.Apply(g, act), Action: act}, nil
}

// DeletePeriod removes a period and its whole subtree. Returns nil when
// the period does not exist.
func (e *Engine) DeletePeriod(g *game.Game, periodID string) *Result {
	index := g.PeriodIndex(periodID)
	if index < 0 {
		return nil
	}

	act := action.DeletePeriod{
		Timestamp: e.now().UTC(),
		PeriodID:  periodID,
		Index:     index,
		Period:    game.ClonePeriod(g.Periods[index]),
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// DeleteEvent removes an event and its scenes.
func (e *Engine) DeleteEvent(g *game.Game, periodID, eventID string) *Result {
	period := g.FindPeriod(periodID)
	if period == nil {
		return nil
	}
	index := -1
	for i := range period.Events {
		if period.Events[i].ID == eventID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	act := action.DeleteEvent{
		Timestamp: e.now().UTC(),
		PeriodID:  periodID,
		EventID:   eventID,
		Index:     index,
		Event:     game.CloneEvent(period.Events[index]),
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// DeleteScene removes a scene.
func (e *Engine) DeleteScene(g *game.Game, periodID, eventID, sceneID string) *Result {
	event := g.FindEvent(periodID, eventID)
	if event == nil {
		return nil
	}
	index := -1
	for i := range event.Scenes {
		if event.Scenes[i].ID == sceneID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	act := action.DeleteScene{
		Timestamp: e.now().UTC(),
		PeriodID:  periodID,
		EventID:   eventID,
		SceneID:   sceneID,
		Index:     index,
		Scene:     event.Scenes[index],
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// EditPeriod applies a partial update to a period.
func (e *Engine) EditPeriod(g *game.Game, periodID string, update game.PeriodUpdate) *Result {
	period := g.FindPeriod(periodID)
	if period == nil {
		return nil
	}

	act := action.EditPeriod{
		Timestamp: e.now().UTC(),
		PeriodID:  periodID,
		Previous:  game.DiffPeriod(*period, update),
		New:       update,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// EditEvent applies a partial update to an event.
func (e *Engine) EditEvent(g *game.Game, periodID, eventID string, update game.EventUpdate) *Result {
	event := g.FindEvent(periodID, eventID)
	if event == nil {
		return nil
	}

	act := action.EditEvent{
		Timestamp: e.now().UTC(),
		PeriodID:  periodID,
		EventID:   eventID,
		Previous:  game.DiffEvent(*event, update),
		New:       update,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// EditScene applies a partial update to a scene.
func (e *Engine) EditScene(g *game.Game, periodID, eventID, sceneID string, update game.SceneUpdate) *Result {
	scene := g.FindScene(periodID, eventID, sceneID)
	if scene == nil {
		return nil
	}

	act := action.EditScene{
		Timestamp: e.now().UTC(),
		PeriodID:  periodID,
		EventID:   eventID,
		SceneID:   sceneID,
		Previous:  game.DiffScene(*scene, update),
		New:       update,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// EditGameMetadata applies a partial update to game-level metadata.
func (e *Engine) EditGameMetadata(g *game.Game, update game.MetadataUpdate) *Result {
	act := action.EditGameMetadata{
		Timestamp: e.now().UTC(),
		Previous:  game.DiffMetadata(g, update),
		New:       update,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// AddLegacy appends a fresh legacy with the given name.
func (e *Engine) AddLegacy(g *game.Game, name string) (*Result, error) {
	game.WouldExceedLegacyCap(len(g.Legacies))

	legacy, err := game.NewLegacy(name, e.newID)
	if err != nil {
		return nil, fmt.Errorf("create legacy: %w", err)
	}

	act := action.AddLegacy{
		Timestamp: e.now().UTC(),
		Legacy:    legacy,
		Index:     len(g.Legacies),
	}
	return &Result{Game: e.Apply(g, act), Action: act}, nil
}

// RemoveLegacy removes a legacy by id.
func (e *Engine) RemoveLegacy(g *game.Game, legacyID string) *Result {
	index := -1
	for i := range g.Legacies {
		if g.Legacies[i].ID == legacyID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	act := action.RemoveLegacy{
		Timestamp: e.now().UTC(),
		Legacy:    g.Legacies[index],
		Index:     index,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// EditLegacy applies a partial update to a legacy.
func (e *Engine) EditLegacy(g *game.Game, legacyID string, update game.LegacyUpdate) *Result {
	var legacy *game.Legacy
	for i := range g.Legacies {
		if g.Legacies[i].ID == legacyID {
			legacy = &g.Legacies[i]
			break
		}
	}
	if legacy == nil {
		return nil
	}

	act := action.EditLegacy{
		Timestamp: e.now().UTC(),
		LegacyID:  legacyID,
		Previous:  game.DiffLegacy(*legacy, update),
		New:       update,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// ReorderPeriods moves the period at fromIndex to toIndex. Returns nil
// when the move is a no-op or either index is out of range.
func (e *Engine) ReorderPeriods(g *game.Game, fromIndex, toIndex int) *Result {
	previous := periodIDs(g.Periods)
	next, ok := movedOrder(previous, fromIndex, toIndex)
	if !ok {
		return nil
	}

	act := action.ReorderPeriods{
		Timestamp:     e.now().UTC(),
		PreviousOrder: previous,
		NewOrder:      next,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// ReorderEvents moves an event within a period.
func (e *Engine) ReorderEvents(g *game.Game, periodID string, fromIndex, toIndex int) *Result {
	period := g.FindPeriod(periodID)
	if period == nil {
		return nil
	}
	previous := eventIDs(period.Events)
	next, ok := movedOrder(previous, fromIndex, toIndex)
	if !ok {
		return nil
	}

	act := action.ReorderEvents{
		Timestamp:     e.now().UTC(),
		PeriodID:      periodID,
		PreviousOrder: previous,
		NewOrder:      next,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

// ReorderScenes moves a scene within an event.
func (e *Engine) ReorderScenes(g *game.Game, periodID, eventID string, fromIndex, toIndex int) *Result {
	event := g.FindEvent(periodID, eventID)
	if event == nil {
		return nil
	}
	previous := sceneIDs(event.Scenes)
	next, ok := movedOrder(previous, fromIndex, toIndex)
	if !ok {
		return nil
	}

	act := action.ReorderScenes{
		Timestamp:     e.now().UTC(),
		PeriodID:      periodID,
		EventID:       eventID,
		PreviousOrder: previous,
		NewOrder:      next,
	}
	return &Result{Game: e.Apply(g, act), Action: act}
}

func periodIDs(periods []game.Period) []string {
	ids := make([]string, len(periods))
	for i := range periods {
		ids[i] = periods[i].ID
	}
	return ids
}

func eventIDs(events []game.Event) []string {
	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	return ids
}

func sceneIDs(scenes []game.Scene) []string {
	ids := make([]string, len(scenes))
	for i := range scenes {
		ids[i] = scenes[i].ID
	}
	return ids
}

// movedOrder returns the id sequence after moving fromIndex to toIndex.
// The second return is false for no-op or out-of-range moves.
func movedOrder(order []string, fromIndex, toIndex int) ([]string, bool) {
	if fromIndex == toIndex {
		return nil, false
	}
	if fromIndex < 0 || fromIndex >= len(order) || toIndex < 0 || toIndex >= len(order) {
		return nil, false
	}
	next := make([]string, 0, len(order))
	next = append(next, order[:fromIndex]...)
	next = append(next, order[fromIndex+1:]...)
	moved := order[fromIndex]
	next = append(next[:toIndex], append([]string{moved}, next[toIndex:]...)...)
	return next, true
}
