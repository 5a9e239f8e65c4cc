// Package action defines the closed algebra of reversible mutations over
// a game document. Every action is a self-contained description of one
// edit: it carries a timestamp plus exactly the data needed to apply the
// mutation and to invert it without looking anything else up.
package action

import (
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
)

// Kind identifies the kind of a game action.
type Kind string

// Timeline tree actions.
const (
	KindCreatePeriod Kind = "CREATE_PERIOD"
	KindDeletePeriod Kind = "DELETE_PERIOD"
	KindEditPeriod   Kind = "EDIT_PERIOD"
	KindCreateEvent  Kind = "CREATE_EVENT"
	KindDeleteEvent  Kind = "DELETE_EVENT"
	KindEditEvent    Kind = "EDIT_EVENT"
	KindCreateScene  Kind = "CREATE_SCENE"
	KindDeleteScene  Kind = "DELETE_SCENE"
	KindEditScene    Kind = "EDIT_SCENE"
)

// Game-level actions.
const (
	KindEditGameMetadata Kind = "EDIT_GAME_METADATA"
	KindAddLegacy        Kind = "ADD_LEGACY"
	KindRemoveLegacy     Kind = "REMOVE_LEGACY"
	KindEditLegacy       Kind = "EDIT_LEGACY"
)

// Reorder actions.
const (
	KindReorderPeriods Kind = "REORDER_PERIODS"
	KindReorderEvents  Kind = "REORDER_EVENTS"
	KindReorderScenes  Kind = "REORDER_SCENES"
)

// Anchor actions.
const (
	KindCreateAnchor       Kind = "CREATE_ANCHOR"
	KindDeleteAnchor       Kind = "DELETE_ANCHOR"
	KindEditAnchor         Kind = "EDIT_ANCHOR"
	KindSetCurrentAnchor   Kind = "SET_CURRENT_ANCHOR"
	KindClearCurrentAnchor Kind = "CLEAR_CURRENT_ANCHOR"
)

// IsValid reports whether the kind is one of the known action kinds.
func (k Kind) IsValid() bool {
	_, ok := displayNames[k]
	return ok
}

var displayNames = map[Kind]string{
	KindCreatePeriod:       "Create Period",
	KindDeletePeriod:       "Delete Period",
	KindEditPeriod:         "Edit Period",
	KindCreateEvent:        "Create Event",
	KindDeleteEvent:        "Delete Event",
	KindEditEvent:          "Edit Event",
	KindCreateScene:        "Create Scene",
	KindDeleteScene:        "Delete Scene",
	KindEditScene:          "Edit Scene",
	KindEditGameMetadata:   "Edit Game Settings",
	KindAddLegacy:          "Add Legacy",
	KindRemoveLegacy:       "Remove Legacy",
	KindEditLegacy:         "Edit Legacy",
	KindReorderPeriods:     "Reorder Periods",
	KindReorderEvents:      "Reorder Events",
	KindReorderScenes:      "Reorder Scenes",
	KindCreateAnchor:       "Create Anchor",
	KindDeleteAnchor:       "Delete Anchor",
	KindEditAnchor:         "Edit Anchor",
	KindSetCurrentAnchor:   "Set Current Anchor",
	KindClearCurrentAnchor: "Clear Current Anchor",
}

// DisplayName returns the human-readable name of the kind, or the raw
// kind string when unrecognized.
func (k Kind) DisplayName() string {
	if name, ok := displayNames[k]; ok {
		return name
	}
	return string(k)
}

// Action is one reversible mutation of a game document.
type Action interface {
	// Kind identifies the mutation.
	Kind() Kind
	// When returns the moment the action was constructed.
	When() time.Time
}

// CreatePeriod inserts a period at a caller-chosen index.
type CreatePeriod struct {
	Timestamp time.Time   `json:"timestamp"`
	PeriodID  string      `json:"periodId"`
	Index     int         `json:"index"`
	Period    game.Period `json:"period"`
}

// DeletePeriod removes a period, capturing the full subtree and its
// original index so the inverse can restore it exactly.
type DeletePeriod struct {
	Timestamp time.Time   `json:"timestamp"`
	PeriodID  string      `json:"periodId"`
	Index     int         `json:"index"`
	Period    game.Period `json:"period"`
}

// EditPeriod applies a partial update, carrying both directions.
type EditPeriod struct {
	Timestamp time.Time         `json:"timestamp"`
	PeriodID  string            `json:"periodId"`
	Previous  game.PeriodUpdate `json:"previousValues"`
	New       game.PeriodUpdate `json:"newValues"`
}

// CreateEvent inserts an event into a period.
type CreateEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	PeriodID  string     `json:"periodId"`
	EventID   string     `json:"eventId"`
	Index     int        `json:"index"`
	Event     game.Event `json:"event"`
}

// DeleteEvent removes an event, capturing it and its scenes.
type DeleteEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	PeriodID  string     `json:"periodId"`
	EventID   string     `json:"eventId"`
	Index     int        `json:"index"`
	Event     game.Event `json:"event"`
}

// EditEvent applies a partial update to an event.
type EditEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	PeriodID  string           `json:"periodId"`
	EventID   string           `json:"eventId"`
	Previous  game.EventUpdate `json:"previousValues"`
	New       game.EventUpdate `json:"newValues"`
}

// CreateScene inserts a scene into an event.
type CreateScene struct {
	Timestamp time.Time  `json:"timestamp"`
	PeriodID  string     `json:"periodId"`
	EventID   string     `json:"eventId"`
	SceneID   string     `json:"sceneId"`
	Index     int        `json:"index"`
	Scene     game.Scene `json:"scene"`
}

// DeleteScene removes a scene.
type DeleteScene struct {
	Timestamp time.Time  `json:"timestamp"`
	PeriodID  string     `json:"periodId"`
	EventID   string     `json:"eventId"`
	SceneID   string     `json:"sceneId"`
	Index     int        `json:"index"`
	Scene     game.Scene `json:"scene"`
}

// EditScene applies a partial update to a scene.
type EditScene struct {
	Timestamp time.Time        `json:"timestamp"`
	PeriodID  string           `json:"periodId"`
	EventID   string           `json:"eventId"`
	SceneID   string           `json:"sceneId"`
	Previous  game.SceneUpdate `json:"previousValues"`
	New       game.SceneUpdate `json:"newValues"`
}

// EditGameMetadata updates game-level metadata fields.
type EditGameMetadata struct {
	Timestamp time.Time           `json:"timestamp"`
	Previous  game.MetadataUpdate `json:"previousValues"`
	New       game.MetadataUpdate `json:"newValues"`
}

// AddLegacy appends or inserts a legacy.
type AddLegacy struct {
	Timestamp time.Time   `json:"timestamp"`
	Legacy    game.Legacy `json:"legacy"`
	Index     int         `json:"index"`
}

// RemoveLegacy removes a legacy, capturing it and its index.
type RemoveLegacy struct {
	Timestamp time.Time   `json:"timestamp"`
	Legacy    game.Legacy `json:"legacy"`
	Index     int         `json:"index"`
}

// EditLegacy applies a partial update to a legacy.
type EditLegacy struct {
	Timestamp time.Time         `json:"timestamp"`
	LegacyID  string            `json:"legacyId"`
	Previous  game.LegacyUpdate `json:"previousValues"`
	New       game.LegacyUpdate `json:"newValues"`
}

// ReorderPeriods captures the full id sequence before and after a move,
// so the inverse is a plain restore of the previous order.
type ReorderPeriods struct {
	Timestamp     time.Time `json:"timestamp"`
	PreviousOrder []string  `json:"previousOrder"`
	NewOrder      []string  `json:"newOrder"`
}

// ReorderEvents reorders the events of one period.
type ReorderEvents struct {
	Timestamp     time.Time `json:"timestamp"`
	PeriodID      string    `json:"periodId"`
	PreviousOrder []string  `json:"previousOrder"`
	NewOrder      []string  `json:"newOrder"`
}

// ReorderScenes reorders the scenes of one event.
type ReorderScenes struct {
	Timestamp     time.Time `json:"timestamp"`
	PeriodID      string    `json:"periodId"`
	EventID       string    `json:"eventId"`
	PreviousOrder []string  `json:"previousOrder"`
	NewOrder      []string  `json:"newOrder"`
}

// CreateAnchor appends an anchor character.
type CreateAnchor struct {
	Timestamp time.Time   `json:"timestamp"`
	Anchor    game.Anchor `json:"anchor"`
	Index     int         `json:"index"`
}

// DeleteAnchor removes an anchor, capturing its placements and whether
// it was the current anchor so the inverse restores both.
type DeleteAnchor struct {
	Timestamp            time.Time              `json:"timestamp"`
	AnchorID             string                 `json:"anchorId"`
	Index                int                    `json:"index"`
	Anchor               game.Anchor            `json:"anchor"`
	AssociatedPlacements []game.AnchorPlacement `json:"associatedPlacements"`
	WasCurrentAnchor     bool                   `json:"wasCurrentAnchor"`
}

// EditAnchor rewrites an anchor's name and description.
type EditAnchor struct {
	Timestamp time.Time         `json:"timestamp"`
	AnchorID  string            `json:"anchorId"`
	Previous  game.AnchorUpdate `json:"previousValues"`
	New       game.AnchorUpdate `json:"newValues"`
}

// SetCurrentAnchor activates an anchor on a period. RemovedPlacements is
// always present, possibly empty: when the anchor was already placed on
// the period only the current-anchor pointer changes.
type SetCurrentAnchor struct {
	Timestamp         time.Time              `json:"timestamp"`
	AnchorID          string                 `json:"anchorId"`
	PeriodID          string                 `json:"periodId"`
	Placement         game.AnchorPlacement   `json:"placement"`
	PreviousAnchorID  string                 `json:"previousAnchorId,omitempty"`
	RemovedPlacements []game.AnchorPlacement `json:"removedPlacements"`
	WasAlreadyPlaced  bool                   `json:"wasAlreadyPlaced"`
}

// ClearCurrentAnchor deactivates the current anchor.
type ClearCurrentAnchor struct {
	Timestamp        time.Time `json:"timestamp"`
	PreviousAnchorID string    `json:"previousAnchorId"`
}

func (a CreatePeriod) Kind() Kind       { return KindCreatePeriod }
func (a CreatePeriod) When() time.Time  { return a.Timestamp }
func (a DeletePeriod) Kind() Kind       { return KindDeletePeriod }
func (a DeletePeriod) When() time.Time  { return a.Timestamp }
func (a EditPeriod) Kind() Kind         { return KindEditPeriod }
func (a EditPeriod) When() time.Time    { return a.Timestamp }
func (a CreateEvent) Kind() Kind        { return KindCreateEvent }
func (a CreateEvent) When() time.Time   { return a.Timestamp }
func (a DeleteEvent) Kind() Kind        { return KindDeleteEvent }
func (a DeleteEvent) When() time.Time   { return a.Timestamp }
func (a EditEvent) Kind() Kind          { return KindEditEvent }
func (a EditEvent) When() time.Time     { return a.Timestamp }
func (a CreateScene) Kind() Kind        { return KindCreateScene }
func (a CreateScene) When() time.Time   { return a.Timestamp }
func (a DeleteScene) Kind() Kind        { return KindDeleteScene }
func (a DeleteScene) When() time.Time   { return a.Timestamp }
func (a EditScene) Kind() Kind          { return KindEditScene }
func (a EditScene) When() time.Time     { return a.Timestamp }
func (a EditGameMetadata) Kind() Kind   { return KindEditGameMetadata }
func (a EditGameMetadata) When() time.Time { return a.Timestamp }
func (a AddLegacy) Kind() Kind          { return KindAddLegacy }
func (a AddLegacy) When() time.Time     { return a.Timestamp }
func (a RemoveLegacy) Kind() Kind       { return KindRemoveLegacy }
func (a RemoveLegacy) When() time.Time  { return a.Timestamp }
func (a EditLegacy) Kind() Kind         { return KindEditLegacy }
func (a EditLegacy) When() time.Time    { return a.Timestamp }
func (a ReorderPeriods) Kind() Kind     { return KindReorderPeriods }
func (a ReorderPeriods) When() time.Time { return a.Timestamp }
func (a ReorderEvents) Kind() Kind      { return KindReorderEvents }
func (a ReorderEvents) When() time.Time { return a.Timestamp }
func (a ReorderScenes) Kind() Kind      { return KindReorderScenes }
func (a ReorderScenes) When() time.Time { return a.Timestamp }
func (a CreateAnchor) Kind() Kind       { return KindCreateAnchor }
func (a CreateAnchor) When() time.Time  { return a.Timestamp }
func (a DeleteAnchor) Kind() Kind       { return KindDeleteAnchor }
func (a DeleteAnchor) When() time.Time  { return a.Timestamp }
func (a EditAnchor) Kind() Kind         { return KindEditAnchor }
func (a EditAnchor) When() time.Time    { return a.Timestamp }
func (a SetCurrentAnchor) Kind() Kind   { return KindSetCurrentAnchor }
func (a SetCurrentAnchor) When() time.Time { return a.Timestamp }
func (a ClearCurrentAnchor) Kind() Kind { return KindClearCurrentAnchor }
func (a ClearCurrentAnchor) When() time.Time { return a.Timestamp }

// Unknown preserves an action whose kind is not recognized, so persisted
// histories written by newer versions replay as no-ops instead of
// failing to decode.
type Unknown struct {
	Timestamp time.Time `json:"timestamp"`
	RawKind   Kind      `json:"type"`
}

// Kind returns the unrecognized kind string.
func (a Unknown) Kind() Kind { return a.RawKind }

// When returns the recorded timestamp.
func (a Unknown) When() time.Time { return a.Timestamp }
