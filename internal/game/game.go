// Package game defines the chronicle document model: a Game rooted tree of
// Periods, Events and Scenes, plus the auxiliary collections (legacies,
// focuses, players, anchors) that span the whole timeline.
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/mosaic-games/chronicle/internal/apperrors"
	"github.com/mosaic-games/chronicle/internal/id"
)

// SchemaVersion is the current schema version for game documents.
// v2 added anchor characters and anchor placements.
const SchemaVersion = 2

// Tone is the qualitative light/dark tag on periods, events and scenes.
type Tone string

const (
	// ToneLight marks a positive or hopeful entry.
	ToneLight Tone = "light"
	// ToneDark marks a negative or tragic entry.
	ToneDark Tone = "dark"
)

// IsValid reports whether the tone is one of the known values.
func (t Tone) IsValid() bool {
	return t == ToneLight || t == ToneDark
}

// ErrEmptyName indicates a missing game name.
var ErrEmptyName = apperrors.New(apperrors.CodeGameNameEmpty, "game name is required")

// Focus is a theme the current player wants to explore.
type Focus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Player is a participant in the game.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Legacy is a recurring element that persists through history.
type Legacy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Anchor is a recurring character independent of the timeline tree.
// Anchors carry their own lifecycle timestamps and no tone.
type Anchor struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AnchorPlacement records where an anchor was last used. Placements are
// immutable once created; re-placing an anchor replaces its placement.
type AnchorPlacement struct {
	ID          string    `json:"id"`
	AnchorID    string    `json:"anchorId"`
	PeriodID    string    `json:"periodId"`
	RoundNumber int       `json:"roundNumber,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Scene is a specific moment within an event. Leaf of the timeline tree.
type Scene struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Tone        Tone      `json:"tone"`
	Description string    `json:"description,omitempty"`
	Question    string    `json:"question,omitempty"`
	Answer      string    `json:"answer,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Event is a significant occurrence within a period.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Tone        Tone      `json:"tone"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Scenes      []Scene   `json:"scenes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Period is a large span of time. Periods form the chronological spine of
// the game; their order is meaningful.
type Period struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Tone        Tone      `json:"tone"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Events      []Event   `json:"events"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BigPicture is the overarching premise of the history.
type BigPicture struct {
	Premise      string `json:"premise"`
	BookendStart string `json:"bookendStart,omitempty"`
	BookendEnd   string `json:"bookendEnd,omitempty"`
}

// Palette lists what is explicitly allowed and banned in the history.
type Palette struct {
	Yes []string `json:"yes"`
	No  []string `json:"no"`
}

// Game is the root document.
type Game struct {
	ID            string      `json:"id"`
	SchemaVersion int         `json:"schemaVersion"`
	Name          string      `json:"name"`
	BigPicture    *BigPicture `json:"bigPicture,omitempty"`
	Palette       *Palette    `json:"palette,omitempty"`
	// Focuses lists all focuses declared for the game.
	Focuses []Focus `json:"focuses"`
	// CurrentFocusIndex points into Focuses; -1 means none.
	CurrentFocusIndex int `json:"currentFocusIndex"`
	// Focus is the deprecated single-focus field, still read for v1
	// documents and folded into Focuses on migration.
	Focus             *Focus   `json:"focus,omitempty"`
	Players           []Player `json:"players"`
	ActivePlayerIndex int      `json:"activePlayerIndex"`
	Legacies          []Legacy `json:"legacies"`
	Periods           []Period `json:"periods"`
	Anchors           []Anchor `json:"anchors"`
	// CurrentAnchorID is the active anchor; empty means none.
	CurrentAnchorID  string            `json:"currentAnchorId,omitempty"`
	AnchorPlacements []AnchorPlacement `json:"anchorPlacements"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// Metadata is the id/name/timestamp projection of a game, used when
// listing documents without loading their full trees.
type Metadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewGame creates an empty game with a generated id and timestamps.
// The name is trimmed and must not be blank.
func NewGame(name string, now func() time.Time, idGenerator func() (string, error)) (*Game, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	gameID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate game id: %w", err)
	}

	createdAt := now().UTC()
	return &Game{
		ID:                gameID,
		SchemaVersion:     SchemaVersion,
		Name:              name,
		Focuses:           []Focus{},
		CurrentFocusIndex: -1,
		Players:           []Player{},
		ActivePlayerIndex: -1,
		Legacies:          []Legacy{},
		Periods:           []Period{},
		Anchors:           []Anchor{},
		AnchorPlacements:  []AnchorPlacement{},
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}, nil
}

// NewPeriod creates a period with no events.
func NewPeriod(name string, tone Tone, now func() time.Time, idGenerator func() (string, error)) (Period, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if !tone.IsValid() {
		tone = ToneLight
	}
	periodID, err := idGenerator()
	if err != nil {
		return Period{}, fmt.Errorf("generate period id: %w", err)
	}
	createdAt := now().UTC()
	return Period{
		ID:        periodID,
		Name:      name,
		Tone:      tone,
		Events:    []Event{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NewEvent creates an event with no scenes.
func NewEvent(name string, tone Tone, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if !tone.IsValid() {
		tone = ToneLight
	}
	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}
	createdAt := now().UTC()
	return Event{
		ID:        eventID,
		Name:      name,
		Tone:      tone,
		Scenes:    []Scene{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NewScene creates a scene.
func NewScene(name string, tone Tone, now func() time.Time, idGenerator func() (string, error)) (Scene, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if !tone.IsValid() {
		tone = ToneLight
	}
	sceneID, err := idGenerator()
	if err != nil {
		return Scene{}, fmt.Errorf("generate scene id: %w", err)
	}
	createdAt := now().UTC()
	return Scene{
		ID:        sceneID,
		Name:      name,
		Tone:      tone,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NewLegacy creates a legacy.
func NewLegacy(name string, idGenerator func() (string, error)) (Legacy, error) {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	legacyID, err := idGenerator()
	if err != nil {
		return Legacy{}, fmt.Errorf("generate legacy id: %w", err)
	}
	return Legacy{ID: legacyID, Name: name}, nil
}

// NewFocus creates a focus.
func NewFocus(name string, idGenerator func() (string, error)) (Focus, error) {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	focusID, err := idGenerator()
	if err != nil {
		return Focus{}, fmt.Errorf("generate focus id: %w", err)
	}
	return Focus{ID: focusID, Name: name}, nil
}

// NewPlayer creates a player.
func NewPlayer(name string, idGenerator func() (string, error)) (Player, error) {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	playerID, err := idGenerator()
	if err != nil {
		return Player{}, fmt.Errorf("generate player id: %w", err)
	}
	return Player{ID: playerID, Name: name}, nil
}

// NewAnchor creates an anchor character.
func NewAnchor(name, description string, now func() time.Time, idGenerator func() (string, error)) (Anchor, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	anchorID, err := idGenerator()
	if err != nil {
		return Anchor{}, fmt.Errorf("generate anchor id: %w", err)
	}
	createdAt := now().UTC()
	return Anchor{
		ID:          anchorID,
		Name:        name,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// PlacementOptions carries the optional fields of an anchor placement.
type PlacementOptions struct {
	RoundNumber int
	Notes       string
}

// NewAnchorPlacement creates a placement joining an anchor to a period.
// Placements carry only a creation timestamp; they are never updated.
func NewAnchorPlacement(anchorID, periodID string, opts PlacementOptions, now func() time.Time, idGenerator func() (string, error)) (AnchorPlacement, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	placementID, err := idGenerator()
	if err != nil {
		return AnchorPlacement{}, fmt.Errorf("generate placement id: %w", err)
	}
	return AnchorPlacement{
		ID:          placementID,
		AnchorID:    anchorID,
		PeriodID:    periodID,
		RoundNumber: opts.RoundNumber,
		Notes:       opts.Notes,
		CreatedAt:   now().UTC(),
	}, nil
}

// GetMetadata projects the listing metadata out of a game.
func GetMetadata(g *Game) Metadata {
	return Metadata{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// FindPeriod returns the period with the given id, or nil.
func (g *Game) FindPeriod(periodID string) *Period {
	for i := range g.Periods {
		if g.Periods[i].ID == periodID {
			return &g.Periods[i]
		}
	}
	return nil
}

// PeriodIndex returns the index of the period with the given id, or -1.
func (g *Game) PeriodIndex(periodID string) int {
	for i := range g.Periods {
		if g.Periods[i].ID == periodID {
			return i
		}
	}
	return -1
}

// FindEvent returns the event under the given period, or nil.
func (g *Game) FindEvent(periodID, eventID string) *Event {
	period := g.FindPeriod(periodID)
	if period == nil {
		return nil
	}
	for i := range period.Events {
		if period.Events[i].ID == eventID {
			return &period.Events[i]
		}
	}
	return nil
}

// FindScene returns the scene under the given period and event, or nil.
func (g *Game) FindScene(periodID, eventID, sceneID string) *Scene {
	event := g.FindEvent(periodID, eventID)
	if event == nil {
		return nil
	}
	for i := range event.Scenes {
		if event.Scenes[i].ID == sceneID {
			return &event.Scenes[i]
		}
	}
	return nil
}

// FindAnchor returns the anchor with the given id, or nil.
func (g *Game) FindAnchor(anchorID string) *Anchor {
	for i := range g.Anchors {
		if g.Anchors[i].ID == anchorID {
			return &g.Anchors[i]
		}
	}
	return nil
}

// CurrentFocus resolves the active focus, preferring the focuses list and
// falling back to the deprecated single focus field. Returns nil if none.
func (g *Game) CurrentFocus() *Focus {
	if g.CurrentFocusIndex >= 0 && g.CurrentFocusIndex < len(g.Focuses) {
		return &g.Focuses[g.CurrentFocusIndex]
	}
	return g.Focus
}
