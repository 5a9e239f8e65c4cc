package game

// Partial update records for the edit operations. A nil field is absent
// from the update and left untouched in both apply and reverse
// directions; typed fields also prevent an edit from introducing keys
// the entity does not have.

// PeriodUpdate is a partial update for a period.
type PeriodUpdate struct {
	Name        *string `json:"name,omitempty"`
	Tone        *Tone   `json:"tone,omitempty"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// IsZero reports whether no fields are set.
func (u PeriodUpdate) IsZero() bool {
	return u.Name == nil && u.Tone == nil && u.Description == nil && u.Notes == nil
}

// EventUpdate is a partial update for an event.
type EventUpdate struct {
	Name        *string `json:"name,omitempty"`
	Tone        *Tone   `json:"tone,omitempty"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// IsZero reports whether no fields are set.
func (u EventUpdate) IsZero() bool {
	return u.Name == nil && u.Tone == nil && u.Description == nil && u.Notes == nil
}

// SceneUpdate is a partial update for a scene.
type SceneUpdate struct {
	Name        *string `json:"name,omitempty"`
	Tone        *Tone   `json:"tone,omitempty"`
	Description *string `json:"description,omitempty"`
	Question    *string `json:"question,omitempty"`
	Answer      *string `json:"answer,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// IsZero reports whether no fields are set.
func (u SceneUpdate) IsZero() bool {
	return u.Name == nil && u.Tone == nil && u.Description == nil &&
		u.Question == nil && u.Answer == nil && u.Notes == nil
}

// LegacyUpdate is a partial update for a legacy.
type LegacyUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AnchorUpdate carries the editable fields of an anchor. Anchor edits
// always rewrite both fields.
type AnchorUpdate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MetadataUpdate is a partial update for game-level metadata. Each field
// is independently diffed only when present.
type MetadataUpdate struct {
	Name              *string     `json:"name,omitempty"`
	Focus             *Focus      `json:"focus,omitempty"`
	Focuses           *[]Focus    `json:"focuses,omitempty"`
	CurrentFocusIndex *int        `json:"currentFocusIndex,omitempty"`
	Players           *[]Player   `json:"players,omitempty"`
	ActivePlayerIndex *int        `json:"activePlayerIndex,omitempty"`
	BigPicture        *BigPicture `json:"bigPicture,omitempty"`
	Palette           *Palette    `json:"palette,omitempty"`
	Legacies          *[]Legacy   `json:"legacies,omitempty"`
}

// ApplyTo merges the set fields of the update into the period.
func (u PeriodUpdate) ApplyTo(p *Period) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Tone != nil {
		p.Tone = *u.Tone
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
}

// ApplyTo merges the set fields of the update into the event.
func (u EventUpdate) ApplyTo(e *Event) {
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Tone != nil {
		e.Tone = *u.Tone
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
}

// ApplyTo merges the set fields of the update into the scene.
func (u SceneUpdate) ApplyTo(s *Scene) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Tone != nil {
		s.Tone = *u.Tone
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Question != nil {
		s.Question = *u.Question
	}
	if u.Answer != nil {
		s.Answer = *u.Answer
	}
	if u.Notes != nil {
		s.Notes = *u.Notes
	}
}

// ApplyTo merges the set fields of the update into the legacy.
func (u LegacyUpdate) ApplyTo(l *Legacy) {
	if u.Name != nil {
		l.Name = *u.Name
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
}

// ApplyTo merges the set fields of the update into the game.
func (u MetadataUpdate) ApplyTo(g *Game) {
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Focus != nil {
		f := *u.Focus
		g.Focus = &f
	}
	if u.Focuses != nil {
		g.Focuses = CloneFocuses(*u.Focuses)
	}
	if u.CurrentFocusIndex != nil {
		g.CurrentFocusIndex = *u.CurrentFocusIndex
	}
	if u.Players != nil {
		g.Players = ClonePlayers(*u.Players)
	}
	if u.ActivePlayerIndex != nil {
		g.ActivePlayerIndex = *u.ActivePlayerIndex
	}
	if u.BigPicture != nil {
		bp := *u.BigPicture
		g.BigPicture = &bp
	}
	if u.Palette != nil {
		g.Palette = &Palette{
			Yes: append([]string(nil), u.Palette.Yes...),
			No:  append([]string(nil), u.Palette.No...),
		}
	}
	if u.Legacies != nil {
		g.Legacies = CloneLegacies(*u.Legacies)
	}
}

// DiffPeriod captures the previous values of the fields the update sets.
func DiffPeriod(p Period, update PeriodUpdate) PeriodUpdate {
	var prev PeriodUpdate
	if update.Name != nil {
		v := p.Name
		prev.Name = &v
	}
	if update.Tone != nil {
		v := p.Tone
		prev.Tone = &v
	}
	if update.Description != nil {
		v := p.Description
		prev.Description = &v
	}
	if update.Notes != nil {
		v := p.Notes
		prev.Notes = &v
	}
	return prev
}

// DiffEvent captures the previous values of the fields the update sets.
func DiffEvent(e Event, update EventUpdate) EventUpdate {
	var prev EventUpdate
	if update.Name != nil {
		v := e.Name
		prev.Name = &v
	}
	if update.Tone != nil {
		v := e.Tone
		prev.Tone = &v
	}
	if update.Description != nil {
		v := e.Description
		prev.Description = &v
	}
	if update.Notes != nil {
		v := e.Notes
		prev.Notes = &v
	}
	return prev
}

// DiffScene captures the previous values of the fields the update sets.
func DiffScene(s Scene, update SceneUpdate) SceneUpdate {
	var prev SceneUpdate
	if update.Name != nil {
		v := s.Name
		prev.Name = &v
	}
	if update.Tone != nil {
		v := s.Tone
		prev.Tone = &v
	}
	if update.Description != nil {
		v := s.Description
		prev.Description = &v
	}
	if update.Question != nil {
		v := s.Question
		prev.Question = &v
	}
	if update.Answer != nil {
		v := s.Answer
		prev.Answer = &v
	}
	if update.Notes != nil {
		v := s.Notes
		prev.Notes = &v
	}
	return prev
}

// DiffLegacy captures the previous values of the fields the update sets.
func DiffLegacy(l Legacy, update LegacyUpdate) LegacyUpdate {
	var prev LegacyUpdate
	if update.Name != nil {
		v := l.Name
		prev.Name = &v
	}
	if update.Description != nil {
		v := l.Description
		prev.Description = &v
	}
	return prev
}

// DiffMetadata captures the previous values of the fields the update sets.
func DiffMetadata(g *Game, update MetadataUpdate) MetadataUpdate {
	var prev MetadataUpdate
	if update.Name != nil {
		v := g.Name
		prev.Name = &v
	}
	if update.Focus != nil && g.Focus != nil {
		f := *g.Focus
		prev.Focus = &f
	}
	if update.Focuses != nil {
		focuses := CloneFocuses(g.Focuses)
		prev.Focuses = &focuses
	}
	if update.CurrentFocusIndex != nil {
		v := g.CurrentFocusIndex
		prev.CurrentFocusIndex = &v
	}
	if update.Players != nil {
		players := ClonePlayers(g.Players)
		prev.Players = &players
	}
	if update.ActivePlayerIndex != nil {
		v := g.ActivePlayerIndex
		prev.ActivePlayerIndex = &v
	}
	if update.BigPicture != nil && g.BigPicture != nil {
		bp := *g.BigPicture
		prev.BigPicture = &bp
	}
	if update.Palette != nil && g.Palette != nil {
		prev.Palette = &Palette{
			Yes: append([]string(nil), g.Palette.Yes...),
			No:  append([]string(nil), g.Palette.No...),
		}
	}
	if update.Legacies != nil {
		legacies := CloneLegacies(g.Legacies)
		prev.Legacies = &legacies
	}
	return prev
}
