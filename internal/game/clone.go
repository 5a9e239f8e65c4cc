package game

// Structural deep copies for the document tree. A JSON round-trip would
// drop nil-vs-empty distinctions on optional pointer fields, so the tree
// is copied field by field.

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	if g.BigPicture != nil {
		bp := *g.BigPicture
		out.BigPicture = &bp
	}
	if g.Palette != nil {
		out.Palette = &Palette{
			Yes: append([]string(nil), g.Palette.Yes...),
			No:  append([]string(nil), g.Palette.No...),
		}
	}
	if g.Focus != nil {
		f := *g.Focus
		out.Focus = &f
	}
	out.Focuses = CloneFocuses(g.Focuses)
	out.Players = ClonePlayers(g.Players)
	out.Legacies = CloneLegacies(g.Legacies)
	out.Periods = ClonePeriods(g.Periods)
	out.Anchors = CloneAnchors(g.Anchors)
	out.AnchorPlacements = ClonePlacements(g.AnchorPlacements)
	return &out
}

// ClonePeriods deep-copies a period list.
func ClonePeriods(periods []Period) []Period {
	if periods == nil {
		return nil
	}
	out := make([]Period, len(periods))
	for i := range periods {
		out[i] = ClonePeriod(periods[i])
	}
	return out
}

// ClonePeriod deep-copies a period and its subtree.
func ClonePeriod(p Period) Period {
	out := p
	if p.Events != nil {
		out.Events = make([]Event, len(p.Events))
		for i := range p.Events {
			out.Events[i] = CloneEvent(p.Events[i])
		}
	}
	return out
}

// CloneEvent deep-copies an event and its scenes.
func CloneEvent(e Event) Event {
	out := e
	if e.Scenes != nil {
		out.Scenes = append([]Scene(nil), e.Scenes...)
	}
	return out
}

// CloneFocuses copies a focus list.
func CloneFocuses(focuses []Focus) []Focus {
	if focuses == nil {
		return nil
	}
	return append([]Focus(nil), focuses...)
}

// ClonePlayers copies a player list.
func ClonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	return append([]Player(nil), players...)
}

// CloneLegacies copies a legacy list.
func CloneLegacies(legacies []Legacy) []Legacy {
	if legacies == nil {
		return nil
	}
	out := make([]Legacy, len(legacies))
	copy(out, legacies)
	return out
}

// CloneAnchors copies an anchor list.
func CloneAnchors(anchors []Anchor) []Anchor {
	if anchors == nil {
		return nil
	}
	return append([]Anchor(nil), anchors...)
}

// ClonePlacements copies a placement list.
func ClonePlacements(placements []AnchorPlacement) []AnchorPlacement {
	if placements == nil {
		return nil
	}
	return append([]AnchorPlacement(nil), placements...)
}
