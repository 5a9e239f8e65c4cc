package game

// Migrate upgrades a document loaded from storage or import to the
// current schema version. It mutates the game in place and returns it.
//
// v1 -> v2: anchors did not exist, and the game carried a single
// deprecated focus field instead of the focuses list.
func Migrate(g *Game) *Game {
	if g == nil {
		return nil
	}

	if g.Focuses == nil {
		g.Focuses = []Focus{}
		g.CurrentFocusIndex = -1
	}
	// Fold the deprecated single focus into the focuses list. The legacy
	// field is kept so older readers still resolve a focus.
	if g.Focus != nil && len(g.Focuses) == 0 {
		g.Focuses = []Focus{*g.Focus}
		g.CurrentFocusIndex = 0
	}
	if g.Players == nil {
		g.Players = []Player{}
		g.ActivePlayerIndex = -1
	}
	if g.Legacies == nil {
		g.Legacies = []Legacy{}
	}
	if g.Periods == nil {
		g.Periods = []Period{}
	}
	if g.Anchors == nil {
		g.Anchors = []Anchor{}
	}
	if g.AnchorPlacements == nil {
		g.AnchorPlacements = []AnchorPlacement{}
	}
	if g.SchemaVersion < SchemaVersion {
		g.SchemaVersion = SchemaVersion
	}
	return g
}
