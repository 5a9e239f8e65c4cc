package snapshot

import (
	"fmt"
	"strings"

	"github.com/mosaic-games/chronicle/internal/game"
)

// Change phrases are concatenated up to this many before eliding.
const maxSummaryPhrases = 3

// Periods added in one save are named in the phrase when at most this
// many were added.
const maxNamedPeriods = 3

// ChangeSummary produces a short human-readable description of what
// changed between two document versions. A nil old document yields
// "Initial version"; if no specific change is detected (for example
// only free-text fields moved) it falls back to "Various edits".
func ChangeSummary(oldGame, newGame *game.Game) string {
	if oldGame == nil {
		return "Initial version"
	}

	var phrases []string

	if oldGame.Name != newGame.Name {
		phrases = append(phrases, fmt.Sprintf("Renamed game to %q", newGame.Name))
	}

	oldFocus := oldGame.CurrentFocus()
	newFocus := newGame.CurrentFocus()
	switch {
	case newFocus != nil && (oldFocus == nil || oldFocus.Name != newFocus.Name):
		phrases = append(phrases, "Focus: "+newFocus.Name)
	case newFocus == nil && oldFocus != nil:
		phrases = append(phrases, "Focus cleared")
	}

	oldPeriods := make(map[string]*game.Period, len(oldGame.Periods))
	for i := range oldGame.Periods {
		oldPeriods[oldGame.Periods[i].ID] = &oldGame.Periods[i]
	}
	newPeriods := make(map[string]*game.Period, len(newGame.Periods))
	for i := range newGame.Periods {
		newPeriods[newGame.Periods[i].ID] = &newGame.Periods[i]
	}

	var addedNames []string
	for i := range newGame.Periods {
		if _, ok := oldPeriods[newGame.Periods[i].ID]; !ok {
			addedNames = append(addedNames, newGame.Periods[i].Name)
		}
	}
	removedPeriods := 0
	for pid := range oldPeriods {
		if _, ok := newPeriods[pid]; !ok {
			removedPeriods++
		}
	}

	if len(addedNames) > 0 {
		phrase := fmt.Sprintf("Added %d %s", len(addedNames), pluralize("period", len(addedNames)))
		if len(addedNames) <= maxNamedPeriods {
			phrase += " (" + strings.Join(addedNames, ", ") + ")"
		}
		phrases = append(phrases, phrase)
	}
	if removedPeriods > 0 {
		phrases = append(phrases, fmt.Sprintf("Removed %d %s", removedPeriods, pluralize("period", removedPeriods)))
	}

	// Aggregate event and scene churn across periods present in both
	// versions, using id-keyed lookups rather than nested scans.
	addedEvents, removedEvents := 0, 0
	addedScenes, removedScenes := 0, 0
	for pid, newPeriod := range newPeriods {
		oldPeriod, ok := oldPeriods[pid]
		if !ok {
			continue
		}
		oldEvents := make(map[string]*game.Event, len(oldPeriod.Events))
		for i := range oldPeriod.Events {
			oldEvents[oldPeriod.Events[i].ID] = &oldPeriod.Events[i]
		}
		newEvents := make(map[string]*game.Event, len(newPeriod.Events))
		for i := range newPeriod.Events {
			newEvents[newPeriod.Events[i].ID] = &newPeriod.Events[i]
		}
		for eid := range newEvents {
			if _, ok := oldEvents[eid]; !ok {
				addedEvents++
			}
		}
		for eid := range oldEvents {
			if _, ok := newEvents[eid]; !ok {
				removedEvents++
			}
		}
		for eid, newEvent := range newEvents {
			oldEvent, ok := oldEvents[eid]
			if !ok {
				continue
			}
			oldScenes := make(map[string]struct{}, len(oldEvent.Scenes))
			for i := range oldEvent.Scenes {
				oldScenes[oldEvent.Scenes[i].ID] = struct{}{}
			}
			newScenes := make(map[string]struct{}, len(newEvent.Scenes))
			for i := range newEvent.Scenes {
				newScenes[newEvent.Scenes[i].ID] = struct{}{}
			}
			for sid := range newScenes {
				if _, ok := oldScenes[sid]; !ok {
					addedScenes++
				}
			}
			for sid := range oldScenes {
				if _, ok := newScenes[sid]; !ok {
					removedScenes++
				}
			}
		}
	}

	if addedEvents > 0 {
		phrases = append(phrases, fmt.Sprintf("Added %d %s", addedEvents, pluralize("event", addedEvents)))
	}
	if removedEvents > 0 {
		phrases = append(phrases, fmt.Sprintf("Removed %d %s", removedEvents, pluralize("event", removedEvents)))
	}
	if addedScenes > 0 {
		phrases = append(phrases, fmt.Sprintf("Added %d %s", addedScenes, pluralize("scene", addedScenes)))
	}
	if removedScenes > 0 {
		phrases = append(phrases, fmt.Sprintf("Removed %d %s", removedScenes, pluralize("scene", removedScenes)))
	}

	if len(phrases) == 0 {
		return "Various edits"
	}
	if len(phrases) > maxSummaryPhrases {
		return strings.Join(phrases[:maxSummaryPhrases], "; ") + "..."
	}
	return strings.Join(phrases, "; ")
}

func pluralize(noun string, count int) string {
	if count == 1 {
		return noun
	}
	return noun + "s"
}
