package export

import (
	"strings"
	"testing"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
)

func markdownFixture(t *testing.T) *game.Game {
	t.Helper()

	clock := fixedClock(time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC))
	g, err := game.NewGame("Rise and Fall", clock, nil)
	if err != nil {
		t.Fatalf("NewGame() error = %v", err)
	}
	g.BigPicture = &game.BigPicture{
		Premise:      "A city-state outlives its gods",
		BookendStart: "The first harvest",
		BookendEnd:   "The last lighthouse goes dark",
	}
	g.Palette = &game.Palette{Yes: []string{"Strange weather"}, No: []string{"Time travel"}}

	focus, err := game.NewFocus("The Succession", nil)
	if err != nil {
		t.Fatalf("NewFocus() error = %v", err)
	}
	g.Focuses = append(g.Focuses, focus)
	g.CurrentFocusIndex = 0

	legacy, err := game.NewLegacy("The Silver Order", nil)
	if err != nil {
		t.Fatalf("NewLegacy() error = %v", err)
	}
	g.Legacies = append(g.Legacies, legacy)

	period, err := game.NewPeriod("Age of *Expansion*", game.ToneLight, clock, nil)
	if err != nil {
		t.Fatalf("NewPeriod() error = %v", err)
	}
	event, err := game.NewEvent("The Border Wars", game.ToneDark, clock, nil)
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	scene, err := game.NewScene("Parley at the Ford", game.ToneLight, clock, nil)
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}
	scene.Question = "Who blinks first?"
	event.Scenes = append(event.Scenes, scene)
	period.Events = append(period.Events, event)
	g.Periods = append(g.Periods, period)

	return g
}

func TestToMarkdownSections(t *testing.T) {
	g := markdownFixture(t)
	got := ToMarkdown(g, fixedClock(time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC)))

	wantLines := []string{
		"# Rise and Fall",
		"## Big Picture",
		"**Premise:** A city-state outlives its gods",
		"**Current Focus:** The Succession",
		"## Legacies",
		"- **The Silver Order**",
		"## Palette",
		"**Yes (Allowed):**",
		"**No (Banned):**",
		"## Timeline",
		"### ○ Age of \\*Expansion\\*",
		"- **Event: The Border Wars** [● Dark]",
		"  - **Scene: Parley at the Ford** [○ Light]",
		"    - Question: Who blinks first?",
		"*Exported from Chronicle on 2025-04-05*",
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("ToMarkdown() missing %q\n%s", want, got)
		}
	}
}

func TestToMarkdownEscapesSpecialCharacters(t *testing.T) {
	g := markdownFixture(t)
	g.Name = "Notes_on #History `v2`"

	got := ToMarkdown(g, nil)
	want := "# Notes\\_on \\#History \\`v2\\`"
	if !strings.Contains(got, want) {
		t.Errorf("ToMarkdown() did not escape title, got:\n%s", strings.SplitN(got, "\n", 2)[0])
	}
}

func TestToMarkdownMinimalDocument(t *testing.T) {
	g, err := game.NewGame("Bare", nil, nil)
	if err != nil {
		t.Fatalf("NewGame() error = %v", err)
	}

	got := ToMarkdown(g, nil)
	if !strings.HasPrefix(got, "# Bare\n") {
		t.Errorf("ToMarkdown() prefix = %q", strings.SplitN(got, "\n", 2)[0])
	}
	for _, section := range []string{"## Big Picture", "## Legacies", "## Timeline", "## Palette"} {
		if strings.Contains(got, section) {
			t.Errorf("ToMarkdown() has %q for an empty document", section)
		}
	}
	if !strings.Contains(got, "---") {
		t.Error("ToMarkdown() is missing the footer rule")
	}
}
