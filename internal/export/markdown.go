package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
)

// ToMarkdown renders a game as a deterministic Markdown document:
// title, optional overview sections, then the timeline tree.
func ToMarkdown(g *game.Game, now func() time.Time) string {
	if g == nil {
		return ""
	}
	if now == nil {
		now = time.Now
	}

	var lines []string
	lines = append(lines, "# "+escapeMarkdown(g.Name), "")

	if g.BigPicture != nil {
		lines = append(lines, "## Big Picture", "")
		if g.BigPicture.Premise != "" {
			lines = append(lines, "**Premise:** "+escapeMarkdown(g.BigPicture.Premise))
		}
		if g.BigPicture.BookendStart != "" {
			lines = append(lines, "**Beginning:** "+escapeMarkdown(g.BigPicture.BookendStart))
		}
		if g.BigPicture.BookendEnd != "" {
			lines = append(lines, "**End:** "+escapeMarkdown(g.BigPicture.BookendEnd))
		}
		lines = append(lines, "")
	}

	if focus := g.CurrentFocus(); focus != nil {
		lines = append(lines, "**Current Focus:** "+escapeMarkdown(focus.Name))
		if focus.Description != "" {
			lines = append(lines, "> "+escapeMarkdown(focus.Description))
		}
		lines = append(lines, "")
	}
	if len(g.Focuses) > 1 {
		lines = append(lines, "## Focuses", "")
		for _, focus := range g.Focuses {
			lines = append(lines, "- "+escapeMarkdown(focus.Name))
		}
		lines = append(lines, "")
	}

	if len(g.Legacies) > 0 {
		lines = append(lines, "## Legacies", "")
		for _, legacy := range g.Legacies {
			lines = append(lines, "- **"+escapeMarkdown(legacy.Name)+"**")
			if legacy.Description != "" {
				lines = append(lines, "  - "+escapeMarkdown(legacy.Description))
			}
		}
		lines = append(lines, "")
	}

	if g.Palette != nil && (len(g.Palette.Yes) > 0 || len(g.Palette.No) > 0) {
		lines = append(lines, "## Palette", "")
		if len(g.Palette.Yes) > 0 {
			lines = append(lines, "**Yes (Allowed):**")
			for _, item := range g.Palette.Yes {
				lines = append(lines, "- "+escapeMarkdown(item))
			}
		}
		if len(g.Palette.No) > 0 {
			lines = append(lines, "", "**No (Banned):**")
			for _, item := range g.Palette.No {
				lines = append(lines, "- "+escapeMarkdown(item))
			}
		}
		lines = append(lines, "")
	}

	if len(g.Players) > 0 {
		lines = append(lines, "## Players", "")
		for i, player := range g.Players {
			marker := ""
			if i == g.ActivePlayerIndex {
				marker = " (active)"
			}
			lines = append(lines, "- "+escapeMarkdown(player.Name)+marker)
		}
		lines = append(lines, "")
	}

	if len(g.Anchors) > 0 {
		lines = append(lines, "## Anchors", "")
		for _, anchor := range g.Anchors {
			marker := ""
			if anchor.ID == g.CurrentAnchorID {
				marker = " (current)"
			}
			lines = append(lines, "- **"+escapeMarkdown(anchor.Name)+"**"+marker)
			if anchor.Description != "" {
				lines = append(lines, "  - "+escapeMarkdown(anchor.Description))
			}
			for _, placement := range g.AnchorPlacements {
				if placement.AnchorID != anchor.ID {
					continue
				}
				if period := g.FindPeriod(placement.PeriodID); period != nil {
					lines = append(lines, "  - Placed on: "+escapeMarkdown(period.Name))
				}
			}
		}
		lines = append(lines, "")
	}

	if len(g.Periods) > 0 {
		lines = append(lines, "## Timeline", "")
		for _, period := range g.Periods {
			lines = append(lines, formatPeriod(period)...)
		}
	}

	lines = append(lines, "---")
	lines = append(lines, fmt.Sprintf("*Exported from Chronicle on %s*", now().Format("2006-01-02")))

	return strings.Join(lines, "\n")
}

func formatPeriod(period game.Period) []string {
	lines := []string{
		fmt.Sprintf("### %s %s", toneGlyph(period.Tone), escapeMarkdown(period.Name)),
		"",
	}
	if period.Description != "" {
		lines = append(lines, escapeMarkdown(period.Description), "")
	}
	if period.Notes != "" {
		lines = append(lines, "*Notes: "+escapeMarkdown(period.Notes)+"*", "")
	}
	for _, event := range period.Events {
		lines = append(lines, formatEvent(event, "")...)
	}
	if len(period.Events) > 0 {
		lines = append(lines, "")
	}
	return lines
}

func formatEvent(event game.Event, indent string) []string {
	lines := []string{fmt.Sprintf("%s- **Event: %s** [%s]", indent, escapeMarkdown(event.Name), toneLabel(event.Tone))}
	if event.Description != "" {
		lines = append(lines, indent+"  - "+escapeMarkdown(event.Description))
	}
	if event.Notes != "" {
		lines = append(lines, indent+"  - *Notes: "+escapeMarkdown(event.Notes)+"*")
	}
	for _, scene := range event.Scenes {
		lines = append(lines, formatScene(scene, indent+"  ")...)
	}
	return lines
}

func formatScene(scene game.Scene, indent string) []string {
	lines := []string{fmt.Sprintf("%s- **Scene: %s** [%s]", indent, escapeMarkdown(scene.Name), toneLabel(scene.Tone))}
	if scene.Question != "" {
		lines = append(lines, indent+"  - Question: "+escapeMarkdown(scene.Question))
	}
	if scene.Answer != "" {
		lines = append(lines, indent+"  - Answer: "+escapeMarkdown(scene.Answer))
	}
	if scene.Description != "" {
		lines = append(lines, indent+"  - "+escapeMarkdown(scene.Description))
	}
	if scene.Notes != "" {
		lines = append(lines, indent+"  - *Notes: "+escapeMarkdown(scene.Notes)+"*")
	}
	return lines
}

func toneGlyph(tone game.Tone) string {
	if tone == game.ToneDark {
		return "●"
	}
	return "○"
}

func toneLabel(tone game.Tone) string {
	if tone == game.ToneDark {
		return "● Dark"
	}
	return "○ Light"
}

var markdownEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`#`, `\#`,
)

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
