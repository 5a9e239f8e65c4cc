// Package export serializes game documents to JSON and Markdown and
// validates JSON imports.
package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mosaic-games/chronicle/internal/apperrors"
	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/id"
	"github.com/mosaic-games/chronicle/internal/snapshot"
)

// Envelope is the JSON export format: the full document plus export
// metadata, and optionally the snapshot history.
type Envelope struct {
	game.Game
	ExportedAt time.Time           `json:"exportedAt"`
	History    []snapshot.Snapshot `json:"history,omitempty"`
}

// ToJSON renders a game as an indented export envelope.
func ToJSON(g *game.Game, now func() time.Time) ([]byte, error) {
	return toJSON(g, nil, now)
}

// ToJSONWithHistory renders a game plus its snapshot history.
func ToJSONWithHistory(g *game.Game, history []snapshot.Snapshot, now func() time.Time) ([]byte, error) {
	return toJSON(g, history, now)
}

func toJSON(g *game.Game, history []snapshot.Snapshot, now func() time.Time) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("game is required")
	}
	if now == nil {
		now = time.Now
	}

	envelope := Envelope{
		Game:       *g.Clone(),
		ExportedAt: now().UTC(),
		History:    history,
	}
	envelope.SchemaVersion = game.SchemaVersion

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return payload, nil
}

var requiredFields = []string{"id", "name", "periods", "legacies", "createdAt", "updatedAt"}

// ParseGameJSON parses and validates an exported document. Errors carry
// an import code so callers can show an actionable message.
func ParseGameJSON(data []byte) (*game.Game, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.New(apperrors.CodeImportInvalidJSON,
			"the file contains invalid JSON and may be corrupted")
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.New(apperrors.CodeImportMissingFields,
			fmt.Sprintf("the file is missing required game data (%s)", strings.Join(missing, ", ")))
	}
	for _, field := range []string{"periods", "legacies"} {
		if !isJSONArray(raw[field]) {
			return nil, apperrors.New(apperrors.CodeImportMissingFields,
				fmt.Sprintf("the file's %q field is not a list", field))
		}
	}

	var version struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &version); err == nil && version.SchemaVersion > game.SchemaVersion {
		return nil, apperrors.New(apperrors.CodeImportInvalidSchema,
			fmt.Sprintf("the file was created with a newer schema (v%d); update to import it", version.SchemaVersion))
	}

	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, apperrors.New(apperrors.CodeImportInvalidJSON,
			"the file contains invalid JSON and may be corrupted")
	}
	game.Migrate(&g)
	return &g, nil
}

// ParseEnvelope parses a full export including any embedded history.
func ParseEnvelope(data []byte) (*game.Game, []snapshot.Snapshot, error) {
	g, err := ParseGameJSON(data)
	if err != nil {
		return nil, nil, err
	}

	var history struct {
		History []snapshot.Snapshot `json:"history"`
	}
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, nil, apperrors.New(apperrors.CodeImportInvalidJSON,
			"the file's history section is malformed")
	}
	return g, history.History, nil
}

// FromImport builds a fresh document from imported data. The document
// gets a new id and timestamps so it never collides with a stored copy;
// internal entity ids are preserved since they are scoped to the
// document. Any imported snapshots are re-keyed to the new document.
func FromImport(imported *game.Game, history []snapshot.Snapshot, now func() time.Time, idGenerator func() (string, error)) (*game.Game, []snapshot.Snapshot, error) {
	if imported == nil {
		return nil, nil, fmt.Errorf("imported game is required")
	}
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	newID, err := idGenerator()
	if err != nil {
		return nil, nil, fmt.Errorf("generate game id: %w", err)
	}

	g := imported.Clone()
	g.ID = newID
	g.SchemaVersion = game.SchemaVersion
	timestamp := now()
	g.CreatedAt = timestamp
	g.UpdatedAt = timestamp

	remapped := make([]snapshot.Snapshot, 0, len(history))
	for _, snap := range history {
		snapID, err := idGenerator()
		if err != nil {
			return nil, nil, fmt.Errorf("generate snapshot id: %w", err)
		}
		snap.ID = snapID
		snap.GameID = newID
		snap.Data.ID = newID
		remapped = append(remapped, snap)
	}
	return g, remapped, nil
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFilename turns a document name into a safe lowercase
// dash-separated filename stem, capped at 50 characters.
func SanitizeFilename(name string) string {
	cleaned := invalidFilenameChars.ReplaceAllString(name, "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, "-")
	cleaned = strings.ToLower(cleaned)
	if len(cleaned) > 50 {
		cleaned = cleaned[:50]
	}
	return cleaned
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}
