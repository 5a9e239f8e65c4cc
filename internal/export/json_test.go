package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mosaic-games/chronicle/internal/apperrors"
	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/snapshot"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testGame(t *testing.T, name string) *game.Game {
	t.Helper()

	g, err := game.NewGame(name, fixedClock(time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC)), nil)
	if err != nil {
		t.Fatalf("NewGame() error = %v", err)
	}
	return g
}

func TestToJSONRoundTrip(t *testing.T) {
	g := testGame(t, "The Long Thaw")
	exportedAt := time.Date(2025, time.April, 3, 8, 30, 0, 0, time.UTC)

	payload, err := ToJSON(g, fixedClock(exportedAt))
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ParseGameJSON(payload)
	if err != nil {
		t.Fatalf("ParseGameJSON() error = %v", err)
	}
	if parsed.ID != g.ID {
		t.Errorf("parsed id = %q, want %q", parsed.ID, g.ID)
	}
	if parsed.Name != g.Name {
		t.Errorf("parsed name = %q, want %q", parsed.Name, g.Name)
	}
	if parsed.SchemaVersion != game.SchemaVersion {
		t.Errorf("parsed schemaVersion = %d, want %d", parsed.SchemaVersion, game.SchemaVersion)
	}

	var envelope map[string]any
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if _, ok := envelope["exportedAt"]; !ok {
		t.Error("export is missing exportedAt")
	}
}

func TestToJSONWithHistory(t *testing.T) {
	g := testGame(t, "The Long Thaw")
	snap, err := snapshot.New(g, "v1", "Initial version", fixedClock(g.CreatedAt), nil)
	if err != nil {
		t.Fatalf("snapshot.New() error = %v", err)
	}

	payload, err := ToJSONWithHistory(g, []snapshot.Snapshot{snap}, nil)
	if err != nil {
		t.Fatalf("ToJSONWithHistory() error = %v", err)
	}

	parsed, history, err := ParseEnvelope(payload)
	if err != nil {
		t.Fatalf("ParseEnvelope() error = %v", err)
	}
	if parsed.ID != g.ID {
		t.Errorf("parsed id = %q, want %q", parsed.ID, g.ID)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].VersionName != "v1" {
		t.Errorf("history versionName = %q, want %q", history[0].VersionName, "v1")
	}
}

func TestParseGameJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  apperrors.Code
	}{
		{
			name:  "malformed json",
			input: `{"id": "x",`,
			code:  apperrors.CodeImportInvalidJSON,
		},
		{
			name:  "missing fields",
			input: `{"id": "x", "name": "y"}`,
			code:  apperrors.CodeImportMissingFields,
		},
		{
			name:  "periods not a list",
			input: `{"id":"x","name":"y","periods":{},"legacies":[],"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}`,
			code:  apperrors.CodeImportMissingFields,
		},
		{
			name:  "newer schema",
			input: `{"id":"x","name":"y","schemaVersion":99,"periods":[],"legacies":[],"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}`,
			code:  apperrors.CodeImportInvalidSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGameJSON([]byte(tt.input))
			if err == nil {
				t.Fatal("ParseGameJSON() error = nil, want import error")
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("ParseGameJSON() code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestParseGameJSONMigratesOlderSchema(t *testing.T) {
	input := `{
		"id": "x", "name": "Legacy Import", "schemaVersion": 1,
		"focus": {"id": "f1", "name": "The Plague"},
		"periods": [], "legacies": [],
		"createdAt": "2025-01-01T00:00:00Z", "updatedAt": "2025-01-01T00:00:00Z"
	}`

	g, err := ParseGameJSON([]byte(input))
	if err != nil {
		t.Fatalf("ParseGameJSON() error = %v", err)
	}
	if g.SchemaVersion != game.SchemaVersion {
		t.Errorf("schemaVersion = %d, want %d", g.SchemaVersion, game.SchemaVersion)
	}
	focus := g.CurrentFocus()
	if focus == nil || focus.Name != "The Plague" {
		t.Errorf("CurrentFocus() = %+v, want migrated legacy focus", focus)
	}
}

func TestFromImportMintsFreshIDs(t *testing.T) {
	g := testGame(t, "Original")
	snap, err := snapshot.New(g, "", "Initial version", fixedClock(g.CreatedAt), nil)
	if err != nil {
		t.Fatalf("snapshot.New() error = %v", err)
	}

	imported, history, err := FromImport(g, []snapshot.Snapshot{snap}, nil, nil)
	if err != nil {
		t.Fatalf("FromImport() error = %v", err)
	}
	if imported.ID == g.ID {
		t.Error("FromImport() kept the original document id")
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].ID == snap.ID {
		t.Error("FromImport() kept the original snapshot id")
	}
	if history[0].GameID != imported.ID {
		t.Errorf("history gameID = %q, want %q", history[0].GameID, imported.ID)
	}
}

func TestFromImportPreservesEntityIDs(t *testing.T) {
	g := testGame(t, "Original")
	period, err := game.NewPeriod("The Founding", game.ToneLight, fixedClock(g.CreatedAt), nil)
	if err != nil {
		t.Fatalf("NewPeriod() error = %v", err)
	}
	g.Periods = append(g.Periods, period)

	imported, _, err := FromImport(g, nil, nil, nil)
	if err != nil {
		t.Fatalf("FromImport() error = %v", err)
	}
	if len(imported.Periods) != 1 || imported.Periods[0].ID != period.ID {
		t.Errorf("FromImport() period id = %v, want %q preserved", imported.Periods, period.ID)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to dashes", "My Great Game", "my-great-game"},
		{"invalid chars removed", `a<b>:c"/d\|?*e`, "abcde"},
		{"long names capped", strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
