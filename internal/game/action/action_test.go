package action

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mosaic-games/chronicle/internal/game"
)

var testTime = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestKindIsValid(t *testing.T) {
	valid := []Kind{
		KindCreatePeriod, KindDeletePeriod, KindEditPeriod,
		KindCreateEvent, KindDeleteEvent, KindEditEvent,
		KindCreateScene, KindDeleteScene, KindEditScene,
		KindEditGameMetadata,
		KindAddLegacy, KindRemoveLegacy, KindEditLegacy,
		KindReorderPeriods, KindReorderEvents, KindReorderScenes,
		KindCreateAnchor, KindDeleteAnchor, KindEditAnchor,
		KindSetCurrentAnchor, KindClearCurrentAnchor,
	}
	for _, kind := range valid {
		if !kind.IsValid() {
			t.Errorf("Kind(%q).IsValid() = false", kind)
		}
		if kind.DisplayName() == "" {
			t.Errorf("Kind(%q).DisplayName() is empty", kind)
		}
	}

	if Kind("NOT_A_KIND").IsValid() {
		t.Error("invalid kind reported valid")
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	name := "Renamed"
	actions := []Action{
		CreatePeriod{
			Timestamp: testTime,
			PeriodID:  "p1",
			Index:     2,
			Period:    game.Period{ID: "p1", Name: "The Founding", Tone: game.ToneLight},
		},
		DeleteEvent{
			Timestamp: testTime,
			PeriodID:  "p1",
			EventID:   "e1",
			Index:     0,
			Event: game.Event{
				ID: "e1", Name: "The Siege", Tone: game.ToneDark,
				Scenes: []game.Scene{{ID: "s1", Name: "The Gate Falls", Tone: game.ToneDark}},
			},
		},
		EditScene{
			Timestamp: testTime,
			PeriodID:  "p1",
			EventID:   "e1",
			SceneID:   "s1",
			Previous:  game.SceneUpdate{Name: strPtr("Old")},
			New:       game.SceneUpdate{Name: &name},
		},
		EditGameMetadata{
			Timestamp: testTime,
			Previous:  game.MetadataUpdate{Name: strPtr("Before")},
			New:       game.MetadataUpdate{Name: strPtr("After")},
		},
		ReorderPeriods{
			Timestamp:     testTime,
			PreviousOrder: []string{"a", "b", "c"},
			NewOrder:      []string{"b", "c", "a"},
		},
		SetCurrentAnchor{
			Timestamp:         testTime,
			AnchorID:          "anchor-1",
			PeriodID:          "p1",
			Placement:         game.AnchorPlacement{ID: "pl1", AnchorID: "anchor-1", PeriodID: "p1", CreatedAt: testTime},
			PreviousAnchorID:  "",
			RemovedPlacements: []game.AnchorPlacement{},
			WasAlreadyPlaced:  false,
		},
		ClearCurrentAnchor{
			Timestamp:        testTime,
			PreviousAnchorID: "anchor-1",
		},
	}

	for _, original := range actions {
		t.Run(string(original.Kind()), func(t *testing.T) {
			data, err := Marshal(original)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			decoded, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if decoded.Kind() != original.Kind() {
				t.Fatalf("decoded kind = %q, want %q", decoded.Kind(), original.Kind())
			}
			if !reflect.DeepEqual(decoded, original) {
				t.Errorf("round trip mismatch\ngot:  %+v\nwant: %+v", decoded, original)
			}
		})
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	data := []byte(`{"type":"TELEPORT_PERIOD","timestamp":"2025-03-15T12:00:00Z","payload":{"weird":true}}`)

	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() of unknown kind error = %v, want nil", err)
	}

	unknown, ok := decoded.(Unknown)
	if !ok {
		t.Fatalf("decoded type = %T, want Unknown", decoded)
	}
	if unknown.RawKind != "TELEPORT_PERIOD" {
		t.Errorf("RawKind = %q, want %q", unknown.RawKind, "TELEPORT_PERIOD")
	}
	if !unknown.When().Equal(testTime) {
		t.Errorf("When() = %v, want %v", unknown.When(), testTime)
	}
}

func TestUnmarshalMalformedEnvelope(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"type":`)); err == nil {
		t.Error("Unmarshal() of malformed envelope error = nil")
	}
	if _, err := Unmarshal([]byte(`{"type":"CREATE_PERIOD","timestamp":"2025-03-15T12:00:00Z","payload":"not-an-object"}`)); err == nil {
		t.Error("Unmarshal() of malformed payload error = nil")
	}
}

func TestSetCurrentAnchorAlwaysEncodesRemovedPlacements(t *testing.T) {
	act := SetCurrentAnchor{
		Timestamp:         testTime,
		AnchorID:          "anchor-1",
		PeriodID:          "p1",
		RemovedPlacements: []game.AnchorPlacement{},
	}

	data, err := Marshal(act)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"removedPlacements":[]`) {
		t.Errorf("payload omits removedPlacements: %s", data)
	}
}

func strPtr(s string) *string { return &s }
