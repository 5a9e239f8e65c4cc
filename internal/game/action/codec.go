package action

import (
	"encoding/json"
	"fmt"
	"time"
)

// Actions are persisted and exported as a tagged JSON envelope. The kind
// tag drives decoding; an unknown tag decodes into Unknown rather than
// erroring, so histories written by newer versions stay readable.
type envelope struct {
	Type      Kind            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Marshal encodes an action as its JSON envelope.
func Marshal(a Action) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("action is required")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", a.Kind(), err)
	}
	return json.Marshal(envelope{Type: a.Kind(), Timestamp: a.When(), Payload: payload})
}

// Unmarshal decodes an action from its JSON envelope.
func Unmarshal(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action envelope: %w", err)
	}

	decode := func(target Action) (Action, error) {
		if err := json.Unmarshal(env.Payload, target); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return deref(target), nil
	}

	switch env.Type {
	case KindCreatePeriod:
		return decode(&CreatePeriod{})
	case KindDeletePeriod:
		return decode(&DeletePeriod{})
	case KindEditPeriod:
		return decode(&EditPeriod{})
	case KindCreateEvent:
		return decode(&CreateEvent{})
	case KindDeleteEvent:
		return decode(&DeleteEvent{})
	case KindEditEvent:
		return decode(&EditEvent{})
	case KindCreateScene:
		return decode(&CreateScene{})
	case KindDeleteScene:
		return decode(&DeleteScene{})
	case KindEditScene:
		return decode(&EditScene{})
	case KindEditGameMetadata:
		return decode(&EditGameMetadata{})
	case KindAddLegacy:
		return decode(&AddLegacy{})
	case KindRemoveLegacy:
		return decode(&RemoveLegacy{})
	case KindEditLegacy:
		return decode(&EditLegacy{})
	case KindReorderPeriods:
		return decode(&ReorderPeriods{})
	case KindReorderEvents:
		return decode(&ReorderEvents{})
	case KindReorderScenes:
		return decode(&ReorderScenes{})
	case KindCreateAnchor:
		return decode(&CreateAnchor{})
	case KindDeleteAnchor:
		return decode(&DeleteAnchor{})
	case KindEditAnchor:
		return decode(&EditAnchor{})
	case KindSetCurrentAnchor:
		return decode(&SetCurrentAnchor{})
	case KindClearCurrentAnchor:
		return decode(&ClearCurrentAnchor{})
	default:
		return Unknown{Timestamp: env.Timestamp, RawKind: env.Type}, nil
	}
}

// deref unwraps the pointer targets used during decoding so callers
// always hold value actions.
func deref(a Action) Action {
	switch v := a.(type) {
	case *CreatePeriod:
		return *v
	case *DeletePeriod:
		return *v
	case *EditPeriod:
		return *v
	case *CreateEvent:
		return *v
	case *DeleteEvent:
		return *v
	case *EditEvent:
		return *v
	case *CreateScene:
		return *v
	case *DeleteScene:
		return *v
	case *EditScene:
		return *v
	case *EditGameMetadata:
		return *v
	case *AddLegacy:
		return *v
	case *RemoveLegacy:
		return *v
	case *EditLegacy:
		return *v
	case *ReorderPeriods:
		return *v
	case *ReorderEvents:
		return *v
	case *ReorderScenes:
		return *v
	case *CreateAnchor:
		return *v
	case *DeleteAnchor:
		return *v
	case *EditAnchor:
		return *v
	case *SetCurrentAnchor:
		return *v
	case *ClearCurrentAnchor:
		return *v
	default:
		return a
	}
}
