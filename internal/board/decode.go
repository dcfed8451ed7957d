package board

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/projection"
	"github.com/trip-board/backend/internal/session"
	"github.com/trip-board/backend/internal/storage/models"
)

// Form field names accepted by form.change.
const (
	FieldType        = "type"
	FieldDestination = "destination"
	FieldDateFrom    = "date_from"
	FieldDateTo      = "date_to"
	FieldPrice       = "price"
	FieldOffer       = "offer"
	FieldFavorite    = "favorite"
)

// Envelope is the wire form of a command: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type idPayload struct {
	ID string `json:"id"`
}

type filterPayload struct {
	Filter string `json:"filter"`
}

type sortPayload struct {
	Sort string `json:"sort"`
}

type fieldPayload struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Value string `json:"value"`
}

type keyPayload struct {
	Key string `json:"key"`
}

type decoderFunc func(payload json.RawMessage) (Command, error)

var decoders = map[CommandType]decoderFunc{
	CmdReload: func(json.RawMessage) (Command, error) {
		return Reload{}, nil
	},
	CmdFilterChange: func(raw json.RawMessage) (Command, error) {
		var p filterPayload
		if err := unmarshal(raw, &p); err != nil {
			return nil, err
		}
		f, err := filter.Parse(p.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		return ChangeFilter{Filter: f}, nil
	},
	CmdSortChange: func(raw json.RawMessage) (Command, error) {
		var p sortPayload
		if err := unmarshal(raw, &p); err != nil {
			return nil, err
		}
		k, err := projection.ParseSortKey(p.Sort)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		return ChangeSort{Sort: k}, nil
	},
	CmdItemExpand:   idDecoder(func(id string) Command { return ExpandItem{ID: id} }),
	CmdItemCollapse: idDecoder(func(id string) Command { return CollapseItem{ID: id} }),
	CmdItemFavorite: idDecoder(func(id string) Command { return ToggleFavorite{ID: id} }),
	CmdFormSubmit:   idDecoder(func(id string) Command { return SubmitForm{ID: id} }),
	CmdFormDelete:   idDecoder(func(id string) Command { return DeleteForm{ID: id} }),
	CmdFormCancel:   idDecoder(func(id string) Command { return CancelForm{ID: id} }),
	CmdFormChange: func(raw json.RawMessage) (Command, error) {
		var p fieldPayload
		if err := unmarshal(raw, &p); err != nil {
			return nil, err
		}
		change, err := ParseFieldChange(p.Field, p.Value)
		if err != nil {
			return nil, err
		}
		return ChangeField{ID: p.ID, Change: change}, nil
	},
	CmdNewWaypointOpen: func(json.RawMessage) (Command, error) {
		return OpenNewWaypoint{}, nil
	},
	CmdKeyDown: func(raw json.RawMessage) (Command, error) {
		var p keyPayload
		if err := unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return KeyDown{Key: p.Key}, nil
	},
}

// Decode turns a wire command into a typed Command.
func Decode(env Envelope) (Command, error) {
	dec, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, env.Type)
	}
	return dec(env.Payload)
}

// ParseFieldChange maps a form field and its raw value to a draft change.
// Dates are RFC 3339.
func ParseFieldChange(field, value string) (session.FieldChange, error) {
	switch field {
	case FieldType:
		return session.TypeChange{Type: models.WaypointType(value)}, nil
	case FieldDestination:
		return session.DestinationInput{Name: value}, nil
	case FieldDateFrom, FieldDateTo:
		at, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCommand, field, err)
		}
		if field == FieldDateFrom {
			return session.DateFromChange{At: at}, nil
		}
		return session.DateToChange{At: at}, nil
	case FieldPrice:
		return session.PriceInput{Raw: value}, nil
	case FieldOffer:
		return session.OfferToggle{OfferID: value}, nil
	case FieldFavorite:
		return session.FavoriteToggle{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidCommand, field)
	}
}

func idDecoder(build func(id string) Command) decoderFunc {
	return func(raw json.RawMessage) (Command, error) {
		var p idPayload
		if err := unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return build(p.ID), nil
	}
}

func unmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return nil
}
