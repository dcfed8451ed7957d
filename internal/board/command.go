package board

import (
	"errors"
	"fmt"

	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/projection"
	"github.com/trip-board/backend/internal/session"
)

// Board errors
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidCommand = errors.New("invalid command payload")
	ErrNoSession      = errors.New("no such session")
	ErrNotReady       = errors.New("board is not ready")
	ErrOptionDisabled = errors.New("option is disabled")

	errInFlight = fmt.Errorf("%w: a request is in flight", ErrNotReady)
)

// CommandType identifies a user interaction.
type CommandType string

// Command types
const (
	CmdReload          CommandType = "board.reload"
	CmdFilterChange    CommandType = "filter.change"
	CmdSortChange      CommandType = "sort.change"
	CmdItemExpand      CommandType = "item.expand"
	CmdItemCollapse    CommandType = "item.collapse"
	CmdItemFavorite    CommandType = "item.favorite"
	CmdFormChange      CommandType = "form.change"
	CmdFormSubmit      CommandType = "form.submit"
	CmdFormDelete      CommandType = "form.delete"
	CmdFormCancel      CommandType = "form.cancel"
	CmdNewWaypointOpen CommandType = "new_waypoint.open"
	CmdKeyDown         CommandType = "key.down"
)

// Command is a user interaction addressed to the board. The types in this
// file are the complete set.
type Command interface {
	Type() CommandType
}

// Reload re-fetches everything from the trip API.
type Reload struct{}

// ChangeFilter selects a filter.
type ChangeFilter struct {
	Filter filter.Type
}

// ChangeSort selects a sort key.
type ChangeSort struct {
	Sort projection.SortKey
}

// ExpandItem opens the edit form of an item.
type ExpandItem struct {
	ID string
}

// CollapseItem closes the edit form of an item without saving.
type CollapseItem struct {
	ID string
}

// ToggleFavorite flips the favorite flag from an item summary.
type ToggleFavorite struct {
	ID string
}

// ChangeField edits one field of an open form. An empty ID addresses the
// new-waypoint form.
type ChangeField struct {
	ID     string
	Change session.FieldChange
}

// SubmitForm saves an open form.
type SubmitForm struct {
	ID string
}

// DeleteForm deletes the item behind an open form. On the new-waypoint
// form it acts as cancel.
type DeleteForm struct {
	ID string
}

// CancelForm closes an open form without saving.
type CancelForm struct {
	ID string
}

// OpenNewWaypoint shows the new-waypoint form.
type OpenNewWaypoint struct{}

// KeyDown is a global key press.
type KeyDown struct {
	Key string
}

func (Reload) Type() CommandType          { return CmdReload }
func (ChangeFilter) Type() CommandType    { return CmdFilterChange }
func (ChangeSort) Type() CommandType      { return CmdSortChange }
func (ExpandItem) Type() CommandType      { return CmdItemExpand }
func (CollapseItem) Type() CommandType    { return CmdItemCollapse }
func (ToggleFavorite) Type() CommandType  { return CmdItemFavorite }
func (ChangeField) Type() CommandType     { return CmdFormChange }
func (SubmitForm) Type() CommandType      { return CmdFormSubmit }
func (DeleteForm) Type() CommandType      { return CmdFormDelete }
func (CancelForm) Type() CommandType      { return CmdFormCancel }
func (OpenNewWaypoint) Type() CommandType { return CmdNewWaypointOpen }
func (KeyDown) Type() CommandType         { return CmdKeyDown }

type handlerFunc func(b *Board, c Command) error

// payload narrows c to the value type registered for its command type.
func payload[T Command](c Command) (T, error) {
	v, ok := c.(T)
	if !ok {
		return v, fmt.Errorf("%w: %T", ErrInvalidCommand, c)
	}
	return v, nil
}

// handlers run with the board locked.
var handlers = map[CommandType]handlerFunc{
	CmdReload: func(b *Board, _ Command) error {
		return b.reload()
	},
	CmdFilterChange: func(b *Board, c Command) error {
		cmd, err := payload[ChangeFilter](c)
		if err != nil {
			return err
		}
		return b.changeFilter(cmd.Filter)
	},
	CmdSortChange: func(b *Board, c Command) error {
		cmd, err := payload[ChangeSort](c)
		if err != nil {
			return err
		}
		return b.changeSort(cmd.Sort)
	},
	CmdItemExpand: func(b *Board, c Command) error {
		cmd, err := payload[ExpandItem](c)
		if err != nil {
			return err
		}
		it, err := b.item(cmd.ID)
		if err != nil {
			return err
		}
		return it.Expand()
	},
	CmdItemCollapse: func(b *Board, c Command) error {
		cmd, err := payload[CollapseItem](c)
		if err != nil {
			return err
		}
		it, err := b.item(cmd.ID)
		if err != nil {
			return err
		}
		return it.Collapse()
	},
	CmdItemFavorite: func(b *Board, c Command) error {
		cmd, err := payload[ToggleFavorite](c)
		if err != nil {
			return err
		}
		it, err := b.item(cmd.ID)
		if err != nil {
			return err
		}
		return it.ToggleFavorite()
	},
	CmdFormChange: func(b *Board, c Command) error {
		cmd, err := payload[ChangeField](c)
		if err != nil {
			return err
		}
		if cmd.Change == nil {
			return ErrInvalidCommand
		}
		if cmd.ID == session.NewTarget {
			s, err := b.newSession()
			if err != nil {
				return err
			}
			return s.Change(cmd.Change)
		}
		it, err := b.item(cmd.ID)
		if err != nil {
			return err
		}
		return it.Change(cmd.Change)
	},
	CmdFormSubmit: func(b *Board, c Command) error {
		cmd, err := payload[SubmitForm](c)
		if err != nil {
			return err
		}
		id := cmd.ID
		if id == session.NewTarget {
			s, err := b.newSession()
			if err != nil {
				return err
			}
			return s.Submit()
		}
		it, err := b.item(id)
		if err != nil {
			return err
		}
		return it.Submit()
	},
	CmdFormDelete: func(b *Board, c Command) error {
		cmd, err := payload[DeleteForm](c)
		if err != nil {
			return err
		}
		id := cmd.ID
		if id == session.NewTarget {
			s, err := b.newSession()
			if err != nil {
				return err
			}
			s.Close()
			return nil
		}
		it, err := b.item(id)
		if err != nil {
			return err
		}
		return it.Delete()
	},
	CmdFormCancel: func(b *Board, c Command) error {
		cmd, err := payload[CancelForm](c)
		if err != nil {
			return err
		}
		id := cmd.ID
		if id == session.NewTarget {
			s, err := b.newSession()
			if err != nil {
				return err
			}
			s.Close()
			return nil
		}
		it, err := b.item(id)
		if err != nil {
			return err
		}
		return it.Collapse()
	},
	CmdNewWaypointOpen: func(b *Board, _ Command) error {
		return b.openNewWaypoint()
	},
	CmdKeyDown: func(b *Board, c Command) error {
		cmd, err := payload[KeyDown](c)
		if err != nil {
			return err
		}
		b.keys.Press(cmd.Key)
		return nil
	},
}
