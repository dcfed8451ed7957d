package board

import (
	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/projection"
	"github.com/trip-board/backend/internal/session"
)

// State is the board lifecycle state.
type State string

// Board states
const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateEmpty   State = "empty" // ready, but the projection is empty
	StateError   State = "error"
)

// Shown returns true when the board displays a list (possibly empty).
func (s State) Shown() bool {
	return s == StateReady || s == StateEmpty
}

// Board messages
const (
	MessageLoading     = "Loading..."
	MessageLoadFailed  = "Failed to load latest route information"
	MessageNoWaypoints = "Click New Event to create your first point"
	MessageNoFuture    = "There are no future events now"
)

// EmptyMessages maps each filter to its empty-list message.
var EmptyMessages = map[filter.Type]string{
	filter.Everything: MessageNoWaypoints,
	filter.Future:     MessageNoFuture,
}

// FilterOption is one entry of the filter control.
type FilterOption struct {
	Type     filter.Type `json:"type"`
	Checked  bool        `json:"checked"`
	Disabled bool        `json:"disabled"`
}

// SortOption is one entry of the sort control.
type SortOption struct {
	Key      projection.SortKey `json:"key"`
	Checked  bool               `json:"checked"`
	Disabled bool               `json:"disabled"`
}

// View is a complete snapshot of the board.
type View struct {
	State             State              `json:"state"`
	Filters           []FilterOption     `json:"filters"`
	Sorts             []SortOption       `json:"sorts,omitempty"`
	Items             []session.ItemView `json:"items"`
	NewWaypoint       *session.FormView  `json:"newWaypoint,omitempty"`
	NewButtonDisabled bool               `json:"newButtonDisabled"`
	Message           string             `json:"message,omitempty"`
}

// Renderer draws the board. Calls are made while the board is locked, so
// implementations must not block or call back into the board.
type Renderer interface {
	// RenderBoard redraws everything.
	RenderBoard(v View)

	// RenderFilters redraws only the filter control.
	RenderFilters(opts []FilterOption)

	// RenderItem replaces one item in place.
	RenderItem(v session.ItemView)

	// RenderNewWaypoint shows the new-waypoint form, or removes it when v is nil.
	RenderNewWaypoint(v *session.FormView)

	// Shake plays the failure cue on an item, or on the new-waypoint form
	// when target is empty.
	Shake(target string)
}
