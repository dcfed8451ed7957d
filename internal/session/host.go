package session

import (
	"github.com/trip-board/backend/internal/storage/models"
	"github.com/trip-board/backend/internal/trip"
)

// NewTarget is the target key of the new-waypoint session. Item sessions
// are keyed by waypoint id.
const NewTarget = models.UnassignedID

// ActionKind is the kind of store mutation a session asks for.
type ActionKind string

// Action kinds
const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// Action is a mutation request forwarded from a session to its host.
type Action struct {
	Kind     ActionKind
	Severity trip.UpdateKind
	Target   string
	Waypoint models.Waypoint
}

// Host is implemented by the board that owns the sessions. Sessions call it
// while the board is handling a command.
type Host interface {
	// CollapseOthers closes every open session except the item with id keep,
	// including the new-waypoint session.
	CollapseOthers(keep string)

	// Dispatch queues a store mutation. The host reports the outcome back
	// through Abort or a store notification.
	Dispatch(a Action)

	// RenderItem replaces the rendered element of one item in place.
	RenderItem(v ItemView)

	// RenderNewWaypoint shows the new-waypoint form, or removes it when v is nil.
	RenderNewWaypoint(v *FormView)

	// Shake plays the transient failure cue on the target's element.
	Shake(target string)
}
