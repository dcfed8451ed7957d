// Package session implements the edit sessions of the waypoint list: one
// controller per displayed waypoint plus the new-waypoint session.
package session

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of an edit session.
type State string

// Session states
const (
	StateIdle       State = "idle" // summary shown
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateDeleting   State = "deleting"
	StateDestroyed  State = "destroyed"
)

// Session errors
var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrDraftInvalid      = errors.New("draft has invalid fields")
)

var transitions = map[State][]State{
	StateIdle:       {StateEditing, StateIdle, StateDestroyed},
	StateEditing:    {StateIdle, StateSubmitting, StateDeleting, StateDestroyed},
	StateSubmitting: {StateEditing, StateIdle, StateDestroyed},
	StateDeleting:   {StateEditing, StateIdle, StateDestroyed},
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Open reports whether the state shows an edit form.
func (s State) Open() bool {
	return s == StateEditing || s == StateSubmitting || s == StateDeleting
}

// Busy reports whether a remote request is in flight.
func (s State) Busy() bool {
	return s == StateSubmitting || s == StateDeleting
}
