package session

import (
	"fmt"
	"time"

	"github.com/trip-board/backend/internal/storage/models"
	"github.com/trip-board/backend/internal/trip"
)

// NewWaypoint is the session of the "new event" form. At most one exists at
// a time; the board enforces that.
type NewWaypoint struct {
	host    Host
	keys    *KeyBus
	catalog *models.Catalog
	onClose func()

	draft    *Draft
	state    State
	listener *KeyListener

	cancelRequested bool
	closed          bool
}

// NewNewWaypoint creates the session with a blank draft starting at now.
// onClose runs exactly once, whichever way the session ends.
func NewNewWaypoint(c *models.Catalog, host Host, keys *KeyBus, now time.Time, onClose func()) *NewWaypoint {
	return &NewWaypoint{
		host:    host,
		keys:    keys,
		catalog: c,
		onClose: onClose,
		draft:   BlankDraft(now),
		state:   StateIdle,
	}
}

// Open shows the form and starts listening for Escape.
func (s *NewWaypoint) Open() error {
	if s.state == StateEditing {
		return nil
	}
	if err := checkTransition(s.state, StateEditing); err != nil {
		return err
	}
	s.listener = s.keys.Acquire(s.handleKey)
	s.state = StateEditing
	s.Render()
	return nil
}

// State returns the current session state.
func (s *NewWaypoint) State() State {
	return s.state
}

// Draft returns a copy of the pending waypoint.
func (s *NewWaypoint) Draft() *Draft {
	return s.draft.Clone()
}

// View returns the form presentation, or nil once the session is closed.
func (s *NewWaypoint) View() *FormView {
	if !s.state.Open() {
		return nil
	}
	return buildForm(s.draft, s.catalog, s.state)
}

// Render redraws the form.
func (s *NewWaypoint) Render() {
	s.host.RenderNewWaypoint(s.View())
}

// Change applies one form interaction to the draft.
func (s *NewWaypoint) Change(change FieldChange) error {
	if s.state != StateEditing {
		return fmt.Errorf("%w: change in %s", ErrInvalidTransition, s.state)
	}
	if err := s.draft.Apply(change, s.catalog); err != nil {
		return err
	}
	s.Render()
	return nil
}

// Submit forwards the draft as a create request.
func (s *NewWaypoint) Submit() error {
	if err := checkTransition(s.state, StateSubmitting); err != nil {
		return err
	}
	if !s.draft.Validity.OK() {
		return ErrDraftInvalid
	}

	s.state = StateSubmitting
	s.Render()
	s.host.Dispatch(Action{
		Kind:     ActionCreate,
		Severity: trip.UpdateMinor,
		Target:   NewTarget,
		Waypoint: s.draft.Waypoint(),
	})
	return nil
}

// Abort reports a rejected create. The form stays open with the draft
// intact unless a cancel arrived while the request was in flight.
func (s *NewWaypoint) Abort() {
	if s.state != StateSubmitting {
		return
	}
	if s.cancelRequested {
		s.Close()
		return
	}
	s.state = StateEditing
	s.Render()
	s.host.Shake(NewTarget)
}

// Close removes the form and runs the completion callback. A close issued
// during a create request is deferred until the request settles.
func (s *NewWaypoint) Close() {
	if s.state == StateSubmitting {
		s.cancelRequested = true
		return
	}
	if s.closed {
		return
	}
	s.teardown()
	s.host.RenderNewWaypoint(nil)
	s.finish()
}

// Destroy ends the session without rendering; the board is rebuilding.
func (s *NewWaypoint) Destroy() {
	if s.closed {
		return
	}
	s.teardown()
	s.finish()
}

func (s *NewWaypoint) teardown() {
	s.listener.Release()
	s.listener = nil
	s.state = StateDestroyed
}

func (s *NewWaypoint) finish() {
	s.closed = true
	if s.onClose != nil {
		s.onClose()
	}
}

func (s *NewWaypoint) handleKey(key string) {
	if key == KeyEscape {
		s.Close()
	}
}
