package session

import (
	"fmt"

	"github.com/trip-board/backend/internal/storage/models"
	"github.com/trip-board/backend/internal/trip"
)

// Item controls one waypoint of the list. It toggles between the summary
// and the edit form, owns the draft of an open edit, and forwards submits
// and deletes to its host.
type Item struct {
	host    Host
	keys    *KeyBus
	catalog *models.Catalog

	waypoint models.Waypoint
	draft    *Draft
	state    State
	listener *KeyListener

	// cancelRequested defers a cancel issued while a request is in flight.
	cancelRequested bool
}

// NewItem creates a controller in the summary state. Nothing is rendered
// until Render is called.
func NewItem(w models.Waypoint, c *models.Catalog, host Host, keys *KeyBus) *Item {
	return &Item{
		host:     host,
		keys:     keys,
		catalog:  c,
		waypoint: w.Clone(),
		state:    StateIdle,
	}
}

// ID returns the id of the controlled waypoint.
func (it *Item) ID() string {
	return it.waypoint.ID
}

// State returns the current session state.
func (it *Item) State() State {
	return it.state
}

// Waypoint returns the committed waypoint.
func (it *Item) Waypoint() models.Waypoint {
	return it.waypoint.Clone()
}

// Draft returns a copy of the open draft, or nil in the summary state.
func (it *Item) Draft() *Draft {
	if it.draft == nil {
		return nil
	}
	return it.draft.Clone()
}

// View returns the current presentation of the item.
func (it *Item) View() ItemView {
	if it.state.Open() && it.draft != nil {
		return ItemView{ID: it.ID(), Mode: ModeEdit, Form: buildForm(it.draft, it.catalog, it.state)}
	}
	summary := Summarize(it.waypoint, it.catalog)
	return ItemView{ID: it.ID(), Mode: ModeSummary, Summary: &summary}
}

// Render asks the host to draw the item in place.
func (it *Item) Render() {
	it.host.RenderItem(it.View())
}

// Expand opens the edit form. Any other open session is collapsed first.
func (it *Item) Expand() error {
	if it.state == StateEditing {
		return nil
	}
	if err := checkTransition(it.state, StateEditing); err != nil {
		return err
	}

	it.host.CollapseOthers(it.ID())

	it.draft = NewDraft(it.waypoint, it.catalog)
	it.cancelRequested = false
	it.listener = it.keys.Acquire(it.handleKey)
	it.state = StateEditing
	it.Render()
	return nil
}

// Collapse discards the draft and restores the summary. While a request is
// in flight the collapse is deferred until the request settles.
func (it *Item) Collapse() error {
	switch it.state {
	case StateIdle:
		return nil
	case StateSubmitting, StateDeleting:
		it.cancelRequested = true
		return nil
	case StateEditing:
		it.close()
		it.Render()
		return nil
	default:
		return fmt.Errorf("%w: collapse in %s", ErrInvalidTransition, it.state)
	}
}

// Change applies one form interaction to the draft and redraws the form.
func (it *Item) Change(change FieldChange) error {
	if it.state != StateEditing {
		return fmt.Errorf("%w: change in %s", ErrInvalidTransition, it.state)
	}
	if err := it.draft.Apply(change, it.catalog); err != nil {
		return err
	}
	it.Render()
	return nil
}

// Submit forwards the draft to the host as an update. It is refused while
// any field is invalid.
func (it *Item) Submit() error {
	if err := checkTransition(it.state, StateSubmitting); err != nil {
		return err
	}
	if !it.draft.Validity.OK() {
		return ErrDraftInvalid
	}

	it.state = StateSubmitting
	it.Render()
	it.host.Dispatch(Action{
		Kind:     ActionUpdate,
		Severity: it.draft.Severity(),
		Target:   it.ID(),
		Waypoint: it.draft.Waypoint(),
	})
	return nil
}

// Delete forwards a deletion of the committed waypoint to the host.
func (it *Item) Delete() error {
	if err := checkTransition(it.state, StateDeleting); err != nil {
		return err
	}

	it.state = StateDeleting
	it.Render()
	it.host.Dispatch(Action{
		Kind:     ActionDelete,
		Severity: trip.UpdateMinor,
		Target:   it.ID(),
		Waypoint: it.waypoint.Clone(),
	})
	return nil
}

// ToggleFavorite flips the favorite flag from the summary view. It is a
// PATCH update that does not open the form.
func (it *Item) ToggleFavorite() error {
	if it.state != StateIdle {
		return fmt.Errorf("%w: favorite toggle in %s", ErrInvalidTransition, it.state)
	}
	w := it.waypoint.Clone()
	w.IsFavorite = !w.IsFavorite
	it.host.Dispatch(Action{
		Kind:     ActionUpdate,
		Severity: trip.UpdatePatch,
		Target:   it.ID(),
		Waypoint: w,
	})
	return nil
}

// Abort reports a rejected request. The form is shaken and made editable
// again with the draft intact, unless a cancel arrived in the meantime.
func (it *Item) Abort() {
	switch it.state {
	case StateSubmitting, StateDeleting:
		if it.cancelRequested {
			it.close()
			it.Render()
			return
		}
		it.state = StateEditing
		it.Render()
		it.host.Shake(it.ID())
	case StateIdle, StateEditing:
		it.host.Shake(it.ID())
	}
}

// Reset replaces the committed waypoint after a confirmed PATCH and shows
// the summary again.
func (it *Item) Reset(w models.Waypoint) {
	if it.state == StateDestroyed {
		return
	}
	it.waypoint = w.Clone()
	if it.state.Open() {
		it.close()
	}
	it.Render()
}

// Destroy tears the controller down without rendering. The host removes
// the element as part of a list rebuild.
func (it *Item) Destroy() {
	it.listener.Release()
	it.listener = nil
	it.draft = nil
	it.state = StateDestroyed
}

// close returns to the summary state and releases the key listener.
func (it *Item) close() {
	it.listener.Release()
	it.listener = nil
	it.draft = nil
	it.cancelRequested = false
	it.state = StateIdle
}

func (it *Item) handleKey(key string) {
	if key == KeyEscape {
		_ = it.Collapse()
	}
}
