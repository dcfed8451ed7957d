package trip

import "github.com/trip-board/backend/internal/storage/models"

// UpdateKind classifies a store notification.
type UpdateKind string

// Update kinds
const (
	UpdateInit       UpdateKind = "INIT"        // successful load
	UpdateInitFailed UpdateKind = "INIT_FAILED" // load failed; store is empty
	UpdateCreated    UpdateKind = "CREATED"     // a waypoint was prepended
	UpdatePatch      UpdateKind = "PATCH"       // cosmetic change to one waypoint
	UpdateMinor      UpdateKind = "MINOR"       // change that can move a waypoint in sort or filter
	UpdateMajor      UpdateKind = "MAJOR"       // change that invalidates the whole board
)

// Severity reports whether k is a valid caller-supplied update severity.
func (k UpdateKind) Severity() bool {
	return k == UpdatePatch || k == UpdateMinor || k == UpdateMajor
}

// Event is a store notification.
type Event struct {
	Kind UpdateKind

	// Waypoint is the created or updated waypoint, nil otherwise.
	Waypoint *models.Waypoint

	// RemovedID is set for deletions.
	RemovedID string

	// Err is set for INIT_FAILED.
	Err error
}

// Observer receives store notifications. Observers run synchronously on the
// goroutine that completed the mutation, after the store lock is released.
type Observer func(Event)
