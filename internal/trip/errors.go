package trip

import "errors"

// Store errors. Callers match them with errors.Is.
var (
	// ErrLoadFailed marks a failed bulk fetch; the store holds no data afterwards.
	ErrLoadFailed = errors.New("loading trip data failed")

	// ErrNotFound is returned, without any remote call, when an update or
	// delete references an id absent from the local list.
	ErrNotFound = errors.New("waypoint not found")

	// ErrRemoteRejected wraps transport and server failures of a mutation.
	// The local list is unchanged when it is returned.
	ErrRemoteRejected = errors.New("remote rejected the change")

	// ErrInvalidWaypoint is returned when a waypoint breaks a model invariant.
	ErrInvalidWaypoint = errors.New("invalid waypoint")

	// ErrNotReady is returned for mutations before a successful load.
	ErrNotReady = errors.New("store is not ready")
)
