// Package trip owns the canonical waypoint list and the reference tables,
// and keeps them in step with the trip API.
package trip

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/remote"
	"github.com/trip-board/backend/internal/storage/models"
)

// Remote is the trip API as seen by the store.
type Remote interface {
	Points(ctx context.Context) ([]remote.Point, error)
	Destinations(ctx context.Context) ([]models.Destination, error)
	Offers(ctx context.Context) ([]models.OfferGroup, error)
	CreatePoint(ctx context.Context, p remote.Point) (remote.Point, error)
	UpdatePoint(ctx context.Context, p remote.Point) (remote.Point, error)
	DeletePoint(ctx context.Context, id string) error
}

// State is the lifecycle state of the store.
type State string

// Store states
const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Store holds the waypoint list and reference tables. Local state changes
// only after the trip API confirms a mutation.
type Store struct {
	remote Remote
	logger *zap.Logger

	mu        sync.RWMutex
	state     State
	waypoints []models.Waypoint
	catalog   *models.Catalog

	observersMu  sync.Mutex
	observers    []subscription
	nextObserver int
}

type subscription struct {
	id int
	fn Observer
}

// NewStore creates a store backed by the given trip API.
func NewStore(r Remote, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		remote:  r,
		logger:  logger.Named("store"),
		state:   StateIdle,
		catalog: models.EmptyCatalog(),
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()

	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	return func() {
		s.observersMu.Lock()
		defer s.observersMu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(e Event) {
	s.observersMu.Lock()
	observers := append([]subscription(nil), s.observers...)
	s.observersMu.Unlock()

	for _, sub := range observers {
		sub.fn(e)
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Waypoints returns a copy of the waypoint list in server order.
func (s *Store) Waypoints() []models.Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Waypoint, len(s.waypoints))
	for i, w := range s.waypoints {
		out[i] = w.Clone()
	}
	return out
}

// Waypoint returns the waypoint with the given id.
func (s *Store) Waypoint(id string) (models.Waypoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.waypoints[i].Clone(), true
	}
	return models.Waypoint{}, false
}

// Catalog returns the reference tables.
func (s *Store) Catalog() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Load fetches waypoints, destinations and offers. On failure every
// collection is cleared and observers receive INIT_FAILED.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	waypoints, catalog, err := s.fetchAll(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateError
		s.waypoints = nil
		s.catalog = models.EmptyCatalog()
		s.mu.Unlock()

		s.logger.Error("Failed to load trip data", zap.Error(err))
		loadErr := fmt.Errorf("%w: %v", ErrLoadFailed, err)
		s.notify(Event{Kind: UpdateInitFailed, Err: loadErr})
		return loadErr
	}

	for _, w := range waypoints {
		if err := w.Validate(catalog); err != nil {
			s.logger.Warn("Loaded waypoint breaks an invariant",
				zap.String("id", w.ID), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.state = StateReady
	s.waypoints = waypoints
	s.catalog = catalog
	s.mu.Unlock()

	s.logger.Info("Trip data loaded",
		zap.Int("waypoints", len(waypoints)),
		zap.Int("destinations", len(catalog.Destinations())),
		zap.Int("offer_groups", len(catalog.OfferGroups())),
	)
	s.notify(Event{Kind: UpdateInit})
	return nil
}

func (s *Store) fetchAll(ctx context.Context) ([]models.Waypoint, *models.Catalog, error) {
	points, err := s.remote.Points(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching points: %w", err)
	}
	destinations, err := s.remote.Destinations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching destinations: %w", err)
	}
	groups, err := s.remote.Offers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching offers: %w", err)
	}

	waypoints := make([]models.Waypoint, 0, len(points))
	for _, p := range points {
		w, err := AdaptToClient(p)
		if err != nil {
			return nil, nil, err
		}
		waypoints = append(waypoints, w)
	}

	return waypoints, models.NewCatalog(destinations, groups), nil
}

// Create sends a new waypoint to the trip API and prepends the confirmed
// waypoint to the list.
func (s *Store) Create(ctx context.Context, draft models.Waypoint) (models.Waypoint, error) {
	catalog, err := s.checkMutable()
	if err != nil {
		return models.Waypoint{}, err
	}
	if err := draft.Validate(catalog); err != nil {
		return models.Waypoint{}, fmt.Errorf("%w: %v", ErrInvalidWaypoint, err)
	}

	p := AdaptToServer(draft)
	p.ID = models.UnassignedID

	resp, err := s.remote.CreatePoint(ctx, p)
	if err != nil {
		s.logger.Warn("Create rejected", zap.Error(err))
		return models.Waypoint{}, fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}
	created, err := AdaptToClient(resp)
	if err != nil {
		return models.Waypoint{}, fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}

	s.mu.Lock()
	s.waypoints = append([]models.Waypoint{created}, s.waypoints...)
	s.mu.Unlock()

	s.logger.Debug("Waypoint created", zap.String("id", created.ID))
	payload := created.Clone()
	s.notify(Event{Kind: UpdateCreated, Waypoint: &payload})
	return created, nil
}

// Update replaces a waypoint after the trip API confirms the change. The
// waypoint keeps its list position; observers are notified with kind.
func (s *Store) Update(ctx context.Context, kind UpdateKind, w models.Waypoint) (models.Waypoint, error) {
	if !kind.Severity() {
		return models.Waypoint{}, fmt.Errorf("invalid update kind %q", kind)
	}
	catalog, err := s.checkMutable()
	if err != nil {
		return models.Waypoint{}, err
	}
	if !s.contains(w.ID) {
		return models.Waypoint{}, fmt.Errorf("%w: %s", ErrNotFound, w.ID)
	}
	if err := w.Validate(catalog); err != nil {
		return models.Waypoint{}, fmt.Errorf("%w: %v", ErrInvalidWaypoint, err)
	}

	resp, err := s.remote.UpdatePoint(ctx, AdaptToServer(w))
	if err != nil {
		s.logger.Warn("Update rejected", zap.String("id", w.ID), zap.Error(err))
		return models.Waypoint{}, fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}
	updated, err := AdaptToClient(resp)
	if err != nil {
		return models.Waypoint{}, fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}

	s.mu.Lock()
	i := s.indexOf(w.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.Waypoint{}, fmt.Errorf("%w: %s", ErrNotFound, w.ID)
	}
	s.waypoints[i] = updated
	s.mu.Unlock()

	payload := updated.Clone()
	s.notify(Event{Kind: kind, Waypoint: &payload})
	return updated, nil
}

// Delete removes a waypoint after the trip API confirms the deletion.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.checkMutable(); err != nil {
		return err
	}
	if !s.contains(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.remote.DeletePoint(ctx, id); err != nil {
		s.logger.Warn("Delete rejected", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.waypoints = append(s.waypoints[:i:i], s.waypoints[i+1:]...)
	}
	s.mu.Unlock()

	s.notify(Event{Kind: UpdateMinor, RemovedID: id})
	return nil
}

func (s *Store) checkMutable() (*models.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, fmt.Errorf("%w: state %s", ErrNotReady, s.state)
	}
	return s.catalog, nil
}

func (s *Store) contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	if id == models.UnassignedID {
		return -1
	}
	for i, w := range s.waypoints {
		if w.ID == id {
			return i
		}
	}
	return -1
}
