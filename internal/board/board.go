// Package board orchestrates the waypoint list: it turns store and filter
// notifications into item sessions and renders, and routes user commands
// to the sessions.
package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/projection"
	"github.com/trip-board/backend/internal/session"
	"github.com/trip-board/backend/internal/storage/models"
	"github.com/trip-board/backend/internal/trip"
)

// Store is the waypoint store as seen by the board.
type Store interface {
	Subscribe(fn trip.Observer) (unsubscribe func())
	Load(ctx context.Context) error
	Create(ctx context.Context, draft models.Waypoint) (models.Waypoint, error)
	Update(ctx context.Context, kind trip.UpdateKind, w models.Waypoint) (models.Waypoint, error)
	Delete(ctx context.Context, id string) error
	Waypoints() []models.Waypoint
	Catalog() *models.Catalog
}

// Runner executes a remote call off the board lock.
type Runner func(fn func())

// Option configures a Board.
type Option func(*Board)

// WithClock replaces the clock used for the future filter.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithRunner replaces the runner of remote calls. The default starts a
// goroutine per call.
func WithRunner(run Runner) Option {
	return func(b *Board) { b.run = run }
}

// WithRequestTimeout bounds each remote call.
func WithRequestTimeout(d time.Duration) Option {
	return func(b *Board) { b.timeout = d }
}

// Board is the orchestrator. All of its state is guarded by mu; sessions
// call back into it through host while mu is held.
type Board struct {
	store    Store
	filters  *filter.Model
	renderer Renderer
	logger   *zap.Logger
	keys     *session.KeyBus
	host     *host

	now     func() time.Time
	run     Runner
	timeout time.Duration

	mu              sync.Mutex
	state           State
	sortKey         projection.SortKey
	futureAvailable bool
	items           []*session.Item
	index           map[string]*session.Item
	newPoint        *session.NewWaypoint
	pending         []func()

	unsubscribe func()
}

// New creates a board in the loading state and subscribes it to the store
// and the filter model. The filter model is owned by the board from then
// on; change it with a ChangeFilter command.
func New(store Store, filters *filter.Model, renderer Renderer, logger *zap.Logger, opts ...Option) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Board{
		store:    store,
		filters:  filters,
		renderer: renderer,
		logger:   logger.Named("board"),
		keys:     session.NewKeyBus(),
		now:      time.Now,
		run:      func(fn func()) { go fn() },
		timeout:  30 * time.Second,
		state:    StateLoading,
		index:    make(map[string]*session.Item),
	}
	b.host = &host{b: b}
	for _, opt := range opts {
		opt(b)
	}

	b.unsubscribe = store.Subscribe(b.handleStoreEvent)
	filters.Subscribe(b.handleFilterChange)
	return b
}

// Init renders the loading state and starts the initial load.
func (b *Board) Init(ctx context.Context) {
	_ = b.do(func() error {
		b.state = StateLoading
		b.renderer.RenderBoard(b.view())
		b.schedule(func() { b.load(ctx) })
		return nil
	})
}

// Close detaches the board from the store.
func (b *Board) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// Handle runs one user command.
func (b *Board) Handle(c Command) error {
	h, ok := handlers[c.Type()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, c.Type())
	}
	err := b.do(func() error { return h(b, c) })
	if err != nil {
		b.logger.Debug("Command refused", zap.String("command", string(c.Type())), zap.Error(err))
	}
	return err
}

// Snapshot returns the current view of the board.
func (b *Board) Snapshot() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view()
}

// State returns the board state.
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Tick re-evaluates the clock-dependent parts of the board: the future
// projection and the availability of the future filter. The list is not
// rebuilt while a form is open; the next tick after it closes catches up.
func (b *Board) Tick() {
	_ = b.do(func() error {
		if !b.state.Shown() || b.busy() {
			return nil
		}
		all := b.store.Waypoints()
		now := b.now()

		projected := projection.Project(all, b.filters.Current(), b.sortKey, now)
		if !b.editing() && !sameOrder(projected, b.items) {
			b.logger.Debug("Projection moved with the clock, rebuilding")
			b.rebuild()
			return nil
		}
		if avail := projection.HasFuture(all, now); avail != b.futureAvailable {
			b.futureAvailable = avail
			b.renderer.RenderFilters(b.filterOptions())
		}
		return nil
	})
}

// do runs fn under the board lock, then hands queued remote calls to the
// runner.
func (b *Board) do(fn func() error) error {
	b.mu.Lock()
	err := fn()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, job := range pending {
		b.run(job)
	}
	return err
}

func (b *Board) schedule(job func()) {
	b.pending = append(b.pending, job)
}

func (b *Board) load(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.store.Load(ctx); err != nil {
		b.logger.Warn("Initial load failed", zap.Error(err))
	}
}

// execute performs a session action against the store. Success is
// reported by the store notification; failure is routed back to the
// originating session.
func (b *Board) execute(a session.Action) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	var err error
	switch a.Kind {
	case session.ActionCreate:
		_, err = b.store.Create(ctx, a.Waypoint)
	case session.ActionUpdate:
		_, err = b.store.Update(ctx, a.Severity, a.Waypoint)
	case session.ActionDelete:
		err = b.store.Delete(ctx, a.Target)
	default:
		err = fmt.Errorf("unknown action %q", a.Kind)
	}
	if err == nil {
		return
	}

	b.logger.Warn("Waypoint request failed",
		zap.String("action", string(a.Kind)),
		zap.String("target", a.Target),
		zap.Error(err),
	)
	_ = b.do(func() error {
		b.abort(a.Target)
		return nil
	})
}

func (b *Board) abort(target string) {
	if target == session.NewTarget {
		if b.newPoint != nil {
			b.newPoint.Abort()
		}
		return
	}
	if it, ok := b.index[target]; ok {
		it.Abort()
	}
}

func (b *Board) handleStoreEvent(e trip.Event) {
	_ = b.do(func() error {
		switch e.Kind {
		case trip.UpdateInit:
			b.sortKey = projection.SortNone
			b.rebuild()
		case trip.UpdateInitFailed:
			b.destroySessions()
			b.state = StateError
			b.renderer.RenderBoard(b.view())
		case trip.UpdatePatch:
			if !b.state.Shown() || e.Waypoint == nil {
				return nil
			}
			if it, ok := b.index[e.Waypoint.ID]; ok {
				it.Reset(*e.Waypoint)
			}
		default:
			if !b.state.Shown() {
				return nil
			}
			b.sortKey = projection.SortNone
			b.rebuild()
		}
		return nil
	})
}

// handleFilterChange runs synchronously inside ChangeFilter and
// OpenNewWaypoint, with the board already locked.
func (b *Board) handleFilterChange(filter.Type) {
	if !b.state.Shown() {
		return
	}
	b.sortKey = projection.SortNone
	b.rebuild()
}

func (b *Board) reload() error {
	if b.state == StateLoading {
		return nil
	}
	b.destroySessions()
	b.state = StateLoading
	b.renderer.RenderBoard(b.view())
	b.schedule(func() { b.load(context.Background()) })
	return nil
}

func (b *Board) changeFilter(f filter.Type) error {
	if _, err := filter.Parse(string(f)); err != nil {
		return err
	}
	if !b.state.Shown() {
		return ErrNotReady
	}
	if b.busy() {
		return errInFlight
	}
	if f == b.filters.Current() {
		return nil
	}
	if f == filter.Future && !b.futureAvailable {
		return fmt.Errorf("%w: filter %s", ErrOptionDisabled, f)
	}
	return b.filters.SetFilter(f)
}

func (b *Board) changeSort(key projection.SortKey) error {
	if b.state != StateReady {
		return ErrNotReady
	}
	if b.busy() {
		return errInFlight
	}
	if !key.Sortable() {
		return fmt.Errorf("%w: sort %s", ErrOptionDisabled, key)
	}
	if key == b.sortKey {
		return nil
	}
	b.sortKey = key
	b.rebuild()
	return nil
}

func (b *Board) openNewWaypoint() error {
	if !b.state.Shown() {
		return ErrNotReady
	}
	if b.newPoint != nil {
		return nil
	}
	if b.busy() {
		return errInFlight
	}

	b.host.CollapseOthers(session.NewTarget)
	if b.filters.Current() != filter.Everything {
		if err := b.filters.SetFilter(filter.Everything); err != nil {
			return err
		}
	}

	var s *session.NewWaypoint
	s = session.NewNewWaypoint(b.store.Catalog(), b.host, b.keys, b.now(), func() {
		if b.newPoint == s {
			b.newPoint = nil
		}
	})
	b.newPoint = s
	return s.Open()
}

func (b *Board) item(id string) (*session.Item, error) {
	if !b.state.Shown() {
		return nil, ErrNotReady
	}
	it, ok := b.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return it, nil
}

func (b *Board) newSession() (*session.NewWaypoint, error) {
	if b.newPoint == nil {
		return nil, fmt.Errorf("%w: new waypoint", ErrNoSession)
	}
	return b.newPoint, nil
}

// rebuild destroys every session and redraws the list from a fresh
// projection.
func (b *Board) rebuild() {
	b.destroySessions()

	all := b.store.Waypoints()
	catalog := b.store.Catalog()
	now := b.now()

	projected := projection.Project(all, b.filters.Current(), b.sortKey, now)
	for _, w := range projected {
		it := session.NewItem(w, catalog, b.host, b.keys)
		b.items = append(b.items, it)
		b.index[w.ID] = it
	}
	b.futureAvailable = projection.HasFuture(all, now)

	if len(projected) == 0 {
		b.state = StateEmpty
	} else {
		b.state = StateReady
	}
	b.renderer.RenderBoard(b.view())
}

func (b *Board) destroySessions() {
	for _, it := range b.items {
		it.Destroy()
	}
	b.items = nil
	b.index = make(map[string]*session.Item)

	if b.newPoint != nil {
		b.newPoint.Destroy()
		b.newPoint = nil
	}
}

// editing reports whether any form is shown.
func (b *Board) editing() bool {
	for _, it := range b.items {
		if it.State().Open() {
			return true
		}
	}
	return b.newPoint != nil
}

func (b *Board) busy() bool {
	for _, it := range b.items {
		if it.State().Busy() {
			return true
		}
	}
	return b.newPoint != nil && b.newPoint.State().Busy()
}

func (b *Board) view() View {
	v := View{
		State:             b.state,
		Filters:           b.filterOptions(),
		Items:             make([]session.ItemView, 0, len(b.items)),
		NewButtonDisabled: !b.state.Shown() || b.newPoint != nil,
	}
	for _, it := range b.items {
		v.Items = append(v.Items, it.View())
	}
	if b.newPoint != nil {
		v.NewWaypoint = b.newPoint.View()
	}

	switch b.state {
	case StateLoading:
		v.Message = MessageLoading
	case StateError:
		v.Message = MessageLoadFailed
	case StateEmpty:
		v.Message = EmptyMessages[b.filters.Current()]
	case StateReady:
		v.Sorts = b.sortOptions()
	}
	return v
}

func (b *Board) filterOptions() []FilterOption {
	current := b.filters.Current()
	opts := make([]FilterOption, 0, len(filter.Types))
	for _, t := range filter.Types {
		opts = append(opts, FilterOption{
			Type:     t,
			Checked:  t == current,
			Disabled: !b.state.Shown() || (t == filter.Future && !b.futureAvailable),
		})
	}
	return opts
}

func (b *Board) sortOptions() []SortOption {
	opts := make([]SortOption, 0, len(projection.SortOptions))
	for _, k := range projection.SortOptions {
		opts = append(opts, SortOption{
			Key:      k,
			Checked:  k == b.sortKey,
			Disabled: !k.Sortable(),
		})
	}
	return opts
}

func sameOrder(projected []models.Waypoint, items []*session.Item) bool {
	if len(projected) != len(items) {
		return false
	}
	for i, w := range projected {
		if items[i].ID() != w.ID {
			return false
		}
	}
	return true
}

// host is the session-facing side of the board. Its methods run with the
// board locked.
type host struct {
	b *Board
}

func (h *host) CollapseOthers(keep string) {
	for _, it := range h.b.items {
		if it.ID() != keep && it.State().Open() {
			_ = it.Collapse()
		}
	}
	if keep != session.NewTarget && h.b.newPoint != nil {
		h.b.newPoint.Close()
	}
}

func (h *host) Dispatch(a session.Action) {
	h.b.schedule(func() { h.b.execute(a) })
}

func (h *host) RenderItem(v session.ItemView) {
	h.b.renderer.RenderItem(v)
}

func (h *host) RenderNewWaypoint(v *session.FormView) {
	h.b.renderer.RenderNewWaypoint(v)
}

func (h *host) Shake(target string) {
	h.b.renderer.Shake(target)
}
