// Package triptest provides an in-memory trip API for tests.
package triptest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/trip-board/backend/internal/remote"
	"github.com/trip-board/backend/internal/storage/models"
)

// ErrRejected is a convenient failure for the Fail* fields.
var ErrRejected = errors.New("triptest: rejected")

// Remote is a fake trip API. It records every call. Set a Fail* field to
// make the matching call fail.
type Remote struct {
	mu sync.Mutex

	points       []remote.Point
	destinations []models.Destination
	groups       []models.OfferGroup
	nextID       int
	calls        map[string]int

	FailLoad   error
	FailCreate error
	FailUpdate error
	FailDelete error
}

// NewRemote creates a fake seeded with the given data.
func NewRemote(points []remote.Point, destinations []models.Destination, groups []models.OfferGroup) *Remote {
	return &Remote{
		points:       append([]remote.Point(nil), points...),
		destinations: destinations,
		groups:       groups,
		nextID:       1000,
		calls:        make(map[string]int),
	}
}

// Calls returns how many times the named method was called.
func (r *Remote) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (r *Remote) TotalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

// Stored returns the points currently held by the fake.
func (r *Remote) Stored() []remote.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]remote.Point(nil), r.points...)
}

// SetFailures replaces every Fail* field at once.
func (r *Remote) SetFailures(load, create, update, del error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FailLoad, r.FailCreate, r.FailUpdate, r.FailDelete = load, create, update, del
}

func (r *Remote) Points(ctx context.Context) ([]remote.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Points"]++
	if r.FailLoad != nil {
		return nil, r.FailLoad
	}
	return append([]remote.Point(nil), r.points...), nil
}

func (r *Remote) Destinations(ctx context.Context) ([]models.Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Destinations"]++
	if r.FailLoad != nil {
		return nil, r.FailLoad
	}
	return r.destinations, nil
}

func (r *Remote) Offers(ctx context.Context) ([]models.OfferGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Offers"]++
	if r.FailLoad != nil {
		return nil, r.FailLoad
	}
	return r.groups, nil
}

func (r *Remote) CreatePoint(ctx context.Context, p remote.Point) (remote.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["CreatePoint"]++
	if r.FailCreate != nil {
		return remote.Point{}, r.FailCreate
	}
	r.nextID++
	p.ID = strconv.Itoa(r.nextID)
	r.points = append([]remote.Point{p}, r.points...)
	return p, nil
}

func (r *Remote) UpdatePoint(ctx context.Context, p remote.Point) (remote.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["UpdatePoint"]++
	if r.FailUpdate != nil {
		return remote.Point{}, r.FailUpdate
	}
	for i := range r.points {
		if r.points[i].ID == p.ID {
			r.points[i] = p
			return p, nil
		}
	}
	return remote.Point{}, &remote.StatusError{Status: 404, Body: fmt.Sprintf("point %s not found", p.ID)}
}

func (r *Remote) DeletePoint(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["DeletePoint"]++
	if r.FailDelete != nil {
		return r.FailDelete
	}
	for i := range r.points {
		if r.points[i].ID == id {
			r.points = append(r.points[:i], r.points[i+1:]...)
			return nil
		}
	}
	return &remote.StatusError{Status: 404, Body: fmt.Sprintf("point %s not found", id)}
}
