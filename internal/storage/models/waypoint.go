// Package models contains the domain models for the application.
package models

import (
	"errors"
	"fmt"
	"time"
)

// UnassignedID is the id of a waypoint that has not been saved yet.
const UnassignedID = ""

// WaypointType identifies the kind of travel or activity a waypoint represents.
type WaypointType string

// Waypoint type constants
const (
	TypeTaxi        WaypointType = "taxi"
	TypeBus         WaypointType = "bus"
	TypeTrain       WaypointType = "train"
	TypeShip        WaypointType = "ship"
	TypeDrive       WaypointType = "drive"
	TypeFlight      WaypointType = "flight"
	TypeCheckIn     WaypointType = "check-in"
	TypeSightseeing WaypointType = "sightseeing"
	TypeRestaurant  WaypointType = "restaurant"
)

// WaypointTypes lists every waypoint type in display order.
var WaypointTypes = []WaypointType{
	TypeTaxi, TypeBus, TypeTrain, TypeShip, TypeDrive,
	TypeFlight, TypeCheckIn, TypeSightseeing, TypeRestaurant,
}

// Valid reports whether t is one of the known waypoint types.
func (t WaypointType) Valid() bool {
	for _, known := range WaypointTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Waypoint is one leg or stop of the trip.
type Waypoint struct {
	ID          string       `json:"id"`
	Type        WaypointType `json:"type"`
	Destination string       `json:"destination"`
	DateFrom    time.Time    `json:"dateFrom"`
	DateTo      time.Time    `json:"dateTo"`
	BasePrice   int          `json:"basePrice"`
	Offers      []string     `json:"offers"`
	IsFavorite  bool         `json:"isFavorite"`
}

// IsNew reports whether the waypoint has not been assigned an id by the remote API.
func (w Waypoint) IsNew() bool {
	return w.ID == UnassignedID
}

// Duration returns the length of the waypoint's time window.
func (w Waypoint) Duration() time.Duration {
	return w.DateTo.Sub(w.DateFrom)
}

// Clone returns a copy of the waypoint that shares no slices with w.
func (w Waypoint) Clone() Waypoint {
	c := w
	if w.Offers != nil {
		c.Offers = append([]string(nil), w.Offers...)
	}
	return c
}

// Validation errors returned by Waypoint.Validate.
var (
	ErrUnknownType         = errors.New("unknown waypoint type")
	ErrDanglingDestination = errors.New("destination does not resolve")
	ErrDateRange           = errors.New("date_to is before date_from")
	ErrBasePrice           = errors.New("base price must be at least 1")
	ErrForeignOffer        = errors.New("offer does not belong to the waypoint type")
	ErrDuplicateOffer      = errors.New("offer selected more than once")
)

// Validate checks the invariants of a committed waypoint against the
// reference tables.
func (w Waypoint) Validate(c *Catalog) error {
	if !w.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
	if _, ok := c.Destination(w.Destination); !ok {
		return fmt.Errorf("%w: %q", ErrDanglingDestination, w.Destination)
	}
	if w.DateTo.Before(w.DateFrom) {
		return ErrDateRange
	}
	if w.BasePrice < 1 {
		return ErrBasePrice
	}
	seen := make(map[string]bool, len(w.Offers))
	for _, id := range w.Offers {
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateOffer, id)
		}
		seen[id] = true
		if _, ok := c.Offer(w.Type, id); !ok {
			return fmt.Errorf("%w: %s/%s", ErrForeignOffer, w.Type, id)
		}
	}
	return nil
}
