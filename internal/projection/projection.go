// Package projection derives the displayed waypoint sequence from the store
// contents, the active filter and the active sort key.
package projection

import (
	"fmt"
	"sort"
	"time"

	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/storage/models"
)

// SortKey selects the ordering of the projection.
type SortKey string

// Sort keys. SortNone keeps server order.
const (
	SortNone   SortKey = ""
	SortDay    SortKey = "day"
	SortEvent  SortKey = "event"
	SortTime   SortKey = "time"
	SortPrice  SortKey = "price"
	SortOffers SortKey = "offers"
)

// SortOptions lists the sort controls in display order.
var SortOptions = []SortKey{SortDay, SortEvent, SortTime, SortPrice, SortOffers}

// Sortable reports whether the key has an ordering implemented.
func (k SortKey) Sortable() bool {
	return k == SortDay || k == SortPrice
}

// ParseSortKey converts a sort control value into a sortable key.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(s)
	if k == SortNone || k.Sortable() {
		return k, nil
	}
	return SortNone, fmt.Errorf("unsupported sort key %q", s)
}

// Project returns a new slice holding the waypoints that pass f, ordered by
// key. The input is never modified. Equal keys keep their input order.
func Project(waypoints []models.Waypoint, f filter.Type, key SortKey, now time.Time) []models.Waypoint {
	out := Filter(waypoints, f, now)

	switch key {
	case SortDay:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DateFrom.Before(out[j].DateFrom)
		})
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].BasePrice > out[j].BasePrice
		})
	}
	return out
}

// Filter returns the waypoints that pass f, in input order.
func Filter(waypoints []models.Waypoint, f filter.Type, now time.Time) []models.Waypoint {
	out := make([]models.Waypoint, 0, len(waypoints))
	for _, w := range waypoints {
		if f == filter.Future && w.DateFrom.Before(now) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// HasFuture reports whether any waypoint starts at or after now.
func HasFuture(waypoints []models.Waypoint, now time.Time) bool {
	for _, w := range waypoints {
		if !w.DateFrom.Before(now) {
			return true
		}
	}
	return false
}
