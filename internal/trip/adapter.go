package trip

import (
	"fmt"
	"time"

	"github.com/trip-board/backend/internal/remote"
	"github.com/trip-board/backend/internal/storage/models"
)

// AdaptToClient converts a wire-format point into the internal waypoint format.
func AdaptToClient(p remote.Point) (models.Waypoint, error) {
	dateFrom, err := time.Parse(time.RFC3339Nano, p.DateFrom)
	if err != nil {
		return models.Waypoint{}, fmt.Errorf("parsing date_from of point %q: %w", p.ID, err)
	}
	dateTo, err := time.Parse(time.RFC3339Nano, p.DateTo)
	if err != nil {
		return models.Waypoint{}, fmt.Errorf("parsing date_to of point %q: %w", p.ID, err)
	}

	offers := append([]string{}, p.Offers...)

	return models.Waypoint{
		ID:          p.ID,
		Type:        models.WaypointType(p.Type),
		Destination: p.Destination,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		BasePrice:   p.BasePrice,
		Offers:      offers,
		IsFavorite:  p.IsFavorite,
	}, nil
}

// AdaptToServer converts an internal waypoint into the wire format.
// Dates are sent as UTC ISO-8601 strings.
func AdaptToServer(w models.Waypoint) remote.Point {
	offers := append([]string{}, w.Offers...)

	return remote.Point{
		ID:          w.ID,
		Type:        string(w.Type),
		Destination: w.Destination,
		BasePrice:   w.BasePrice,
		DateFrom:    w.DateFrom.UTC().Format(time.RFC3339Nano),
		DateTo:      w.DateTo.UTC().Format(time.RFC3339Nano),
		IsFavorite:  w.IsFavorite,
		Offers:      offers,
	}
}
