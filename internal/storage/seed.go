package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/ghodss/yaml"

	"github.com/trip-board/backend/internal/storage/models"
)

// Seed is a catalog document: reference tables plus optional waypoints.
//
//	destinations:
//	  - id: d1
//	    name: Geneva
//	    pictures: [{src: "https://...", description: "Old town"}]
//	offers:
//	  - type: taxi
//	    offers: [{id: o1, title: Upgrade to business, price: 120}]
//	points:
//	  - type: taxi
//	    destination: d1
//	    basePrice: 100
//	    dateFrom: 2024-03-10T10:00:00Z
//	    dateTo: 2024-03-10T11:00:00Z
type Seed struct {
	Destinations []models.Destination `json:"destinations"`
	Offers       []models.OfferGroup  `json:"offers"`
	Points       []SeedPoint          `json:"points"`
}

// SeedPoint is a waypoint in a seed document. Ids are assigned on import.
type SeedPoint struct {
	Type        models.WaypointType `json:"type"`
	Destination string              `json:"destination"`
	BasePrice   int                 `json:"basePrice"`
	DateFrom    time.Time           `json:"dateFrom"`
	DateTo      time.Time           `json:"dateTo"`
	IsFavorite  bool                `json:"isFavorite"`
	Offers      []string            `json:"offers"`
}

// SeedResult counts what an import wrote.
type SeedResult struct {
	Destinations int
	Offers       int
	Points       int
}

// ReadSeedFile parses a YAML (or JSON) seed document.
func ReadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

// ParseSeed parses a YAML (or JSON) seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	return &s, nil
}

// ImportSeed writes a seed document in one transaction. Reference rows are
// upserted; points are validated against the resulting catalog and added.
func ImportSeed(ctx context.Context, db *DB, s *Seed) (SeedResult, error) {
	var res SeedResult
	destinations := NewDestinationRepository(db)
	offers := NewOfferRepository(db)
	points := NewPointRepository(db)

	catalog := models.NewCatalog(s.Destinations, s.Offers)
	for i, p := range s.Points {
		w := p.waypoint()
		if err := w.Validate(catalog); err != nil {
			return res, fmt.Errorf("point %d: %w", i, err)
		}
	}

	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, d := range s.Destinations {
			if err := destinations.Upsert(ctx, tx, d); err != nil {
				return err
			}
			res.Destinations++
		}
		for _, g := range s.Offers {
			if err := offers.UpsertGroup(ctx, tx, g); err != nil {
				return err
			}
			res.Offers += len(g.Offers)
		}
		// Newest rows list first, so insert backwards to keep document order.
		for i := len(s.Points) - 1; i >= 0; i-- {
			w := s.Points[i].waypoint()
			if err := points.insert(ctx, tx, &w); err != nil {
				return err
			}
			res.Points++
		}
		return nil
	})
	return res, err
}

func (p SeedPoint) waypoint() models.Waypoint {
	offers := p.Offers
	if offers == nil {
		offers = []string{}
	}
	return models.Waypoint{
		Type:        p.Type,
		Destination: p.Destination,
		BasePrice:   p.BasePrice,
		DateFrom:    p.DateFrom,
		DateTo:      p.DateTo,
		IsFavorite:  p.IsFavorite,
		Offers:      offers,
	}
}
