package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/trip-board/backend/internal/storage/models"
)

const seedYAML = `
destinations:
  - id: d1
    name: Amsterdam
    description: Canals
    pictures:
      - src: https://example.com/a.jpg
        description: Dam square
  - id: d2
    name: Geneva
offers:
  - type: taxi
    offers:
      - {id: o1, title: Upgrade to business, price: 120}
      - {id: o2, title: Choose the radio station, price: 60}
  - type: flight
    offers:
      - {id: o1, title: Add luggage, price: 30}
points:
  - type: taxi
    destination: d1
    basePrice: 100
    dateFrom: "2024-03-10T10:00:00Z"
    dateTo: "2024-03-10T11:00:00Z"
    offers: [o2, o1]
  - type: flight
    destination: d2
    basePrice: 300
    dateFrom: "2024-03-11T10:00:00Z"
    dateTo: "2024-03-11T14:00:00Z"
    isFavorite: true
`

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := RunMigrations(db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seededDB(t *testing.T) *DB {
	t.Helper()
	db := openTestDB(t)
	s, err := ParseSeed([]byte(seedYAML))
	if err != nil {
		t.Fatalf("parse seed: %v", err)
	}
	res, err := ImportSeed(context.Background(), db, s)
	if err != nil {
		t.Fatalf("import seed: %v", err)
	}
	if res.Destinations != 2 || res.Offers != 3 || res.Points != 2 {
		t.Fatalf("unexpected import result %+v", res)
	}
	return db
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := RunMigrations(db, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestSeedAndList(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	destinations, err := NewDestinationRepository(db).List(ctx)
	if err != nil {
		t.Fatalf("list destinations: %v", err)
	}
	if len(destinations) != 2 || destinations[0].Name != "Amsterdam" || len(destinations[0].Pictures) != 1 {
		t.Fatalf("unexpected destinations %+v", destinations)
	}

	groups, err := NewOfferRepository(db).ListGroups(ctx)
	if err != nil {
		t.Fatalf("list offers: %v", err)
	}
	if len(groups) != len(models.WaypointTypes) {
		t.Fatalf("expected a group per type, got %d", len(groups))
	}
	catalog := models.NewCatalog(destinations, groups)
	if o, ok := catalog.Offer(models.TypeFlight, "o1"); !ok || o.Title != "Add luggage" {
		t.Fatalf("expected type-scoped offer o1, got %+v", o)
	}

	points, err := NewPointRepository(db).List(ctx)
	if err != nil {
		t.Fatalf("list points: %v", err)
	}
	if len(points) != 2 || points[0].Type != models.TypeTaxi || points[1].Type != models.TypeFlight {
		t.Fatalf("expected document order, got %+v", points)
	}
	if got := points[0].Offers; len(got) != 2 || got[0] != "o2" || got[1] != "o1" {
		t.Fatalf("expected offer order kept, got %v", got)
	}
	if !points[1].IsFavorite || !points[1].DateFrom.Equal(time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected point %+v", points[1])
	}
}

func TestImportSeedRejectsInvalidPoints(t *testing.T) {
	db := openTestDB(t)
	s, _ := ParseSeed([]byte(seedYAML))
	s.Points[0].Offers = []string{"o9"}

	if _, err := ImportSeed(context.Background(), db, s); !errors.Is(err, models.ErrForeignOffer) {
		t.Fatalf("expected ErrForeignOffer, got %v", err)
	}
	destinations, _ := NewDestinationRepository(db).List(context.Background())
	if len(destinations) != 0 {
		t.Fatal("expected nothing written")
	}
}

func TestImportSeedRejectsDuplicateOffers(t *testing.T) {
	db := openTestDB(t)
	s, _ := ParseSeed([]byte(seedYAML))
	s.Points[0].Offers = []string{"o1", "o2", "o1"}

	if _, err := ImportSeed(context.Background(), db, s); !errors.Is(err, models.ErrDuplicateOffer) {
		t.Fatalf("expected ErrDuplicateOffer, got %v", err)
	}
}

func TestPointRepositoryCRUD(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	repo := NewPointRepository(db)

	w := models.Waypoint{
		Type:        models.TypeTaxi,
		Destination: "d2",
		BasePrice:   40,
		DateFrom:    time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		DateTo:      time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC),
		Offers:      []string{"o1"},
	}
	if err := repo.Create(ctx, &w); err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.ID == "" {
		t.Fatal("expected assigned id")
	}

	list, _ := repo.List(ctx)
	if len(list) != 3 || list[0].ID != w.ID {
		t.Fatalf("expected new point first, got %+v", list)
	}

	w.BasePrice = 45
	w.Offers = []string{}
	if err := repo.Update(ctx, &w); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BasePrice != 45 || len(got.Offers) != 0 {
		t.Fatalf("unexpected updated point %+v", got)
	}

	if err := repo.Delete(ctx, w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, w.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, w.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	missing := w
	missing.ID = "missing"
	if err := repo.Update(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}
