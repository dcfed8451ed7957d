package projection

import (
	"testing"
	"time"

	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/storage/models"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func waypoints() []models.Waypoint {
	return []models.Waypoint{
		{ID: "1", DateFrom: now.Add(-24 * time.Hour), BasePrice: 100},
		{ID: "2", DateFrom: now.Add(24 * time.Hour), BasePrice: 300},
		{ID: "3", DateFrom: now, BasePrice: 100},
		{ID: "4", DateFrom: now.Add(-48 * time.Hour), BasePrice: 200},
	}
}

func ids(ws []models.Waypoint) string {
	s := ""
	for _, w := range ws {
		s += w.ID
	}
	return s
}

func TestProjectFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter filter.Type
		want   string
	}{
		{"everything passes all", filter.Everything, "1234"},
		{"future keeps starts at or after now", filter.Future, "23"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(waypoints(), tt.filter, SortNone, now)
			if ids(got) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, ids(got))
			}
		})
	}
}

func TestProjectSort(t *testing.T) {
	tests := []struct {
		name string
		key  SortKey
		want string
	}{
		{"none keeps server order", SortNone, "1234"},
		{"day ascending", SortDay, "4132"},
		{"price descending, ties stable", SortPrice, "2413"},
		{"unimplemented key keeps order", SortOffers, "1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(waypoints(), filter.Everything, tt.key, now)
			if ids(got) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, ids(got))
			}
		})
	}
}

func TestProjectIsNonDestructive(t *testing.T) {
	src := waypoints()

	_ = Project(src, filter.Everything, SortDay, now)
	if ids(src) != "1234" {
		t.Fatalf("input reordered: %s", ids(src))
	}
	if got := Project(src, filter.Everything, SortNone, now); ids(got) != "1234" {
		t.Fatalf("expected server order after re-sorting by none, got %s", ids(got))
	}
}

func TestScenarioYesterdayTomorrow(t *testing.T) {
	src := []models.Waypoint{
		{ID: "1", DateFrom: now.Add(-24 * time.Hour)},
		{ID: "2", DateFrom: now.Add(24 * time.Hour)},
	}
	if got := Project(src, filter.Future, SortNone, now); ids(got) != "2" {
		t.Fatalf("expected [2], got %s", ids(got))
	}

	past := src[:1]
	if got := Project(past, filter.Future, SortNone, now); len(got) != 0 {
		t.Fatalf("expected empty projection, got %s", ids(got))
	}
	if HasFuture(past, now) {
		t.Fatal("expected no future waypoints")
	}
}

func TestParseSortKey(t *testing.T) {
	for _, s := range []string{"", "day", "price"} {
		if _, err := ParseSortKey(s); err != nil {
			t.Errorf("ParseSortKey(%q): %v", s, err)
		}
	}
	for _, s := range []string{"event", "time", "offers", "bogus"} {
		if _, err := ParseSortKey(s); err == nil {
			t.Errorf("ParseSortKey(%q): expected error", s)
		}
	}
}
