package session

import (
	"time"

	"github.com/trip-board/backend/internal/storage/models"
)

type fakeHost struct {
	collapsed []string
	actions   []Action
	items     []ItemView
	forms     []*FormView
	shaken    []string
}

func (h *fakeHost) CollapseOthers(keep string)    { h.collapsed = append(h.collapsed, keep) }
func (h *fakeHost) Dispatch(a Action)             { h.actions = append(h.actions, a) }
func (h *fakeHost) RenderItem(v ItemView)         { h.items = append(h.items, v) }
func (h *fakeHost) RenderNewWaypoint(v *FormView) { h.forms = append(h.forms, v) }
func (h *fakeHost) Shake(target string)           { h.shaken = append(h.shaken, target) }

func (h *fakeHost) lastItem() ItemView {
	return h.items[len(h.items)-1]
}

func (h *fakeHost) lastAction() Action {
	return h.actions[len(h.actions)-1]
}

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testCatalog() *models.Catalog {
	return models.NewCatalog(
		[]models.Destination{
			{ID: "d1", Name: "Amsterdam"},
			{ID: "d2", Name: "Geneva"},
		},
		[]models.OfferGroup{
			{Type: models.TypeTaxi, Offers: []models.Offer{
				{ID: "o1", Title: "Upgrade to business", Price: 120},
				{ID: "o2", Title: "Choose the radio station", Price: 60},
			}},
			{Type: models.TypeFlight, Offers: []models.Offer{
				{ID: "o1", Title: "Add luggage", Price: 30},
				{ID: "o3", Title: "Choose seats", Price: 5},
			}},
		},
	)
}

func testWaypoint() models.Waypoint {
	return models.Waypoint{
		ID:          "w1",
		Type:        models.TypeTaxi,
		Destination: "d1",
		DateFrom:    testNow.Add(time.Hour),
		DateTo:      testNow.Add(3 * time.Hour),
		BasePrice:   100,
		Offers:      []string{"o1", "o2"},
	}
}
