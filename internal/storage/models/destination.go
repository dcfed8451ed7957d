package models

// Destination is reference data describing a place a waypoint can point to.
type Destination struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Pictures    []Picture `json:"pictures"`
}

// Picture is a captioned image of a destination.
type Picture struct {
	Src         string `json:"src"`
	Description string `json:"description"`
}

// Offer is a paid add-on. Offer ids are unique only within their OfferGroup.
type Offer struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int    `json:"price"`
}

// OfferGroup holds the offers available for one waypoint type.
type OfferGroup struct {
	Type   WaypointType `json:"type"`
	Offers []Offer      `json:"offers"`
}

// Catalog indexes the reference tables loaded alongside the waypoints.
// A Catalog is immutable once built.
type Catalog struct {
	destinations []Destination
	groups       []OfferGroup

	byID   map[string]int
	byName map[string]int
	byType map[WaypointType]int
}

// NewCatalog builds a catalog from destinations and offer groups.
func NewCatalog(destinations []Destination, groups []OfferGroup) *Catalog {
	c := &Catalog{
		destinations: append([]Destination(nil), destinations...),
		groups:       append([]OfferGroup(nil), groups...),
		byID:         make(map[string]int, len(destinations)),
		byName:       make(map[string]int, len(destinations)),
		byType:       make(map[WaypointType]int, len(groups)),
	}
	for i, d := range c.destinations {
		c.byID[d.ID] = i
		c.byName[d.Name] = i
	}
	for i, g := range c.groups {
		c.byType[g.Type] = i
	}
	return c
}

// EmptyCatalog returns a catalog with no reference data.
func EmptyCatalog() *Catalog {
	return NewCatalog(nil, nil)
}

// Destinations returns the destinations in load order.
func (c *Catalog) Destinations() []Destination {
	return append([]Destination(nil), c.destinations...)
}

// OfferGroups returns the offer groups in load order.
func (c *Catalog) OfferGroups() []OfferGroup {
	return append([]OfferGroup(nil), c.groups...)
}

// Destination looks up a destination by id.
func (c *Catalog) Destination(id string) (Destination, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Destination{}, false
	}
	return c.destinations[i], true
}

// DestinationByName resolves a destination by exact name match.
func (c *Catalog) DestinationByName(name string) (Destination, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Destination{}, false
	}
	return c.destinations[i], true
}

// OffersFor returns the offers available for a waypoint type.
func (c *Catalog) OffersFor(t WaypointType) []Offer {
	i, ok := c.byType[t]
	if !ok {
		return nil
	}
	return c.groups[i].Offers
}

// Offer resolves an offer by its (type, id) key.
func (c *Catalog) Offer(t WaypointType, id string) (Offer, bool) {
	for _, o := range c.OffersFor(t) {
		if o.ID == id {
			return o, true
		}
	}
	return Offer{}, false
}

// SelectedOffers resolves offer ids within the group of type t, in group order.
// Ids that do not belong to the group are skipped.
func (c *Catalog) SelectedOffers(t WaypointType, ids []string) []Offer {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var selected []Offer
	for _, o := range c.OffersFor(t) {
		if want[o.ID] {
			selected = append(selected, o)
		}
	}
	return selected
}
