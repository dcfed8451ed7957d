package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/trip-board/backend/internal/storage/models"
	"github.com/trip-board/backend/internal/trip"
)

// Validity holds the field-level validation flags of a draft.
type Validity struct {
	Price       bool `json:"price"`
	Destination bool `json:"destination"`
	DateRange   bool `json:"dateRange"`
}

// OK reports whether every field is valid.
func (v Validity) OK() bool {
	return v.Price && v.Destination && v.DateRange
}

// Draft is the working copy of a waypoint during an edit session. Form
// interactions mutate only the draft; the committed waypoint is untouched
// until the store confirms a submit.
type Draft struct {
	Base models.Waypoint `json:"base"`

	Type             models.WaypointType `json:"type"`
	DestinationID    string              `json:"destinationId"`
	DestinationInput string              `json:"destinationInput"`
	PriceInput       string              `json:"priceInput"`
	BasePrice        int                 `json:"basePrice"`
	Offers           []string            `json:"offers"`
	DateFrom         time.Time           `json:"dateFrom"`
	DateTo           time.Time           `json:"dateTo"`
	IsFavorite       bool                `json:"isFavorite"`

	Validity Validity `json:"validity"`
}

// NewDraft builds a draft from a committed waypoint.
func NewDraft(w models.Waypoint, c *models.Catalog) *Draft {
	d := &Draft{
		Base:          w.Clone(),
		Type:          w.Type,
		DestinationID: w.Destination,
		PriceInput:    strconv.Itoa(w.BasePrice),
		BasePrice:     w.BasePrice,
		Offers:        append([]string{}, w.Offers...),
		DateFrom:      w.DateFrom,
		DateTo:        w.DateTo,
		IsFavorite:    w.IsFavorite,
	}
	if dest, ok := c.Destination(w.Destination); ok {
		d.DestinationInput = dest.Name
		d.Validity.Destination = true
	}
	d.Validity.Price = w.BasePrice >= 1
	d.Validity.DateRange = !d.DateTo.Before(d.DateFrom)
	return d
}

// BlankDraft builds the draft of a waypoint that does not exist yet: a
// flight with no destination and no price, starting and ending at now.
func BlankDraft(now time.Time) *Draft {
	w := models.Waypoint{
		ID:       models.UnassignedID,
		Type:     models.TypeFlight,
		DateFrom: now,
		DateTo:   now,
		Offers:   []string{},
	}
	d := NewDraft(w, models.EmptyCatalog())
	d.PriceInput = ""
	return d
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Base = d.Base.Clone()
	c.Offers = append([]string{}, d.Offers...)
	return &c
}

// HasOffer reports whether the offer id is in the pending selection.
func (d *Draft) HasOffer(id string) bool {
	for _, o := range d.Offers {
		if o == id {
			return true
		}
	}
	return false
}

// Bounds returns the date-picker limits implied by the pending dates.
func (d *Draft) Bounds() (fromMax, toMin time.Time) {
	return d.DateTo, d.DateFrom
}

// Waypoint resolves the draft into a waypoint ready to be submitted.
func (d *Draft) Waypoint() models.Waypoint {
	w := d.Base.Clone()
	w.Type = d.Type
	w.Destination = d.DestinationID
	w.BasePrice = d.BasePrice
	w.Offers = append([]string{}, d.Offers...)
	w.DateFrom = d.DateFrom
	w.DateTo = d.DateTo
	w.IsFavorite = d.IsFavorite
	return w
}

// Severity classifies the pending change: PATCH when neither the price nor
// the start date changed, MINOR otherwise.
func (d *Draft) Severity() trip.UpdateKind {
	if d.BasePrice == d.Base.BasePrice && d.DateFrom.Equal(d.Base.DateFrom) {
		return trip.UpdatePatch
	}
	return trip.UpdateMinor
}

// Apply runs one form interaction against the draft.
func (d *Draft) Apply(change FieldChange, c *models.Catalog) error {
	return change.apply(d, c)
}

// FieldChange is one form interaction. The concrete types below are the
// complete set.
type FieldChange interface {
	apply(d *Draft, c *models.Catalog) error
}

// TypeChange selects a waypoint type. Switching to a different type clears
// the offer selection, since offers are scoped to a type.
type TypeChange struct {
	Type models.WaypointType
}

func (ch TypeChange) apply(d *Draft, _ *models.Catalog) error {
	if !ch.Type.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownType, ch.Type)
	}
	if ch.Type == d.Type {
		return nil
	}
	d.Type = ch.Type
	d.Offers = []string{}
	return nil
}

// DestinationInput is free text typed into the destination field. It
// resolves by exact name match.
type DestinationInput struct {
	Name string
}

func (ch DestinationInput) apply(d *Draft, c *models.Catalog) error {
	d.DestinationInput = ch.Name
	dest, ok := c.DestinationByName(ch.Name)
	if !ok {
		d.Validity.Destination = false
		return nil
	}
	d.DestinationID = dest.ID
	d.Validity.Destination = true
	return nil
}

// DateFromChange sets the start of the waypoint.
type DateFromChange struct {
	At time.Time
}

func (ch DateFromChange) apply(d *Draft, _ *models.Catalog) error {
	d.DateFrom = ch.At
	d.Validity.DateRange = !d.DateTo.Before(d.DateFrom)
	return nil
}

// DateToChange sets the end of the waypoint.
type DateToChange struct {
	At time.Time
}

func (ch DateToChange) apply(d *Draft, _ *models.Catalog) error {
	d.DateTo = ch.At
	d.Validity.DateRange = !d.DateTo.Before(d.DateFrom)
	return nil
}

// PriceInput is the raw content of the price field.
type PriceInput struct {
	Raw string
}

func (ch PriceInput) apply(d *Draft, _ *models.Catalog) error {
	d.PriceInput = ch.Raw
	price, ok := ParsePrice(ch.Raw)
	d.Validity.Price = ok
	if ok {
		d.BasePrice = price
	}
	return nil
}

// ParsePrice accepts finite whole numbers of at least 1.
func ParsePrice(raw string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// OfferToggle selects or deselects an offer of the pending type.
type OfferToggle struct {
	OfferID string
}

func (ch OfferToggle) apply(d *Draft, c *models.Catalog) error {
	if _, ok := c.Offer(d.Type, ch.OfferID); !ok {
		return fmt.Errorf("%w: %s/%s", models.ErrForeignOffer, d.Type, ch.OfferID)
	}
	for i, o := range d.Offers {
		if o == ch.OfferID {
			d.Offers = append(d.Offers[:i:i], d.Offers[i+1:]...)
			return nil
		}
	}
	d.Offers = append(d.Offers, ch.OfferID)
	return nil
}

// FavoriteToggle flips the favorite flag.
type FavoriteToggle struct{}

func (FavoriteToggle) apply(d *Draft, _ *models.Catalog) error {
	d.IsFavorite = !d.IsFavorite
	return nil
}
