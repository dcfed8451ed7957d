package session

import (
	"fmt"
	"time"

	"github.com/trip-board/backend/internal/storage/models"
)

// ViewMode is the display mode of a list item.
type ViewMode string

// Item display modes
const (
	ModeSummary ViewMode = "summary"
	ModeEdit    ViewMode = "edit"
)

// Control labels
const (
	LabelSave     = "Save"
	LabelSaving   = "Saving..."
	LabelDelete   = "Delete"
	LabelDeleting = "Deleting..."
	LabelCancel   = "Cancel"
)

// ItemView is the rendered state of one list item.
type ItemView struct {
	ID      string       `json:"id"`
	Mode    ViewMode     `json:"mode"`
	Summary *SummaryView `json:"summary,omitempty"`
	Form    *FormView    `json:"form,omitempty"`
}

// SummaryView is the collapsed presentation of a committed waypoint.
type SummaryView struct {
	ID              string              `json:"id"`
	Type            models.WaypointType `json:"type"`
	DestinationName string              `json:"destinationName"`
	DateFrom        time.Time           `json:"dateFrom"`
	DateTo          time.Time           `json:"dateTo"`
	Duration        string              `json:"duration"`
	BasePrice       int                 `json:"basePrice"`
	Offers          []models.Offer      `json:"offers"`
	IsFavorite      bool                `json:"isFavorite"`
}

// OfferOption is an offer of the pending type with its selection state.
type OfferOption struct {
	models.Offer
	Checked bool `json:"checked"`
}

// FormView is the edit-form presentation of a draft.
type FormView struct {
	ID               string                `json:"id"`
	IsNew            bool                  `json:"isNew"`
	Type             models.WaypointType   `json:"type"`
	Types            []models.WaypointType `json:"types"`
	DestinationInput string                `json:"destinationInput"`
	Destination      *models.Destination   `json:"destination,omitempty"`
	DestinationNames []string              `json:"destinationNames"`
	DateFrom         time.Time             `json:"dateFrom"`
	DateTo           time.Time             `json:"dateTo"`
	DateFromMax      time.Time             `json:"dateFromMax"`
	DateToMin        time.Time             `json:"dateToMin"`
	PriceInput       string                `json:"priceInput"`
	Offers           []OfferOption         `json:"offers"`
	IsFavorite       bool                  `json:"isFavorite"`
	Validity         Validity              `json:"validity"`
	CanSave          bool                  `json:"canSave"`
	Disabled         bool                  `json:"disabled"`
	SaveLabel        string                `json:"saveLabel"`
	ResetLabel       string                `json:"resetLabel"`
}

// Summarize builds the summary presentation of a waypoint.
func Summarize(w models.Waypoint, c *models.Catalog) SummaryView {
	v := SummaryView{
		ID:         w.ID,
		Type:       w.Type,
		DateFrom:   w.DateFrom,
		DateTo:     w.DateTo,
		Duration:   FormatDuration(w.Duration()),
		BasePrice:  w.BasePrice,
		Offers:     c.SelectedOffers(w.Type, w.Offers),
		IsFavorite: w.IsFavorite,
	}
	if dest, ok := c.Destination(w.Destination); ok {
		v.DestinationName = dest.Name
	}
	return v
}

func buildForm(d *Draft, c *models.Catalog, state State) *FormView {
	fromMax, toMin := d.Bounds()
	v := &FormView{
		ID:               d.Base.ID,
		IsNew:            d.Base.IsNew(),
		Type:             d.Type,
		Types:            models.WaypointTypes,
		DestinationInput: d.DestinationInput,
		DateFrom:         d.DateFrom,
		DateTo:           d.DateTo,
		DateFromMax:      fromMax,
		DateToMin:        toMin,
		PriceInput:       d.PriceInput,
		IsFavorite:       d.IsFavorite,
		Validity:         d.Validity,
		Disabled:         state.Busy(),
		SaveLabel:        LabelSave,
		ResetLabel:       LabelDelete,
	}
	v.CanSave = d.Validity.OK() && !v.Disabled

	if d.Validity.Destination {
		if dest, ok := c.Destination(d.DestinationID); ok {
			v.Destination = &dest
		}
	}
	for _, dest := range c.Destinations() {
		v.DestinationNames = append(v.DestinationNames, dest.Name)
	}
	for _, o := range c.OffersFor(d.Type) {
		v.Offers = append(v.Offers, OfferOption{Offer: o, Checked: d.HasOffer(o.ID)})
	}

	switch state {
	case StateSubmitting:
		v.SaveLabel = LabelSaving
	case StateDeleting:
		v.ResetLabel = LabelDeleting
	}
	if v.IsNew {
		v.ResetLabel = LabelCancel
	}
	return v
}

// FormatDuration renders a duration as "30M", "02H 30M" or "01D 02H 30M".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	days := total / (24 * 60)
	hours := (total / 60) % 24
	minutes := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%02dD %02dH %02dM", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%02dH %02dM", hours, minutes)
	default:
		return fmt.Sprintf("%02dM", minutes)
	}
}
