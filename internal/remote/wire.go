package remote

// Point is the wire format of a waypoint.
// Dates are ISO-8601 strings; snake_case fields mirror the trip API.
type Point struct {
	ID          string   `json:"id,omitempty"`
	Type        string   `json:"type"`
	Destination string   `json:"destination"`
	BasePrice   int      `json:"base_price"`
	DateFrom    string   `json:"date_from"`
	DateTo      string   `json:"date_to"`
	IsFavorite  bool     `json:"is_favorite"`
	Offers      []string `json:"offers"`
}
