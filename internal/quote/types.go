package quote

// Accommodation describes the experience property attached to a quote.
// PDFLink is nil when the property description contains no brochure
// link, so clients can tell "no brochure" apart from an empty URL.
type Accommodation struct {
	Name         string  `json:"name"`
	Bedrooms     int     `json:"bedrooms"`
	Beds         int     `json:"beds"`
	Bathrooms    int     `json:"bathrooms"`
	CheckInTime  string  `json:"check_in_time"`
	CheckOutTime string  `json:"check_out_time"`
	Address      string  `json:"address"`
	PDFLink      *string `json:"pdf_link"`
}

// ItineraryEvent is one scheduled activity on the quote.
type ItineraryEvent struct {
	ID            string  `json:"id"`
	Day           int     `json:"day"`
	Date          string  `json:"date"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	StartTime     string  `json:"start_time"`
	MinStartTime  string  `json:"min_start_time,omitempty"`
	MaxStartTime  string  `json:"max_start_time,omitempty"`
	Quantity      int     `json:"quantity"`
	DurationHours float64 `json:"duration_hours"`
	Description   string  `json:"description"`
}

// Pricing carries the CRM's money fields through to the page as-is.
type Pricing struct {
	ServiceTotal float64 `json:"service_total"`
	Tax          float64 `json:"tax"`
	GrandTotal   float64 `json:"grand_total"`
	Deposit      float64 `json:"deposit"`
}

// View is everything the quote page renders for one client record.
type View struct {
	RecordID      string           `json:"record_id"`
	ClientName    string           `json:"client_name"`
	GuestCount    int              `json:"guest_count"`
	DayDates      map[int]string   `json:"day_dates"`
	Accommodation *Accommodation   `json:"accommodation"`
	Events        []ItineraryEvent `json:"events"`
	Pricing       Pricing          `json:"pricing"`
}

// EventPatch holds the editable fields of an itinerary event. Nil
// pointers mean "leave unchanged".
type EventPatch struct {
	StartTime     *string  `json:"start_time,omitempty"`
	Day           *int     `json:"day,omitempty"`
	Quantity      *int     `json:"quantity,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
}
