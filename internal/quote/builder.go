package quote

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohbot666/connected-montreal-ai/internal/airtable"
	"github.com/ohbot666/connected-montreal-ai/internal/pkg/logger"
)

const (
	experienceField = "Experience Link"
	guestCountField = "Number of Guests"
	eventLinkField  = "Events"
	contactField    = "Customer"
)

var (
	pdfLinkRe   = regexp.MustCompile(`https?://\S+\.pdf`)
	dayDateRe   = regexp.MustCompile(`^Day (\d+) Date$`)
	dayPrefixRe = regexp.MustCompile(`^Day \d+\s*-\s*`)
)

// Builder assembles a quote View from CRM records.
type Builder struct {
	client         *airtable.Client
	customersTable string
	eventsTable    string
}

// NewBuilder creates a quote view builder over the given tables.
func NewBuilder(client *airtable.Client, customersTable, eventsTable string) *Builder {
	return &Builder{client: client, customersTable: customersTable, eventsTable: eventsTable}
}

// BuildView fetches the client record and everything linked from it.
// The accommodation and itinerary are best-effort: a missing linked
// record degrades to a partial view rather than failing the page.
func (b *Builder) BuildView(ctx context.Context, recordID string) (*View, error) {
	rec, err := b.client.GetRecord(ctx, b.customersTable, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client record: %w", err)
	}

	view := &View{
		RecordID:   rec.ID,
		ClientName: rec.Str("Name"),
		GuestCount: int(rec.FloatAt(guestCountField)),
		DayDates:   dayDates(*rec),
		Pricing: Pricing{
			ServiceTotal: rec.FloatAt("Service Total"),
			Tax:          rec.FloatAt("Tax"),
			GrandTotal:   rec.FloatAt("Grand Total"),
			Deposit:      rec.FloatAt("Deposit"),
		},
	}

	if ids := rec.LinkedIDs(experienceField); len(ids) > 0 {
		acc, err := b.fetchAccommodation(ctx, ids[0])
		if err != nil {
			logger.Warn("accommodation fetch failed", "record_id", recordID, "error", err.Error())
		} else {
			view.Accommodation = acc
		}
	}

	events, err := b.fetchEvents(ctx, *rec)
	if err != nil {
		logger.Warn("itinerary fetch degraded", "record_id", recordID, "error", err.Error())
	}
	view.Events = events

	return view, nil
}

func (b *Builder) fetchAccommodation(ctx context.Context, id string) (*Accommodation, error) {
	rec, err := b.client.GetRecord(ctx, b.eventsTable, id)
	if err != nil {
		return nil, err
	}

	acc := &Accommodation{
		Name:         rec.Str("Name"),
		Bedrooms:     int(rec.FloatAt("Bedrooms")),
		Beds:         int(rec.FloatAt("Beds")),
		Bathrooms:    int(rec.FloatAt("Bathrooms")),
		CheckInTime:  rec.StrAt("Check-in Time"),
		CheckOutTime: rec.StrAt("Check-out Time"),
		Address:      rec.StrAt("Venue Address"),
	}
	if link := pdfLinkRe.FindString(rec.Str("Description")); link != "" {
		acc.PDFLink = &link
	}
	return acc, nil
}

// fetchEvents resolves the itinerary. Explicit linked ids on the
// client record win; without them it falls back to a formula query on
// the contact link, which is slower but survives bases where the
// reverse link field was never configured.
func (b *Builder) fetchEvents(ctx context.Context, rec airtable.Record) ([]ItineraryEvent, error) {
	ids := rec.LinkedIDs(eventLinkField)
	if len(ids) > 0 {
		events := make([]ItineraryEvent, 0, len(ids))
		var firstErr error
		for _, id := range ids {
			er, err := b.client.GetRecord(ctx, b.eventsTable, id)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			events = append(events, itineraryEvent(*er, rec))
		}
		return events, firstErr
	}

	formula := fmt.Sprintf("FIND('%s', ARRAYJOIN({%s}))", rec.ID, contactField)
	recs, err := b.client.ListRecords(ctx, b.eventsTable, airtable.ListOptions{FilterByFormula: formula})
	events := make([]ItineraryEvent, 0, len(recs))
	for _, er := range recs {
		events = append(events, itineraryEvent(er, rec))
	}
	return events, err
}

func itineraryEvent(er, client airtable.Record) ItineraryEvent {
	day := int(er.FloatAt("Day"))
	ev := ItineraryEvent{
		ID:            er.ID,
		Day:           day,
		Date:          dayDates(client)[day],
		Name:          er.StrAt("Name"),
		Category:      er.StrAt("Category"),
		StartTime:     er.StrAt("Start Time"),
		MinStartTime:  er.StrAt("Min Start Time"),
		MaxStartTime:  er.StrAt("Max Start Time"),
		Quantity:      int(er.FloatAt("Quantity")),
		DurationHours: er.FloatAt("Duration Hours"),
		Description:   er.Str("Description"),
	}
	return ev
}

// dayDates collects the client record's per-day date fields, keyed by
// day number, with any leading "Day N-" prefix stripped off the value.
func dayDates(rec airtable.Record) map[int]string {
	dates := map[int]string{}
	for field := range rec.Fields {
		m := dayDateRe.FindStringSubmatch(field)
		if m == nil {
			continue
		}
		day, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		val := strings.TrimSpace(dayPrefixRe.ReplaceAllString(rec.StrAt(field), ""))
		if val != "" {
			dates[day] = val
		}
	}
	return dates
}
