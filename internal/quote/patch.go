package quote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrFieldNotAllowed is returned for UpdateField targets outside the
// allow-list.
var ErrFieldNotAllowed = errors.New("quote: field not editable")

// editableFields is the exhaustive set of client-record fields the
// portal may patch directly, with a coercion from the raw form value.
var editableFields = map[string]func(string) (interface{}, error){
	guestCountField: func(raw string) (interface{}, error) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("value must be a whole number: %q", raw)
		}
		return n, nil
	},
}

// UpdateEvent patches the supplied fields of an itinerary event. When
// the day changes, the concrete date is re-resolved from the client
// record's day-date fields so the two never drift apart.
func (b *Builder) UpdateEvent(ctx context.Context, clientRecordID, eventID string, patch EventPatch) error {
	fields := map[string]interface{}{}
	if patch.StartTime != nil {
		fields["Start Time"] = *patch.StartTime
	}
	if patch.Quantity != nil {
		fields["Quantity"] = *patch.Quantity
	}
	if patch.DurationHours != nil {
		fields["Duration Hours"] = *patch.DurationHours
	}
	if patch.Day != nil {
		fields["Day"] = *patch.Day
		client, err := b.client.GetRecord(ctx, b.customersTable, clientRecordID)
		if err != nil {
			return fmt.Errorf("failed to resolve date for day %d: %w", *patch.Day, err)
		}
		if date, ok := dayDates(*client)[*patch.Day]; ok {
			fields["Date"] = date
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return b.client.PatchRecord(ctx, b.eventsTable, eventID, fields)
}

// UpdateField patches one allow-listed field on the client record.
func (b *Builder) UpdateField(ctx context.Context, recordID, field, value string) error {
	coerce, ok := editableFields[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotAllowed, field)
	}
	v, err := coerce(value)
	if err != nil {
		return err
	}
	return b.client.PatchRecord(ctx, b.customersTable, recordID, map[string]interface{}{field: v})
}
