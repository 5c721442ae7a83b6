package airtable

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ohbot666/connected-montreal-ai/internal/pkg/logger"
)

// Contact Type value marking the record that owns a party's pipeline
// entry. Secondary attendees share the same linked records and would
// double-count every stage if included.
const primaryContactType = "Party Main Contact"

const followupCap = 10

// Collector turns CRM lead records into a PipelineSnapshot
type Collector struct {
	client     *Client
	table      string
	windowDays int
}

// NewCollector creates a new pipeline collector
func NewCollector(client *Client, table string, windowDays int) *Collector {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Collector{client: client, table: table, windowDays: windowDays}
}

// Snapshot fetches all lead records and buckets them by pipeline
// stage. Upstream failures degrade to whatever was fetched before the
// failure; a snapshot is always returned, with the degradation error
// alongside so callers can surface it.
func (c *Collector) Snapshot(ctx context.Context) (PipelineSnapshot, error) {
	records, err := c.client.ListRecords(ctx, c.table, ListOptions{})
	if err != nil {
		logger.Warn("airtable fetch degraded", "error", err.Error(), "records_collected", len(records))
	}

	return BuildSnapshot(records, time.Now().UTC().AddDate(0, 0, -c.windowDays)), err
}

// BuildSnapshot computes a PipelineSnapshot from raw lead records.
// Only primary-contact records are counted. Pure with respect to its
// inputs; records are never mutated.
func BuildSnapshot(records []Record, newLeadCutoff time.Time) PipelineSnapshot {
	snap := PipelineSnapshot{
		LeadsNeedingFollowup: []FollowupLead{},
	}

	for _, rec := range records {
		if rec.Str("Contact Type") != primaryContactType {
			continue
		}
		snap.TotalLeads++

		status := rec.Str("Status")
		stage := StageForStatus(status)

		if created, err := rec.Created(); err == nil && !created.Before(newLeadCutoff) {
			snap.NewLeads7d++
		}

		switch stage {
		case StageNew:
			snap.Pipeline.New++
		case StageQuoted:
			snap.Pipeline.Quoted++
		case StageBooked:
			snap.Pipeline.Booked++
		case StageNoGo:
			snap.Pipeline.NoGo++
		}

		if status != "" && stage != StageNoGo {
			snap.TotalPipelineValue += leadValue(rec)
		}

		if stage == StageNew || stage == StageQuoted {
			name := rec.Str("Name")
			if name == "" {
				name = "Unknown"
			}
			lastContact := rec.Str("Status Update Date")
			if lastContact == "" {
				lastContact = rec.Str("First Contact Date")
			}
			if lastContact == "" {
				lastContact = "Unknown"
			}
			snap.LeadsNeedingFollowup = append(snap.LeadsNeedingFollowup, FollowupLead{
				Name:        name,
				Status:      status,
				LastContact: lastContact,
			})
		}
	}

	if len(snap.LeadsNeedingFollowup) > followupCap {
		snap.LeadsNeedingFollowup = snap.LeadsNeedingFollowup[:followupCap]
	}
	snap.TotalPipelineValue = math.Round(snap.TotalPipelineValue*100) / 100

	return snap
}

// leadValue reads the lead's monetary total: Grand Total, falling back
// to Service Total. Values arrive either as numbers or as formatted
// strings ("$2,500").
func leadValue(rec Record) float64 {
	for _, field := range []string{"Grand Total", "Service Total"} {
		switch v := rec.Fields[field].(type) {
		case float64:
			if v != 0 {
				return v
			}
		case string:
			if f, err := parseMoney(v); err == nil && f != 0 {
				return f
			}
		}
	}
	return 0
}

func parseMoney(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}
