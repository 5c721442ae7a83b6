package airtable

import "time"

// Config holds the settings the Airtable client needs
type Config struct {
	Token   string
	BaseURL string
	BaseID  string
}

// Record is one Airtable record: opaque id, creation time, and a
// free-form field map. Fields are never mutated locally; updates go
// back through PatchRecord.
type Record struct {
	ID          string                 `json:"id"`
	CreatedTime string                 `json:"createdTime"`
	Fields      map[string]interface{} `json:"fields"`
}

// listResponse is one page of a record list
type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// recordPatch is the body of a record PATCH request
type recordPatch struct {
	Fields map[string]interface{} `json:"fields"`
}

// Str returns a string field, or "" when absent or not a string.
func (r Record) Str(field string) string {
	if v, ok := r.Fields[field].(string); ok {
		return v
	}
	return ""
}

// Float returns a numeric field, or 0 when absent.
func (r Record) Float(field string) float64 {
	if v, ok := r.Fields[field].(float64); ok {
		return v
	}
	return 0
}

// StrAt normalizes a field that Airtable returns as a single-element
// list (linked records, lookups) to its scalar string value. Plain
// string fields pass through unchanged.
func (r Record) StrAt(field string) string {
	switch v := r.Fields[field].(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// FloatAt normalizes a numeric field that may arrive wrapped in a
// single-element list.
func (r Record) FloatAt(field string) float64 {
	switch v := r.Fields[field].(type) {
	case float64:
		return v
	case []interface{}:
		if len(v) > 0 {
			if f, ok := v[0].(float64); ok {
				return f
			}
		}
	}
	return 0
}

// LinkedIDs returns the record ids of a linked-record field.
func (r Record) LinkedIDs(field string) []string {
	raw, ok := r.Fields[field].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

// Created parses the record's createdTime.
func (r Record) Created() (time.Time, error) {
	return time.Parse(time.RFC3339, r.CreatedTime)
}

// Stage is a pipeline stage bucket. Statuses outside the recognized
// set map to StageUnrecognized and are excluded from every bucket
// rather than silently dropped into one.
type Stage int

const (
	StageUnrecognized Stage = iota
	StageNew
	StageQuoted
	StageBooked
	StageNoGo
)

// statusStages maps the CRM's free-text Status values onto stages.
var statusStages = map[string]Stage{
	"New Request":                StageNew,
	"talked to/ quoted":          StageQuoted,
	"Booked":                     StageBooked,
	"Booked - Deposit":           StageBooked,
	"No Go":                      StageNoGo,
	"No Go - Coming to Town":     StageNoGo,
	"No Go - Not Coming to Town": StageNoGo,
}

// StageForStatus resolves a raw Status field value to its stage.
func StageForStatus(status string) Stage {
	if s, ok := statusStages[status]; ok {
		return s
	}
	return StageUnrecognized
}

// PipelineCounts holds per-stage lead counts
type PipelineCounts struct {
	New    int `json:"new"`
	Quoted int `json:"quoted"`
	Booked int `json:"booked"`
	NoGo   int `json:"no_go"`
}

// FollowupLead is a lead waiting on a follow-up touch
type FollowupLead struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LastContact string `json:"last_contact"`
}

// PipelineSnapshot is the CRM pipeline aggregate served to the
// dashboard and fed to the rule engine.
type PipelineSnapshot struct {
	NewLeads7d           int            `json:"new_leads_7d"`
	Pipeline             PipelineCounts `json:"pipeline"`
	LeadsNeedingFollowup []FollowupLead `json:"leads_needing_followup"`
	TotalPipelineValue   float64        `json:"total_pipeline_value"`
	TotalLeads           int            `json:"total_leads"`
}
