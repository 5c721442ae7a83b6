package analyzer

import (
	"time"

	"github.com/ohbot666/connected-montreal-ai/internal/airtable"
	"github.com/ohbot666/connected-montreal-ai/internal/posthog"
)

// Priority ranks a proposal. Sorting places high before medium before
// low; within a level, rule-evaluation order is preserved.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Proposal is one actionable marketing/sales recommendation produced
// by a rule. Immutable once created.
type Proposal struct {
	ID             string   `json:"id"`
	Priority       Priority `json:"priority"`
	Category       string   `json:"category"`
	Issue          string   `json:"issue"`
	Solution       string   `json:"solution"`
	Effort         string   `json:"effort"`
	ExpectedImpact string   `json:"expected_impact"`
}

// Report is the merged traffic + pipeline input the rules evaluate.
// It doubles as the on-disk daily report format, so a saved snapshot
// can be re-analyzed without refetching.
type Report struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	PeriodDays  int                       `json:"period_days"`
	Traffic     posthog.TrafficSnapshot   `json:"posthog"`
	Pipeline    airtable.PipelineSnapshot `json:"airtable"`
	Insights    Insights                  `json:"insights"`
}

// ProposalsFile is the standalone output document of an analysis run
type ProposalsFile struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Proposals   []Proposal `json:"proposals"`
}
