package analyzer

import (
	"fmt"
	"sort"
	"time"
)

// Analyzer applies the fixed rule set to a report. Each rule is pure
// with respect to its inputs and fires at most one proposal; no rule
// depends on another rule's output.
type Analyzer struct {
	now      time.Time
	counters map[string]int
}

// New creates an Analyzer evaluating against the current time.
func New() *Analyzer {
	return NewAt(time.Now())
}

// NewAt creates an Analyzer evaluating against a fixed time.
// Overdue-followup and month-name computations key off it.
func NewAt(now time.Time) *Analyzer {
	return &Analyzer{now: now, counters: map[string]int{}}
}

// Analyze runs all rules in order and returns the proposals sorted by
// priority (high first; stable within a level). Missing or zeroed
// inputs simply keep rules from firing, they never error.
func (a *Analyzer) Analyze(report Report) []Proposal {
	var proposals []Proposal

	rules := []func(Report) *Proposal{
		a.adConversionRule,
		a.pipelineClosureRule,
		a.followupBacklogRule,
		a.contentDepthRule,
		a.trafficSourcesRule,
	}

	for _, rule := range rules {
		if p := rule(report); p != nil {
			proposals = append(proposals, *p)
		}
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		return priorityRank[proposals[i].Priority] < priorityRank[proposals[j].Priority]
	})

	return proposals
}

// nextID produces "<slug>-<n>" with a per-slug monotonic counter, so
// ids stay unique within a run even if a rule ever fired twice.
func (a *Analyzer) nextID(slug string) string {
	a.counters[slug]++
	return fmt.Sprintf("%s-%d", slug, a.counters[slug])
}
