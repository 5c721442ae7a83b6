package analyzer

import (
	"fmt"
	"math"
)

// Insights is the quick-read issues/opportunities block embedded in
// the daily report, a lighter companion to the full proposal list.
type Insights struct {
	Issues        []string `json:"issues"`
	Opportunities []string `json:"opportunities"`
}

// GenerateInsights derives the headline issues and opportunities from
// a report. Pure with respect to its input.
func GenerateInsights(r Report) Insights {
	var issues, opps []string

	if r.Traffic.TotalPageviews7d < 100 {
		issues = append(issues, fmt.Sprintf("Low traffic: only %d pageviews in 7 days", r.Traffic.TotalPageviews7d))
	}
	if r.Pipeline.NewLeads7d == 0 {
		issues = append(issues, "No new leads in the past 7 days")
	} else if r.Pipeline.Pipeline.Quoted == 0 {
		issues = append(issues, fmt.Sprintf("%d new leads but none have been quoted yet", r.Pipeline.NewLeads7d))
	}

	if len(r.Traffic.AdLandingPages) > 0 {
		top := r.Traffic.AdLandingPages[0]
		opps = append(opps, fmt.Sprintf("Top ad landing page: %s (%d ad clicks)", top.URL, top.Views))
	}
	if r.Pipeline.Pipeline.Quoted > 0 {
		opps = append(opps, fmt.Sprintf("%d leads currently in quoted stage — close them", r.Pipeline.Pipeline.Quoted))
	}
	if r.Pipeline.TotalPipelineValue > 0 {
		opps = append(opps, fmt.Sprintf("$%s in active pipeline value", addCommas(int64(math.Round(r.Pipeline.TotalPipelineValue)))))
	}

	if len(issues) == 0 {
		issues = []string{"No critical issues detected"}
	}
	if len(opps) == 0 {
		opps = []string{"Keep monitoring — more data needed"}
	}
	return Insights{Issues: issues, Opportunities: opps}
}
