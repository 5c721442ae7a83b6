package analyzer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LoadReport reads a previously saved daily report from disk.
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return report, nil
}

// WriteReport saves the daily report, creating parent directories as
// needed.
func WriteReport(path string, report Report) error {
	return writeJSON(path, report)
}

// WriteProposals saves the analysis output document.
func WriteProposals(path string, proposals []Proposal) error {
	if proposals == nil {
		proposals = []Proposal{}
	}
	return writeJSON(path, ProposalsFile{
		GeneratedAt: time.Now(),
		Proposals:   proposals,
	})
}

func writeJSON(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PrintSummary writes the daily-report digest: headline traffic and
// pipeline numbers plus the insights block.
func PrintSummary(w io.Writer, report Report) {
	divider := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n%s\nSUMMARY\n%s\n", divider, divider)

	fmt.Fprintf(w, "🌐 Traffic (7d): %d pageviews, ~%.1f/day\n",
		report.Traffic.TotalPageviews7d, report.Traffic.AvgDailyPageviews)
	if len(report.Traffic.TopPages) > 0 {
		fmt.Fprintln(w, "   Top pages:")
		for i, p := range report.Traffic.TopPages {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "   • %s — %d views\n", p.URL, p.Views)
		}
	}

	fmt.Fprintf(w, "\n👥 Pipeline: %d new | %d quoted | %d booked | $%.0f value\n",
		report.Pipeline.NewLeads7d, report.Pipeline.Pipeline.Quoted,
		report.Pipeline.Pipeline.Booked, report.Pipeline.TotalPipelineValue)

	fmt.Fprintln(w, "\n⚠️  Issues:")
	for _, s := range report.Insights.Issues {
		fmt.Fprintf(w, "   • %s\n", s)
	}
	fmt.Fprintln(w, "\n💡 Opportunities:")
	for _, s := range report.Insights.Opportunities {
		fmt.Fprintf(w, "   • %s\n", s)
	}
}

// PrintProposals writes the console summary of an analysis run.
func PrintProposals(w io.Writer, proposals []Proposal) {
	divider := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintln(w, "Connected Montreal Marketing Analysis")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "%s\n\n", divider)

	high, medium := 0, 0
	for _, p := range proposals {
		switch p.Priority {
		case PriorityHigh:
			high++
		case PriorityMedium:
			medium++
		}
	}

	fmt.Fprintln(w, "📊 SUMMARY")
	fmt.Fprintf(w, "  Total Proposals: %d\n", len(proposals))
	fmt.Fprintf(w, "  High Priority: %d\n", high)
	fmt.Fprintf(w, "  Medium Priority: %d\n", medium)
	fmt.Fprintf(w, "\n%s\n\n", strings.Repeat("-", 80))

	for i, p := range proposals {
		fmt.Fprintf(w, "🎯 PROPOSAL %d: %s\n", i+1, strings.ToUpper(p.ID))
		fmt.Fprintf(w, "   Priority: %s | Category: %s\n", strings.ToUpper(string(p.Priority)), strings.ToUpper(p.Category))
		fmt.Fprintf(w, "   Issue: %s\n", p.Issue)
		fmt.Fprintf(w, "   Solution: %s\n", p.Solution)
		fmt.Fprintf(w, "   Effort: %s | Impact: %s\n", p.Effort, p.ExpectedImpact)
		fmt.Fprintf(w, "\n%s\n\n", strings.Repeat("-", 80))
	}
}
