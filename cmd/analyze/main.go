// The analyze command runs the marketing rule engine offline: it
// pulls fresh traffic and pipeline snapshots (or replays a saved
// report), prints the proposals, and writes both files for the next
// planning session.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ohbot666/connected-montreal-ai/internal/airtable"
	"github.com/ohbot666/connected-montreal-ai/internal/analyzer"
	"github.com/ohbot666/connected-montreal-ai/internal/config"
	"github.com/ohbot666/connected-montreal-ai/internal/posthog"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	fromReport := flag.String("from-report", "", "replay a saved report instead of fetching live data")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var report analyzer.Report
	if *fromReport != "" {
		report, err = analyzer.LoadReport(*fromReport)
		if err != nil {
			log.Fatalf("Failed to load report: %v", err)
		}
		log.Printf("Replaying report generated at %s", report.GeneratedAt.Format(time.RFC3339))
	} else {
		report = collect(cfg)
		if err := analyzer.WriteReport(cfg.Analysis.ReportPath, report); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Report written to %s", cfg.Analysis.ReportPath)
	}

	proposals := analyzer.New().Analyze(report)
	analyzer.PrintSummary(os.Stdout, report)
	analyzer.PrintProposals(os.Stdout, proposals)

	if err := analyzer.WriteProposals(cfg.Analysis.ProposalsPath, proposals); err != nil {
		log.Fatalf("Failed to write proposals: %v", err)
	}
	log.Printf("Proposals written to %s", cfg.Analysis.ProposalsPath)
}

func collect(cfg *config.Config) analyzer.Report {
	ctx := context.Background()

	phClient := posthog.NewClient(posthog.Config{
		APIKey:    cfg.PostHog.APIKey,
		Host:      cfg.PostHog.Host,
		ProjectID: cfg.PostHog.ProjectID,
		PageLimit: cfg.PostHog.PageLimit,
	}, cfg.PostHog.Timeout())
	traffic := posthog.NewCollector(phClient, cfg.PostHog.WindowDays)

	atClient := airtable.NewClient(airtable.Config{
		Token:   cfg.Airtable.Token,
		BaseURL: cfg.Airtable.BaseURL,
		BaseID:  cfg.Airtable.BaseID,
	}, cfg.Airtable.Timeout())
	pipeline := airtable.NewCollector(atClient, cfg.Airtable.CustomersTable, cfg.PostHog.WindowDays)

	trafficSnap, err := traffic.Snapshot(ctx)
	if err != nil {
		log.Printf("Traffic fetch degraded: %v", err)
	}
	pipelineSnap, err := pipeline.Snapshot(ctx)
	if err != nil {
		log.Printf("Pipeline fetch degraded: %v", err)
	}

	report := analyzer.Report{
		GeneratedAt: time.Now().UTC(),
		PeriodDays:  cfg.PostHog.WindowDays,
		Traffic:     trafficSnap,
		Pipeline:    pipelineSnap,
	}
	report.Insights = analyzer.GenerateInsights(report)
	return report
}
