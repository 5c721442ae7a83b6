package posthog

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/ohbot666/connected-montreal-ai/internal/pkg/logger"
)

// Collector turns raw pageview events into a TrafficSnapshot
type Collector struct {
	client     *Client
	windowDays int
}

// NewCollector creates a new traffic collector
func NewCollector(client *Client, windowDays int) *Collector {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Collector{client: client, windowDays: windowDays}
}

// Snapshot fetches the pageview window and tabulates page, source, and
// ad-landing counts. Upstream failures degrade to whatever was fetched
// before the failure; a snapshot is always returned, with the
// degradation error alongside so callers can surface it.
func (c *Collector) Snapshot(ctx context.Context) (TrafficSnapshot, error) {
	after := time.Now().UTC().AddDate(0, 0, -c.windowDays)

	events, err := c.client.FetchPageviews(ctx, after)
	if err != nil {
		logger.Warn("posthog fetch degraded", "error", err.Error(), "events_collected", len(events))
	}

	return Aggregate(events, c.windowDays), err
}

// Aggregate computes a TrafficSnapshot from a set of pageview events.
// Pure with respect to its inputs; events are never mutated.
func Aggregate(events []Event, windowDays int) TrafficSnapshot {
	pages := map[string]int{}
	sources := map[string]int{}
	adPages := map[string]int{}

	for _, e := range events {
		pages[e.Pathname()]++
		sources[e.Source()]++
		if e.IsAdClick() {
			adPages[e.Pathname()]++
		}
	}

	avg := math.Round(float64(len(events))/float64(windowDays)*10) / 10

	return TrafficSnapshot{
		TotalPageviews7d:  len(events),
		AvgDailyPageviews: avg,
		TopPages:          topPages(pages, 10),
		TrafficSources:    topSources(sources, 8),
		AdLandingPages:    topPages(adPages, 5),
	}
}

func topPages(counts map[string]int, n int) []PageCount {
	out := make([]PageCount, 0, len(counts))
	for url, views := range counts {
		out = append(out, PageCount{URL: url, Views: views})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].URL < out[j].URL
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topSources(counts map[string]int, n int) []SourceCount {
	out := make([]SourceCount, 0, len(counts))
	for src, sessions := range counts {
		out = append(out, SourceCount{Source: src, Sessions: sessions})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sessions != out[j].Sessions {
			return out[i].Sessions > out[j].Sessions
		}
		return out[i].Source < out[j].Source
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
