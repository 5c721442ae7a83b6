package posthog

// Config holds the settings the PostHog client needs
type Config struct {
	APIKey    string
	Host      string
	ProjectID string
	PageLimit int
}

// Event is a single tracked pageview event
type Event struct {
	ID         string                 `json:"id"`
	Timestamp  string                 `json:"timestamp"`
	Properties map[string]interface{} `json:"properties"`
}

// eventsResponse is one page of the events endpoint
type eventsResponse struct {
	Results []Event `json:"results"`
	Next    string  `json:"next"`
}

// Pathname returns the event's $pathname property, defaulting to "/"
func (e Event) Pathname() string {
	if p, ok := e.Properties["$pathname"].(string); ok && p != "" {
		return p
	}
	return "/"
}

// Source returns the traffic source for the event: the UTM source if
// set, otherwise the referring domain, otherwise "direct".
func (e Event) Source() string {
	if s, ok := e.Properties["$utm_source"].(string); ok && s != "" {
		return s
	}
	if s, ok := e.Properties["$referring_domain"].(string); ok && s != "" {
		return s
	}
	return "direct"
}

// IsAdClick reports whether the event carries paid-ad attribution:
// a gclid click id or utm_source=google.
func (e Event) IsAdClick() bool {
	if g, ok := e.Properties["gclid"]; ok && g != nil {
		if s, isStr := g.(string); !isStr || s != "" {
			return true
		}
	}
	if s, ok := e.Properties["$utm_source"].(string); ok && s == "google" {
		return true
	}
	return false
}

// PageCount is a page path with its view count
type PageCount struct {
	URL   string `json:"url"`
	Views int    `json:"views"`
}

// SourceCount is a traffic source with its session count
type SourceCount struct {
	Source   string `json:"source"`
	Sessions int    `json:"sessions"`
}

// TrafficSnapshot is the 7-day traffic aggregate served to the
// dashboard and fed to the rule engine.
type TrafficSnapshot struct {
	TotalPageviews7d  int           `json:"total_pageviews_7d"`
	AvgDailyPageviews float64       `json:"avg_daily_pageviews"`
	TopPages          []PageCount   `json:"top_pages"`
	TrafficSources    []SourceCount `json:"traffic_sources"`
	AdLandingPages    []PageCount   `json:"ad_landing_pages"`
}
