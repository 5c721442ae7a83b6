package posthog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func events(paths ...string) []Event {
	out := make([]Event, 0, len(paths))
	for _, p := range paths {
		out = append(out, Event{Properties: map[string]interface{}{"$pathname": p}})
	}
	return out
}

func TestAggregate_Empty(t *testing.T) {
	snap := Aggregate(nil, 7)

	assert.Equal(t, 0, snap.TotalPageviews7d)
	assert.Equal(t, 0.0, snap.AvgDailyPageviews)
	assert.Empty(t, snap.TopPages)
	assert.Empty(t, snap.TrafficSources)
	assert.Empty(t, snap.AdLandingPages)
}

func TestAggregate_TopPagesOrdering(t *testing.T) {
	evs := events("/", "/", "/", "/packages", "/packages", "/itineraries")

	snap := Aggregate(evs, 7)

	assert.Equal(t, 6, snap.TotalPageviews7d)
	assert.Equal(t, 0.9, snap.AvgDailyPageviews) // round(6/7, 1)
	assert.Equal(t, []PageCount{
		{URL: "/", Views: 3},
		{URL: "/packages", Views: 2},
		{URL: "/itineraries", Views: 1},
	}, snap.TopPages)
}

func TestAggregate_TopPagesCappedAtTen(t *testing.T) {
	var evs []Event
	for _, p := range []string{"/a", "/b", "/c", "/d", "/e", "/f", "/g", "/h", "/i", "/j", "/k", "/l"} {
		evs = append(evs, events(p)...)
	}

	snap := Aggregate(evs, 7)

	assert.Len(t, snap.TopPages, 10)
}

func TestAggregate_TrafficSources(t *testing.T) {
	evs := []Event{
		{Properties: map[string]interface{}{"$utm_source": "google"}},
		{Properties: map[string]interface{}{"$utm_source": "google"}},
		{Properties: map[string]interface{}{"$referring_domain": "facebook.com"}},
		{Properties: map[string]interface{}{}},
	}

	snap := Aggregate(evs, 7)

	assert.Equal(t, []SourceCount{
		{Source: "google", Sessions: 2},
		{Source: "direct", Sessions: 1},
		{Source: "facebook.com", Sessions: 1},
	}, snap.TrafficSources)
}

func TestAggregate_AdLandingPages(t *testing.T) {
	evs := []Event{
		{Properties: map[string]interface{}{"$pathname": "/book", "gclid": "x1"}},
		{Properties: map[string]interface{}{"$pathname": "/book", "$utm_source": "google"}},
		{Properties: map[string]interface{}{"$pathname": "/book", "$utm_source": "newsletter"}},
		{Properties: map[string]interface{}{"$pathname": "/packages"}},
	}

	snap := Aggregate(evs, 7)

	assert.Equal(t, []PageCount{{URL: "/book", Views: 2}}, snap.AdLandingPages)
}
