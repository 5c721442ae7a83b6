package posthog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func pageviewEvent(path string) Event {
	return Event{Properties: map[string]interface{}{"$pathname": path}}
}

func TestFetchPageviews_Pagination(t *testing.T) {
	var server *httptest.Server
	page := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer phx_test" {
			t.Errorf("Authorization = %q, want Bearer phx_test", got)
		}

		page++
		resp := eventsResponse{Results: []Event{pageviewEvent(fmt.Sprintf("/page-%d", page))}}
		if page < 3 {
			resp.Next = server.URL + fmt.Sprintf("/api/projects/1/events/?page=%d", page+1)
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "phx_test", Host: server.URL, ProjectID: "1"}, 5*time.Second)

	events, err := client.FetchPageviews(context.Background(), time.Now().AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("FetchPageviews failed: %v", err)
	}

	if len(events) != 3 {
		t.Errorf("expected 3 events across pages, got %d", len(events))
	}
	if page != 3 {
		t.Errorf("expected 3 page fetches, got %d", page)
	}
}

func TestFetchPageviews_FirstRequestParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("event") != "$pageview" {
			t.Errorf("event param = %q, want $pageview", q.Get("event"))
		}
		if q.Get("limit") != "500" {
			t.Errorf("limit param = %q, want 500", q.Get("limit"))
		}
		if q.Get("after") == "" {
			t.Error("missing after param")
		}
		json.NewEncoder(w).Encode(eventsResponse{})
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL, ProjectID: "1", PageLimit: 500}, 5*time.Second)

	if _, err := client.FetchPageviews(context.Background(), time.Now()); err != nil {
		t.Fatalf("FetchPageviews failed: %v", err)
	}
}

func TestFetchPageviews_NonSuccessReturnsPartial(t *testing.T) {
	var server *httptest.Server
	page := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		if page == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(eventsResponse{
			Results: []Event{pageviewEvent("/"), pageviewEvent("/packages")},
			Next:    server.URL + "/api/projects/1/events/?page=2",
		})
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL, ProjectID: "1"}, 5*time.Second)

	events, err := client.FetchPageviews(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected an error from the failed page")
	}
	if len(events) != 2 {
		t.Errorf("expected the 2 events from the first page, got %d", len(events))
	}
}

func TestEventHelpers(t *testing.T) {
	tests := []struct {
		name     string
		props    map[string]interface{}
		path     string
		source   string
		adClick  bool
	}{
		{
			name:   "empty properties",
			props:  map[string]interface{}{},
			path:   "/",
			source: "direct",
		},
		{
			name:    "utm source wins over referrer",
			props:   map[string]interface{}{"$pathname": "/book", "$utm_source": "google", "$referring_domain": "bing.com"},
			path:    "/book",
			source:  "google",
			adClick: true,
		},
		{
			name:   "referrer fallback",
			props:  map[string]interface{}{"$referring_domain": "facebook.com"},
			path:   "/",
			source: "facebook.com",
		},
		{
			name:    "gclid marks ad click",
			props:   map[string]interface{}{"gclid": "abc123", "$utm_source": "newsletter"},
			path:    "/",
			source:  "newsletter",
			adClick: true,
		},
		{
			name:   "empty gclid is not an ad click",
			props:  map[string]interface{}{"gclid": ""},
			path:   "/",
			source: "direct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{Properties: tt.props}
			if got := e.Pathname(); got != tt.path {
				t.Errorf("Pathname() = %q, want %q", got, tt.path)
			}
			if got := e.Source(); got != tt.source {
				t.Errorf("Source() = %q, want %q", got, tt.source)
			}
			if got := e.IsAdClick(); got != tt.adClick {
				t.Errorf("IsAdClick() = %v, want %v", got, tt.adClick)
			}
		})
	}
}
