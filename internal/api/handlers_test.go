package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohbot666/connected-montreal-ai/internal/airtable"
	"github.com/ohbot666/connected-montreal-ai/internal/cache"
	"github.com/ohbot666/connected-montreal-ai/internal/ollama"
	"github.com/ohbot666/connected-montreal-ai/internal/posthog"
	"github.com/ohbot666/connected-montreal-ai/internal/quote"
	"github.com/ohbot666/connected-montreal-ai/internal/relay"
)

type fakeTraffic struct {
	calls atomic.Int64
	snap  posthog.TrafficSnapshot
	err   error
}

func (f *fakeTraffic) Snapshot(ctx context.Context) (posthog.TrafficSnapshot, error) {
	f.calls.Add(1)
	return f.snap, f.err
}

type fakePipeline struct {
	calls atomic.Int64
	snap  airtable.PipelineSnapshot
	err   error
}

func (f *fakePipeline) Snapshot(ctx context.Context) (airtable.PipelineSnapshot, error) {
	f.calls.Add(1)
	return f.snap, f.err
}

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	traffic  *fakeTraffic
	pipeline *fakePipeline
}

// newTestEnv wires a full router over fake collectors, a fake Ollama
// server, a fake Airtable base holding one client record, and temp
// stores for cache and tokens.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	traffic := &fakeTraffic{snap: posthog.TrafficSnapshot{TotalPageviews7d: 420}}
	pipeline := &fakePipeline{snap: airtable.PipelineSnapshot{
		TotalLeads: 30,
		Pipeline:   airtable.PipelineCounts{Quoted: 20},
	}}
	live := cache.NewService(cache.NewFileStore(filepath.Join(dir, "live.json"), 5*time.Minute), traffic, pipeline)

	ollamaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []ollama.Message `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		reply := "no system prompt"
		if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "\"total_pageviews_7d\":420") {
			reply = "Traffic sits at 420 pageviews."
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": reply},
		})
	}))
	t.Cleanup(ollamaSrv.Close)
	chat := ollama.NewClient(ollama.Config{BaseURL: ollamaSrv.URL, Model: "test"}, 5*time.Second)

	relaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
			Channel string `json:"channel"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		reply := "missing context"
		if req.Channel == "webchat" &&
			strings.HasPrefix(req.Message, "[Connected Montreal Live Data]") &&
			strings.Contains(req.Message, "\"pageviews_7d\":420") &&
			strings.Contains(req.Message, "Question: How is the pipeline?") {
			reply = "Quoted leads need a push."
		}
		json.NewEncoder(w).Encode(map[string]string{"response": reply})
	}))
	t.Cleanup(relaySrv.Close)
	relayClient := relay.NewClient(relaySrv.URL, 5*time.Second)

	baseSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/Customers/recCLI") && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(airtable.Record{ID: "recCLI", Fields: map[string]interface{}{
				"Name":             "Dana Roy",
				"Number of Guests": 12.0,
				"Grand Total":      9198.0,
			}})
		case strings.HasSuffix(r.URL.Path, "/Customers/recCLI") && r.Method == http.MethodPatch:
			json.NewEncoder(w).Encode(airtable.Record{ID: "recCLI"})
		case strings.Contains(r.URL.Path, "/Events"):
			json.NewEncoder(w).Encode(map[string]interface{}{"records": []airtable.Record{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(baseSrv.Close)
	atClient := airtable.NewClient(airtable.Config{Token: "t", BaseURL: baseSrv.URL, BaseID: "appTEST"}, 5*time.Second)

	dashboard := filepath.Join(dir, "dashboard.html")
	quotePage := filepath.Join(dir, "quote.html")
	require.NoError(t, os.WriteFile(dashboard, []byte("<html>dashboard</html>"), 0o644))
	require.NoError(t, os.WriteFile(quotePage, []byte("<html>quote</html>"), 0o644))

	store, err := quote.NewTokenStore(filepath.Join(dir, "tokens.json"))
	require.NoError(t, err)

	h := NewHandlers(live, chat, relayClient, nil, 7, dashboard)
	q := NewQuoteHandlers(store, quote.NewSessions(), quote.NewBuilder(atClient, "Customers", "Events"), quotePage)

	srv := httptest.NewServer(SetupRoutes(h, q))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		srv:      srv,
		client:   &http.Client{Jar: jar},
		traffic:  traffic,
		pipeline: pipeline,
	}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func (e *testEnv) post(t *testing.T, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := e.client.Post(e.srv.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected-montreal-ai", body["service"])
}

func TestGetDataUsesCache(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/data")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	traffic := body["posthog"].(map[string]interface{})
	assert.Equal(t, 420.0, traffic["total_pageviews_7d"])

	_, _ = env.get(t, "/api/data")
	assert.Equal(t, int64(1), env.traffic.calls.Load(), "second read should come from cache")
}

func TestGetDataSurfacesDegradedFetch(t *testing.T) {
	env := newTestEnv(t)
	env.traffic.err = errors.New("API error (status 500): upstream exploded")

	resp, body := env.get(t, "/api/data")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["posthog_error"], "status 500")
	_, hasPipelineErr := body["airtable_error"]
	assert.False(t, hasPipelineErr, "healthy source must not report an error")
}

func TestRefreshBypassesCache(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.get(t, "/api/data")
	resp, _ := env.post(t, "/api/refresh", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), env.traffic.calls.Load())
}

func TestAnalyzeReturnsProposals(t *testing.T) {
	env := newTestEnv(t)

	// 20 quoted and 0 booked trips the closure rule.
	resp, body := env.post(t, "/api/analyze", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	proposals := body["proposals"].([]interface{})
	require.NotEmpty(t, proposals)
	first := proposals[0].(map[string]interface{})
	assert.Equal(t, "zero-closes-quoted-1", first["id"])
	assert.Equal(t, "high", first["priority"])
}

func TestChatEmbedsLiveData(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/api/chat", map[string]string{"message": "How is traffic?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Traffic sits at 420 pageviews.", body["reply"])
}

func TestChatRequiresMessage(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.post(t, "/api/chat", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAskRelayPrefixesLiveDataSummary(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/api/ask-openclaw", map[string]string{"message": "How is the pipeline?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Quoted leads need a push.", body["response"])
}

func TestAskRelayRequiresMessage(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.post(t, "/api/ask-openclaw", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAskRelayDisabled(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandlers(cache.NewService(cache.NewFileStore(filepath.Join(t.TempDir(), "c.json"), time.Minute), env.traffic, env.pipeline), nil, nil, nil, 7, "")
	srv := httptest.NewServer(SetupRoutes(h, NewQuoteHandlers(nil, quote.NewSessions(), nil, "")))
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/ask-openclaw", "application/json", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSendSMSDisabled(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.post(t, "/api/send-sms", map[string]interface{}{
		"phone_numbers": []string{"+15145551234"},
		"message":       "hi",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDashboardServed(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Get(env.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsExposed(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.get(t, "/health")
	resp, err := env.client.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
