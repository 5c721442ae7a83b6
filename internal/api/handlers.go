package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ohbot666/connected-montreal-ai/internal/analyzer"
	"github.com/ohbot666/connected-montreal-ai/internal/cache"
	"github.com/ohbot666/connected-montreal-ai/internal/ollama"
	"github.com/ohbot666/connected-montreal-ai/internal/pkg/httputil"
	"github.com/ohbot666/connected-montreal-ai/internal/pkg/logger"
	"github.com/ohbot666/connected-montreal-ai/internal/relay"
	"github.com/ohbot666/connected-montreal-ai/internal/sms"
)

const chatSystemPrompt = `You are the marketing assistant for Connected Montreal, a company that organizes bachelor party weekends in Montreal. Answer questions using the live analytics data below. Be concise and concrete; cite the numbers you use.

Live data:
`

// Handlers holds the dashboard and analysis HTTP handlers
type Handlers struct {
	live       *cache.Service
	chat       *ollama.Client
	relay      *relay.Client
	sms        *sms.Client
	windowDays int

	dashboardPath string
}

// NewHandlers creates the dashboard handler set. chat, relayClient,
// and sms may be nil when the corresponding bridge is disabled; their
// endpoints then answer 503.
func NewHandlers(live *cache.Service, chat *ollama.Client, relayClient *relay.Client, smsClient *sms.Client, windowDays int, dashboardPath string) *Handlers {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Handlers{
		live:          live,
		chat:          chat,
		relay:         relayClient,
		sms:           smsClient,
		windowDays:    windowDays,
		dashboardPath: dashboardPath,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status":    "healthy",
		"service":   "connected-montreal-ai",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Dashboard handles GET / by serving the bundled dashboard page.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, h.dashboardPath)
}

// GetData handles GET /api/data
func (h *Handlers) GetData(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.live.LiveData(r.Context()))
}

// Refresh handles POST /api/refresh
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.live.Refresh(r.Context()))
}

type chatRequest struct {
	Message string           `json:"message"`
	History []ollama.Message `json:"history"`
}

// Chat handles POST /api/chat by proxying to the local model with the
// current live data embedded in the system prompt.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		httputil.Unavailable(w, "chat is not enabled")
		return
	}

	var req chatRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Message == "" {
		httputil.BadRequest(w, "message is required")
		return
	}

	data := h.live.LiveData(r.Context())
	liveJSON, _ := json.Marshal(data)

	messages := make([]ollama.Message, 0, len(req.History)+2)
	messages = append(messages, ollama.Message{Role: "system", Content: chatSystemPrompt + string(liveJSON)})
	messages = append(messages, req.History...)
	messages = append(messages, ollama.Message{Role: "user", Content: req.Message})

	reply, err := h.chat.Chat(r.Context(), messages)
	if err != nil {
		logger.Error("chat failed", "error", err.Error())
		httputil.Unavailable(w, "chat backend unavailable")
		return
	}
	httputil.OK(w, map[string]string{"reply": reply})
}

type askRelayRequest struct {
	Message string `json:"message"`
}

// AskRelay handles POST /api/ask-openclaw, the chat fallback through
// the local assistant relay. A compact live-data summary is prefixed
// to the question so the relay can answer with current numbers.
func (h *Handlers) AskRelay(w http.ResponseWriter, r *http.Request) {
	if h.relay == nil {
		httputil.Unavailable(w, "the assistant relay is only available when running locally")
		return
	}

	var req askRelayRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Message == "" {
		httputil.BadRequest(w, "message is required")
		return
	}

	data := h.live.LiveData(r.Context())
	summary, _ := json.Marshal(map[string]interface{}{
		"pipeline":     data.Pipeline.Pipeline,
		"pageviews_7d": data.Traffic.TotalPageviews7d,
		"top_pages":    data.Traffic.TopPages,
	})
	prefixed := "[Connected Montreal Live Data]\n" + string(summary) + "\n\nQuestion: " + req.Message

	reply, err := h.relay.Ask(r.Context(), prefixed)
	if err != nil {
		logger.Error("relay ask failed", "error", err.Error())
		httputil.Unavailable(w, "the assistant relay is not responding")
		return
	}
	httputil.OK(w, map[string]string{"response": reply})
}

type sendSMSRequest struct {
	PhoneNumbers []string `json:"phone_numbers"`
	Message      string   `json:"message"`
}

// SendSMS handles POST /api/send-sms
func (h *Handlers) SendSMS(w http.ResponseWriter, r *http.Request) {
	if h.sms == nil {
		httputil.Unavailable(w, "sms is not enabled")
		return
	}

	var req sendSMSRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.PhoneNumbers) == 0 || req.Message == "" {
		httputil.BadRequest(w, "phone_numbers and message are required")
		return
	}

	id, err := h.sms.Send(r.Context(), req.PhoneNumbers, req.Message)
	if err != nil {
		logger.Error("sms send failed", "error", err.Error())
		httputil.Unavailable(w, "sms relay unavailable")
		return
	}
	httputil.OK(w, map[string]string{"id": id})
}

// Analyze handles POST /api/analyze: run the rule engine over current
// live data and return the proposals without persisting anything.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	data := h.live.LiveData(r.Context())

	report := analyzer.Report{
		GeneratedAt: time.Now().UTC(),
		PeriodDays:  h.windowDays,
		Traffic:     data.Traffic,
		Pipeline:    data.Pipeline,
	}
	proposals := analyzer.New().Analyze(report)
	httputil.OK(w, analyzer.ProposalsFile{
		GeneratedAt: report.GeneratedAt,
		Proposals:   proposals,
	})
}
