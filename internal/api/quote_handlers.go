package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ohbot666/connected-montreal-ai/internal/airtable"
	"github.com/ohbot666/connected-montreal-ai/internal/pkg/httputil"
	"github.com/ohbot666/connected-montreal-ai/internal/pkg/logger"
	"github.com/ohbot666/connected-montreal-ai/internal/quote"
)

// QuoteHandlers holds the quote portal HTTP handlers
type QuoteHandlers struct {
	store    *quote.TokenStore
	sessions *quote.Sessions
	builder  *quote.Builder
	pagePath string
}

// NewQuoteHandlers creates the quote portal handler set.
func NewQuoteHandlers(store *quote.TokenStore, sessions *quote.Sessions, builder *quote.Builder, pagePath string) *QuoteHandlers {
	return &QuoteHandlers{
		store:    store,
		sessions: sessions,
		builder:  builder,
		pagePath: pagePath,
	}
}

type generateQuoteRequest struct {
	RecordID string `json:"record_id"`
	Password string `json:"password"`
}

// Generate handles POST /generate-quote
func (q *QuoteHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateQuoteRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.RecordID == "" {
		httputil.BadRequest(w, "record_id is required")
		return
	}

	token, password, err := q.store.Create(req.RecordID, req.Password)
	if err != nil {
		logger.Error("quote token create failed", "record_id", req.RecordID, "error", err.Error())
		httputil.InternalError(w, err)
		return
	}

	logger.Info("quote generated", "record_id", req.RecordID)
	httputil.OK(w, map[string]string{
		"token":    token,
		"url":      "/quote/" + token,
		"password": password,
	})
}

// Page handles GET /quote/{token} by serving the portal page. The
// page itself decides between the password gate and the itinerary by
// calling the view endpoint.
func (q *QuoteHandlers) Page(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, ok := q.store.Lookup(token); !ok {
		httputil.NotFound(w, "quote not found")
		return
	}
	q.sessions.SessionID(w, r)
	http.ServeFile(w, r, q.pagePath)
}

type authRequest struct {
	Password string `json:"password"`
}

// Auth handles POST /quote/{token}/auth
func (q *QuoteHandlers) Auth(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	entry, ok := q.store.Lookup(token)
	if !ok {
		httputil.NotFound(w, "quote not found")
		return
	}

	var req authRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	session := q.sessions.SessionID(w, r)
	if req.Password != entry.Password {
		logger.Warn("quote auth rejected", "token", logger.Mask(token))
		httputil.Unauthorized(w, "incorrect password")
		return
	}

	q.sessions.Grant(session, token)
	httputil.OK(w, map[string]bool{"authenticated": true})
}

// View handles GET /quote/{token}/view
func (q *QuoteHandlers) View(w http.ResponseWriter, r *http.Request) {
	entry, ok := q.gate(w, r)
	if !ok {
		return
	}

	view, err := q.builder.BuildView(r.Context(), entry.RecordID)
	if err != nil {
		if errors.Is(err, airtable.ErrNotFound) {
			httputil.NotFound(w, "client record not found")
			return
		}
		logger.Error("quote view build failed", "record_id", entry.RecordID, "error", err.Error())
		httputil.Unavailable(w, "quote data unavailable")
		return
	}
	httputil.OK(w, view)
}

type updateEventRequest struct {
	EventID string `json:"event_id"`
	quote.EventPatch
}

// UpdateEvent handles POST /quote/{token}/update-event
func (q *QuoteHandlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	entry, ok := q.gate(w, r)
	if !ok {
		return
	}

	var req updateEventRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.EventID == "" {
		httputil.BadRequest(w, "event_id is required")
		return
	}

	if err := q.builder.UpdateEvent(r.Context(), entry.RecordID, req.EventID, req.EventPatch); err != nil {
		logger.Error("event update failed", "event_id", req.EventID, "error", err.Error())
		httputil.Unavailable(w, "update failed")
		return
	}
	httputil.OK(w, map[string]bool{"updated": true})
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateField handles POST /quote/{token}/update-field
func (q *QuoteHandlers) UpdateField(w http.ResponseWriter, r *http.Request) {
	entry, ok := q.gate(w, r)
	if !ok {
		return
	}

	var req updateFieldRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	err := q.builder.UpdateField(r.Context(), entry.RecordID, req.Field, req.Value)
	switch {
	case errors.Is(err, quote.ErrFieldNotAllowed):
		httputil.BadRequest(w, err.Error())
	case err != nil:
		logger.Error("field update failed", "field", req.Field, "error", err.Error())
		httputil.BadRequest(w, err.Error())
	default:
		httputil.OK(w, map[string]bool{"updated": true})
	}
}

// gate resolves the token and requires an unlocked session. Writes
// the error response itself when access is denied.
func (q *QuoteHandlers) gate(w http.ResponseWriter, r *http.Request) (quote.Token, bool) {
	token := chi.URLParam(r, "token")
	entry, ok := q.store.Lookup(token)
	if !ok {
		httputil.NotFound(w, "quote not found")
		return quote.Token{}, false
	}

	session := q.sessions.SessionID(w, r)
	if !q.sessions.Unlocked(session, token) {
		httputil.Unauthorized(w, "password required")
		return quote.Token{}, false
	}
	return entry, true
}
