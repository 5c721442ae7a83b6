package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, q *QuoteHandlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestMetrics)

	// CORS - the dashboard is served same-origin, but the quote page
	// is also embedded from the marketing site during campaigns.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://connectedmontreal.com", "http://localhost:5050", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check and metrics
	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	// Dashboard
	r.Get("/", h.Dashboard)

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", h.GetData)
		r.Post("/refresh", h.Refresh)
		r.Post("/chat", h.Chat)
		r.Post("/ask-openclaw", h.AskRelay)
		r.Post("/send-sms", h.SendSMS)
		r.Post("/analyze", h.Analyze)
	})

	// Quote portal
	r.Post("/generate-quote", q.Generate)
	r.Route("/quote/{token}", func(r chi.Router) {
		r.Get("/", q.Page)
		r.Post("/auth", q.Auth)
		r.Get("/view", q.View)
		r.Post("/update-event", q.UpdateEvent)
		r.Post("/update-field", q.UpdateField)
	})

	return r
}
