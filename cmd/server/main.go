package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ohbot666/connected-montreal-ai/internal/airtable"
	"github.com/ohbot666/connected-montreal-ai/internal/api"
	"github.com/ohbot666/connected-montreal-ai/internal/cache"
	"github.com/ohbot666/connected-montreal-ai/internal/config"
	"github.com/ohbot666/connected-montreal-ai/internal/ollama"
	"github.com/ohbot666/connected-montreal-ai/internal/posthog"
	"github.com/ohbot666/connected-montreal-ai/internal/quote"
	"github.com/ohbot666/connected-montreal-ai/internal/relay"
	"github.com/ohbot666/connected-montreal-ai/internal/sms"
)

func main() {
	configPath := "config/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Collectors
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

	// Live-data cache
	var store cache.Store
	switch cfg.Cache.Type {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		store = cache.NewRedisStore(rdb, cfg.Cache.RedisKey, cfg.Cache.TTL())
		log.Printf("Live-data cache: redis at %s", cfg.Cache.RedisAddr)
	default:
		store = cache.NewFileStore(cfg.Cache.Path, cfg.Cache.TTL())
		log.Printf("Live-data cache: file at %s", cfg.Cache.Path)
	}
	live := cache.NewService(store, traffic, pipeline)

	// Optional bridges
	var chat *ollama.Client
	if cfg.Ollama.Enabled {
		chat = ollama.NewClient(ollama.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
		}, cfg.Ollama.Timeout())
		log.Printf("Chat bridge enabled: %s (%s)", cfg.Ollama.BaseURL, cfg.Ollama.Model)
	}

	var relayClient *relay.Client
	if cfg.Relay.Enabled {
		relayClient = relay.NewClient(cfg.Relay.BaseURL, cfg.Relay.Timeout())
		log.Printf("Assistant relay enabled: %s", cfg.Relay.BaseURL)
	}

	var smsClient *sms.Client
	if cfg.SMS.Enabled {
		smsClient = sms.NewClient(cfg.SMS.CredentialsPath, cfg.SMS.Timeout())
		log.Println("SMS bridge enabled")
	}

	// Quote portal
	tokens, err := quote.NewTokenStore(cfg.Quote.TokenStorePath)
	if err != nil {
		log.Fatalf("Failed to open token store: %v", err)
	}
	builder := quote.NewBuilder(atClient, cfg.Airtable.CustomersTable, cfg.Airtable.EventsTable)

	handlers := api.NewHandlers(live, chat, relayClient, smsClient, cfg.PostHog.WindowDays, cfg.Web.DashboardPath)
	quoteHandlers := api.NewQuoteHandlers(tokens, quote.NewSessions(), builder, cfg.Web.QuotePagePath)
	server := api.NewServer(cfg.Server, handlers, quoteHandlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
