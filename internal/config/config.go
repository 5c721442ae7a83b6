package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	PostHog  PostHogConfig  `yaml:"posthog"`
	Airtable AirtableConfig `yaml:"airtable"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Relay    RelayConfig    `yaml:"relay"`
	SMS      SMSConfig      `yaml:"sms"`
	Cache    CacheConfig    `yaml:"cache"`
	Quote    QuoteConfig    `yaml:"quote"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Web      WebConfig      `yaml:"web"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with environment override
func (c ServerConfig) GetHost() string {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// PostHogConfig holds PostHog analytics API configuration
type PostHogConfig struct {
	APIKey         string `yaml:"api_key"`
	Host           string `yaml:"host"`
	ProjectID      string `yaml:"project_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	WindowDays     int    `yaml:"window_days"`
	PageLimit      int    `yaml:"page_limit"`
}

// Timeout returns the configured timeout as a duration
func (c PostHogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AirtableConfig holds Airtable CRM API configuration
type AirtableConfig struct {
	Token          string `yaml:"token"`
	BaseURL        string `yaml:"base_url"`
	BaseID         string `yaml:"base_id"`
	CustomersTable string `yaml:"customers_table"`
	EventsTable    string `yaml:"events_table"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c AirtableConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OllamaConfig holds local chat-completion endpoint configuration
type OllamaConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c OllamaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RelayConfig holds the local assistant-relay fallback used when the
// Ollama instance is unavailable
type RelayConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c RelayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SMSConfig holds the local messaging relay configuration.
// CredentialsPath points at the relay's own config store, which holds
// the gateway address and password.
type SMSConfig struct {
	CredentialsPath string `yaml:"credentials_path"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	Enabled         bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c SMSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheConfig holds live-data cache configuration
type CacheConfig struct {
	Type       string `yaml:"type"` // "file" or "redis"
	Path       string `yaml:"path"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisKey   string `yaml:"redis_key"`
}

// TTL returns the cache time-to-live as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// QuoteConfig holds quote portal configuration
type QuoteConfig struct {
	TokenStorePath string `yaml:"token_store_path"`
}

// AnalysisConfig holds offline analysis run configuration
type AnalysisConfig struct {
	ReportPath    string `yaml:"report_path"`
	ProposalsPath string `yaml:"proposals_path"`
}

// WebConfig holds paths to the bundled static pages
type WebConfig struct {
	DashboardPath string `yaml:"dashboard_path"`
	QuotePagePath string `yaml:"quote_page_path"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5050
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.PostHog.Host == "" {
		cfg.PostHog.Host = "https://us.posthog.com"
	}
	if cfg.PostHog.TimeoutSeconds == 0 {
		cfg.PostHog.TimeoutSeconds = 15
	}
	if cfg.PostHog.WindowDays == 0 {
		cfg.PostHog.WindowDays = 7
	}
	if cfg.PostHog.PageLimit == 0 {
		cfg.PostHog.PageLimit = 1000
	}
	if cfg.Airtable.BaseURL == "" {
		cfg.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Airtable.TimeoutSeconds == 0 {
		cfg.Airtable.TimeoutSeconds = 30
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "gemma3:4b"
	}
	if cfg.Ollama.TimeoutSeconds == 0 {
		cfg.Ollama.TimeoutSeconds = 10
	}
	if cfg.Relay.BaseURL == "" {
		cfg.Relay.BaseURL = "http://localhost:9999"
	}
	if cfg.Relay.TimeoutSeconds == 0 {
		cfg.Relay.TimeoutSeconds = 30
	}
	if cfg.SMS.TimeoutSeconds == 0 {
		cfg.SMS.TimeoutSeconds = 30
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "file"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "data/live-cache.json"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.RedisKey == "" {
		cfg.Cache.RedisKey = "cm:live-data"
	}
	if cfg.Quote.TokenStorePath == "" {
		cfg.Quote.TokenStorePath = "data/quote-tokens.json"
	}
	if cfg.Analysis.ReportPath == "" {
		cfg.Analysis.ReportPath = "data/daily-report.json"
	}
	if cfg.Analysis.ProposalsPath == "" {
		cfg.Analysis.ProposalsPath = "data/proposals.json"
	}
	if cfg.Web.DashboardPath == "" {
		cfg.Web.DashboardPath = "web/dashboard.html"
	}
	if cfg.Web.QuotePagePath == "" {
		cfg.Web.QuotePagePath = "web/quote.html"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("POSTHOG_API_KEY"); v != "" {
		cfg.PostHog.APIKey = v
	}
	if v := os.Getenv("POSTHOG_HOST"); v != "" {
		cfg.PostHog.Host = v
	}
	if v := os.Getenv("POSTHOG_PROJECT"); v != "" {
		cfg.PostHog.ProjectID = v
	}
	if v := os.Getenv("AIRTABLE_TOKEN"); v != "" {
		cfg.Airtable.Token = v
	}
	if v := os.Getenv("AIRTABLE_BASE"); v != "" {
		cfg.Airtable.BaseID = v
	}
	if v := os.Getenv("AIRTABLE_TABLE"); v != "" {
		cfg.Airtable.CustomersTable = v
	}
	if v := os.Getenv("AIRTABLE_EVENTS_TABLE"); v != "" {
		cfg.Airtable.EventsTable = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		cfg.Cache.Type = "redis"
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	return cfg, nil
}
