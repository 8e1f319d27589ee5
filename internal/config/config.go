// Package config provides configuration loading for pland.
//
// Configuration is loaded from a YAML file (~/.config/pland/config.yaml by
// default) and overridden by environment variables. Defaults are chosen so
// that `pland serve` works out of the box with only DEEPSEEK_API_KEY set.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete pland configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Planner   PlannerConfig   `koanf:"planner"`
	Provider  ProviderConfig  `koanf:"provider"`
	Search    SearchConfig    `koanf:"search"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// PlannerConfig holds the planning pipeline limits.
type PlannerConfig struct {
	// MaxSearches is the search budget for one planning request,
	// shared across all phases.
	MaxSearches int `koanf:"max_searches"`

	// MaxQueriesPerPhase bounds the queries a single phase derives.
	MaxQueriesPerPhase int `koanf:"max_queries_per_phase"`

	// PerCallTimeout applies to each individual gateway call.
	PerCallTimeout Duration `koanf:"per_call_timeout"`

	// MaxEvidenceBytes bounds the search evidence folded into one
	// phase prompt. Highest-ranked results are kept, overflow dropped.
	MaxEvidenceBytes int `koanf:"max_evidence_bytes"`
}

// ProviderConfig holds the LLM completion provider settings.
// The endpoint must speak the OpenAI chat-completions dialect;
// DeepSeek's API does.
type ProviderConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  Secret `koanf:"api_key"`
}

// SearchConfig holds the web search settings.
type SearchConfig struct {
	// Engine selects the search backend: "duckduckgo" or "github".
	Engine string `koanf:"engine"`

	// MaxResults caps the results returned per query.
	MaxResults int `koanf:"max_results"`

	// RatePerSecond is the client-side request rate limit applied to
	// the search backend. External engines throttle scrapers.
	RatePerSecond float64 `koanf:"rate_per_second"`

	// GitHubToken authenticates the GitHub search backend (optional
	// for low volumes, unauthenticated requests are rate limited hard).
	GitHubToken Secret `koanf:"github_token"`
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // "grpc" or "http/protobuf"
	Insecure       bool     `koanf:"insecure"`
	ServiceName    string   `koanf:"service_name"`
	ServiceVersion string   `koanf:"service_version"`
	SampleRate     float64  `koanf:"sample_rate"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8000,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Planner: PlannerConfig{
			MaxSearches:        20,
			MaxQueriesPerPhase: 3,
			PerCallTimeout:     Duration(30 * time.Second),
			MaxEvidenceBytes:   16 * 1024,
		},
		Provider: ProviderConfig{
			BaseURL: "https://api.deepseek.com/v1",
			Model:   "deepseek-chat",
		},
		Search: SearchConfig{
			Engine:        "duckduckgo",
			MaxResults:    5,
			RatePerSecond: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			Endpoint:       "localhost:4317",
			Protocol:       "grpc",
			Insecure:       true,
			ServiceName:    "pland",
			ServiceVersion: "0.1.0",
			SampleRate:     1.0,
			ExportInterval: Duration(15 * time.Second),
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Planner.MaxSearches < 0 {
		return fmt.Errorf("planner.max_searches cannot be negative: %d", c.Planner.MaxSearches)
	}
	if c.Planner.MaxQueriesPerPhase < 0 {
		return fmt.Errorf("planner.max_queries_per_phase cannot be negative: %d", c.Planner.MaxQueriesPerPhase)
	}
	if c.Planner.PerCallTimeout <= 0 {
		return errors.New("planner.per_call_timeout must be positive")
	}
	if c.Planner.MaxEvidenceBytes <= 0 {
		return errors.New("planner.max_evidence_bytes must be positive")
	}

	if c.Provider.BaseURL == "" {
		return errors.New("provider.base_url is required")
	}
	if c.Provider.Model == "" {
		return errors.New("provider.model is required")
	}

	switch c.Search.Engine {
	case "duckduckgo", "github":
	default:
		return fmt.Errorf("unknown search engine: %q", c.Search.Engine)
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be at least 1: %d", c.Search.MaxResults)
	}
	if c.Search.RatePerSecond <= 0 {
		return errors.New("search.rate_per_second must be positive")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry.endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.ServiceName == "" {
			return errors.New("telemetry.service_name is required when telemetry is enabled")
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry.sample_rate must be in [0,1]: %f", c.Telemetry.SampleRate)
		}
	}

	return nil
}
