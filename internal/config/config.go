package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL   string `env:"DATABASE_URL,required"`
	GatewayAPIKey string `env:"GATEWAY_API_KEY,required"`

	// Inference gateway
	GatewayURL string `env:"GATEWAY_URL" envDefault:"https://ai.gateway.lovable.dev/v1"`
	Model      string `env:"GATEWAY_MODEL" envDefault:"google/gemini-3-flash-preview"`

	// Server
	Addr string `env:"ADDR" envDefault:":8080"`

	// CORS origin served to the browser UI. "*" during development.
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`

	// Rate limiting (requests per second per client IP)
	RateLimit      float64 `env:"RATE_LIMIT" envDefault:"2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Usage pricing, USD per 1M tokens. Zero disables cost accounting.
	PromptPricePerM     string `env:"PROMPT_PRICE_PER_M" envDefault:"0.10"`
	CompletionPricePerM string `env:"COMPLETION_PRICE_PER_M" envDefault:"0.40"`

	// Docs refresher
	DocsBaseURL string `env:"DOCS_BASE_URL" envDefault:"https://docs.openclaw.ai"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
