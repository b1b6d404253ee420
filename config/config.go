package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Identity corpus
	CorpusFile   string        // JSON file with weighted user-agent records
	CorpusMaxAge time.Duration // staleness threshold for the corpus file

	// Stealth behaviour
	RespectRobots bool
	DelayProfile  string // "cautious", "normal", "aggressive"

	// Rate limiting
	RatePerSecond float64
	RateBurst     int
	MaxConcurrent int
	Attempts      int // attempts per masked request

	// HTTP server (MCP over HTTP)
	HTTPPort string
	APIKey   string

	// Proxy
	ProxyMode string // "custom", "direct"
	ProxyFile string // file with proxy list for custom mode

	// Logging
	LogLevel string // "debug", "info", "warn", "error"
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CorpusFile:    "user-agent.json",
		CorpusMaxAge:  24 * time.Hour,
		RespectRobots: true,
		DelayProfile:  "normal",
		RatePerSecond: 2.0,
		RateBurst:     3,
		MaxConcurrent: 5,
		Attempts:      5,
		ProxyMode:     "direct",
		HTTPPort:      "8080",
		LogLevel:      "info",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("MASKMINERS_CORPUS_FILE"); v != "" {
		c.CorpusFile = v
	}
	if v := os.Getenv("MASKMINERS_CORPUS_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CorpusMaxAge = d
		}
	}
	if v := os.Getenv("MASKMINERS_DELAY_PROFILE"); v != "" {
		c.DelayProfile = v
	}
	if v := os.Getenv("MASKMINERS_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("MASKMINERS_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("MASKMINERS_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv("MASKMINERS_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Attempts = n
		}
	}
	if v := os.Getenv("MASKMINERS_PROXY_MODE"); v != "" {
		c.ProxyMode = v
	}
	if v := os.Getenv("MASKMINERS_PROXIES"); v != "" {
		c.ProxyFile = v
	}
	if v := os.Getenv("MASKMINERS_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("MASKMINERS_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("MASKMINERS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
