package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Storage
	StoreBackend string
	SQLiteDBPath string

	// Insight
	InsightRelayURL string
	CurrencySymbol  string

	// Relay server
	RelayPort            string
	RelayRateLimit       int
	RelayShutdownTimeout time.Duration
	RelayReferer         string
	CORSAllowOrigin      string

	// Completion provider (relay side)
	InsightProvider   string
	InsightModel      string
	OpenAIAPIKey      string
	OpenRouterBaseURL string
	GeminiAPIKey      string

	// AMQP change feed, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string

	// Logging
	LogLevel  string
	LogFormat string
}

// DefaultRelayReferer is sent as HTTP-Referer to OpenRouter when
// RELAY_REFERER is unset.
const DefaultRelayReferer = "https://money-manager-local.vercel.app"

var (
	validBackends   = []string{"memory", "sqlite"}
	validProviders  = []string{"openrouter", "gemini"}
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"text", "json", "pretty"}
)

func Load() *Config {
	return &Config{
		StoreBackend: getEnv("STORE_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/moneymanager.db"),

		InsightRelayURL: getEnv("INSIGHT_RELAY_URL", ""),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "₹"),

		RelayPort:            getEnv("RELAY_PORT", "8787"),
		RelayRateLimit:       getEnvInt("RELAY_RATE_LIMIT", 10),
		RelayShutdownTimeout: getEnvDuration("RELAY_SHUTDOWN_TIMEOUT", 10*time.Second),
		RelayReferer:         getEnv("RELAY_REFERER", DefaultRelayReferer),
		CORSAllowOrigin:      getEnv("CORS_ALLOW_ORIGIN", ""),

		InsightProvider:   strings.ToLower(getEnv("INSIGHT_PROVIDER", "openrouter")),
		InsightModel:      getEnv("INSIGHT_MODEL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "moneymanager"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
	}
}

// Validate checks the settings every command shares and returns every
// problem found in one error.
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.StoreBackend) {
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, validBackends))
	}

	if c.StoreBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.InsightRelayURL != "" {
		errors = append(errors, checkURL("insight relay URL", c.InsightRelayURL, "http", "https")...)
	}

	if strings.TrimSpace(c.CurrencySymbol) == "" {
		errors = append(errors, "currency symbol cannot be empty")
	}

	if c.AMQPURL != "" {
		errors = append(errors, checkURL("AMQP URL", c.AMQPURL, "amqp", "amqps")...)
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	return joinErrors(errors)
}

// ValidateRelay checks the settings used only by the insight relay. A
// missing API key is not an error here: the relay starts and answers with
// a configuration error per request.
func (c *Config) ValidateRelay() error {
	var errors []string

	if port, err := strconv.Atoi(c.RelayPort); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.RelayPort))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validProviders, c.InsightProvider) {
		errors = append(errors, fmt.Sprintf("invalid insight provider '%s': must be one of %v", c.InsightProvider, validProviders))
	}

	if c.RelayRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid relay rate limit %d: must be at least 1", c.RelayRateLimit))
	}

	if c.RelayShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.RelayShutdownTimeout))
	}

	if c.OpenRouterBaseURL != "" {
		errors = append(errors, checkURL("OpenRouter base URL", c.OpenRouterBaseURL, "http", "https")...)
	}

	if c.RelayReferer != "" {
		errors = append(errors, checkURL("relay referer", c.RelayReferer, "http", "https")...)
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	return joinErrors(errors)
}

// APIKey returns the credential of the configured completion provider.
func (c *Config) APIKey() string {
	if c.InsightProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// AllowOrigins splits CORS_ALLOW_ORIGIN on commas.
func (c *Config) AllowOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func checkURL(name, raw string, schemes ...string) []string {
	u, err := url.Parse(raw)
	if err != nil {
		return []string{fmt.Sprintf("invalid %s '%s': %v", name, raw, err)}
	}
	if !slices.Contains(schemes, u.Scheme) {
		return []string{fmt.Sprintf("invalid %s scheme '%s': must be one of %v", name, u.Scheme, schemes)}
	}
	if u.Host == "" {
		return []string{fmt.Sprintf("invalid %s '%s': missing host", name, raw)}
	}
	return nil
}

func joinErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
