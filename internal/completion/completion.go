// Package completion talks to the chat-completion providers behind the
// insight relay.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	SystemPrompt       = "You are a helpful financial assistant."
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.7
	// DefaultFailure is the upstream error text used when the provider
	// gives no message of its own.
	DefaultFailure = "Failed to fetch analysis"
)

// ErrMissingCredential means the provider has no API key configured.
var ErrMissingCredential = errors.New("missing API key")

// UpstreamError is a non-OK answer from the provider.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}

// Completer turns a user prompt into a single completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Options are shared by every provider.
type Options struct {
	APIKey       string
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = SystemPrompt
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	o.APIKey = strings.TrimSpace(o.APIKey)
	return o
}

// Provider names accepted by New.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	Options  Options
	// BaseURL overrides the OpenRouter endpoint root.
	BaseURL string
	Referer string
	Title   string
}

// New builds the configured provider. A missing API key is not an error
// here; Complete reports it per request.
func New(ctx context.Context, cfg Config) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenRouter:
		return NewOpenRouter(OpenRouterConfig{
			Options: cfg.Options,
			BaseURL: cfg.BaseURL,
			Referer: cfg.Referer,
			Title:   cfg.Title,
		}), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg.Options)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", cfg.Provider)
	}
}
