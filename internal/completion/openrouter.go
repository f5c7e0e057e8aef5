package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "openai/gpt-4o-mini"
	DefaultTitle           = "Money Manager Local"
)

type OpenRouterConfig struct {
	Options
	BaseURL    string
	Referer    string
	Title      string
	HTTPClient *http.Client
}

// OpenRouter calls an OpenAI-compatible chat completions endpoint.
type OpenRouter struct {
	opts    Options
	baseURL string
	referer string
	title   string
	http    *http.Client
}

func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultOpenRouterURL
	}
	title := cfg.Title
	if title == "" {
		title = DefaultTitle
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &OpenRouter{
		opts:    cfg.Options.withDefaults(DefaultOpenRouterModel),
		baseURL: base,
		referer: cfg.Referer,
		title:   title,
		http:    hc,
	}
}

func (o *OpenRouter) Name() string { return ProviderOpenRouter }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenRouter) Complete(ctx context.Context, prompt string) (string, error) {
	if o.opts.APIKey == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(chatRequest{
		Model: o.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: o.opts.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.opts.APIKey)
	if o.referer != "" {
		req.Header.Set("HTTP-Referer", o.referer)
	}
	req.Header.Set("X-Title", o.title)

	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := DefaultFailure
		var ce chatError
		if json.Unmarshal(raw, &ce) == nil && ce.Error != nil && ce.Error.Message != "" {
			msg = ce.Error.Message
		}
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
