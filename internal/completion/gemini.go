package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini completes prompts with the Gemini Developer API.
type Gemini struct {
	opts   Options
	models *genai.Models
}

// NewGemini creates the genai client up front when a key is present.
// Without one, every Complete reports ErrMissingCredential.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	g := &Gemini{opts: opts.withDefaults(DefaultGeminiModel)}
	if g.opts.APIKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.models = client.Models
	return g, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	if g.models == nil {
		return "", ErrMissingCredential
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: g.opts.SystemPrompt}},
		},
		MaxOutputTokens: int32(g.opts.MaxTokens),
		Temperature:     genai.Ptr(float32(g.opts.Temperature)),
	}

	resp, err := g.models.GenerateContent(ctx, g.opts.Model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = DefaultFailure
			}
			code := apiErr.Code
			if code == 0 {
				code = http.StatusBadGateway
			}
			return "", &UpstreamError{StatusCode: code, Message: msg}
		}
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
