package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

// NoAnalysis is returned when the relay answers with empty content.
const NoAnalysis = "No analysis could be generated."

var (
	ErrNotConfigured     = errors.New("insight relay is not configured")
	ErrMalformedResponse = errors.New("malformed insight response")
)

// StatusError reports a non-2xx answer from the relay.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("insight relay returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("insight relay returned status %d: %s", e.StatusCode, e.Message)
}

// Request is the body sent to the relay.
type Request struct {
	Prompt string `json:"prompt"`
}

// Response is the success body of the relay.
type Response struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message ChoiceMessage `json:"message"`
}

type ChoiceMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

// ErrorResponse is the failure body of the relay.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Config holds the client settings.
type Config struct {
	RelayURL   string
	Currency   string
	HTTPClient *http.Client
}

// Client sends prompts to the insight relay. It never retries; the
// request lives as long as ctx does.
type Client struct {
	relayURL string
	currency string
	http     *http.Client
	logger   *log.Logger
}

func NewClient(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		relayURL: strings.TrimSpace(cfg.RelayURL),
		currency: cfg.Currency,
		http:     hc,
		logger:   logger.WithComponent(log.ComponentInsight),
	}
}

// RequestInsight builds the prompt for txs and returns the relay's text.
func (c *Client) RequestInsight(ctx context.Context, txs []core.Transaction) (string, error) {
	if c.relayURL == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(Request{Prompt: BuildPrompt(txs, c.currency)})
	if err != nil {
		return "", fmt.Errorf("encode insight request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build insight request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Insight request failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
		return "", fmt.Errorf("send insight request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read insight response: %w", err)
	}

	c.logger.InfoContext(ctx, "Insight relay answered",
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Message: relayErrorText(raw)}
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Choices == nil {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return NoAnalysis, nil
	}
	return out.Choices[0].Message.Content, nil
}

// relayErrorText extracts {error} from a failure body, falling back to the
// raw text for relays that answer in plain text.
func relayErrorText(raw []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(raw))
}

// Message converts a RequestInsight error into text for the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "AI analysis is not configured. Set INSIGHT_RELAY_URL to enable it."
	case errors.As(err, &se):
		if se.Message != "" {
			return "Failed to analyze spending: " + se.Message
		}
		return fmt.Sprintf("Failed to analyze spending (status %d).", se.StatusCode)
	case errors.Is(err, ErrMalformedResponse):
		return "Failed to analyze spending: the analysis service sent an unreadable response."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Analysis was cancelled."
	default:
		return "Failed to analyze spending. Check your connection and try again."
	}
}
