package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"moneymanager/internal/completion"
	"moneymanager/internal/insight"
	"moneymanager/internal/log"
)

const (
	msgMethodNotAllowed = "Method Not Allowed"
	msgMissingPrompt    = "Missing prompt"
	msgInvalidBody      = "Invalid request body"
	msgMissingKey       = "Server configuration error: Missing API Key"
	msgInternal         = "Internal Server Error"
)

// handleAnalyze forwards {prompt} to the completion provider. Request
// problems and missing configuration answer in plain text; provider
// outcomes answer in JSON.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeText(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	var req insight.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Invalid analyze body",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeValidation)
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeText(w, http.StatusBadRequest, msgMissingPrompt)
		return
	}

	provider := s.completer.Name()
	start := time.Now()
	content, err := s.completer.Complete(ctx, req.Prompt)

	var upstream *completion.UpstreamError
	switch {
	case err == nil:
		s.metrics.completion(provider, "ok")
		logger.InfoContext(ctx, "Completion succeeded",
			log.FieldProvider, provider,
			log.FieldDuration, time.Since(start).Milliseconds())
		writeJSON(w, http.StatusOK, insight.Response{
			Choices: []insight.Choice{{Message: insight.ChoiceMessage{Role: "assistant", Content: content}}},
		})

	case errors.Is(err, completion.ErrMissingCredential):
		s.metrics.completion(provider, "unconfigured")
		logger.ErrorContext(ctx, "Completion provider has no API key",
			log.FieldProvider, provider,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		writeText(w, http.StatusInternalServerError, msgMissingKey)

	case errors.As(err, &upstream):
		s.metrics.completion(provider, "upstream_error")
		logger.WarnContext(ctx, "Completion provider rejected request",
			log.FieldProvider, provider,
			log.FieldStatusCode, upstream.StatusCode,
			log.FieldError, upstream.Message,
			log.FieldErrorType, log.ErrorTypeUpstream)
		msg := upstream.Message
		if msg == "" {
			msg = completion.DefaultFailure
		}
		code := upstream.StatusCode
		if code < 400 || code > 599 {
			code = http.StatusBadGateway
		}
		writeError(w, code, msg)

	default:
		s.metrics.completion(provider, "error")
		logger.ErrorContext(ctx, "Completion failed",
			log.FieldProvider, provider,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, insight.ErrorResponse{Error: msg})
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
