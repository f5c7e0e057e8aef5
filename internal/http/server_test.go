package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneymanager/internal/completion"
	"moneymanager/internal/core"
	"moneymanager/internal/insight"
	"moneymanager/internal/log"
)

type fakeCompleter struct {
	content string
	err     error
	prompts []string
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.content, f.err
}

func newTestServer(t *testing.T, c completion.Completer, cfg Config) *Server {
	t.Helper()
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 100
	}
	srv := NewServer(cfg, c, log.New(log.Config{Output: io.Discard}))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		completer  *fakeCompleter
		wantStatus int
		wantBody   string
	}{
		{
			name:       "wrong method",
			method:     http.MethodGet,
			completer:  &fakeCompleter{},
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   "Method Not Allowed",
		},
		{
			name:       "missing prompt",
			method:     http.MethodPost,
			body:       `{}`,
			completer:  &fakeCompleter{},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing prompt",
		},
		{
			name:       "invalid json",
			method:     http.MethodPost,
			body:       `{"prompt":`,
			completer:  &fakeCompleter{},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid request body",
		},
		{
			name:       "missing key",
			method:     http.MethodPost,
			body:       `{"prompt":"hi"}`,
			completer:  &fakeCompleter{err: completion.ErrMissingCredential},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Server configuration error: Missing API Key",
		},
		{
			name:       "upstream error",
			method:     http.MethodPost,
			body:       `{"prompt":"hi"}`,
			completer:  &fakeCompleter{err: &completion.UpstreamError{StatusCode: 401, Message: "No auth credentials found"}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"No auth credentials found"}`,
		},
		{
			name:       "transport failure",
			method:     http.MethodPost,
			body:       `{"prompt":"hi"}`,
			completer:  &fakeCompleter{err: errors.New("dial tcp: connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name:       "success",
			method:     http.MethodPost,
			body:       `{"prompt":"hi"}`,
			completer:  &fakeCompleter{content: "Looks fine."},
			wantStatus: http.StatusOK,
			wantBody:   `{"choices":[{"message":{"role":"assistant","content":"Looks fine."}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.completer, Config{})
			rr := do(srv, tt.method, "/api/analyze", tt.body)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if got := strings.TrimSpace(rr.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
			if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Errorf("security headers missing")
			}
		})
	}
}

func TestAnalyzeRateLimited(t *testing.T) {
	srv := newTestServer(t, &fakeCompleter{content: "ok"}, Config{RateLimit: 1})

	if rr := do(srv, http.MethodPost, "/api/analyze", `{"prompt":"a"}`); rr.Code != http.StatusOK {
		t.Fatalf("first status = %d", rr.Code)
	}
	rr := do(srv, http.MethodPost, "/api/analyze", `{"prompt":"a"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rr.Code)
	}
	var body insight.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("rate limit body = %s", rr.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, &fakeCompleter{content: "ok"}, Config{})
	do(srv, http.MethodPost, "/api/analyze", `{"prompt":"a"}`)

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := do(srv, http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}

	rr := do(srv, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`moneymanager_relay_completions_total{outcome="ok",provider="fake"} 1`,
		`moneymanager_relay_http_requests_total{code="200",method="POST",route="/api/analyze"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestInsightClientThroughRelay(t *testing.T) {
	fc := &fakeCompleter{content: "Food is your biggest expense."}
	relay := newTestServer(t, fc, Config{})
	ts := httptest.NewServer(relay.Handler)
	defer ts.Close()

	client := insight.NewClient(insight.Config{RelayURL: ts.URL + "/api/analyze"}, log.New(log.Config{Output: io.Discard}))
	txs := []core.Transaction{{
		Amount:   decimal.NewFromInt(100),
		Type:     core.Expense,
		Category: "Food",
		Date:     time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
	}}

	text, err := client.RequestInsight(context.Background(), txs)
	if err != nil {
		t.Fatalf("RequestInsight: %v", err)
	}
	if text != fc.content {
		t.Errorf("text = %q", text)
	}
	if len(fc.prompts) != 1 || !strings.Contains(fc.prompts[0], "- Food: ₹100.00") {
		t.Errorf("relay forwarded %v", fc.prompts)
	}

	fc.content = ""
	text, err = client.RequestInsight(context.Background(), txs)
	if err != nil || text != insight.NoAnalysis {
		t.Fatalf("empty completion = %q, %v; want %q", text, err, insight.NoAnalysis)
	}

	fc.err = completion.ErrMissingCredential
	_, err = client.RequestInsight(context.Background(), txs)
	var se *insight.StatusError
	if !errors.As(err, &se) || se.StatusCode != 500 || !strings.Contains(se.Message, "Missing API Key") {
		t.Fatalf("expected relay configuration error, got %v", err)
	}
}
