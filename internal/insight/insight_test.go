package insight

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

	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func expense(amount, category, note string) core.Transaction {
	return core.Transaction{
		Amount:      decimal.RequireFromString(amount),
		Type:        core.Expense,
		Category:    category,
		Description: note,
		Date:        time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildPromptEmpty(t *testing.T) {
	p := BuildPrompt(nil, "")
	if !strings.Contains(p, "Total Expense: ₹0.00") {
		t.Errorf("missing zero total:\n%s", p)
	}
	if !strings.Contains(p, "Category Breakdown:\n\n") {
		t.Errorf("breakdown section should be empty:\n%s", p)
	}
	if !strings.Contains(p, "1-2 actionable tips") {
		t.Errorf("missing instructions:\n%s", p)
	}
}

func TestBuildPromptGroupsExpenses(t *testing.T) {
	txs := []core.Transaction{
		expense("12.5", "Food", "lunch"),
		expense("30", "Bills", ""),
		{Amount: decimal.NewFromInt(1000), Type: core.Income, Category: "Salary"},
		expense("7.5", "Food", ""),
	}

	p := BuildPrompt(txs, "€")
	want := "Total Expense: €50.00\n\n" +
		"Category Breakdown:\n" +
		"- Food: €20.00\n" +
		"  - €12.50 (lunch)\n" +
		"  - €7.50\n" +
		"- Bills: €30.00\n" +
		"  - €30.00\n"
	if !strings.Contains(p, want) {
		t.Errorf("prompt body mismatch:\n%s", p)
	}
	if strings.Contains(p, "Salary") {
		t.Errorf("income leaked into prompt")
	}
	if p != BuildPrompt(txs, "€") {
		t.Errorf("prompt not deterministic")
	}
}

func TestRequestInsight(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr func(error) bool
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"choices":[{"message":{"role":"assistant","content":"Spend less on food."}}]}`,
			want:   "Spend less on food.",
		},
		{
			name:   "empty content",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			want:   NoAnalysis,
		},
		{
			name:   "relay error",
			status: http.StatusTooManyRequests,
			body:   `{"error":"Rate limit exceeded"}`,
			wantErr: func(err error) bool {
				var se *StatusError
				return errors.As(err, &se) && se.StatusCode == 429 && se.Message == "Rate limit exceeded"
			},
		},
		{
			name:   "plain text error",
			status: http.StatusInternalServerError,
			body:   "Server configuration error: Missing API Key",
			wantErr: func(err error) bool {
				var se *StatusError
				return errors.As(err, &se) && strings.Contains(se.Message, "Missing API Key")
			},
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: func(err error) bool { return errors.Is(err, ErrMalformedResponse) },
		},
		{
			name:    "no choices field",
			status:  http.StatusOK,
			body:    `{}`,
			wantErr: func(err error) bool { return errors.Is(err, ErrMalformedResponse) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Request
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s", r.Method)
				}
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(Config{RelayURL: srv.URL}, quietLogger())
			text, err := c.RequestInsight(context.Background(), []core.Transaction{expense("10", "Food", "")})

			if !strings.Contains(got.Prompt, "- Food: ₹10.00") {
				t.Errorf("relay received prompt %q", got.Prompt)
			}
			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Fatalf("unexpected error %v", err)
				}
				if Message(err) == "" {
					t.Errorf("empty user message for %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RequestInsight: %v", err)
			}
			if text != tt.want {
				t.Errorf("text = %q, want %q", text, tt.want)
			}
		})
	}
}

func TestRequestInsightNotConfigured(t *testing.T) {
	c := NewClient(Config{}, quietLogger())
	_, err := c.RequestInsight(context.Background(), nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRequestInsightTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{RelayURL: url}, quietLogger())
	_, err := c.RequestInsight(context.Background(), nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	var se *StatusError
	if errors.As(err, &se) || errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("transport error misclassified: %v", err)
	}
	if !strings.Contains(Message(err), "connection") {
		t.Errorf("Message = %q", Message(err))
	}
}

func TestMessageDistinct(t *testing.T) {
	msgs := map[string]bool{}
	for _, err := range []error{
		ErrNotConfigured,
		&StatusError{StatusCode: 502},
		ErrMalformedResponse,
		errors.New("dial tcp: refused"),
	} {
		msgs[Message(err)] = true
	}
	if len(msgs) != 4 {
		t.Fatalf("messages are not distinct: %v", msgs)
	}
}
