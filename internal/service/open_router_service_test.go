package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"github.com/tidwall/gjson"
)

func newTestOpenRouter(t *testing.T, handler http.HandlerFunc) (*OpenRouterService, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewOpenRouterService(
		&config.OpenRouterConfig{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "openai/gpt-4o-mini"},
		&config.LLMConfig{MaxRetries: 2, Timeout: 5 * time.Second},
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	s.client.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(time.Millisecond)
	return s, srv
}

func TestOpenRouterRun(t *testing.T) {
	var body []byte
	s, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"questions\":[]}"}}]}`)
	})

	out, err := s.Run(context.Background(), "generate a quiz")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != `{"questions":[]}` {
		t.Fatalf("unexpected output %q", out)
	}

	req := gjson.ParseBytes(body)
	if req.Get("model").String() != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected model in request: %s", body)
	}
	if req.Get("messages.1.content").String() != "generate a quiz" {
		t.Fatalf("task not sent as user message: %s", body)
	}
}

func TestOpenRouterRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	s, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	})

	out, err := s.Run(context.Background(), "task")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "ok" || calls.Load() != 2 {
		t.Fatalf("expected retry then ok, got %q after %d calls", out, calls.Load())
	}
}

func TestOpenRouterErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
		is      error
	}{
		{name: "client error", status: http.StatusUnauthorized, payload: `{"error":{"message":"bad key"}}`},
		{name: "error in body", status: http.StatusOK, payload: `{"error":{"message":"model overloaded"}}`},
		{name: "no choices", status: http.StatusOK, payload: `{"choices":[]}`, is: ErrEmptyCompletion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.payload)
			})
			_, err := s.Run(context.Background(), "task")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestNewOpenRouterServiceRequiresKey(t *testing.T) {
	if _, err := NewOpenRouterService(&config.OpenRouterConfig{}, nil, nil); err == nil {
		t.Fatal("expected error without api key")
	}
}
