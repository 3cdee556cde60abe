package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"go.uber.org/zap"
)

func TestNewAppHealthAndErrors(t *testing.T) {
	srv := newApp(&config.AppConfig{Name: app, Env: "test", UploadMaxBytes: 1 << 20}, zap.NewNop())

	resp, err := srv.Test(httptest.NewRequest(http.MethodGet, "/livez", nil), -1)
	if err != nil {
		t.Fatalf("livez: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /livez, got %d", resp.StatusCode)
	}

	resp, err = srv.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	if err != nil {
		t.Fatalf("unknown route: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected error message, got %v", body)
	}
}
