package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/domain/job"
	"github.com/fadilmartias/cv-assessor/internal/domain/quiz"
	"github.com/fadilmartias/cv-assessor/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const quizOutput = `{
  "title": "Quiz for Go Developer",
  "description": "Assessment",
  "questions": [
    {"id": 1, "question": "Pick b", "type": "multiple_choice", "options": ["a", "b", "c", "d"], "correct_answer": "B", "category": "technical"},
    {"id": 2, "question": "Go has classes", "type": "true_false", "options": ["True", "False"], "correct_answer": "False", "category": "technical"}
  ],
  "estimated_time": "10 minutes"
}`

type stubAgent struct {
	mu       sync.Mutex
	response string
	err      error
}

func (s *stubAgent) Run(context.Context, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response, s.err
}

type testServer struct {
	app   *fiber.App
	store *quiz.MemoryStore
}

func newTestServer(agent *stubAgent) testServer {
	log := zap.NewNop()
	store := quiz.NewMemoryStore()
	jobs := usecase.NewJobUsecase(job.NewCatalog(job.DefaultPostings()), nil, nil, log)
	cv := usecase.NewCVUsecase(agent, jobs, log)
	quizUC := usecase.NewQuizUsecase(agent, store, usecase.QuizOptions{SessionTTL: time.Hour, PassThreshold: 50}, log)

	app := fiber.New()
	NewCVHandler(cv, jobs, 1024).RegisterRoutes(app)
	NewQuizHandler(quizUC).RegisterRoutes(app)
	return testServer{app: app, store: store}
}

func (s testServer) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return resp.StatusCode, body
}

func jsonRequest(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/parse-cv", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestQuizFlow(t *testing.T) {
	srv := newTestServer(&stubAgent{response: quizOutput})

	status, generated := srv.do(t, jsonRequest(t, http.MethodPost, "/generate-quiz", map[string]any{
		"parsed_cv":      map[string]any{"summary": "gopher"},
		"job":            map[string]any{"job_title": "Go Developer"},
		"candidate_name": "Jane",
	}))
	if status != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d (%v)", status, generated)
	}
	sessionID, _ := generated["session_id"].(string)
	if sessionID == "" {
		t.Fatalf("expected a session id, got %v", generated)
	}
	if questions, _ := generated["questions"].([]any); len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %v", generated["questions"])
	}

	status, result := srv.do(t, jsonRequest(t, http.MethodPost, "/submit-quiz", map[string]any{
		"session_id": sessionID,
		"answers":    []any{1, 0},
	}))
	if status != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d (%v)", status, result)
	}
	if result["score"] != float64(50) || result["status"] != "PASS" || result["next_action"] != "apply" {
		t.Fatalf("unexpected result: %v", result)
	}
	if result["candidate_name"] != "Jane" || result["correct_answers"] != float64(1) {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestSubmitQuizWithoutSession(t *testing.T) {
	srv := newTestServer(&stubAgent{})

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{name: "no session id", payload: map[string]any{"answers": []any{1}}},
		{name: "unknown session id", payload: map[string]any{"session_id": "does-not-exist", "answers": []any{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := srv.do(t, jsonRequest(t, http.MethodPost, "/submit-quiz", tt.payload))
			if status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", status)
			}
			if body["error"] != "Quiz session expired or not started" {
				t.Fatalf("unexpected error: %v", body)
			}
			if _, ok := body["score"]; ok {
				t.Fatalf("error body must not carry a score: %v", body)
			}
		})
	}
}

func TestGenerateQuizMissingInput(t *testing.T) {
	srv := newTestServer(&stubAgent{response: quizOutput})

	status, body := srv.do(t, jsonRequest(t, http.MethodPost, "/generate-quiz", map[string]any{
		"parsed_cv": map[string]any{"summary": "gopher"},
	}))
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Missing parsed_cv or job" {
		t.Fatalf("unexpected error: %v", body)
	}
	if questions, ok := body["questions"].([]any); !ok || len(questions) != 0 {
		t.Fatalf("expected empty questions, got %v", body["questions"])
	}
	if srv.store.Len() != 0 {
		t.Fatalf("no session should be created")
	}
}

func TestGenerateQuizUnusableOutput(t *testing.T) {
	srv := newTestServer(&stubAgent{response: "not json at all"})

	status, body := srv.do(t, jsonRequest(t, http.MethodPost, "/generate-quiz", map[string]any{
		"parsed_cv": map[string]any{"summary": "gopher"},
		"job":       map[string]any{"job_title": "Go Developer"},
	}))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["error"] != "Failed to generate quiz" || body["raw_output"] != "not json at all" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["session_id"]; ok || srv.store.Len() != 0 {
		t.Fatalf("no session should be created: %v", body)
	}
}

func TestParseCV(t *testing.T) {
	tests := []struct {
		name     string
		agent    *stubAgent
		filename string
		content  string
		status   int
		check    func(t *testing.T, body map[string]any)
	}{
		{
			name:     "parsed",
			agent:    &stubAgent{response: "```json\n{\"name\": \"Jane Doe\", \"skills\": [\"Go\"]}\n```"},
			filename: "cv.txt",
			content:  "Jane Doe, software engineer with experience in Go and the cloud.",
			status:   http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["name"] != "Jane Doe" || body["detected_language"] != "english" {
					t.Fatalf("unexpected body: %v", body)
				}
			},
		},
		{
			name:     "unusable output",
			agent:    &stubAgent{response: "sorry"},
			filename: "cv.txt",
			content:  "Jane Doe, software engineer.",
			status:   http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["error"] != "Failed to parse CV" || body["raw_output"] != "sorry" {
					t.Fatalf("unexpected body: %v", body)
				}
			},
		},
		{
			name:   "missing file",
			agent:  &stubAgent{},
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				if body["error"] != "file is required" {
					t.Fatalf("unexpected body: %v", body)
				}
			},
		},
		{
			name:     "unsupported format",
			agent:    &stubAgent{},
			filename: "cv.odt",
			content:  "whatever",
			status:   http.StatusBadRequest,
		},
		{
			name:     "too large",
			agent:    &stubAgent{},
			filename: "cv.txt",
			content:  strings.Repeat("a", 2048),
			status:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.agent)
			status, body := srv.do(t, uploadRequest(t, tt.filename, tt.content))
			if status != tt.status {
				t.Fatalf("expected %d, got %d (%v)", tt.status, status, body)
			}
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestMatchJobs(t *testing.T) {
	srv := newTestServer(&stubAgent{response: `[{"job_title": "Go Developer", "skills": "Go, SQL", "match_score": 90}]`})

	req := jsonRequest(t, http.MethodPost, "/match-jobs", map[string]any{
		"parsed_cv": map[string]any{"skills": []string{"Go"}},
	})
	resp, err := srv.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var matches []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if skills, _ := matches[0]["skills"].([]any); len(skills) != 2 {
		t.Fatalf("expected normalized skills, got %v", matches[0]["skills"])
	}

	status, body := srv.do(t, jsonRequest(t, http.MethodPost, "/match-jobs", map[string]any{}))
	if status != http.StatusBadRequest || body["error"] != "Missing parsed_cv" {
		t.Fatalf("expected missing parsed_cv, got %d %v", status, body)
	}
}

func TestMatchJobsAgentDown(t *testing.T) {
	srv := newTestServer(&stubAgent{err: errors.New("down")})

	resp, err := srv.app.Test(jsonRequest(t, http.MethodPost, "/match-jobs", map[string]any{
		"parsed_cv": map[string]any{"skills": []string{"Go"}},
	}), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("expected 200 with empty list, got %d %s", resp.StatusCode, raw)
	}
}

func TestListJobs(t *testing.T) {
	srv := newTestServer(&stubAgent{})

	status, body := srv.do(t, httptest.NewRequest(http.MethodGet, "/jobs?page=2&page_size=2", nil))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	data, _ := body["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("expected 2 jobs, got %v", body["data"])
	}
	if first, _ := data[0].(map[string]any); first["job_id"] != "3" {
		t.Fatalf("unexpected first job: %v", data[0])
	}
	pagination, _ := body["pagination"].(map[string]any)
	if pagination["total_items"] != float64(5) {
		t.Fatalf("unexpected pagination: %v", pagination)
	}
}
