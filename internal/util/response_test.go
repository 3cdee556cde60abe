package util

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/fadilmartias/cv-assessor/internal/response"
	"github.com/gofiber/fiber/v2"
)

func decodeBody(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, body
}

func TestErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/fields", func(c *fiber.Ctx) error {
		return ErrorResponse(c, ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Missing parsed_cv or job",
			Fields:  fiber.Map{"questions": []any{}},
		})
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return ErrorResponse(c, ErrorResponseFormat{Message: "boom"}, errors.New("db down"))
	})
	app.Get("/form", func(c *fiber.Ctx) error {
		formErr := NewFormError("invalid upload", map[string]string{"file": "file is required"})
		return ErrorResponse(c, ErrorResponseFormat{Code: fiber.StatusBadRequest, Message: formErr.Message, Details: formErr.Errors})
	})

	status, body := decodeBody(t, app, "/fields")
	if status != fiber.StatusBadRequest || body["error"] != "Missing parsed_cv or job" {
		t.Fatalf("unexpected response %d %+v", status, body)
	}
	if questions, ok := body["questions"].([]any); !ok || len(questions) != 0 {
		t.Fatalf("expected empty questions field, got %+v", body["questions"])
	}
	if _, ok := body["dev_message"]; ok {
		t.Fatalf("dev_message should only be set when an error is passed")
	}

	status, body = decodeBody(t, app, "/internal")
	if status != fiber.StatusInternalServerError || body["dev_message"] != "db down" {
		t.Fatalf("unexpected response %d %+v", status, body)
	}

	_, body = decodeBody(t, app, "/form")
	details, _ := body["details"].(map[string]any)
	if details["file"] != "file is required" {
		t.Fatalf("unexpected details %+v", body["details"])
	}
}

func TestSuccessResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return SuccessResponse(c, SuccessResponseFormat{
			Message:    "ok",
			Data:       []string{"a"},
			Pagination: response.NewPagination(1, 10, 1),
		})
	})

	status, body := decodeBody(t, app, "/")
	if status != fiber.StatusOK || body["success"] != true || body["message"] != "ok" {
		t.Fatalf("unexpected response %d %+v", status, body)
	}
	pagination, _ := body["pagination"].(map[string]any)
	if pagination["total_items"] != float64(1) {
		t.Fatalf("unexpected pagination %+v", body["pagination"])
	}
}
