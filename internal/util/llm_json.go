package util

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrNoJSONPayload = errors.New("no JSON payload in model output")

// ExtractJSONPayload pulls the JSON document out of free-form model output.
// Code fences are stripped first; when the remainder is still not valid JSON
// the span from the first '{' or '[' to the last matching closer is tried.
func ExtractJSONPayload(raw string) (gjson.Result, error) {
	cleaned := stripCodeFence(raw)
	if cleaned != "" && gjson.Valid(cleaned) {
		return gjson.Parse(cleaned), nil
	}

	start := strings.IndexAny(cleaned, "{[")
	if start == -1 {
		return gjson.Result{}, ErrNoJSONPayload
	}
	closer := byte('}')
	if cleaned[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(cleaned, closer)
	if end <= start {
		return gjson.Result{}, ErrNoJSONPayload
	}

	candidate := cleaned[start : end+1]
	if !gjson.Valid(candidate) {
		return gjson.Result{}, ErrNoJSONPayload
	}
	return gjson.Parse(candidate), nil
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "```"); idx != -1 {
		body := raw[idx+3:]
		// drop the language tag on the opening fence
		if nl := strings.IndexByte(body, '\n'); nl != -1 && !strings.ContainsAny(body[:nl], "{[") {
			body = body[nl+1:]
		} else {
			body = strings.TrimPrefix(body, "json")
		}
		if end := strings.LastIndex(body, "```"); end != -1 {
			body = body[:end]
		}
		raw = body
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
