package util

import (
	"errors"
	"testing"
)

func TestExtractJSONPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		path string
		want string
	}{
		{name: "plain object", in: `{"summary":"ok"}`, path: "summary", want: "ok"},
		{name: "json fence", in: "```json\n{\"summary\":\"ok\"}\n```", path: "summary", want: "ok"},
		{name: "bare fence", in: "```\n[{\"id\":1}]\n```", path: "0.id", want: "1"},
		{name: "inline fence", in: "```json {\"a\":\"b\"}```", path: "a", want: "b"},
		{name: "prose around object", in: "Here is the result:\n{\"questions\":[{\"id\":3}]}\nThanks!", path: "questions.0.id", want: "3"},
		{name: "prose around array", in: "Matches: [{\"job_id\":\"2\"}] done", path: "0.job_id", want: "2"},
		{name: "fence after prose", in: "Sure!\n```json\n{\"x\":1}\n```\n", path: "x", want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := ExtractJSONPayload(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := res.Get(tt.path).String(); got != tt.want {
				t.Fatalf("expected %q at %s, got %q", tt.want, tt.path, got)
			}
		})
	}
}

func TestExtractJSONPayloadFailures(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "no json here", "{broken", "} backwards {", "```json\n{\"a\":}\n```"} {
		if _, err := ExtractJSONPayload(in); !errors.Is(err, ErrNoJSONPayload) {
			t.Fatalf("expected ErrNoJSONPayload for %q, got %v", in, err)
		}
	}
}
