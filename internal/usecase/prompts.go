package usecase

import (
	_ "embed"
	"encoding/json"
	"strings"
)

//go:embed prompts/parse_cv.md
var parseCVPrompt string

//go:embed prompts/match_jobs.md
var matchJobsPrompt string

//go:embed prompts/generate_quiz.md
var generateQuizPrompt string

// buildPrompt fills {{KEY}} placeholders in template.
func buildPrompt(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func promptJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// OutputError reports model output that could not be turned into a result.
// It is rendered to the client as {error, raw_output}.
type OutputError struct {
	Message   string
	RawOutput string
	Err       error
}

func (e *OutputError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OutputError) Unwrap() error { return e.Err }
