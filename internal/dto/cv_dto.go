package dto

type MatchJobsRequest struct {
	ParsedCV map[string]any `json:"parsed_cv"`
	Jobs     []any          `json:"jobs"`
}

// LLMFailure is returned in place of a result when the model output could not be used.
type LLMFailure struct {
	Error     string `json:"error"`
	RawOutput string `json:"raw_output"`
}

type ListJobsQuery struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}
