package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/fadilmartias/cv-assessor/internal/domain/job"
	"github.com/fadilmartias/cv-assessor/internal/logger"
	"github.com/fadilmartias/cv-assessor/internal/service"
	"github.com/fadilmartias/cv-assessor/internal/util"
	"go.uber.org/zap"
)

const maxMatches = 3

var ErrMissingParsedCV = errors.New("missing parsed_cv")

type CVUsecase struct {
	agent  service.Agent
	jobs   *JobUsecase
	logger *zap.Logger
}

func NewCVUsecase(agent service.Agent, jobs *JobUsecase, log *zap.Logger) *CVUsecase {
	return &CVUsecase{agent: agent, jobs: jobs, logger: logger.OrNop(log).Named("cv")}
}

// ParseCV extracts the document text and asks the agent for the structured CV.
// Extraction problems are returned as plain errors; unusable model output as
// *OutputError.
func (uc *CVUsecase) ParseCV(ctx context.Context, filename string, data []byte) (map[string]any, error) {
	text, err := util.ExtractDocumentText(ctx, filename, data, uc.logger)
	if err != nil {
		return nil, err
	}
	language := util.DetectLanguage(text)

	prompt := buildPrompt(parseCVPrompt, map[string]string{
		"CV_TEXT":  text,
		"LANGUAGE": language,
	})
	uc.logger.Debug("parse cv",
		zap.String("filename", filename),
		zap.String("language", language),
		zap.Int("text_length", len(text)),
	)

	raw, err := uc.agent.Run(ctx, prompt)
	if err != nil {
		return nil, &OutputError{Message: "Failed to parse CV", Err: err}
	}

	payload, err := util.ExtractJSONPayload(raw)
	if err != nil {
		return nil, &OutputError{Message: "Failed to parse CV", RawOutput: raw, Err: err}
	}
	parsed, ok := payload.Value().(map[string]any)
	if !ok {
		return nil, &OutputError{Message: "Failed to parse CV", RawOutput: raw, Err: util.ErrNoJSONPayload}
	}

	if lang, _ := parsed["detected_language"].(string); strings.TrimSpace(lang) == "" {
		parsed["detected_language"] = language
	}
	return parsed, nil
}

// MatchJobs ranks jobs for a parsed CV and returns at most three matches.
// An empty jobs list falls back to the job catalog. Unusable model output
// yields an empty list.
func (uc *CVUsecase) MatchJobs(ctx context.Context, parsedCV map[string]any, jobs []any) ([]map[string]any, error) {
	if len(parsedCV) == 0 {
		return nil, ErrMissingParsedCV
	}

	candidates := job.Objects(jobs)
	if len(candidates) == 0 {
		candidates = uc.jobs.Candidates(ctx, parsedCV)
	}

	prompt := buildPrompt(matchJobsPrompt, map[string]string{
		"CANDIDATE_JSON": promptJSON(parsedCV),
		"JOBS_JSON":      promptJSON(candidates),
		"MAX_MATCHES":    strconv.Itoa(maxMatches),
	})

	raw, err := uc.agent.Run(ctx, prompt)
	if err != nil {
		uc.logger.Warn("job matching failed", zap.Error(err))
		return []map[string]any{}, nil
	}

	payload, err := util.ExtractJSONPayload(raw)
	if err != nil {
		uc.logger.Warn("job matching output unusable",
			zap.Error(err),
			zap.String("raw_output", logger.TruncateForLog(raw, 200)),
		)
		return []map[string]any{}, nil
	}

	var items []any
	switch v := payload.Value().(type) {
	case map[string]any:
		items, _ = v["matches"].([]any)
	case []any:
		items = v
	}

	matches := job.Objects(items)
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	uc.logger.Info("jobs matched",
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}
