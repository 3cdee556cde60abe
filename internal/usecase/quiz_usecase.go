package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/domain/quiz"
	"github.com/fadilmartias/cv-assessor/internal/dto"
	"github.com/fadilmartias/cv-assessor/internal/logger"
	"github.com/fadilmartias/cv-assessor/internal/service"
	"github.com/fadilmartias/cv-assessor/internal/util"
	"go.uber.org/zap"
)

var ErrMissingQuizInput = errors.New("missing parsed_cv or job")

type QuizOptions struct {
	SessionTTL    time.Duration
	PassThreshold float64
	HideAnswers   bool
}

type QuizUsecase struct {
	agent  service.Agent
	store  quiz.Store
	scorer *quiz.Scorer
	opts   QuizOptions
	logger *zap.Logger
}

func NewQuizUsecase(agent service.Agent, store quiz.Store, opts QuizOptions, log *zap.Logger) *QuizUsecase {
	return &QuizUsecase{
		agent:  agent,
		store:  store,
		scorer: quiz.NewScorer(opts.PassThreshold),
		opts:   opts,
		logger: logger.OrNop(log).Named("quiz"),
	}
}

// Generate asks the agent for a quiz, keeps the scoreable questions and
// opens a session for them. Unusable model output is reported in the
// response's error field and opens no session.
func (uc *QuizUsecase) Generate(ctx context.Context, req dto.GenerateQuizRequest) (dto.GenerateQuizResponse, error) {
	if len(req.ParsedCV) == 0 || len(req.Job) == 0 {
		return dto.GenerateQuizResponse{}, ErrMissingQuizInput
	}

	prompt := buildPrompt(generateQuizPrompt, map[string]string{
		"CANDIDATE_JSON": promptJSON(req.ParsedCV),
		"JOB_JSON":       promptJSON(req.Job),
	})

	raw, err := uc.agent.Run(ctx, prompt)
	if err != nil {
		uc.logger.Warn("quiz generation failed", zap.Error(err))
		return failedQuiz(""), nil
	}

	payload, err := util.ExtractJSONPayload(raw)
	questions := payload.Get("questions")
	if err != nil || !questions.IsArray() {
		uc.logger.Warn("quiz output unusable",
			zap.Error(err),
			zap.String("raw_output", logger.TruncateForLog(raw, 200)),
		)
		return failedQuiz(raw), nil
	}

	filtered, step := quiz.Filter(quiz.ParseRawQuestions(questions), uc.logger)

	session := quiz.NewSession(req.CandidateName, req.Job, filtered, uc.opts.SessionTTL)
	if err := uc.store.Save(ctx, session); err != nil {
		return dto.GenerateQuizResponse{}, fmt.Errorf("save quiz session: %w", err)
	}

	uc.logger.Info("quiz generated",
		zap.String("session_id", session.ID),
		zap.String("candidate_name", session.CandidateName),
		zap.Int("questions_initial", step.Initial),
		zap.Int("questions_left", step.Left),
	)

	return dto.GenerateQuizResponse{
		SessionID:      session.ID,
		Questions:      dto.NewQuestionViews(filtered, uc.opts.HideAnswers),
		Title:          payload.Get("title").String(),
		Description:    payload.Get("description").String(),
		TotalQuestions: len(filtered),
		EstimatedTime:  payload.Get("estimated_time").String(),
	}, nil
}

func failedQuiz(raw string) dto.GenerateQuizResponse {
	return dto.GenerateQuizResponse{
		Questions: []dto.QuestionView{},
		Error:     "Failed to generate quiz",
		RawOutput: raw,
	}
}

// Submit scores the answers against the session's questions. The session is
// kept until it expires so the candidate can resubmit.
func (uc *QuizUsecase) Submit(ctx context.Context, req dto.SubmitQuizRequest) (dto.SubmitQuizResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return dto.SubmitQuizResponse{}, quiz.ErrSessionNotFound
	}

	session, err := uc.store.Load(ctx, req.SessionID)
	if err != nil {
		return dto.SubmitQuizResponse{}, err
	}

	result := uc.scorer.Score(req.Answers, session.Questions)

	name := strings.TrimSpace(req.CandidateName)
	if name == "" {
		name = session.CandidateName
	}

	uc.logger.Info("quiz submitted",
		zap.String("session_id", session.ID),
		zap.Int("correct_answers", result.CorrectCount),
		zap.Int("total_questions", result.TotalQuestions),
		zap.Float64("score", result.Score),
		zap.String("status", string(result.Status)),
	)

	return dto.SubmitQuizResponse{
		Result:        result,
		CandidateName: quiz.CandidateOrDefault(name),
		SessionID:     session.ID,
	}, nil
}

// RunJanitor purges expired sessions every interval until ctx is done.
func (uc *QuizUsecase) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := uc.store.CleanupExpired(ctx)
			if err != nil {
				uc.logger.Warn("session cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				uc.logger.Debug("expired sessions removed", zap.Int("removed", removed))
			}
		}
	}
}
