package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/domain/quiz"
	"github.com/fadilmartias/cv-assessor/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuizSessionRepository is the Postgres-backed quiz.Store.
type QuizSessionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

var _ quiz.Store = (*QuizSessionRepository)(nil)

var ErrCorruptSession = errors.New("corrupt quiz session")

func NewQuizSessionRepository(db *gorm.DB, logger *zap.Logger) *QuizSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizSessionRepository{db: db, logger: logger.Named("quiz_sessions"), now: time.Now}
}

func (r *QuizSessionRepository) Save(ctx context.Context, s quiz.Session) error {
	if s.ID == "" {
		return errors.New("quiz session id is required")
	}
	row, err := sessionToModel(s)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (r *QuizSessionRepository) Load(ctx context.Context, id string) (quiz.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return quiz.Session{}, quiz.ErrSessionNotFound
	}

	var row model.QuizSession
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return quiz.Session{}, quiz.ErrSessionNotFound
	}
	if err != nil {
		return quiz.Session{}, fmt.Errorf("load quiz session: %w", err)
	}

	s, err := modelToSession(row)
	if err != nil {
		r.logger.Warn("unreadable quiz session", zap.String("session_id", id), zap.Error(err))
		return quiz.Session{}, err
	}
	if s.Expired(r.now()) {
		return quiz.Session{}, quiz.ErrSessionNotFound
	}
	return s, nil
}

func (r *QuizSessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.QuizSession{}, "id = ?", id).Error
}

func (r *QuizSessionRepository) CleanupExpired(ctx context.Context) (int, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", r.now()).
		Delete(&model.QuizSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("cleanup quiz sessions: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func sessionToModel(s quiz.Session) (model.QuizSession, error) {
	job := s.Job
	if job == nil {
		job = map[string]any{}
	}
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return model.QuizSession{}, fmt.Errorf("encode quiz session job: %w", err)
	}
	questions := s.Questions
	if questions == nil {
		questions = []quiz.Question{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return model.QuizSession{}, fmt.Errorf("encode quiz session questions: %w", err)
	}

	row := model.QuizSession{
		ID:            s.ID,
		CandidateName: s.CandidateName,
		Job:           string(jobJSON),
		Questions:     string(questionsJSON),
		CreatedAt:     s.CreatedAt,
	}
	if !s.ExpiresAt.IsZero() {
		expiresAt := s.ExpiresAt
		row.ExpiresAt = &expiresAt
	}
	return row, nil
}

func modelToSession(row model.QuizSession) (quiz.Session, error) {
	s := quiz.Session{
		ID:            row.ID,
		CandidateName: row.CandidateName,
		CreatedAt:     row.CreatedAt,
	}
	if row.ExpiresAt != nil {
		s.ExpiresAt = *row.ExpiresAt
	}
	if row.Job != "" {
		if err := json.Unmarshal([]byte(row.Job), &s.Job); err != nil {
			return quiz.Session{}, fmt.Errorf("decode quiz session job: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(row.Questions), &s.Questions); err != nil {
		return quiz.Session{}, fmt.Errorf("decode quiz session questions: %w", err)
	}
	// answers are matched by position, so a single unscoreable question
	// invalidates the whole session
	if _, step := quiz.Refilter(s.Questions, nil); step.Dropped > 0 {
		return quiz.Session{}, fmt.Errorf("%w: %d of %d questions cannot be scored", ErrCorruptSession, step.Dropped, step.Initial)
	}
	return s, nil
}
