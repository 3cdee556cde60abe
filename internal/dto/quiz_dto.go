package dto

import "github.com/fadilmartias/cv-assessor/internal/domain/quiz"

type GenerateQuizRequest struct {
	ParsedCV      map[string]any `json:"parsed_cv"`
	Job           map[string]any `json:"job"`
	CandidateName string         `json:"candidate_name"`
}

// QuestionView is a question as sent to the candidate. CorrectAnswer and
// Explanation are left out when answers are hidden.
type QuestionView struct {
	ID            int       `json:"id"`
	Text          string    `json:"question"`
	Kind          quiz.Kind `json:"type"`
	Options       []string  `json:"options"`
	CorrectAnswer *int      `json:"correct_answer,omitempty"`
	Explanation   string    `json:"explanation,omitempty"`
	Difficulty    string    `json:"difficulty,omitempty"`
	Category      string    `json:"category,omitempty"`
}

func NewQuestionViews(questions []quiz.Question, hideAnswers bool) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		v := QuestionView{
			ID:         q.ID,
			Text:       q.Text,
			Kind:       q.Kind,
			Options:    q.Options,
			Difficulty: q.Difficulty,
			Category:   q.Category,
		}
		if !hideAnswers {
			answer := q.CorrectAnswer
			v.CorrectAnswer = &answer
			v.Explanation = q.Explanation
		}
		views = append(views, v)
	}
	return views
}

type GenerateQuizResponse struct {
	SessionID      string         `json:"session_id,omitempty"`
	Questions      []QuestionView `json:"questions"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	TotalQuestions int            `json:"total_questions"`
	EstimatedTime  string         `json:"estimated_time"`
	Error          string         `json:"error,omitempty"`
	RawOutput      string         `json:"raw_output,omitempty"`
}

type SubmitQuizRequest struct {
	SessionID     string `json:"session_id"`
	Answers       []any  `json:"answers"`
	CandidateName string `json:"candidate_name"`
}

type SubmitQuizResponse struct {
	quiz.Result
	CandidateName string `json:"candidate_name"`
	SessionID     string `json:"session_id"`
}
