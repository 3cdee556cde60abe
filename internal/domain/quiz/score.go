package quiz

import "encoding/json"

type Status string

const (
	StatusPass  Status = "PASS"
	StatusRetry Status = "RETRY"
)

type NextAction string

const (
	NextActionApply NextAction = "apply"
	NextActionRetry NextAction = "retry"
)

const DefaultPassThreshold = 50.0

// Result is computed on every submission and never stored.
type Result struct {
	Score          float64            `json:"score"`
	Status         Status             `json:"status"`
	CorrectCount   int                `json:"correct_answers"`
	TotalQuestions int                `json:"total_questions"`
	CategoryScores map[string]float64 `json:"category_scores"`
	NextAction     NextAction         `json:"next_action"`
}

type Scorer struct {
	PassThreshold float64
}

func NewScorer(passThreshold float64) *Scorer {
	if passThreshold <= 0 {
		passThreshold = DefaultPassThreshold
	}
	return &Scorer{PassThreshold: passThreshold}
}

// Score compares answers[i] with questions[i].CorrectAnswer. Missing answers
// and anything that is not an integral number never match.
func (s *Scorer) Score(answers []any, questions []Question) Result {
	threshold := s.PassThreshold
	if threshold <= 0 {
		threshold = DefaultPassThreshold
	}

	type tally struct{ correct, total int }
	categories := map[string]*tally{}

	correct := 0
	for i, q := range questions {
		var answer any
		if i < len(answers) {
			answer = answers[i]
		}
		hit := AnswerMatches(answer, q.CorrectAnswer)
		if hit {
			correct++
		}

		if q.Category == "" {
			continue
		}
		t, ok := categories[q.Category]
		if !ok {
			t = &tally{}
			categories[q.Category] = t
		}
		t.total++
		if hit {
			t.correct++
		}
	}

	res := Result{
		Score:          percent(correct, len(questions)),
		CorrectCount:   correct,
		TotalQuestions: len(questions),
		CategoryScores: make(map[string]float64, len(categories)),
	}
	for name, t := range categories {
		res.CategoryScores[name] = percent(t.correct, t.total)
	}

	res.Status = StatusRetry
	res.NextAction = NextActionRetry
	if res.Score >= threshold {
		res.Status = StatusPass
		res.NextAction = NextActionApply
	}
	return res
}

// AnswerMatches is the single equality policy used for scoring.
func AnswerMatches(answer any, correct int) bool {
	switch v := answer.(type) {
	case int:
		return v == correct
	case int64:
		return v == int64(correct)
	case float64:
		return v == float64(correct)
	case json.Number:
		n, err := v.Int64()
		return err == nil && n == int64(correct)
	default:
		return false
	}
}

func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
