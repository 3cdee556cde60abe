package quiz

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrUnsupportedKind    = errors.New("unsupported question type")
	ErrOptionShape        = errors.New("options do not match question type")
	ErrAnswerUnrecognized = errors.New("correct answer encoding not recognized")
	ErrAnswerOutOfRange   = errors.New("correct answer index out of range")
)

var answerLetters = []string{"A", "B", "C", "D"}

// Normalize reduces the raw correct answer of q to a zero-based option index.
// A non-nil error means the question must be dropped.
func Normalize(q RawQuestion) (Question, error) {
	var (
		index int
		err   error
	)

	switch q.Kind {
	case KindMultipleChoice:
		if !q.OptionsValid || len(q.Options) != multipleChoiceOptions {
			return Question{}, fmt.Errorf("%w: %s needs %d options, got %d", ErrOptionShape, q.Kind, multipleChoiceOptions, len(q.Options))
		}
		index, err = multipleChoiceIndex(q.CorrectAnswer, q.Options)
	case KindTrueFalse:
		if !q.OptionsValid || !slices.Equal(q.Options, trueFalseOptions) {
			return Question{}, fmt.Errorf("%w: %s needs options %q, got %q", ErrOptionShape, q.Kind, trueFalseOptions, q.Options)
		}
		index, err = trueFalseIndex(q.CorrectAnswer)
	default:
		return Question{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, q.Kind)
	}
	if err != nil {
		return Question{}, err
	}

	if index < 0 || index >= len(q.Options) {
		return Question{}, fmt.Errorf("%w: %d not in [0, %d)", ErrAnswerOutOfRange, index, len(q.Options))
	}

	return Question{
		ID:            q.ID,
		Text:          q.Text,
		Kind:          q.Kind,
		Options:       q.Options,
		CorrectAnswer: index,
		Explanation:   q.Metadata.Explanation,
		Difficulty:    q.Metadata.Difficulty,
		Category:      q.Metadata.Category,
	}, nil
}

func multipleChoiceIndex(answer any, options []string) (int, error) {
	s, ok := answer.(string)
	if !ok {
		return integerIndex(answer)
	}

	if i := slices.Index(answerLetters, strings.ToUpper(s)); i >= 0 {
		return i, nil
	}

	if isDigits(s) {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < multipleChoiceOptions {
			return n, nil
		}
	}

	want := strings.ToLower(strings.TrimSpace(s))
	for i, opt := range options {
		if strings.ToLower(strings.TrimSpace(opt)) == want {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrAnswerUnrecognized, s)
}

func trueFalseIndex(answer any) (int, error) {
	switch v := answer.(type) {
	case string:
		switch v {
		case "True":
			return 0, nil
		case "False":
			return 1, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrAnswerUnrecognized, v)
	case bool:
		if v {
			return 0, nil
		}
		return 1, nil
	default:
		return integerIndex(answer)
	}
}

// integerIndex accepts answers that already are an index.
func integerIndex(answer any) (int, error) {
	switch v := answer.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %v", ErrAnswerUnrecognized, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrAnswerUnrecognized, answer, answer)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
