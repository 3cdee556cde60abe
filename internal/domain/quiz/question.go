package quiz

import "github.com/tidwall/gjson"

type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
)

// multipleChoiceOptions is the only option count accepted for multiple choice.
const multipleChoiceOptions = 4

var trueFalseOptions = []string{"True", "False"}

// RawQuestion is a question as the generator produced it. CorrectAnswer keeps
// whatever JSON value the model emitted (string, float64, bool or nil).
type RawQuestion struct {
	ID            int
	Text          string
	Kind          Kind
	Options       []string
	OptionsValid  bool
	CorrectAnswer any
	Metadata      Metadata
}

// Metadata is passed through to the client untouched.
type Metadata struct {
	Explanation string `json:"explanation,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Question is a normalized, scoreable question.
// CorrectAnswer always satisfies 0 <= CorrectAnswer < len(Options).
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"question"`
	Kind          Kind     `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// Raw converts a normalized question back into its raw form so it can be fed
// through the filter again.
func (q Question) Raw() RawQuestion {
	return RawQuestion{
		ID:            q.ID,
		Text:          q.Text,
		Kind:          q.Kind,
		Options:       append([]string(nil), q.Options...),
		OptionsValid:  true,
		CorrectAnswer: q.CorrectAnswer,
		Metadata: Metadata{
			Explanation: q.Explanation,
			Difficulty:  q.Difficulty,
			Category:    q.Category,
		},
	}
}

// ParseRawQuestions reads the "questions" array shape emitted by the quiz
// generator. Non-object entries are skipped.
func ParseRawQuestions(questions gjson.Result) []RawQuestion {
	if !questions.IsArray() {
		return nil
	}

	items := questions.Array()
	raw := make([]RawQuestion, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		raw = append(raw, parseRawQuestion(item))
	}
	return raw
}

func parseRawQuestion(item gjson.Result) RawQuestion {
	q := RawQuestion{
		ID:   int(item.Get("id").Int()),
		Text: item.Get("question").String(),
		Kind: Kind(item.Get("type").String()),
		Metadata: Metadata{
			Explanation: item.Get("explanation").String(),
			Difficulty:  item.Get("difficulty").String(),
			Category:    item.Get("category").String(),
		},
	}

	options := item.Get("options")
	q.OptionsValid = options.IsArray()
	for _, opt := range options.Array() {
		if opt.Type != gjson.String {
			q.OptionsValid = false
			continue
		}
		q.Options = append(q.Options, opt.String())
	}

	answer := item.Get("correct_answer")
	if answer.Exists() {
		q.CorrectAnswer = answer.Value()
	}
	return q
}
